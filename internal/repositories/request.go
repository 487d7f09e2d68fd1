package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/ytradio/internal/models"
	"github.com/desertthunder/ytradio/internal/shared"
)

const requestColumns = "id, sequence, session_id, username, query, video_id, title, created_at, updated_at"

// RequestRepository implements [models.Repository] for [models.SongRequest] persistence.
type RequestRepository struct {
	db *sql.DB
}

// NewRequestRepository creates a new [RequestRepository] with the given database connection
func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a new request with generated ID and sequence
func (r *RequestRepository) Create(req *models.SongRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "requests")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	req.SetID(id)
	req.SetSequence(sequence)

	query := `INSERT INTO requests (` + requestColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.Exec(query,
		id, sequence, req.SessionID(), req.Username(), req.Query(),
		req.VideoID(), req.Title(), req.CreatedAt(), req.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}

	return nil
}

// Get retrieves a request by ID
func (r *RequestRepository) Get(id string) (*models.SongRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = ?`

	req, err := scanRequest(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("request not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query request: %w", err)
	}
	return req, nil
}

// Update modifies the resolved title and video ID of an existing request
func (r *RequestRepository) Update(req *models.SongRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	req.SetUpdatedAt(now)

	query := `UPDATE requests SET video_id = ?, title = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.Exec(query, req.VideoID(), req.Title(), now, req.ID())
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("request not found: %s", req.ID())
	}

	return nil
}

// Delete removes a request by ID
func (r *RequestRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("request not found: %s", id)
	}

	return nil
}

// List retrieves requests newest first.
//
// Supported criteria: "session_id" (string), "username" (string) and "limit" (int).
func (r *RequestRepository) List(criteria map[string]any) ([]*models.SongRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE 1 = 1`
	args := []any{}

	if sessionID, ok := criteria["session_id"].(string); ok && sessionID != "" {
		query += " AND session_id = ?"
		args = append(args, sessionID)
	}

	if username, ok := criteria["username"].(string); ok && username != "" {
		query += " AND username = ?"
		args = append(args, username)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.SongRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return requests, nil
}

// Record stores a request for a successfully submitted seed.
func (r *RequestRepository) Record(sessionID, username, query string, details models.SongDetails) (*models.SongRequest, error) {
	req := models.NewSongRequest(0, sessionID, username, query, details)
	if err := r.Create(req); err != nil {
		return nil, err
	}
	return req, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.SongRequest, error) {
	var (
		id        string
		sequence  int
		sessionID string
		username  string
		query     string
		videoID   string
		title     string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&id, &sequence, &sessionID, &username, &query, &videoID, &title, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	return models.RestoreSongRequest(id, sequence, sessionID, username, query, videoID, title, createdAt, updatedAt), nil
}
