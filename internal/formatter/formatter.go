// package formatter renders seed details and related songs as plain text, JSON, CSV and Markdown
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/ytradio/internal/models"
	"github.com/desertthunder/ytradio/internal/shared"
)

// FormatSongText renders a song the way the CLI prints it as it arrives.
//
// An index of zero or less omits the rank prefix.
func FormatSongText(song models.EnrichedSong, index int) string {
	var b strings.Builder
	if index > 0 {
		fmt.Fprintf(&b, "%d. ", index)
	}
	b.WriteString(song.Title)
	b.WriteString("\n")
	fmt.Fprintf(&b, "   Artists: %s\n", shared.JoinArtists(song.Artists))
	if len(song.Featuring) > 0 {
		fmt.Fprintf(&b, "   Featuring: %s\n", strings.Join(song.Featuring, ", "))
	}
	return b.String()
}

// FormatSeedText renders the seed song summary returned by a submit.
func FormatSeedText(details models.SongDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", details.Title)
	fmt.Fprintf(&b, "   Artists: %s\n", details.Artists)
	fmt.Fprintf(&b, "   Video ID: %s\n", details.VideoID)
	if details.AudioURL != "" && details.AudioURL != models.NoAudioURL {
		fmt.Fprintf(&b, "   Audio: %s\n", details.AudioURL)
	}
	if details.RequestedBy != "" {
		fmt.Fprintf(&b, "   Requested by: %s\n", details.RequestedBy)
	}
	return b.String()
}

// FormatJSON renders any value as indented JSON followed by a newline.
func FormatJSON(v any) ([]byte, error) {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV converts related songs to CSV with columns: Index, Title, Artists, Featuring, Video ID, Album Art, Audio URL
func ExportToCSV(songs []models.EnrichedSong) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Index", "Title", "Artists", "Featuring", "Video ID", "Album Art", "Audio URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, song := range songs {
		audio := ""
		if song.HasAudio() {
			audio = *song.AudioURL
		}
		record := []string{
			strconv.Itoa(rank(song, i)),
			song.Title,
			shared.JoinArtists(song.Artists),
			strings.Join(song.Featuring, ", "),
			song.VideoID,
			song.AlbumArtURL,
			audio,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders the seed and its related songs as a Markdown document with an optional cover image
func ExportToMarkdown(seed models.SongDetails, songs []models.EnrichedSong, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Songs like %s\n\n", seed.Title)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if seed.Artists != "" {
		fmt.Fprintf(&buf, "**Artists**: %s\n", seed.Artists)
	}
	if seed.VideoID != "" {
		fmt.Fprintf(&buf, "**Video ID**: %s\n", seed.VideoID)
	}
	fmt.Fprintf(&buf, "**Related**: %d\n\n", len(songs))

	buf.WriteString("## Related Songs\n\n")
	for i, song := range songs {
		fmt.Fprintf(&buf, "%d. %s - %s\n", rank(song, i), shared.JoinArtists(song.Artists), song.Title)
	}

	return buf.Bytes(), nil
}

// ExportToText renders the seed and its related songs as plain text
func ExportToText(seed models.SongDetails, songs []models.EnrichedSong) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Seed: %s\n", seed.Title)
	if seed.Artists != "" {
		fmt.Fprintf(&buf, "Artists: %s\n", seed.Artists)
	}
	fmt.Fprintf(&buf, "Related: %d\n", len(songs))

	for i, song := range songs {
		buf.WriteString("\n")
		buf.WriteString(FormatSongText(song, rank(song, i)))
	}

	return buf.Bytes(), nil
}

// rank prefers the index carried by the song and falls back to its position.
func rank(song models.EnrichedSong, i int) int {
	if song.Index > 0 {
		return song.Index
	}
	return i + 1
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(client *http.Client, url string) ([]byte, error) {
	if url == "" || url == models.NoAlbumArt {
		return nil, fmt.Errorf("%w: no image URL", shared.ErrMissingArgument)
	}

	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	SongsFile string
	SeedFile  string
}

// WriteCSVExport writes {base}_related.csv and {base}_seed.json.
//
// Defaults to the seed video ID as the base filename.
func WriteCSVExport(seed models.SongDetails, songs []models.EnrichedSong, base string) (*CSVExportResult, error) {
	if base == "" {
		base = seed.VideoID
	}

	csvData, err := ExportToCSV(songs)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	songsFile := base + "_related.csv"
	if err := os.WriteFile(songsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	seedJSON, err := FormatJSON(seed)
	if err != nil {
		return nil, err
	}

	seedFile := base + "_seed.json"
	if err := os.WriteFile(seedFile, seedJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write seed file: %w", err)
	}

	return &CSVExportResult{SongsFile: songsFile, SeedFile: seedFile}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport writes {dir}/README.md and, when the seed has album art, {dir}/cover.jpg.
//
// Directory name defaults to the seed video ID. A failed cover download is reported to warn and skipped.
func WriteMarkdownExport(client *http.Client, seed models.SongDetails, songs []models.EnrichedSong, outputDir string, warn io.Writer) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = seed.VideoID
	}
	if warn == nil {
		warn = io.Discard
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if seed.AlbumArt != "" && seed.AlbumArt != models.NoAlbumArt {
		imageData, err := DownloadImage(client, seed.AlbumArt)
		if err != nil {
			fmt.Fprintf(warn, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(warn, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(seed, songs, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, nil
}

// WriteTextExport writes the plain text rendering, defaulting to {seed.VideoID}_related.txt.
func WriteTextExport(seed models.SongDetails, songs []models.EnrichedSong, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_related.txt", seed.VideoID)
	}

	textData, err := ExportToText(seed, songs)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}
