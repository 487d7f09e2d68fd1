package services

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/ytradio/internal/shared"
)

func TestYTDLPResolver(t *testing.T) {
	t.Run("defaults format", func(t *testing.T) {
		r := NewYTDLPResolver(shared.YTDLPConfig{})
		if r.format != defaultFormat {
			t.Errorf("expected format %s, got %s", defaultFormat, r.format)
		}
	})

	tests := []struct {
		name    string
		out     string
		runErr  error
		want    string
		wantErr error
	}{
		{name: "single url", out: "https://media.test/a\n", want: "https://media.test/a"},
		{name: "skips noise", out: "\n[info] something\nhttps://media.test/b\nhttps://media.test/c\n", want: "https://media.test/b"},
		{name: "empty output", out: "", wantErr: shared.ErrMediaUnavailable},
		{name: "run failure", runErr: errors.New("exit status 1"), wantErr: shared.ErrMediaUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewYTDLPResolver(shared.YTDLPConfig{Format: "bestaudio"})

			var gotURL string
			r.run = func(ctx context.Context, url string) (string, error) {
				gotURL = url
				return tt.out, tt.runErr
			}

			got, err := r.Resolve(context.Background(), "vid1")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
			if gotURL != watchURL+"vid1" {
				t.Errorf("expected watch URL for vid1, got %s", gotURL)
			}
		})
	}

	t.Run("requires video ID", func(t *testing.T) {
		r := NewYTDLPResolver(shared.YTDLPConfig{})
		if _, err := r.Resolve(context.Background(), ""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
