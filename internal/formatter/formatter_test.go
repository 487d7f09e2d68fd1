package formatter

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/ytradio/internal/models"
	"github.com/desertthunder/ytradio/internal/shared"
	th "github.com/desertthunder/ytradio/internal/testing"
)

func ptr(s string) *string { return &s }

func sampleSeed() models.SongDetails {
	return models.SongDetails{
		Title:    "Shape of You",
		Artists:  "Ed Sheeran",
		AlbumArt: models.NoAlbumArt,
		AudioURL: models.NoAudioURL,
		VideoID:  "X",
	}
}

func sampleSongs() []models.EnrichedSong {
	return []models.EnrichedSong{
		{
			Title:       "Perfect",
			Artists:     []string{"Ed Sheeran"},
			VideoID:     "t1",
			AlbumArtURL: "https://img.test/t1.jpg",
			AudioURL:    ptr("https://media.test/t1"),
			Featuring:   []string{},
			Index:       1,
		},
		{
			Title:       "River (feat. Ed Sheeran)",
			Artists:     []string{"Eminem", "Ed Sheeran"},
			VideoID:     "t2",
			AlbumArtURL: models.NoAlbumArt,
			Featuring:   []string{"Ed Sheeran"},
			Index:       2,
		},
	}
}

func TestFormatSongText(t *testing.T) {
	tests := []struct {
		name  string
		song  models.EnrichedSong
		index int
		want  string
	}{
		{
			name:  "with index",
			song:  sampleSongs()[0],
			index: 1,
			want:  "1. Perfect\n   Artists: Ed Sheeran\n",
		},
		{
			name:  "with featuring",
			song:  sampleSongs()[1],
			index: 2,
			want:  "2. River (feat. Ed Sheeran)\n   Artists: Eminem, Ed Sheeran\n   Featuring: Ed Sheeran\n",
		},
		{
			name:  "without index",
			song:  sampleSongs()[0],
			index: 0,
			want:  "Perfect\n   Artists: Ed Sheeran\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSongText(tt.song, tt.index); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFormatSeedText(t *testing.T) {
	seed := sampleSeed()
	seed.RequestedBy = "ed"

	output := FormatSeedText(seed)
	if !strings.HasPrefix(output, "Shape of You\n") {
		t.Errorf("expected title first, got %q", output)
	}
	if strings.Contains(output, "Audio:") {
		t.Error("sentinel audio URL must not be printed")
	}
	if !strings.Contains(output, "Requested by: ed") {
		t.Errorf("expected requester line, got %q", output)
	}

	seed.AudioURL = "https://media.test/X"
	if !strings.Contains(FormatSeedText(seed), "Audio: https://media.test/X") {
		t.Error("expected resolved audio URL to be printed")
	}
}

func TestExporters(t *testing.T) {
	t.Run("FormatJSON", func(t *testing.T) {
		data, err := FormatJSON(sampleSongs())
		if err != nil {
			t.Fatalf("FormatJSON failed: %v", err)
		}
		output := string(data)

		if !strings.HasSuffix(output, "\n") {
			t.Error("expected trailing newline")
		}
		if !strings.Contains(output, `"audio_url": null`) {
			t.Errorf("expected null audio URL for unresolved song, got %s", output)
		}
		if !strings.Contains(output, `"featuring": []`) {
			t.Errorf("expected empty featuring array, got %s", output)
		}

		if _, err := FormatJSON(func() {}); err == nil {
			t.Error("expected error for unsupported value")
		}
	})

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleSongs())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		output := string(data)

		if !strings.Contains(output, "Index,Title,Artists,Featuring,Video ID,Album Art,Audio URL") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,Perfect,Ed Sheeran,,t1,https://img.test/t1.jpg,https://media.test/t1") {
			t.Errorf("CSV missing first song, got: %s", output)
		}
		if !strings.Contains(output, `2,River (feat. Ed Sheeran),"Eminem, Ed Sheeran",Ed Sheeran,t2,No album art found,`) {
			t.Errorf("CSV missing second song, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		t.Run("without cover image", func(t *testing.T) {
			data, err := ExportToMarkdown(sampleSeed(), sampleSongs(), "")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}
			output := string(data)

			for _, want := range []string{
				"# Songs like Shape of You",
				"**Artists**: Ed Sheeran",
				"**Related**: 2",
				"## Related Songs",
				"1. Ed Sheeran - Perfect\n",
				"2. Eminem, Ed Sheeran - River (feat. Ed Sheeran)\n",
			} {
				if !strings.Contains(output, want) {
					t.Errorf("Markdown missing %q, got: %s", want, output)
				}
			}
			if strings.Contains(output, "![Cover]") {
				t.Error("unexpected cover reference")
			}
		})

		t.Run("with cover image", func(t *testing.T) {
			data, err := ExportToMarkdown(sampleSeed(), nil, "cover.jpg")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}
			if !strings.Contains(string(data), "![Cover](cover.jpg)") {
				t.Errorf("Markdown missing cover image reference")
			}
		})
	})

	t.Run("ExportToText", func(t *testing.T) {
		songs := sampleSongs()
		songs[1].Index = 0

		data, err := ExportToText(sampleSeed(), songs)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		output := string(data)

		if !strings.HasPrefix(output, "Seed: Shape of You\nArtists: Ed Sheeran\nRelated: 2\n") {
			t.Errorf("unexpected header, got %q", output)
		}
		if !strings.Contains(output, "\n1. Perfect\n") {
			t.Errorf("Text missing first song")
		}
		if !strings.Contains(output, "\n2. River") {
			t.Errorf("expected positional rank for unindexed song, got %q", output)
		}
	})
}

func TestDownloadImage(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		for _, url := range []string{"", models.NoAlbumArt} {
			_, err := DownloadImage(nil, url)
			if !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("DownloadImage(%q) should return ErrMissingArgument, got %v", url, err)
			}
		}
	})

	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpeg"))
		}))
		defer srv.Close()

		data, err := DownloadImage(srv.Client(), srv.URL+"/cover.jpg")
		if err != nil {
			t.Fatalf("DownloadImage failed: %v", err)
		}
		if string(data) != "jpeg" {
			t.Errorf("unexpected body %q", data)
		}
	})

	t.Run("BadStatus", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		if _, err := DownloadImage(srv.Client(), srv.URL); err == nil {
			t.Error("expected error for 404")
		}
	})

	t.Run("ReadFailure", func(t *testing.T) {
		client := &http.Client{Transport: th.NewMockRoundTripper(&http.Response{
			StatusCode: http.StatusOK,
			Body:       &th.FCloser{},
		}, nil)}

		if _, err := DownloadImage(client, "https://img.test/x.jpg"); err == nil {
			t.Error("expected read error")
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteCSVExport(sampleSeed(), sampleSongs(), "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.SongsFile != "X_related.csv" {
				t.Errorf("Expected songs file 'X_related.csv', got '%s'", result.SongsFile)
			}
			if result.SeedFile != "X_seed.json" {
				t.Errorf("Expected seed file 'X_seed.json', got '%s'", result.SeedFile)
			}

			th.AssertFileExists(t, result.SongsFile)
			seedContent := th.MustReadFile(t, result.SeedFile)
			if !strings.Contains(seedContent, `"videoId": "X"`) {
				t.Errorf("seed JSON missing video ID: %s", seedContent)
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "custom")

			result, err := WriteCSVExport(sampleSeed(), sampleSongs(), base)
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}
			if result.SongsFile != base+"_related.csv" {
				t.Errorf("unexpected songs file %s", result.SongsFile)
			}
			th.AssertFileExists(t, result.SongsFile)
			th.AssertFileExists(t, result.SeedFile)
		})

		t.Run("UnwritablePath", func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "missing", "dir", "x")
			if _, err := WriteCSVExport(sampleSeed(), sampleSongs(), base); err == nil {
				t.Error("expected write error")
			}
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Run("WithoutCover", func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "export")

			result, err := WriteMarkdownExport(nil, sampleSeed(), sampleSongs(), dir, nil)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if result.Directory != dir {
				t.Errorf("Expected directory %q, got %q", dir, result.Directory)
			}
			if result.CoverImage != "" {
				t.Errorf("Expected no cover image, got '%s'", result.CoverImage)
			}
			content := th.MustReadFile(t, filepath.Join(dir, "README.md"))
			if !strings.Contains(content, "# Songs like Shape of You") {
				t.Errorf("Markdown missing title")
			}
		})

		t.Run("WithCover", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("jpeg"))
			}))
			defer srv.Close()

			seed := sampleSeed()
			seed.AlbumArt = srv.URL + "/art.jpg"
			dir := t.TempDir()

			result, err := WriteMarkdownExport(srv.Client(), seed, sampleSongs(), dir, nil)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if result.CoverImage != filepath.Join(dir, "cover.jpg") {
				t.Errorf("unexpected cover path %q", result.CoverImage)
			}
			if len(result.Files) != 2 {
				t.Errorf("expected cover and README, got %v", result.Files)
			}
			if !strings.Contains(th.MustReadFile(t, filepath.Join(dir, "README.md")), "![Cover](cover.jpg)") {
				t.Error("README missing cover reference")
			}
		})

		t.Run("CoverFailureWarns", func(t *testing.T) {
			srv := httptest.NewServer(http.NotFoundHandler())
			defer srv.Close()

			seed := sampleSeed()
			seed.AlbumArt = srv.URL + "/art.jpg"

			var warn strings.Builder
			result, err := WriteMarkdownExport(srv.Client(), seed, nil, t.TempDir(), &warn)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if result.CoverImage != "" {
				t.Error("expected no cover image")
			}
			if !strings.Contains(warn.String(), "Warning: failed to download cover image") {
				t.Errorf("expected warning, got %q", warn.String())
			}
		})
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "songs.txt")

		written, err := WriteTextExport(sampleSeed(), sampleSongs(), path)
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}
		if written != path {
			t.Errorf("expected %s, got %s", path, written)
		}
		if !strings.Contains(th.MustReadFile(t, path), "Seed: Shape of You") {
			t.Error("text export missing seed")
		}
	})
}
