package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tiksave/backend/internal/models"
)

func TestBuildFilenameComponents(t *testing.T) {
	record := models.VideoRecord{ID: "7123", Title: "Cat video! (funny)"}

	got := BuildFilename(record, models.KindVideoHD)
	if got != "tiksave_7123_Cat_video_funny_hd.mp4" {
		t.Fatalf("unexpected filename: %q", got)
	}

	if got := BuildFilename(record, models.KindAudio); !strings.HasSuffix(got, "_audio.mp3") {
		t.Fatalf("unexpected audio filename: %q", got)
	}
	if got := BuildFilename(record, models.KindSlideshow); !strings.HasSuffix(got, "_slideshow.zip") {
		t.Fatalf("unexpected archive filename: %q", got)
	}
}

func TestBuildFilenameDisambiguatesById(t *testing.T) {
	a := models.VideoRecord{ID: "111", Title: "same title"}
	b := models.VideoRecord{ID: "222", Title: "same title"}

	if BuildFilename(a, models.KindVideo) == BuildFilename(b, models.KindVideo) {
		t.Fatal("records with identical titles must produce distinct filenames")
	}
}

func TestBuildFilenameCapsTitleLength(t *testing.T) {
	record := models.VideoRecord{ID: "1", Title: strings.Repeat("verylongtitle ", 20)}
	name := BuildFilename(record, models.KindVideo)
	if len(name) > 80 {
		t.Fatalf("filename not length-capped: %d chars", len(name))
	}
}

func TestBuildFilenameEmptyTitle(t *testing.T) {
	record := models.VideoRecord{ID: "9", Title: "日本語のみ"}
	if got := BuildFilename(record, models.KindVideo); got != "tiksave_9_no_wm.mp4" {
		t.Fatalf("unexpected filename for non-latin title: %q", got)
	}
}

func TestLocalStorageSaveAndReject(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	location, err := store.Save(context.Background(), "tiksave_1.mp4", "video/mp4", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if location != filepath.Join(dir, "tiksave_1.mp4") {
		t.Fatalf("unexpected location: %q", location)
	}

	data, err := os.ReadFile(location)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(data) != "bytes" {
		t.Fatalf("unexpected contents: %q", data)
	}

	for _, name := range []string{"../escape.mp4", "a/b.mp4", `a\b.mp4`} {
		if _, err := store.Save(context.Background(), name, "video/mp4", strings.NewReader("x")); err == nil {
			t.Fatalf("expected rejection for name %q", name)
		}
	}
}
