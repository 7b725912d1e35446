package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
)

type fetcherStub struct {
	mu      sync.Mutex
	calls   []string
	payload map[string][]byte
	fail    map[string]error
}

func (f *fetcherStub) Fetch(_ context.Context, mediaURL string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, mediaURL)
	f.mu.Unlock()
	if err, ok := f.fail[mediaURL]; ok {
		return nil, err
	}
	if body, ok := f.payload[mediaURL]; ok {
		return body, nil
	}
	return nil, errors.New("unexpected url")
}

func readArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	entries := make(map[string][]byte)
	for _, file := range reader.File {
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", file.Name, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", file.Name, err)
		}
		entries[file.Name] = body
	}
	return entries
}

func TestArchiveImagesPackagesAllImages(t *testing.T) {
	stub := &fetcherStub{payload: map[string][]byte{
		"https://cdn.example/a.jpg": []byte("first"),
		"https://cdn.example/b.jpg": []byte("second"),
		"https://cdn.example/c.jpg": []byte("third"),
	}}
	archiver := NewArchiver(stub)

	data, err := archiver.ArchiveImages(context.Background(), []string{
		"https://cdn.example/a.jpg",
		"https://cdn.example/b.jpg",
		"https://cdn.example/c.jpg",
	})
	if err != nil {
		t.Fatalf("ArchiveImages returned error: %v", err)
	}

	entries := readArchive(t, data)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := map[string]string{
		"image_001.jpg": "first",
		"image_002.jpg": "second",
		"image_003.jpg": "third",
	}
	for name, body := range want {
		if string(entries[name]) != body {
			t.Errorf("entry %s = %q, want %q", name, entries[name], body)
		}
	}
}

func TestArchiveImagesSkipsFailedImages(t *testing.T) {
	stub := &fetcherStub{
		payload: map[string][]byte{
			"https://cdn.example/a.jpg": []byte("first"),
			"https://cdn.example/c.jpg": []byte("third"),
		},
		fail: map[string]error{
			"https://cdn.example/b.jpg": errors.New("origin refused"),
		},
	}
	archiver := NewArchiver(stub)

	data, err := archiver.ArchiveImages(context.Background(), []string{
		"https://cdn.example/a.jpg",
		"https://cdn.example/b.jpg",
		"https://cdn.example/c.jpg",
	})
	if err != nil {
		t.Fatalf("ArchiveImages returned error: %v", err)
	}

	entries := readArchive(t, data)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Numbering stays sequential even when an image in the middle drops out.
	if string(entries["image_001.jpg"]) != "first" {
		t.Errorf("image_001.jpg = %q, want %q", entries["image_001.jpg"], "first")
	}
	if string(entries["image_002.jpg"]) != "third" {
		t.Errorf("image_002.jpg = %q, want %q", entries["image_002.jpg"], "third")
	}
}

func TestArchiveImagesAllFailed(t *testing.T) {
	stub := &fetcherStub{fail: map[string]error{
		"https://cdn.example/a.jpg": errors.New("origin refused"),
		"https://cdn.example/b.jpg": errors.New("origin refused"),
	}}
	archiver := NewArchiver(stub)

	if _, err := archiver.ArchiveImages(context.Background(), []string{
		"https://cdn.example/a.jpg",
		"https://cdn.example/b.jpg",
	}); !errors.Is(err, ErrNoImages) {
		t.Fatalf("expected ErrNoImages, got %v", err)
	}
}

func TestArchiveImagesEmptyInput(t *testing.T) {
	archiver := NewArchiver(&fetcherStub{})
	if _, err := archiver.ArchiveImages(context.Background(), nil); !errors.Is(err, ErrNoImages) {
		t.Fatalf("expected ErrNoImages, got %v", err)
	}
}

func TestArchiveImagesBoundsConcurrency(t *testing.T) {
	payload := make(map[string][]byte)
	urls := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		u := fmt.Sprintf("https://cdn.example/%d.jpg", i)
		urls = append(urls, u)
		payload[u] = []byte("img")
	}
	stub := &fetcherStub{payload: payload}
	archiver := &Archiver{Fetcher: stub, MaxConcurrent: 2}

	data, err := archiver.ArchiveImages(context.Background(), urls)
	if err != nil {
		t.Fatalf("ArchiveImages returned error: %v", err)
	}
	if entries := readArchive(t, data); len(entries) != 8 {
		t.Fatalf("expected 8 entries, got %d", len(entries))
	}
	if len(stub.calls) != 8 {
		t.Fatalf("expected 8 fetches, got %d", len(stub.calls))
	}
}
