package links

import (
	"errors"
	"testing"
)

func TestExtractFromSurroundingProse(t *testing.T) {
	got, err := Extract("check this out https://vt.tiktok.com/ZSabc123/ lol")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://vt.tiktok.com/ZSabc123/" {
		t.Fatalf("unexpected url: %q", got)
	}
}

func TestExtractStripsTrailingPunctuation(t *testing.T) {
	cases := map[string]string{
		"see (https://www.tiktok.com/@bob/video/123).":        "https://www.tiktok.com/@bob/video/123",
		"https://vm.tiktok.com/ZMabc/,":                       "https://vm.tiktok.com/ZMabc/",
		"wow! https://tiktok.com/@a/video/9?is_copy_url=1!!":  "https://tiktok.com/@a/video/9?is_copy_url=1",
		"https://m.tiktok.com/v/7123456789.html;":             "https://m.tiktok.com/v/7123456789.html",
		"\"https://www.tiktok.com/@user/photo/456\" was good": "https://www.tiktok.com/@user/photo/456",
	}

	for input, want := range cases {
		got, err := Extract(input)
		if err != nil {
			t.Fatalf("Extract(%q): unexpected error: %v", input, err)
		}
		if got != want {
			t.Fatalf("Extract(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestExtractEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t"} {
		if _, err := Extract(input); !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("Extract(%q) = %v, want ErrEmptyInput", input, err)
		}
	}
}

func TestExtractWrongDomain(t *testing.T) {
	inputs := []string{
		"https://youtube.com/watch?v=abc",
		"just some text with no link at all",
		"https://tiktak.com/@user/video/1",
	}
	for _, input := range inputs {
		if _, err := Extract(input); !errors.Is(err, ErrWrongDomain) {
			t.Fatalf("Extract(%q) = %v, want ErrWrongDomain", input, err)
		}
	}
}

func TestExtractNoURLFound(t *testing.T) {
	// Domain mentioned but never as part of a URL.
	if _, err := Extract("search for tiktok.com in your browser"); !errors.Is(err, ErrNoURLFound) {
		t.Fatalf("expected ErrNoURLFound, got %v", err)
	}
}

func TestExtractProfileLinkIsAdvisory(t *testing.T) {
	got, err := Extract("follow me https://www.tiktok.com/@someuser")
	if !errors.Is(err, ErrProfileLink) {
		t.Fatalf("expected ErrProfileLink, got %v", err)
	}
	if got != "https://www.tiktok.com/@someuser" {
		t.Fatalf("expected url alongside advisory error, got %q", got)
	}

	// A full video link under a profile path is not a profile link.
	if _, err := Extract("https://www.tiktok.com/@someuser/video/7123"); err != nil {
		t.Fatalf("video link flagged as profile: %v", err)
	}
}
