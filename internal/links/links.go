// Package links extracts and validates TikTok URLs from arbitrary pasted
// or shared text.
package links

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyInput indicates the input was blank.
	ErrEmptyInput = errors.New("input is empty")
	// ErrWrongDomain indicates no recognized TikTok domain appears anywhere
	// in the input. Callers must not contact the lookup API in this case.
	ErrWrongDomain = errors.New("input does not contain a tiktok.com link")
	// ErrNoURLFound indicates the domain appears but no extractable URL does.
	ErrNoURLFound = errors.New("no extractable url found")
	// ErrProfileLink indicates the extracted URL points at a user profile
	// rather than a specific post. Advisory: whether it blocks submission
	// is a caller decision.
	ErrProfileLink = errors.New("url is a profile link, not a video link")
)

var (
	urlPattern = regexp.MustCompile(`https?://(?:www\.|vm\.|vt\.|m\.)?tiktok\.com/[^\s]*`)
	// Bare profile: /@user with nothing after it that identifies a post.
	profilePattern = regexp.MustCompile(`^https?://(?:www\.|m\.)?tiktok\.com/@[\w.-]+/?(?:\?[^/]*)?$`)
)

// Punctuation commonly glued onto the end of a pasted share message.
const trailingPunctuation = ").,!?;:'\""

// Extract locates the first TikTok URL inside rawText, strips trailing
// punctuation that is not part of the URL, and returns it. It is pure and
// performs no network I/O.
//
// A non-nil error of kind ErrProfileLink still returns the extracted URL;
// the caller chooses whether to treat it as fatal.
func Extract(rawText string) (string, error) {
	trimmed := strings.TrimSpace(rawText)
	if trimmed == "" {
		return "", ErrEmptyInput
	}

	if !strings.Contains(trimmed, "tiktok.com") {
		return "", ErrWrongDomain
	}

	match := urlPattern.FindString(trimmed)
	if match == "" {
		return "", ErrNoURLFound
	}

	cleaned := strings.TrimRight(match, trailingPunctuation)
	if cleaned == "" {
		return "", ErrNoURLFound
	}

	if profilePattern.MatchString(cleaned) {
		return cleaned, ErrProfileLink
	}

	return cleaned, nil
}
