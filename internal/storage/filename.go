package storage

import (
	"fmt"
	"strings"

	"github.com/tiksave/backend/internal/models"
)

const (
	filenamePrefix   = "tiksave"
	maxTitleFragment = 40
)

// BuildFilename derives a stable, collision-resistant filename for one
// media variant of a record: fixed prefix, record id, sanitized title
// fragment, quality suffix, and an extension chosen by media kind. Two
// records sharing a title still differ through the id component.
func BuildFilename(record models.VideoRecord, kind models.MediaKind) string {
	parts := []string{filenamePrefix, record.ID}
	if fragment := sanitizeTitle(record.Title); fragment != "" {
		parts = append(parts, fragment)
	}
	if suffix := kindSuffix(kind); suffix != "" {
		parts = append(parts, suffix)
	}
	return strings.Join(parts, "_") + "." + KindExtension(kind)
}

// BuildImageFilename names one slideshow image by its position.
func BuildImageFilename(index int) string {
	return fmt.Sprintf("image_%03d.jpg", index)
}

// KindExtension returns the file extension for a media kind.
func KindExtension(kind models.MediaKind) string {
	switch kind {
	case models.KindAudio:
		return "mp3"
	case models.KindSlideshow:
		return "zip"
	default:
		return "mp4"
	}
}

// KindContentType returns the declared content type for a media kind. The
// explicit declaration is what forces save-to-disk behavior downstream
// instead of inline playback.
func KindContentType(kind models.MediaKind) string {
	switch kind {
	case models.KindAudio:
		return "audio/mpeg"
	case models.KindSlideshow:
		return "application/zip"
	default:
		return "video/mp4"
	}
}

func kindSuffix(kind models.MediaKind) string {
	switch kind {
	case models.KindVideoHD:
		return "hd"
	case models.KindVideo:
		return "no_wm"
	case models.KindAudio:
		return "audio"
	case models.KindSlideshow:
		return "slideshow"
	default:
		return ""
	}
}

// sanitizeTitle keeps only alphanumeric runs from the title, joined by
// underscores and capped in length so filesystem limits are never hit.
func sanitizeTitle(title string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range title {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
		if b.Len() >= maxTitleFragment {
			break
		}
	}
	return strings.Trim(b.String(), "_")
}
