package models

import "time"

// VideoRecord is the normalized result of resolving one TikTok link.
type VideoRecord struct {
	ID               string   `json:"id"`
	SourceURL        string   `json:"sourceUrl"`
	StandardMediaURL string   `json:"standardMediaUrl,omitempty"`
	HDMediaURL       string   `json:"hdMediaUrl,omitempty"`
	AudioURL         string   `json:"audioUrl,omitempty"`
	ImageURLs        []string `json:"imageUrls,omitempty"`
	CoverImageURL    string   `json:"coverImageUrl,omitempty"`
	Title            string   `json:"title"`
	Author           Author   `json:"author"`
	Stats            Stats    `json:"stats"`
	ApproxSizeBytes  int64    `json:"approxSizeBytes,omitempty"`
	ApproxHDBytes    int64    `json:"approxHdSizeBytes,omitempty"`
}

// Author holds display-only creator details.
type Author struct {
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// Stats holds pre-formatted, display-only counters.
type Stats struct {
	PlayCount string `json:"playCount"`
	LikeCount string `json:"likeCount"`
}

// IsSlideshow reports whether the record is an image post. Slideshow
// records may still carry video URLs from the upstream API, but those are
// not usable for playback and must be ignored in favor of the image set.
func (r VideoRecord) IsSlideshow() bool {
	return len(r.ImageURLs) > 0
}

// HistoryEntry pairs a resolved record with the moment it was captured.
// Entries are owned by the history store: created on successful
// resolution, replaced on duplicate video id, trimmed to the configured
// maximum, and deleted wholesale on clear.
type HistoryEntry struct {
	CapturedAt time.Time   `json:"capturedAt"`
	Record     VideoRecord `json:"record"`
}

// Settings is the per-client preference set, loaded with defaults when
// absent and persisted on every change.
type Settings struct {
	Theme         string `json:"theme"`
	AutoDownload  bool   `json:"autoDownload"`
	Language      string `json:"language"`
	TutorialSeen  bool   `json:"tutorialSeen"`
	DownloadCount int64  `json:"downloadCount"`
}

// DefaultSettings returns the values used before a client has saved
// anything. Theme "system" defers to the client's platform preference.
func DefaultSettings() Settings {
	return Settings{Theme: "system", Language: "en"}
}

// MediaKind selects which variant of a record's media to download.
type MediaKind string

const (
	KindVideo     MediaKind = "video"
	KindVideoHD   MediaKind = "video_hd"
	KindAudio     MediaKind = "audio"
	KindSlideshow MediaKind = "slideshow"
)

// Valid reports whether the kind is one of the supported variants.
func (k MediaKind) Valid() bool {
	switch k {
	case KindVideo, KindVideoHD, KindAudio, KindSlideshow:
		return true
	}
	return false
}

// DownloadJob tracks one background media download from enqueue to
// completion.
type DownloadJob struct {
	ID          string     `json:"id"`
	ClientID    string     `json:"-"`
	VideoID     string     `json:"videoId"`
	Kind        MediaKind  `json:"kind"`
	Status      string     `json:"status"`
	Location    string     `json:"location,omitempty"`
	SizeBytes   int64      `json:"sizeBytes,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

const (
	JobStatusPending = "pending"
	JobStatusReady   = "ready"
	JobStatusFailed  = "failed"
)

// Client is an anonymous registered device. The token scopes history,
// favorites, and settings the way a browser origin scoped localStorage.
type Client struct {
	ID        string
	Token     string
	CreatedAt time.Time
	LastSeen  time.Time
}
