package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tiksave/backend/internal/models"
)

// Browser-shaped User-Agent; the lookup host serves plain bot agents a
// different (rate-limited) code path.
const lookupUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

const maxLookupBody = 10 << 20

// TikwmProvider resolves links through the public tikwm.com lookup API.
type TikwmProvider struct {
	BaseURL   string
	IncludeHD bool
	Client    *http.Client
}

// NewTikwmProvider constructs a provider against the given API base URL
// (for example "https://tikwm.com/api").
func NewTikwmProvider(baseURL string, includeHD bool, timeout time.Duration) *TikwmProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://tikwm.com/api"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &TikwmProvider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		IncludeHD: includeHD,
		Client:    &http.Client{Timeout: timeout},
	}
}

// lookupResponse is the subset of the tikwm response the service maps.
// Count fields are declared as any: the API returns numbers for most posts
// but pre-formatted strings ("1.2M") for very popular ones.
type lookupResponse struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data lookupVideoData `json:"data"`
}

type lookupVideoData struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Cover       string   `json:"cover"`
	OriginCover string   `json:"origin_cover"`
	Play        string   `json:"play"`
	Wmplay      string   `json:"wmplay"`
	Hdplay      string   `json:"hdplay"`
	Music       string   `json:"music"`
	Size        int64    `json:"size"`
	HdSize      int64    `json:"hd_size"`
	PlayCount   any      `json:"play_count"`
	DiggCount   any      `json:"digg_count"`
	Images      []string `json:"images"`
	Author      struct {
		Nickname string `json:"nickname"`
		Avatar   string `json:"avatar"`
	} `json:"author"`
}

type trendingResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Videos []lookupVideoData `json:"videos"`
	} `json:"data"`
}

// Resolve performs one lookup request and maps the response into a record.
func (p *TikwmProvider) Resolve(ctx context.Context, cleanURL string) (models.VideoRecord, error) {
	if p == nil {
		return models.VideoRecord{}, ErrProviderUnavailable
	}

	endpoint := fmt.Sprintf("%s/?url=%s", p.BaseURL, url.QueryEscape(cleanURL))
	if p.IncludeHD {
		endpoint += "&hd=1"
	}

	var payload lookupResponse
	if err := p.getJSON(ctx, endpoint, &payload); err != nil {
		return models.VideoRecord{}, err
	}

	if payload.Code != 0 {
		return models.VideoRecord{}, classify(payload.Code, payload.Msg)
	}

	return p.mapRecord(cleanURL, payload.Data), nil
}

// Trending performs a keyword search against the lookup host's feed
// endpoint and maps each result.
func (p *TikwmProvider) Trending(ctx context.Context, keywords string, count int) ([]models.VideoRecord, error) {
	if p == nil {
		return nil, ErrProviderUnavailable
	}
	if count <= 0 {
		count = 10
	}

	endpoint := fmt.Sprintf("%s/feed/search?keywords=%s&count=%d", p.BaseURL, url.QueryEscape(keywords), count)

	var payload trendingResponse
	if err := p.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	if payload.Code != 0 {
		return nil, classify(payload.Code, payload.Msg)
	}

	records := make([]models.VideoRecord, 0, len(payload.Data.Videos))
	for _, item := range payload.Data.Videos {
		records = append(records, p.mapRecord("", item))
	}
	return records, nil
}

func (p *TikwmProvider) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", lookupUserAgent)

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("lookup request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLookupBody))
	if err != nil {
		return fmt.Errorf("read lookup response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse lookup response: %w", err)
	}
	return nil
}

func (p *TikwmProvider) mapRecord(sourceURL string, data lookupVideoData) models.VideoRecord {
	record := models.VideoRecord{
		ID:               data.ID,
		SourceURL:        sourceURL,
		StandardMediaURL: p.absolutize(firstNonEmpty(data.Play, data.Wmplay)),
		HDMediaURL:       p.absolutize(data.Hdplay),
		AudioURL:         p.absolutize(data.Music),
		CoverImageURL:    p.absolutize(firstNonEmpty(data.Cover, data.OriginCover)),
		Title:            data.Title,
		Author: models.Author{
			DisplayName: data.Author.Nickname,
			AvatarURL:   p.absolutize(data.Author.Avatar),
		},
		Stats: models.Stats{
			PlayCount: formatCount(data.PlayCount),
			LikeCount: formatCount(data.DiggCount),
		},
		ApproxSizeBytes: data.Size,
		ApproxHDBytes:   data.HdSize,
	}

	for _, img := range data.Images {
		record.ImageURLs = append(record.ImageURLs, p.absolutize(img))
	}

	return record
}

// absolutize resolves host-relative media paths against the lookup host;
// tikwm returns them for proxied media variants.
func (p *TikwmProvider) absolutize(mediaURL string) string {
	if mediaURL == "" || !strings.HasPrefix(mediaURL, "/") {
		return mediaURL
	}
	base, err := url.Parse(p.BaseURL)
	if err != nil {
		return mediaURL
	}
	return base.Scheme + "://" + base.Host + mediaURL
}

// classify maps a non-success lookup response onto the error taxonomy.
// Matching is on message text because the upstream reuses the same
// numeric code for unrelated failures.
func classify(code int, msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "private"):
		return fmt.Errorf("%w: %s", ErrPrivateOrDeleted, msg)
	case strings.Contains(lower, "parsing") && strings.Contains(lower, "fail"):
		return fmt.Errorf("%w: %s", ErrRegionRestricted, msg)
	case strings.Contains(lower, "free api limit"):
		return fmt.Errorf("%w: %s", ErrRateLimited, msg)
	default:
		return &UpstreamError{Code: code, Message: msg}
	}
}

var countPrinter = message.NewPrinter(language.English)

// formatCount renders numeric counters with locale grouping ("1,000,000")
// and passes pre-formatted strings through unchanged.
func formatCount(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case float64:
		return countPrinter.Sprintf("%d", int64(n))
	case int64:
		return countPrinter.Sprintf("%d", n)
	case int:
		return countPrinter.Sprintf("%d", n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return countPrinter.Sprintf("%d", i)
		}
		return n.String()
	default:
		return fmt.Sprint(v)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var _ Provider = (*TikwmProvider)(nil)
var _ TrendingProvider = (*TikwmProvider)(nil)
