package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tiksave/backend/internal/models"
)

func historyWith(records ...models.VideoRecord) *historyStub {
	entries := make(map[string]models.HistoryEntry, len(records))
	for _, record := range records {
		entries[record.ID] = models.HistoryEntry{CapturedAt: time.Now().UTC(), Record: record}
	}
	return &historyStub{entries: entries}
}

func TestDownloadCreateFromHistory(t *testing.T) {
	jobs := &jobStoreStub{}
	enqueuer := &enqueuerStub{}
	handler := DownloadHandler{Jobs: jobs, History: historyWith(testRecord()), Downloads: enqueuer}

	req := clientRequest(http.MethodPost, "/api/v1/downloads", `{"videoId":"7123","kind":"video"}`)
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var job models.DownloadJob
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if job.Status != models.JobStatusPending {
		t.Fatalf("job status = %q, want pending", job.Status)
	}
	if job.VideoID != "7123" || job.Kind != models.KindVideo {
		t.Fatalf("unexpected job: %+v", job)
	}
	if len(enqueuer.enqueued) != 1 {
		t.Fatalf("enqueued = %+v", enqueuer.enqueued)
	}
}

func TestDownloadCreateUnknownVideo(t *testing.T) {
	handler := DownloadHandler{Jobs: &jobStoreStub{}, History: historyWith(), Downloads: &enqueuerStub{}}

	req := clientRequest(http.MethodPost, "/api/v1/downloads", `{"videoId":"missing","kind":"video"}`)
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDownloadCreateInvalidKind(t *testing.T) {
	handler := DownloadHandler{Jobs: &jobStoreStub{}, History: historyWith(testRecord()), Downloads: &enqueuerStub{}}

	req := clientRequest(http.MethodPost, "/api/v1/downloads", `{"videoId":"7123","kind":"gif"}`)
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDownloadCreateSlideshowKindMismatch(t *testing.T) {
	slideshow := testRecord()
	slideshow.ID = "9001"
	slideshow.ImageURLs = []string{"https://cdn.tikwm.com/img/1.jpg"}

	handler := DownloadHandler{Jobs: &jobStoreStub{}, History: historyWith(testRecord(), slideshow), Downloads: &enqueuerStub{}}

	// Video kind against a slideshow post.
	req := clientRequest(http.MethodPost, "/api/v1/downloads", `{"videoId":"9001","kind":"video"}`)
	rec := httptest.NewRecorder()
	handler.Create(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("slideshow as video: status = %d, want 400", rec.Code)
	}

	// Slideshow kind against a plain video post.
	req = clientRequest(http.MethodPost, "/api/v1/downloads", `{"videoId":"7123","kind":"slideshow"}`)
	rec = httptest.NewRecorder()
	handler.Create(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("video as slideshow: status = %d, want 400", rec.Code)
	}
}

func TestDownloadCreateResolvesFreshURL(t *testing.T) {
	resolver := &resolverStub{record: testRecord()}
	jobs := &jobStoreStub{}
	handler := DownloadHandler{Jobs: jobs, History: historyWith(), Resolver: resolver, Downloads: &enqueuerStub{}}

	req := clientRequest(http.MethodPost, "/api/v1/downloads", `{"url":"https://www.tiktok.com/@user/video/7123","kind":"audio"}`)
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(resolver.calls) != 1 {
		t.Fatalf("resolver calls = %v", resolver.calls)
	}
	if len(jobs.created) != 1 || jobs.created[0].Kind != models.KindAudio {
		t.Fatalf("created = %+v", jobs.created)
	}
}

func TestDownloadCreateMissingSelector(t *testing.T) {
	handler := DownloadHandler{Jobs: &jobStoreStub{}, History: historyWith(), Downloads: &enqueuerStub{}}

	req := clientRequest(http.MethodPost, "/api/v1/downloads", `{"kind":"video"}`)
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDownloadStatus(t *testing.T) {
	job := models.DownloadJob{ID: "job-1", VideoID: "7123", Kind: models.KindVideo, Status: models.JobStatusReady, Location: "https://cdn.example.com/tiksave_7123_no_wm.mp4"}
	jobs := &jobStoreStub{jobs: map[string]models.DownloadJob{"job-1": job}}
	handler := DownloadHandler{Jobs: jobs}

	req := clientRequest(http.MethodGet, "/api/v1/downloads/job-1", "")
	rec := httptest.NewRecorder()
	handler.Status(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got models.DownloadJob
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != models.JobStatusReady || got.Location == "" {
		t.Fatalf("unexpected job: %+v", got)
	}
}

func TestDownloadStatusNotFound(t *testing.T) {
	handler := DownloadHandler{Jobs: &jobStoreStub{jobs: map[string]models.DownloadJob{}}}

	req := clientRequest(http.MethodGet, "/api/v1/downloads/missing", "")
	rec := httptest.NewRecorder()
	handler.Status(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDownloadList(t *testing.T) {
	jobs := &jobStoreStub{created: []models.DownloadJob{{ID: "job-1"}, {ID: "job-2"}}}
	handler := DownloadHandler{Jobs: jobs, Downloads: &enqueuerStub{}}

	req := clientRequest(http.MethodGet, "/api/v1/downloads", "")
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Downloads []models.DownloadJob `json:"downloads"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Downloads) != 2 {
		t.Fatalf("downloads = %+v", resp.Downloads)
	}
}
