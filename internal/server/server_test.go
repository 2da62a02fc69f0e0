package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/lease-extractor/constants"
	"github.com/joseph-ayodele/lease-extractor/internal/common"
	"github.com/joseph-ayodele/lease-extractor/internal/entity"
	"github.com/joseph-ayodele/lease-extractor/internal/extract"
	"github.com/joseph-ayodele/lease-extractor/internal/repository"
)

type fakeExtractor struct {
	rec   entity.PropertyRecord
	panic bool
	calls int
}

func (f *fakeExtractor) ExtractWithOutcome(_ context.Context, _ string) (entity.PropertyRecord, extract.Outcome) {
	f.calls++
	if f.panic {
		panic("extractor exploded")
	}
	return f.rec, extract.Outcome{Mode: constants.ParseModeJSON, Provider: "fake", Model: "fake-1", Elapsed: 5 * time.Millisecond}
}

type fakeRecorder struct {
	mu  sync.Mutex
	got []*entity.Extraction
}

func (f *fakeRecorder) Enqueue(e *entity.Extraction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, e)
	return nil
}

type failingRecorder struct{}

func (failingRecorder) Enqueue(*entity.Extraction) error { return errors.New("history queue full") }

type fakeHistory struct {
	rows   []*entity.Extraction
	filter repository.ListFilter
}

func (f *fakeHistory) Save(context.Context, *entity.Extraction) error { return nil }
func (f *fakeHistory) Get(_ context.Context, id uuid.UUID) (*entity.Extraction, error) {
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, common.NotFoundError("extraction not found")
}
func (f *fakeHistory) List(_ context.Context, lf repository.ListFilter) ([]*entity.Extraction, error) {
	f.filter = lf
	return f.rows, nil
}

type fakeExporter struct{ from, to *time.Time }

func (f *fakeExporter) ExportExtractionsXLSX(_ context.Context, from, to *time.Time) ([]byte, error) {
	f.from, f.to = from, to
	return []byte("PK-xlsx"), nil
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var resp response
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v (%s)", err, rr.Body.String())
		}
	}
	return rr, resp
}

func TestExtractAddressBadRequests(t *testing.T) {
	fx := &fakeExtractor{}
	h := NewRouter(Options{Extractor: fx})

	cases := []struct {
		name string
		body string
		want string
	}{
		{"empty object", `{}`, msgMissingText},
		{"no body", ``, msgMissingText},
		{"invalid json", `{"text":`, msgMissingText},
		{"not an object", `["text"]`, msgMissingText},
		{"whitespace text", `{"text":"  "}`, msgEmptyText},
		{"empty text", `{"text":""}`, msgEmptyText},
		{"number text", `{"text":42}`, msgTextType},
		{"null text", `{"text":null}`, msgTextType},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rr, resp := do(t, h, http.MethodPost, "/extract-address", c.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rr.Code)
			}
			if resp.Success || resp.Error != c.want {
				t.Errorf("resp = %+v", resp)
			}
		})
	}
	if fx.calls != 0 {
		t.Errorf("extractor called %d times on bad input", fx.calls)
	}
}

func TestExtractAddressOK(t *testing.T) {
	rec := entity.FallbackRecord()
	rec.AddressData.City = "Springfield"
	fx := &fakeExtractor{rec: rec}
	fr := &fakeRecorder{}
	h := NewRouter(Options{Extractor: fx, Recorder: fr})

	req := httptest.NewRequest(http.MethodPost, "/extract-address", strings.NewReader(`{"text":"Springfield, IL"}`))
	req.Header.Set(RequestIDHeader, "req-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get(RequestIDHeader) != "req-123" {
		t.Errorf("request id header = %q", rr.Header().Get(RequestIDHeader))
	}
	var resp struct {
		Success bool                  `json:"success"`
		Data    entity.PropertyRecord `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Data.AddressData.City != "Springfield" || resp.Data.AddressData.Country != "USA" {
		t.Errorf("resp = %+v", resp)
	}

	if len(fr.got) != 1 {
		t.Fatalf("recorded %d extractions", len(fr.got))
	}
	e := fr.got[0]
	if e.RequestID != "req-123" || e.ParseMode != "JSON" || e.InputText != "Springfield, IL" || e.ElapsedMs != 5 {
		t.Errorf("extraction = %+v", e)
	}
}

func TestExtractAddressLogsSkippedHistory(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := NewRouter(Options{Extractor: &fakeExtractor{}, Recorder: failingRecorder{}, Logger: logger})

	req := httptest.NewRequest(http.MethodPost, "/extract-address", strings.NewReader(`{"text":"lease"}`))
	req.Header.Set(RequestIDHeader, "req-full")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var found bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry["msg"] == "history.enqueue.skipped" {
			found = true
			if entry["request_id"] != "req-full" || entry["error"] != "history queue full" {
				t.Errorf("entry = %v", entry)
			}
		}
	}
	if !found {
		t.Errorf("skipped enqueue not logged: %s", buf.String())
	}
}

func TestExtractAddressPanicIs500(t *testing.T) {
	h := NewRouter(Options{Extractor: &fakeExtractor{panic: true}})
	rr, resp := do(t, h, http.MethodPost, "/extract-address", `{"text":"lease"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp.Success || resp.Error != "extractor exploded" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHealth(t *testing.T) {
	h := NewRouter(Options{Extractor: &fakeExtractor{}})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var got map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got["status"] != "healthy" || got["service"] != "address_extractor" {
		t.Errorf("health = %v", got)
	}
}

func TestCORS(t *testing.T) {
	h := NewRouter(Options{Extractor: &fakeExtractor{}})
	req := httptest.NewRequest(http.MethodOptions, "/extract-address", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin = %q", got)
	}
}

func TestHistoryRoutesDisabledWithoutStore(t *testing.T) {
	h := NewRouter(Options{Extractor: &fakeExtractor{}})
	req := httptest.NewRequest(http.MethodGet, "/extractions", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestHistoryRoutes(t *testing.T) {
	row := &entity.Extraction{ID: uuid.New(), CreatedAt: time.Now().UTC(), Provider: "openai", ParseMode: "REGEX"}
	hist := &fakeHistory{rows: []*entity.Extraction{row}}
	exp := &fakeExporter{}
	h := NewRouter(Options{Extractor: &fakeExtractor{}, History: hist, Exporter: exp})

	t.Run("list", func(t *testing.T) {
		rr, resp := do(t, h, http.MethodGet, "/extractions?limit=5&from=2024-01-01&to=2024-01-31", "")
		if rr.Code != http.StatusOK || !resp.Success {
			t.Fatalf("status = %d resp=%+v", rr.Code, resp)
		}
		var rows []entity.Extraction
		if err := json.Unmarshal(resp.Data, &rows); err != nil || len(rows) != 1 {
			t.Fatalf("rows = %v err=%v", rows, err)
		}
		if hist.filter.Limit != 5 || !hist.filter.To.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("filter = %+v", hist.filter)
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		rr, _ := do(t, h, http.MethodGet, "/extractions?limit=zero", "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rr.Code)
		}
	})

	t.Run("get", func(t *testing.T) {
		rr, resp := do(t, h, http.MethodGet, "/extractions/"+row.ID.String(), "")
		if rr.Code != http.StatusOK || !bytes.Contains(resp.Data, []byte(row.ID.String())) {
			t.Errorf("status = %d data=%s", rr.Code, resp.Data)
		}
	})

	t.Run("get bad id", func(t *testing.T) {
		rr, _ := do(t, h, http.MethodGet, "/extractions/not-a-uuid", "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rr.Code)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		rr, resp := do(t, h, http.MethodGet, "/extractions/"+uuid.New().String(), "")
		if rr.Code != http.StatusNotFound || resp.Error != "extraction not found" {
			t.Errorf("status = %d resp=%+v", rr.Code, resp)
		}
	})

	t.Run("export", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/extractions/export.xlsx?from=2024-03-01", nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != xlsxContentType {
			t.Fatalf("status = %d ct=%s", rr.Code, rr.Header().Get("Content-Type"))
		}
		if rr.Body.String() != "PK-xlsx" {
			t.Errorf("body = %q", rr.Body.String())
		}
		if exp.from == nil || exp.to != nil {
			t.Errorf("window = %v..%v", exp.from, exp.to)
		}
	})

	t.Run("export bad date", func(t *testing.T) {
		rr, _ := do(t, h, http.MethodGet, "/extractions/export.xlsx?to=31-01-2024", "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rr.Code)
		}
	})
}

func TestParseDateWindow(t *testing.T) {
	if _, _, err := parseDateWindow("2024-02-01", "2024-01-01"); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("reversed window err = %v", err)
	}
	from, to, err := parseDateWindow("", "")
	if err != nil || from != nil || to != nil {
		t.Errorf("empty window = %v %v %v", from, to, err)
	}
}
