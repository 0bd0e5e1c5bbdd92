package shares_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/docrelay/docrelay/internal/shares"
	"github.com/docrelay/docrelay/pkg/pagination"
	"github.com/docrelay/docrelay/pkg/routes"
)

// fakeSystem implements shares.System in memory with the same
// availability and authentication contract as the real system.
type fakeSystem struct {
	mu       sync.Mutex
	byCode   map[string]*shares.Share
	payloads map[string][]byte
	secrets  map[string]string
}

func newFakeSystem() *fakeSystem {
	return &fakeSystem{
		byCode:   make(map[string]*shares.Share),
		payloads: make(map[string][]byte),
		secrets:  make(map[string]string),
	}
}

func (f *fakeSystem) add(share shares.Share, payload []byte, password string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if share.ID == uuid.Nil {
		share.ID = uuid.New()
	}
	if share.AccessCode == "" {
		share.AccessCode, _ = shares.GenerateAccessCode()
	}
	if password != "" {
		hash := "protected"
		share.PasswordHash = &hash
		f.secrets[share.AccessCode] = password
	}

	f.byCode[share.AccessCode] = &share
	f.payloads[share.AccessCode] = payload
	return share.AccessCode
}

func (f *fakeSystem) Create(ctx context.Context, req shares.CreateRequest) (*shares.ShareView, error) {
	hasData := len(req.Data) > 0
	hasText := req.Text != ""
	if hasData == hasText || req.Filename == "" {
		return nil, shares.ErrInvalidShare
	}

	payload := req.Data
	if hasText {
		payload = []byte(req.Text)
	}

	share := shares.Share{
		Filename:      req.Filename,
		ContentType:   req.ContentType,
		Size:          int64(len(payload)),
		IsTextContent: hasText,
		Title:         req.Title,
		Description:   req.Description,
		CreatedAt:     time.Now(),
	}
	if req.TTLHours != nil {
		expires := time.Now().Add(time.Duration(*req.TTLHours) * time.Hour)
		share.ExpiresAt = &expires
	}
	share.MaxDownloads = req.MaxDownloads

	code := f.add(share, payload, req.Password)

	f.mu.Lock()
	defer f.mu.Unlock()
	view := f.byCode[code].View()
	return &view, nil
}

func (f *fakeSystem) List(ctx context.Context, page pagination.PageRequest) (pagination.PageResult[shares.ShareView], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	views := make([]shares.ShareView, 0, len(f.byCode))
	for _, share := range f.byCode {
		views = append(views, share.View())
	}

	return pagination.NewPageResult(views, len(views), page.Page, page.PageSize), nil
}

func (f *fakeSystem) Get(ctx context.Context, code string) (*shares.ShareView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	share, ok := f.byCode[code]
	if !ok {
		return nil, shares.ErrNotFound
	}
	if !share.Available(time.Now()) {
		return nil, shares.ErrUnavailable
	}

	view := share.View()
	return &view, nil
}

func (f *fakeSystem) Download(ctx context.Context, code, password string) (*shares.Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	share, ok := f.byCode[code]
	if !ok {
		return nil, shares.ErrNotFound
	}
	if share.Protected() && f.secrets[code] != password {
		return nil, shares.ErrAuthenticationFailed
	}
	if !share.Available(time.Now()) {
		return nil, shares.ErrUnavailable
	}

	share.DownloadCount++

	return &shares.Payload{
		Data:        f.payloads[code],
		Filename:    share.Filename,
		ContentType: share.ContentType,
	}, nil
}

func (f *fakeSystem) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for code, share := range f.byCode {
		if share.ID == id {
			delete(f.byCode, code)
			delete(f.payloads, code)
			return nil
		}
	}
	return shares.ErrNotFound
}

func (f *fakeSystem) PurgeExpired(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	purged := 0
	for code, share := range f.byCode {
		if share.Expired(time.Now()) {
			delete(f.byCode, code)
			delete(f.payloads, code)
			purged++
		}
	}
	return purged, nil
}

func newTestServer(system shares.System) *httptest.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := shares.NewHandler(system, 10<<20, pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}, logger)

	mux := http.NewServeMux()
	routes.Register(mux, handler.Routes())

	return httptest.NewServer(mux)
}

func TestCreateShareInlineText(t *testing.T) {
	server := newTestServer(newFakeSystem())
	defer server.Close()

	body := `{"text": "remember the milk", "ttl_hours": 2, "title": "note"}`
	resp, err := http.Post(server.URL+"/shares", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /shares: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var view shares.ShareView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(view.AccessCode) != 8 {
		t.Errorf("access code %q, want 8 characters", view.AccessCode)
	}
	if view.Filename != "share.txt" {
		t.Errorf("Filename = %q, want share.txt", view.Filename)
	}
	if view.ExpiresAt == nil {
		t.Error("ExpiresAt = nil, want set")
	}
	if !view.IsTextContent {
		t.Error("IsTextContent = false, want true")
	}
}

func TestCreateShareRejectsEmptyBody(t *testing.T) {
	server := newTestServer(newFakeSystem())
	defer server.Close()

	resp, err := http.Post(server.URL+"/shares", "application/json", strings.NewReader(`{"text": ""}`))
	if err != nil {
		t.Fatalf("POST /shares: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestTextShareRoundTrip(t *testing.T) {
	server := newTestServer(newFakeSystem())
	defer server.Close()

	const text = "meet at noon"

	resp, err := http.Post(server.URL+"/shares", "application/json",
		strings.NewReader(fmt.Sprintf(`{"text": %q}`, text)))
	if err != nil {
		t.Fatalf("POST /shares: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var view shares.ShareView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	dl, err := http.Post(server.URL+"/shares/"+view.AccessCode+"/download", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST download: %v", err)
	}
	defer dl.Body.Close()

	if dl.StatusCode != http.StatusOK {
		t.Fatalf("download status = %d, want 200", dl.StatusCode)
	}

	data, _ := io.ReadAll(dl.Body)
	if string(data) != text {
		t.Errorf("body = %q, want %q", data, text)
	}
	if ct := dl.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
}

func TestCreateShareMultipart(t *testing.T) {
	server := newTestServer(newFakeSystem())
	defer server.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "report.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("%PDF-fake"))
	w.WriteField("max_downloads", "3")
	w.WriteField("password", "sesame")
	w.Close()

	resp, err := http.Post(server.URL+"/shares", w.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST /shares: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var view shares.ShareView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if !view.Protected {
		t.Error("Protected = false, want true")
	}
	if view.MaxDownloads == nil || *view.MaxDownloads != 3 {
		t.Errorf("MaxDownloads = %v, want 3", view.MaxDownloads)
	}
}

func TestGetShare(t *testing.T) {
	fake := newFakeSystem()
	expires := time.Now().Add(time.Hour)
	code := fake.add(shares.Share{Filename: "doc.pdf", ExpiresAt: &expires}, []byte("data"), "")

	server := newTestServer(fake)
	defer server.Close()

	t.Run("found", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/shares/" + code)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/shares/NOPE1234")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})
}

func TestDownloadShare(t *testing.T) {
	fake := newFakeSystem()
	expires := time.Now().Add(time.Hour)
	expired := time.Now().Add(-time.Hour)

	open := fake.add(shares.Share{Filename: "open.txt", ContentType: "text/plain", ExpiresAt: &expires}, []byte("open data"), "")
	locked := fake.add(shares.Share{Filename: "locked.txt", ContentType: "text/plain", ExpiresAt: &expires}, []byte("locked data"), "sesame")
	gone := fake.add(shares.Share{Filename: "gone.txt", ExpiresAt: &expired}, []byte("old"), "")

	server := newTestServer(fake)
	defer server.Close()

	download := func(t *testing.T, code, password string) *http.Response {
		t.Helper()
		body, _ := json.Marshal(map[string]string{"password": password})
		resp, err := http.Post(server.URL+"/shares/"+code+"/download", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("POST download: %v", err)
		}
		return resp
	}

	t.Run("open share", func(t *testing.T) {
		resp := download(t, open, "")
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}

		data, _ := io.ReadAll(resp.Body)
		if string(data) != "open data" {
			t.Errorf("body = %q, want %q", data, "open data")
		}
		if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "open.txt") {
			t.Errorf("Content-Disposition = %q, want filename", cd)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := download(t, locked, "wrong")
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("correct password", func(t *testing.T) {
		resp := download(t, locked, "sesame")
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("expired share", func(t *testing.T) {
		resp := download(t, gone, "")
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusGone {
			t.Errorf("status = %d, want 410", resp.StatusCode)
		}
	})
}

func TestDownloadQuotaUnderContention(t *testing.T) {
	const quota = 5
	const attempts = quota + 10

	fake := newFakeSystem()
	max := quota
	code := fake.add(shares.Share{Filename: "hot.txt", MaxDownloads: &max}, []byte("hot"), "")

	server := newTestServer(fake)
	defer server.Close()

	statuses := make(chan int, attempts)
	var wg sync.WaitGroup

	for range attempts {
		wg.Go(func() {
			resp, err := http.Post(server.URL+"/shares/"+code+"/download", "application/json", strings.NewReader("{}"))
			if err != nil {
				statuses <- 0
				return
			}
			resp.Body.Close()
			statuses <- resp.StatusCode
		})
	}

	wg.Wait()
	close(statuses)

	succeeded, rejected := 0, 0
	for status := range statuses {
		switch status {
		case http.StatusOK:
			succeeded++
		case http.StatusGone:
			rejected++
		default:
			t.Errorf("unexpected status %d", status)
		}
	}

	if succeeded != quota {
		t.Errorf("%d downloads succeeded, want exactly %d", succeeded, quota)
	}
	if rejected != attempts-quota {
		t.Errorf("%d downloads rejected, want %d", rejected, attempts-quota)
	}
}

func TestDeleteShare(t *testing.T) {
	fake := newFakeSystem()
	code := fake.add(shares.Share{Filename: "bye.txt"}, []byte("x"), "")

	fake.mu.Lock()
	id := fake.byCode[code].ID
	fake.mu.Unlock()

	server := newTestServer(fake)
	defer server.Close()

	t.Run("invalid id", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, server.URL+"/shares/not-a-uuid", nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("DELETE: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("existing share", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/shares/%s", server.URL, id), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("DELETE: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("status = %d, want 204", resp.StatusCode)
		}
	})
}

func TestListShares(t *testing.T) {
	fake := newFakeSystem()
	fake.add(shares.Share{Filename: "a.txt"}, []byte("a"), "")
	fake.add(shares.Share{Filename: "b.txt"}, []byte("b"), "")

	server := newTestServer(fake)
	defer server.Close()

	resp, err := http.Get(server.URL + "/shares?page=1&page_size=10")
	if err != nil {
		t.Fatalf("GET /shares: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var result pagination.PageResult[shares.ShareView]
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if result.Total != 2 {
		t.Errorf("Total = %d, want 2", result.Total)
	}
}
