package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"paper-review/internal/shared/server/middleware"
	"paper-review/internal/uploads"
)

const citationReport = `{
  "citation": {"errors": [{"errorCategory": "Citation/Reference Issues", "issue": "Future-dated references.", "implications": "Undermines credibility.", "recommendation": "Cite published work."}]},
  "summary": {"title": "A Paper", "authors": "A. Author", "published": "8 Jan 2025", "errorCount": "1"},
  "pdf_name": "paper.pdf",
  "timestamp": "2025-01-12T08:35:36"
}`

type senderFunc func(ctx context.Context, file uploads.File, progress uploads.ProgressFunc) (*uploads.Response, error)

func (f senderFunc) Send(ctx context.Context, file uploads.File, progress uploads.ProgressFunc) (*uploads.Response, error) {
	return f(ctx, file, progress)
}

func replyWith(status int, contentType, body string) senderFunc {
	return func(_ context.Context, file uploads.File, progress uploads.ProgressFunc) (*uploads.Response, error) {
		if progress != nil {
			progress(file.Size(), file.Size())
		}
		return &uploads.Response{StatusCode: status, ContentType: contentType, Body: []byte(body), BytesSent: file.Size()}, nil
	}
}

type testApp struct {
	router *gin.Engine
	cookie *http.Cookie
}

func newTestApp(t *testing.T, sender uploads.Sender, maxBytes int64) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sessions := NewSessions(func() *uploads.Controller {
		return uploads.NewController(sender, 0)
	})
	h := NewHandler(sessions, maxBytes)
	r := gin.New()
	r.Use(middleware.Session())
	r.SetHTMLTemplate(Templates())
	h.RegisterRoutes(r)
	return &testApp{router: r}
}

func (a *testApp) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if a.cookie != nil {
		req.AddCookie(a.cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			a.cookie = c
		}
	}
	return w
}

func (a *testApp) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	return a.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *testApp) postJSON(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.Header.Set("Accept", "application/json")
	return a.do(t, req)
}

func (a *testApp) selectFile(t *testing.T, name string, data []byte, accept string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write(data)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/select", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return a.do(t, req)
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return payload.Error.Code
}

func TestIndexShowsUploadForm(t *testing.T) {
	app := newTestApp(t, replyWith(http.StatusOK, "application/json", citationReport), 0)

	w := app.get(t, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Let's Check Your Paper!", `name="file"`, "drag and drop"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected page to contain %q", want)
		}
	}
	if !strings.Contains(body, `id="upload-button" disabled`) {
		t.Fatalf("expected upload button disabled without a file")
	}
	if app.cookie == nil {
		t.Fatalf("expected session cookie")
	}
}

func TestSelectShowsFileInfo(t *testing.T) {
	app := newTestApp(t, replyWith(http.StatusOK, "application/json", citationReport), 0)

	data := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{'x'}, 1<<20)...)
	w := app.selectFile(t, "paper.pdf", data, "")
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got %d %q", w.Code, w.Header().Get("Location"))
	}

	body := app.get(t, "/").Body.String()
	if !strings.Contains(body, "paper.pdf") {
		t.Fatalf("expected file name in page")
	}
	if !strings.Contains(body, "1.00 MB") {
		t.Fatalf("expected size in MB in page")
	}
	if strings.Contains(body, `id="upload-button" disabled`) {
		t.Fatalf("expected upload button enabled after selection")
	}
}

func TestUploadRendersReport(t *testing.T) {
	app := newTestApp(t, replyWith(http.StatusOK, "application/json", citationReport), 0)
	app.selectFile(t, "paper.pdf", []byte("%PDF-1.4\n"), "")

	w := app.postJSON(t, "/upload")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := app.get(t, "/").Body.String()
	for _, want := range []string{"A Paper", "A. Author", `<span id="total-count">1</span>`, `href="/?tab=citation"`, "Data Inconsistencies"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected report page to contain %q", want)
		}
	}
	if strings.Contains(body, `href="/?tab=logical"`) {
		t.Fatalf("expected no tab for an empty category")
	}

	body = app.get(t, "/?tab=citation").Body.String()
	for _, want := range []string{"Future-dated references.", "Implications:", "Recommendation:"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected citation tab to contain %q", want)
		}
	}

	body = app.get(t, "/?tab=logical").Body.String()
	if !strings.Contains(body, `id="summary"`) {
		t.Fatalf("expected hidden tab to fall back to summary")
	}
}

func TestUploadMalformedBodyShowsErrorState(t *testing.T) {
	app := newTestApp(t, replyWith(http.StatusOK, "application/json", "not json"), 0)
	app.selectFile(t, "paper.pdf", []byte("%PDF-1.4\n"), "")

	if w := app.postJSON(t, "/upload"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := app.get(t, "/").Body.String()
	if !strings.Contains(body, "Failed to parse server response") {
		t.Fatalf("expected parse failure message")
	}
	if strings.Contains(body, `role="tablist"`) {
		t.Fatalf("expected no tabs for an error-shaped result")
	}
}

func TestUploadMarkdownRendersHTML(t *testing.T) {
	app := newTestApp(t, replyWith(http.StatusOK, "text/markdown; charset=utf-8", "# Findings\n\n- one\n"), 0)
	app.selectFile(t, "paper.pdf", []byte("%PDF-1.4\n"), "")
	app.postJSON(t, "/upload")

	body := app.get(t, "/").Body.String()
	if !strings.Contains(body, "<h1>Findings</h1>") {
		t.Fatalf("expected markdown heading rendered, got %s", body)
	}
}

func TestUploadErrorShowsBanner(t *testing.T) {
	app := newTestApp(t, replyWith(http.StatusBadRequest, "application/json", `{"error": "No file part"}`), 0)
	app.selectFile(t, "paper.pdf", []byte("%PDF-1.4\n"), "")

	w := app.postJSON(t, "/upload")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	body := app.get(t, "/").Body.String()
	if !strings.Contains(body, "No file part") {
		t.Fatalf("expected upstream message in banner")
	}
	if !strings.Contains(body, "paper.pdf") {
		t.Fatalf("expected selection kept after a failed upload")
	}
}

func TestUploadWithoutFile(t *testing.T) {
	app := newTestApp(t, replyWith(http.StatusOK, "application/json", citationReport), 0)

	w := app.postJSON(t, "/upload")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "no_file_selected" {
		t.Fatalf("expected no_file_selected, got %s", code)
	}
}

func TestConcurrentUploadConflicts(t *testing.T) {
	arrived := make(chan struct{})
	release := make(chan struct{})
	sender := senderFunc(func(_ context.Context, file uploads.File, _ uploads.ProgressFunc) (*uploads.Response, error) {
		close(arrived)
		<-release
		return &uploads.Response{StatusCode: http.StatusOK, ContentType: "application/json", Body: []byte(citationReport), BytesSent: file.Size()}, nil
	})
	app := newTestApp(t, sender, 0)
	app.selectFile(t, "paper.pdf", []byte("%PDF-1.4\n"), "")

	var wg sync.WaitGroup
	wg.Add(1)
	var first *httptest.ResponseRecorder
	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(app.cookie)
	go func() {
		defer wg.Done()
		first = httptest.NewRecorder()
		app.router.ServeHTTP(first, req)
	}()

	select {
	case <-arrived:
	case <-time.After(5 * time.Second):
		t.Fatalf("upload never reached the sender")
	}

	progress := app.get(t, "/progress")
	var st struct {
		Status    string `json:"status"`
		CanUpload bool   `json:"canUpload"`
	}
	if err := json.Unmarshal(progress.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode progress: %v", err)
	}
	if st.Status != "uploading" || st.CanUpload {
		t.Fatalf("expected uploading state with upload disabled, got %+v", st)
	}

	second := app.postJSON(t, "/upload")
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", second.Code)
	}

	close(release)
	wg.Wait()
	if first.Code != http.StatusOK {
		t.Fatalf("expected first upload to succeed, got %d", first.Code)
	}
}

func TestSelectTooLarge(t *testing.T) {
	app := newTestApp(t, replyWith(http.StatusOK, "application/json", citationReport), 1024)

	w := app.selectFile(t, "big.pdf", bytes.Repeat([]byte{'x'}, 4096), "application/json")
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
}

func TestSelectWithoutFileSetsNotice(t *testing.T) {
	app := newTestApp(t, replyWith(http.StatusOK, "application/json", citationReport), 0)

	req := httptest.NewRequest(http.MethodPost, "/select", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := app.do(t, req)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}

	body := app.get(t, "/").Body.String()
	if !strings.Contains(body, "Choose a file to upload.") {
		t.Fatalf("expected notice on next page")
	}
	body = app.get(t, "/").Body.String()
	if strings.Contains(body, "Choose a file to upload.") {
		t.Fatalf("expected notice to be shown once")
	}
}

func TestResetReturnsToUploadForm(t *testing.T) {
	app := newTestApp(t, replyWith(http.StatusOK, "application/json", citationReport), 0)
	app.selectFile(t, "paper.pdf", []byte("%PDF-1.4\n"), "")
	app.postJSON(t, "/upload")

	w := app.do(t, httptest.NewRequest(http.MethodPost, "/reset", nil))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	body := app.get(t, "/").Body.String()
	if strings.Contains(body, "A Paper") || !strings.Contains(body, `name="file"`) {
		t.Fatalf("expected upload form after reset")
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	sender := replyWith(http.StatusOK, "application/json", citationReport)
	app := newTestApp(t, sender, 0)
	app.selectFile(t, "paper.pdf", []byte("%PDF-1.4\n"), "")

	other := &testApp{router: app.router}
	body := other.get(t, "/").Body.String()
	if strings.Contains(body, "paper.pdf") {
		t.Fatalf("expected a new session not to see another session's file")
	}
}
