package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paper-review/internal/shared/telemetry"
)

const citationReport = `{
  "citation": {"errors": [{"errorCategory": "Citation/Reference Issues", "issue": "Future-dated references.", "implications": "Undermines credibility.", "recommendation": "Cite published work."}]},
  "summary": {"title": "A Paper", "authors": "A. Author", "published": "8 Jan 2025", "errorCount": "1"},
  "pdf_name": "paper.pdf",
  "timestamp": "2025-01-12T08:35:36"
}`

func setup(t *testing.T, serverURL string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	telemetry.SetLogger(zap.NewNop())
	endpoint = serverURL
	timeout = 0
	tab = "summary"
	width = 80
	verbose = false
	uploadJSON = false
	t.Cleanup(func() {
		endpoint = ""
		tab = "summary"
		uploadJSON = false
	})

	var out, errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	return cmd, &out, &errOut
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func analysisServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("expected multipart file field: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestUploadPrintsReport(t *testing.T) {
	srv := analysisServer(t, http.StatusOK, citationReport)
	cmd, out, errOut := setup(t, srv.URL)
	tab = "citation"

	err := runUpload(cmd, []string{writeFile(t, "paper.pdf", "%PDF-1.4\n")})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Future-dated references.")
	assert.Contains(t, errOut.String(), "100%")
}

func TestUploadJSONRoundTripsThroughShow(t *testing.T) {
	srv := analysisServer(t, http.StatusOK, citationReport)
	cmd, out, _ := setup(t, srv.URL)
	uploadJSON = true

	require.NoError(t, runUpload(cmd, []string{writeFile(t, "paper.pdf", "%PDF-1.4\n")}))
	saved := writeFile(t, "report.json", out.String())

	uploadJSON = false
	showOut := &bytes.Buffer{}
	cmd.SetOut(showOut)
	require.NoError(t, runShow(cmd, []string{saved}))
	assert.Contains(t, showOut.String(), "Total Errors: 1")
	assert.Contains(t, showOut.String(), "A Paper")
}

func TestUploadServiceErrorExitsWithMessage(t *testing.T) {
	srv := analysisServer(t, http.StatusInternalServerError, `{"error": "Analysis failed"}`)
	cmd, out, errOut := setup(t, srv.URL)

	err := runUpload(cmd, []string{writeFile(t, "paper.pdf", "%PDF-1.4\n")})
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, errOut.String(), "Error: Analysis failed")
	assert.Empty(t, out.String())
}

func TestUploadUnreachableService(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	cmd, _, errOut := setup(t, url)

	err := runUpload(cmd, []string{writeFile(t, "paper.pdf", "%PDF-1.4\n")})
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, errOut.String(), "Upload failed")
}

func TestShowMalformedIsError(t *testing.T) {
	cmd, _, errOut := setup(t, "")

	err := runShow(cmd, []string{writeFile(t, "broken.json", "<html>oops</html>")})
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, errOut.String(), "Failed to parse server response")
}

func TestShowMarkdown(t *testing.T) {
	cmd, out, _ := setup(t, "")

	require.NoError(t, runShow(cmd, []string{writeFile(t, "report.md", "# Findings\n\nNo issues.\n")}))
	assert.Contains(t, out.String(), "Findings")
}

func TestInspectNonPDF(t *testing.T) {
	cmd, out, _ := setup(t, "")

	require.NoError(t, runInspect(cmd, []string{writeFile(t, "notes.txt", "hello")}))
	assert.Contains(t, out.String(), "Selected file: notes.txt")
	assert.Contains(t, out.String(), "Size: 0.00 MB")
}

func TestMissingFile(t *testing.T) {
	cmd, _, _ := setup(t, "")
	err := runInspect(cmd, []string{filepath.Join(t.TempDir(), "missing.pdf")})
	require.Error(t, err)
}
