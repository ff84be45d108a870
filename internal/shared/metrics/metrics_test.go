package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveUploadCountsOutcome(t *testing.T) {
	before := testutil.ToFloat64(uploadsFinished.WithLabelValues(OutcomeHTTPError))
	ObserveUpload(OutcomeHTTPError, 1500*time.Millisecond, 2048)
	after := testutil.ToFloat64(uploadsFinished.WithLabelValues(OutcomeHTTPError))
	if after-before != 1 {
		t.Fatalf("expected counter to grow by 1, got %v", after-before)
	}
}

func TestHandlerServesText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncUploadStarted()
	router := gin.New()
	router.GET("/metrics", Handler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "paper_review_upload_started_total") {
		t.Fatalf("expected started counter in output")
	}
}
