package uploads

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"paper-review/internal/extract"
	"paper-review/internal/reports"
	"paper-review/internal/shared/metrics"
	"paper-review/internal/shared/telemetry"
)

// Status of the upload task.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusUploading Status = "uploading"
	StatusDone      Status = "done"
	StatusError     Status = "error"
)

// State is a snapshot of the controller for rendering.
type State struct {
	Status          Status          `json:"status"`
	ProgressPercent int             `json:"progressPercent"`
	FileName        string          `json:"fileName,omitempty"`
	FileSize        int64           `json:"fileSize,omitempty"`
	FileInfo        *extract.Info   `json:"-"`
	ErrorMessage    string          `json:"error,omitempty"`
	Result          *reports.Result `json:"-"`
}

// HasFile reports whether a file is selected.
func (s State) HasFile() bool {
	return s.FileName != ""
}

// CanUpload mirrors the upload button: enabled with a file and no upload running.
func (s State) CanUpload() bool {
	return s.HasFile() && s.Status != StatusUploading
}

// Controller owns one user's file selection and upload. Only one upload may run
// at a time; concurrent attempts get ErrUploadInProgress.
type Controller struct {
	Sender Sender
	// Timeout bounds the upstream call. Zero means no bound.
	Timeout time.Duration
	// OnProgress, when set, is called with every progress change.
	OnProgress func(percent int)

	mu       sync.Mutex
	status   Status
	file     *File
	info     *extract.Info
	progress int
	errMsg   string
	result   *reports.Result
}

// NewController returns an idle controller.
func NewController(sender Sender, timeout time.Duration) *Controller {
	return &Controller{Sender: sender, Timeout: timeout, status: StatusIdle}
}

// Select replaces the selected file. No file type is rejected.
func (c *Controller) Select(ctx context.Context, file File) error {
	if strings.TrimSpace(file.Name) == "" {
		return ErrNoFileSelected
	}
	info, err := extract.Inspect(ctx, file.Data, file.Name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == StatusUploading {
		return ErrUploadInProgress
	}
	c.file = &file
	c.info = &info
	c.progress = 0
	c.status = StatusIdle
	return nil
}

// Reset drops the selection, result and error, returning to the upload form.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == StatusUploading {
		return ErrUploadInProgress
	}
	c.status = StatusIdle
	c.file = nil
	c.info = nil
	c.progress = 0
	c.errMsg = ""
	c.result = nil
	return nil
}

// State returns a snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := State{
		Status:          c.status,
		ProgressPercent: c.progress,
		FileInfo:        c.info,
		ErrorMessage:    c.errMsg,
		Result:          c.result,
	}
	if s.Status == "" {
		s.Status = StatusIdle
	}
	if c.file != nil {
		s.FileName = c.file.Name
		s.FileSize = c.file.Size()
	}
	return s
}

// Upload sends the selected file and blocks until the service answers.
// Malformed success bodies are not errors: they come back as an error-shaped
// Result. The selection is cleared only on the success path.
func (c *Controller) Upload(ctx context.Context) (reports.Result, error) {
	file, err := c.begin()
	if err != nil {
		metrics.IncUploadRejected(rejectReason(err))
		return reports.Result{}, err
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	metrics.IncUploadStarted()
	start := time.Now()
	fields := map[string]any{"file": file.Name, "size_bytes": file.Size()}

	resp, err := c.Sender.Send(ctx, file, c.setProgress)
	if err != nil {
		metrics.ObserveUpload(metrics.OutcomeTransport, time.Since(start), 0)
		fields["err"] = err
		telemetry.Error("upload.transport_failed", fields)
		return reports.Result{}, c.fail(&UploadError{Kind: ErrTransport, Message: DefaultTransportMessage, Err: err})
	}
	fields["status"] = resp.StatusCode
	fields["duration_ms"] = time.Since(start).Milliseconds()

	if !resp.OK() {
		metrics.ObserveUpload(metrics.OutcomeHTTPError, time.Since(start), resp.BytesSent)
		msg := ErrorMessageFromBody(resp.Body)
		fields["message"] = msg
		telemetry.Warn("upload.rejected_by_service", fields)
		return reports.Result{}, c.fail(&UploadError{Kind: ErrHTTPStatus, StatusCode: resp.StatusCode, Message: msg})
	}

	result := reports.Decode(resp.Body, resp.ContentType)
	outcome := metrics.OutcomeSuccess
	if result.IsFailure() {
		outcome = metrics.OutcomeMalformed
		fields["parse_error"] = result.Failure.Details
	}
	metrics.ObserveUpload(outcome, time.Since(start), resp.BytesSent)
	telemetry.Info("upload.complete", fields)

	c.mu.Lock()
	c.status = StatusDone
	c.result = &result
	c.file = nil
	c.info = nil
	c.progress = 0
	c.mu.Unlock()
	return result, nil
}

func (c *Controller) begin() (File, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == StatusUploading {
		return File{}, ErrUploadInProgress
	}
	if c.file == nil {
		return File{}, ErrNoFileSelected
	}
	if c.Sender == nil {
		return File{}, errors.New("upload: no sender configured")
	}
	c.status = StatusUploading
	c.progress = 0
	c.errMsg = ""
	c.result = nil
	return *c.file, nil
}

func (c *Controller) fail(err *UploadError) error {
	c.mu.Lock()
	c.status = StatusError
	c.errMsg = err.Message
	c.mu.Unlock()
	return err
}

func (c *Controller) setProgress(sent, total int64) {
	if total <= 0 {
		return
	}
	percent := int(sent * 100 / total)
	if percent > 100 {
		percent = 100
	}

	c.mu.Lock()
	changed := c.status == StatusUploading && percent != c.progress
	if changed {
		c.progress = percent
	}
	hook := c.OnProgress
	c.mu.Unlock()

	if changed && hook != nil {
		hook(percent)
	}
}

// ErrorMessageFromBody pulls a user-facing message out of an error response.
// It understands {"error": "msg"} and {"error": {"message": "msg"}}.
func ErrorMessageFromBody(body []byte) string {
	doc, err := reports.ExtractJSON(body)
	if err != nil {
		return DefaultErrorMessage
	}
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(doc, &payload); err != nil || len(payload.Error) == 0 {
		return DefaultErrorMessage
	}
	var msg string
	if err := json.Unmarshal(payload.Error, &msg); err == nil {
		if msg = strings.TrimSpace(msg); msg != "" {
			return msg
		}
		return DefaultErrorMessage
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Error, &nested); err == nil && strings.TrimSpace(nested.Message) != "" {
		return strings.TrimSpace(nested.Message)
	}
	return DefaultErrorMessage
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrUploadInProgress):
		return "in_progress"
	case errors.Is(err, ErrNoFileSelected):
		return "no_file"
	default:
		return "misconfigured"
	}
}
