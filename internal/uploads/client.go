package uploads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync/atomic"
)

// FormField is the multipart field the analysis service reads the paper from.
const FormField = "file"

// maxResponseBytes bounds how much of an upstream body is kept.
const maxResponseBytes = 16 << 20

// File is a selected paper held in memory.
type File struct {
	Name string
	Data []byte
}

// Size is the file length in bytes.
func (f File) Size() int64 { return int64(len(f.Data)) }

// Response is the raw upstream answer.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	BytesSent   int64
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ProgressFunc receives body bytes written so far and the body length.
type ProgressFunc func(sent, total int64)

// Sender performs the single upstream call.
type Sender interface {
	Send(ctx context.Context, file File, progress ProgressFunc) (*Response, error)
}

// Client posts papers to the analysis endpoint as multipart/form-data.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

// NewClient builds a Client. A nil httpClient uses a client without a timeout;
// deadlines come from the caller's context.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{Endpoint: endpoint, HTTP: httpClient}
}

// Send uploads file and reads the full response body. Non-2xx statuses are not
// errors here; the caller maps them.
func (c *Client) Send(ctx context.Context, file File, progress ProgressFunc) (*Response, error) {
	if strings.TrimSpace(c.Endpoint) == "" {
		return nil, fmt.Errorf("send %s: endpoint not configured", file.Name)
	}
	payload, contentType, err := encodeMultipart(file)
	if err != nil {
		return nil, fmt.Errorf("send %s: encode: %w", file.Name, err)
	}

	body := newProgressReader(payload, progress)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("send %s: build request: %w", file.Name, err)
	}
	req.ContentLength = int64(len(payload))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(newProgressReader(payload, progress)), nil
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json, text/markdown;q=0.9, */*;q=0.1")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send %s: %w", file.Name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("send %s: read response: %w", file.Name, err)
	}
	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        raw,
		BytesSent:   body.Sent(),
	}, nil
}

func encodeMultipart(file File) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(FormField, file.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// progressReader reports bytes as the transport pulls them off the body.
type progressReader struct {
	r        *bytes.Reader
	total    int64
	sent     atomic.Int64
	progress ProgressFunc
}

func newProgressReader(payload []byte, progress ProgressFunc) *progressReader {
	return &progressReader{r: bytes.NewReader(payload), total: int64(len(payload)), progress: progress}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		sent := p.sent.Add(int64(n))
		if p.progress != nil {
			p.progress(sent, p.total)
		}
	}
	return n, err
}

func (p *progressReader) Sent() int64 {
	return p.sent.Load()
}
