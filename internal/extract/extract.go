package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const mimePDF = "application/pdf"

// Info describes a selected file. Inspection is informational only and never
// rejects a file.
type Info struct {
	Name        string
	SizeBytes   int64
	ContentType string
	IsPDF       bool
	Pages       int
	Title       string
	// Problem is set when the bytes look like a PDF but could not be read.
	Problem string
}

// SizeMB formats the size the way the upload page shows it.
func (i Info) SizeMB() string {
	return fmt.Sprintf("%.2f MB", float64(i.SizeBytes)/1024/1024)
}

// Inspect sniffs the content type and, for PDFs, reads page count and title.
// Libraries used: github.com/ledongthuc/pdf.
func Inspect(ctx context.Context, data []byte, fileName string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	info := Info{
		Name:        fileName,
		SizeBytes:   int64(len(data)),
		ContentType: detectContentType(data, fileName),
	}
	if info.ContentType != mimePDF {
		return info, nil
	}
	info.IsPDF = true

	pages, title, err := readPDF(data)
	if err != nil {
		info.Problem = err.Error()
		return info, nil
	}
	info.Pages = pages
	info.Title = title
	return info, nil
}

// InspectReader is Inspect for callers holding a stream.
func InspectReader(ctx context.Context, r io.Reader, fileName string) (Info, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Info{}, fmt.Errorf("inspect %s: read: %w", fileName, err)
	}
	return Inspect(ctx, data, fileName)
}

func readPDF(data []byte) (pages int, title string, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("unreadable pdf: %v", rec)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, "", fmt.Errorf("unreadable pdf: %w", err)
	}
	title = strings.TrimSpace(reader.Trailer().Key("Info").Key("Title").Text())
	return reader.NumPage(), title, nil
}

func detectContentType(data []byte, fileName string) string {
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return mimePDF
	}
	sniffed := strings.Split(http.DetectContentType(data), ";")[0]
	if sniffed == "application/octet-stream" && strings.EqualFold(filepath.Ext(fileName), ".pdf") {
		return mimePDF
	}
	return sniffed
}
