package reports

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"strconv"
	"strings"
)

// ParseFailureMessage is shown when a success body cannot be read as a report.
const ParseFailureMessage = "Failed to parse server response"

var errNoObject = errors.New("response contains no JSON object")

// ExtractJSON returns the text between the first '{' and the last '}' inclusive,
// dropping whatever the server put around the document.
func ExtractJSON(raw []byte) ([]byte, error) {
	start := bytes.IndexByte(raw, '{')
	end := bytes.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return nil, errNoObject
	}
	return raw[start : end+1], nil
}

// Decode turns a 2xx response body into a Result. It never returns an error:
// anything unreadable becomes an error-shaped Result.
func Decode(body []byte, contentType string) Result {
	if isMarkdown(contentType) {
		text := strings.TrimSpace(string(body))
		if text == "" {
			return failure(errors.New("empty markdown document"))
		}
		return Result{Markdown: text}
	}

	report, fail, err := ParseReport(body)
	if err != nil {
		return failure(err)
	}
	if fail != nil {
		return Result{Failure: fail}
	}
	return Result{Report: report}
}

// ParseReport extracts and parses a report document. A document carrying only an
// "error" key comes back as a Failure.
func ParseReport(body []byte) (*AnalysisReport, *Failure, error) {
	doc, err := ExtractJSON(body)
	if err != nil {
		return nil, nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil, nil, err
	}

	if msg, ok := fields["error"]; ok && !hasAnyCategory(fields) {
		return nil, &Failure{Error: rawString(msg), Details: rawString(fields["details"])}, nil
	}

	report := &AnalysisReport{Issues: make(map[Category][]Issue, len(Categories))}
	for _, c := range Categories {
		issues, err := decodeIssues(fields[string(c)])
		if err != nil {
			return nil, nil, fmt.Errorf("category %s: %w", c, err)
		}
		report.Issues[c] = issues
	}
	if raw, ok := fields["summary"]; ok {
		if err := json.Unmarshal(raw, &report.Summary); err != nil {
			return nil, nil, fmt.Errorf("summary: %w", err)
		}
	}
	report.PDFName = rawString(fields["pdf_name"])
	report.Timestamp = rawString(fields["timestamp"])
	return report, nil, nil
}

// decodeIssues accepts {"errors": [...]}, a bare list, or null.
func decodeIssues(raw json.RawMessage) ([]Issue, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Issue{}, nil
	}
	if trimmed[0] == '[' {
		var list []Issue
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return nonNil(list), nil
	}
	var wrapped struct {
		Errors []Issue `json:"errors"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, err
	}
	return nonNil(wrapped.Errors), nil
}

// UnmarshalJSON accepts numbers or strings for counts and a list for authors.
func (s *Summary) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Summary{
		Title:                  anyString(raw["title"]),
		Authors:                anyString(raw["authors"]),
		Published:              anyString(raw["published"]),
		ErrorCount:             anyString(raw["errorCount"]),
		CalculationErrorCount:  anyString(raw["calculationErrorCount"]),
		CitationErrorCount:     anyString(raw["citationErrorCount"]),
		DataInconsistencyCount: anyString(raw["dataInconsistencyCount"]),
		EthicalErrorCount:      anyString(raw["ethicalErrorCount"]),
		FormattingErrorCount:   anyString(raw["formattingErrorCount"]),
		LogicalErrorCount:      anyString(raw["logicalErrorCount"]),
		MethodicalErrorCount:   anyString(raw["methodicalErrorCount"]),
	}
	return nil
}

// MarshalJSON writes the report back in the wire shape.
func (r AnalysisReport) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(Categories)+3)
	for _, c := range Categories {
		out[string(c)] = map[string][]Issue{"errors": nonNil(r.Issues[c])}
	}
	out["summary"] = r.Summary
	out["pdf_name"] = r.PDFName
	out["timestamp"] = r.Timestamp
	return json.Marshal(out)
}

func hasAnyCategory(fields map[string]json.RawMessage) bool {
	for _, c := range Categories {
		if _, ok := fields[string(c)]; ok {
			return true
		}
	}
	return false
}

func isMarkdown(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/markdown" || mediaType == "text/x-markdown"
}

func failure(err error) Result {
	return Result{Failure: &Failure{Error: ParseFailureMessage, Details: err.Error()}}
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return anyString(v)
}

func anyString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := anyString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

func nonNil(list []Issue) []Issue {
	if list == nil {
		return []Issue{}
	}
	return list
}
