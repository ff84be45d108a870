package reports

import "strconv"

// SummaryTab is the key of the permanent first tab.
const SummaryTab = "summary"

// Tab is one entry of the tab bar.
type Tab struct {
	Key    string
	Label  string
	Active bool
}

// SummaryRow is one line of the summary tab.
type SummaryRow struct {
	Category Category
	Label    string
	Count    int
}

// Header is shown above the tab bar.
type Header struct {
	Title      string
	Authors    string
	Published  string
	TotalCount int
	PDFName    string
	Timestamp  string
}

// View is everything a renderer needs to draw one state of the report screen.
type View struct {
	Failure   *Failure
	Markdown  string
	Header    Header
	Tabs      []Tab
	ActiveTab string
	Summary   []SummaryRow
	Issues    []Issue
}

// IsReport reports whether the view holds a structured report.
func (v View) IsReport() bool {
	return v.Failure == nil && v.Markdown == ""
}

// BuildView computes the view for a result with the requested tab selected.
// Unknown tabs and tabs of empty categories fall back to the summary tab.
func BuildView(res Result, activeTab string) View {
	if res.Failure != nil {
		return View{Failure: res.Failure}
	}
	if res.Report == nil {
		if res.Markdown != "" {
			return View{Markdown: res.Markdown}
		}
		return View{Failure: &Failure{Error: ParseFailureMessage, Details: "empty result"}}
	}

	r := res.Report
	active := SummaryTab
	if c, ok := ParseCategory(activeTab); ok && r.Count(c) > 0 {
		active = activeTab
	}

	v := View{
		Header: Header{
			Title:      r.Summary.Title,
			Authors:    r.Summary.Authors,
			Published:  r.Summary.Published,
			TotalCount: totalCount(r),
			PDFName:    r.PDFName,
			Timestamp:  r.Timestamp,
		},
		ActiveTab: active,
	}

	v.Tabs = append(v.Tabs, Tab{Key: SummaryTab, Label: "Summary", Active: active == SummaryTab})
	for _, c := range Categories {
		n := r.Count(c)
		v.Summary = append(v.Summary, SummaryRow{Category: c, Label: c.Label(), Count: n})
		if n == 0 {
			continue
		}
		v.Tabs = append(v.Tabs, Tab{Key: string(c), Label: c.Label(), Active: active == string(c)})
	}
	if active != SummaryTab {
		v.Issues = r.IssuesFor(Category(active))
	}
	return v
}

// totalCount prefers the server's errorCount when it parses, else the sum of the lists.
func totalCount(r *AnalysisReport) int {
	if n, err := strconv.Atoi(r.Summary.ErrorCount); err == nil && n >= 0 {
		return n
	}
	return r.Total()
}
