package reports

// Category is one of the fixed error classifications reported by the analysis service.
type Category string

const (
	CategoryCalculation         Category = "calculation"
	CategoryCitation            Category = "citation"
	CategoryDataInconsistencies Category = "data_inconsistencies"
	CategoryEthical             Category = "ethical"
	CategoryFormatting          Category = "formatting"
	CategoryLogical             Category = "logical"
	CategoryMethodical          Category = "methodical"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryCalculation,
	CategoryCitation,
	CategoryDataInconsistencies,
	CategoryEthical,
	CategoryFormatting,
	CategoryLogical,
	CategoryMethodical,
}

var categoryLabels = map[Category]string{
	CategoryCalculation:         "Calculation",
	CategoryCitation:            "Citation",
	CategoryDataInconsistencies: "Data Inconsistencies",
	CategoryEthical:             "Ethical",
	CategoryFormatting:          "Formatting",
	CategoryLogical:             "Logical",
	CategoryMethodical:          "Methodical",
}

// Label returns the human-readable tab label.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// ParseCategory reports whether key names a known category.
func ParseCategory(key string) (Category, bool) {
	c := Category(key)
	_, ok := categoryLabels[c]
	return c, ok
}

// Issue is a single finding within a category.
type Issue struct {
	ErrorCategory  string `json:"errorCategory"`
	Issue          string `json:"issue"`
	Implications   string `json:"implications"`
	Recommendation string `json:"recommendation"`
}

// Summary is the header block of a report. Count fields are strings on the wire.
type Summary struct {
	Title                  string `json:"title"`
	Authors                string `json:"authors"`
	Published              string `json:"published"`
	ErrorCount             string `json:"errorCount"`
	CalculationErrorCount  string `json:"calculationErrorCount,omitempty"`
	CitationErrorCount     string `json:"citationErrorCount,omitempty"`
	DataInconsistencyCount string `json:"dataInconsistencyCount,omitempty"`
	EthicalErrorCount      string `json:"ethicalErrorCount,omitempty"`
	FormattingErrorCount   string `json:"formattingErrorCount,omitempty"`
	LogicalErrorCount      string `json:"logicalErrorCount,omitempty"`
	MethodicalErrorCount   string `json:"methodicalErrorCount,omitempty"`
}

// AnalysisReport is the structured result for one uploaded paper.
// Issues always holds an entry for every category after Decode.
type AnalysisReport struct {
	Issues    map[Category][]Issue `json:"-"`
	Summary   Summary              `json:"summary"`
	PDFName   string               `json:"pdf_name"`
	Timestamp string               `json:"timestamp"`
}

// IssuesFor returns the issues of a category, empty for absent categories.
func (r *AnalysisReport) IssuesFor(c Category) []Issue {
	if r == nil || r.Issues == nil {
		return nil
	}
	return r.Issues[c]
}

// Count is the number of issues in a category.
func (r *AnalysisReport) Count(c Category) int {
	return len(r.IssuesFor(c))
}

// Total is the number of issues across all categories.
func (r *AnalysisReport) Total() int {
	total := 0
	for _, c := range Categories {
		total += r.Count(c)
	}
	return total
}

// Failure describes a response that could not be shown as a report.
type Failure struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Result is what the upload controller hands to the renderer.
// Exactly one of Report, Markdown or Failure is set.
type Result struct {
	Report   *AnalysisReport `json:"report,omitempty"`
	Markdown string          `json:"markdown,omitempty"`
	Failure  *Failure        `json:"failure,omitempty"`
}

// IsFailure reports whether the result is error-shaped.
func (r Result) IsFailure() bool {
	return r.Failure != nil
}

// IsMarkdown reports whether the result is a freeform markdown document.
func (r Result) IsMarkdown() bool {
	return r.Failure == nil && r.Report == nil && r.Markdown != ""
}
