package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"paper-review/internal/extract"
	"paper-review/internal/reports"
)

const (
	defaultWidth = 100
	barWidth     = 30
)

// Renderer draws report views and upload status as styled text.
type Renderer struct {
	Width  int
	styles Styles
}

// New builds a renderer for out. Colors are dropped when out is not a terminal.
func New(out io.Writer, width int) *Renderer {
	if width <= 0 {
		width = defaultWidth
	}
	return &Renderer{Width: width, styles: NewStyles(lipgloss.NewRenderer(out))}
}

// Render draws one state of the report screen.
func (r *Renderer) Render(v reports.View) (string, error) {
	switch {
	case v.Failure != nil:
		return r.failure(v.Failure), nil
	case v.Markdown != "":
		return r.Markdown(v.Markdown)
	}

	var b strings.Builder
	b.WriteString(r.header(v.Header))
	b.WriteString("\n\n")
	b.WriteString(r.tabs(v.Tabs))
	b.WriteString("\n\n")
	if v.ActiveTab == reports.SummaryTab {
		b.WriteString(r.summary(v.Summary))
	} else {
		b.WriteString(r.issues(v.Issues))
	}
	b.WriteString("\n")
	return b.String(), nil
}

// Markdown renders a markdown report through glamour.
func (r *Renderer) Markdown(text string) (string, error) {
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(r.Width),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := tr.Render(text)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

// Error draws a banner line for a user-facing error message.
func (r *Renderer) Error(msg string) string {
	return r.styles.Error.Render("Error: "+msg) + "\n"
}

// FileInfo draws the selected-file block.
func (r *Renderer) FileInfo(info extract.Info) string {
	var b strings.Builder
	r.field(&b, "Selected file", info.Name)
	r.field(&b, "Size", info.SizeMB())
	if info.ContentType != "" {
		r.field(&b, "Type", info.ContentType)
	}
	if info.Pages > 0 {
		r.field(&b, "Pages", fmt.Sprintf("%d", info.Pages))
	}
	if info.Title != "" {
		r.field(&b, "Title", info.Title)
	}
	if info.Problem != "" {
		b.WriteString(r.styles.Muted.Render(info.Problem))
		b.WriteString("\n")
	}
	return b.String()
}

// Progress draws a one-line progress bar.
func (r *Renderer) Progress(name string, percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * barWidth / 100
	bar := strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)
	return fmt.Sprintf("Uploading %s %s %3d%%", name, r.styles.Bar.Render("["+bar+"]"), percent)
}

func (r *Renderer) header(h reports.Header) string {
	var b strings.Builder
	title := h.Title
	if title == "" {
		title = h.PDFName
	}
	if title != "" {
		b.WriteString(r.styles.Title.Render(title))
		b.WriteString("\n")
	}
	if h.Authors != "" {
		r.field(&b, "Authors", h.Authors)
	}
	if h.Published != "" {
		r.field(&b, "Published", h.Published)
	}
	b.WriteString(r.styles.Label.Render("Total Errors:") + " " + fmt.Sprintf("%d", h.TotalCount))
	return b.String()
}

func (r *Renderer) tabs(tabs []reports.Tab) string {
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		if t.Active {
			parts = append(parts, r.styles.ActiveTab.Render(t.Label))
			continue
		}
		parts = append(parts, r.styles.Tab.Render(t.Label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (r *Renderer) summary(rows []reports.SummaryRow) string {
	width := 0
	for _, row := range rows {
		if len(row.Label) > width {
			width = len(row.Label)
		}
	}
	var b strings.Builder
	for _, row := range rows {
		label := row.Label + strings.Repeat(" ", width-len(row.Label))
		b.WriteString(label + "  " + r.styles.StatValue.Render(fmt.Sprintf("%d", row.Count)) + "\n")
	}
	return b.String()
}

func (r *Renderer) issues(list []reports.Issue) string {
	cards := make([]string, 0, len(list))
	inner := r.Width - 4
	for _, is := range list {
		var b strings.Builder
		if is.ErrorCategory != "" {
			b.WriteString(r.styles.CardTitle.Render(is.ErrorCategory))
			b.WriteString("\n")
		}
		r.field(&b, "Issue", is.Issue)
		r.field(&b, "Implications", is.Implications)
		r.field(&b, "Recommendation", strings.TrimRight(is.Recommendation, "\n"))
		cards = append(cards, r.styles.Card.Width(inner).Render(strings.TrimRight(b.String(), "\n")))
	}
	return strings.Join(cards, "\n") + "\n"
}

func (r *Renderer) failure(f *reports.Failure) string {
	out := r.Error(f.Error)
	if f.Details != "" {
		out += r.styles.Muted.Render(f.Details) + "\n"
	}
	return out
}

func (r *Renderer) field(b *strings.Builder, label, value string) {
	b.WriteString(r.styles.Label.Render(label+":") + " " + value + "\n")
}
