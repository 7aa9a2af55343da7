// Package report renders sync results, store listings and run history for
// the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lepinkainen/shelfsync/internal/catalog"
	"github.com/lepinkainen/shelfsync/internal/reconcile"
	"github.com/lepinkainen/shelfsync/internal/runlog"
)

type styles struct {
	box     lipgloss.Style
	title   lipgloss.Style
	label   lipgloss.Style
	added   lipgloss.Style
	removed lipgloss.Style
	failed  lipgloss.Style
	muted   lipgloss.Style
}

func newStyles() styles {
	asciiBorder := lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	return styles{
		box: lipgloss.NewStyle().
			Border(asciiBorder).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1),
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254")),
		label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Width(12),
		added: lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")),
		removed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("178")),
		failed: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("203")),
		muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
	}
}

// Result writes a summary box for res followed by per-record lines
func Result(w io.Writer, res *reconcile.Result) error {
	s := newStyles()

	title := "Sync result"
	if res.DryRun {
		title = "Sync preview (dry run)"
	}

	rows := []string{
		s.title.Render(title),
		s.label.Render("manifest") + res.Manifest,
		s.label.Render("local") + fmt.Sprint(res.TotalLocal),
		s.label.Render("unchanged") + fmt.Sprint(res.Unchanged),
		s.label.Render("added") + s.added.Render(fmt.Sprint(len(res.Added))),
		s.label.Render("removed") + s.removed.Render(fmt.Sprint(len(res.Removed))),
	}
	if len(res.Failures) > 0 {
		rows = append(rows, s.label.Render("failed")+s.failed.Render(fmt.Sprint(len(res.Failures))))
	}
	if len(res.BlobFailures) > 0 {
		rows = append(rows, s.label.Render("blob errors")+s.failed.Render(fmt.Sprint(len(res.BlobFailures))))
	}
	if len(res.Invalid) > 0 {
		rows = append(rows, s.label.Render("invalid")+s.removed.Render(fmt.Sprint(len(res.Invalid))))
	}
	if !res.DryRun && !res.FinishedAt.IsZero() {
		rows = append(rows, s.label.Render("duration")+res.Duration().Round(1e6).String())
	}

	var b strings.Builder
	b.WriteString(s.box.Render(strings.Join(rows, "\n")))
	b.WriteString("\n")

	for _, e := range res.Added {
		b.WriteString(s.added.Render("+ "+describe(e.Name, e.Author)) + s.muted.Render(idSuffix(e.ID)) + "\n")
	}
	for _, e := range res.Removed {
		b.WriteString(s.removed.Render("- "+describe(e.Name, e.Author)) + s.muted.Render(idSuffix(e.ID)) + "\n")
	}
	for _, f := range res.Failures {
		b.WriteString(s.failed.Render("! "+f.Op+" "+describe(f.Name, f.Author)) + " " + s.muted.Render(f.Err) + "\n")
	}
	for _, f := range res.BlobFailures {
		b.WriteString(s.failed.Render("! blob "+f.URL) + " " + s.muted.Render(f.Err) + "\n")
	}
	for _, v := range res.Invalid {
		b.WriteString(s.removed.Render("? "+v.Error()) + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Listing writes one line per remote record: key, ID and excerpt count
func Listing(w io.Writer, books []catalog.Book) error {
	s := newStyles()

	var b strings.Builder
	b.WriteString(s.title.Render(fmt.Sprintf("%d records", len(books))) + "\n")
	for _, book := range books {
		fmt.Fprintf(&b, "%s %s %s\n",
			book.Key(),
			s.muted.Render(book.ID),
			s.muted.Render(fmt.Sprintf("(%d excerpts)", len(book.Excerpts))),
		)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// History writes one line per recorded run, newest first as given
func History(w io.Writer, runs []runlog.Run) error {
	s := newStyles()

	var b strings.Builder
	if len(runs) == 0 {
		b.WriteString(s.muted.Render("no recorded runs") + "\n")
	}
	for _, run := range runs {
		mode := ""
		if run.DryRun {
			mode = " dry-run"
		}
		status := s.added.Render("ok")
		if run.Failed > 0 {
			status = s.failed.Render(fmt.Sprintf("%d failed", run.Failed))
		}
		fmt.Fprintf(&b, "%s%s %s +%d -%d =%d %s %s\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			mode,
			run.Manifest,
			run.Added,
			run.Removed,
			run.Unchanged,
			status,
			s.muted.Render(run.Duration().Round(1e6).String()),
		)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func describe(name, author string) string {
	return fmt.Sprintf("%q by %s", name, author)
}

func idSuffix(id string) string {
	if id == "" {
		return ""
	}
	return " [" + id + "]"
}
