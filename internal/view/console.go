package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Console renders the page as plain text lines
type Console struct {
	w io.Writer
}

// NewConsole creates a Console writing to w
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

var toneMarkers = map[Tone]string{
	ToneSuccess: "[ok]",
	ToneDanger:  "[error]",
	ToneWarning: "[warn]",
	ToneInfo:    "[info]",
}

// ShowToast prints the notification with a severity marker
func (c *Console) ShowToast(t Toast) {
	fmt.Fprintf(c.w, "%s %s: %s\n", toneMarkers[t.Tone], t.Title, t.Message)
}

// ShowStep prints step transitions. Waiting is the resting state and is
// not printed.
func (c *Console) ShowStep(s StepState) {
	if s.Badge == ToneNeutral {
		return
	}
	fmt.Fprintf(c.w, "step %d/%d %s: %s\n", s.Step, StepCount, s.Name, s.Label)
}

// ShowResults prints the receipt fields, its items and the detail link
func (c *Console) ShowResults(p ResultPanel) {
	fmt.Fprintln(c.w)
	tw := tabwriter.NewWriter(c.w, 0, 4, 2, ' ', 0)
	for _, f := range p.Fields {
		fmt.Fprintf(tw, "%s:\t%s\n", f.Label, f.Value)
	}
	tw.Flush()

	fmt.Fprintln(c.w)
	c.table([]string{"DESCRIPTION", "QTY", "UNIT PRICE", "TOTAL"}, p.Items)

	if p.ViewURL != "" {
		fmt.Fprintf(c.w, "\nView receipt: %s\n", p.ViewURL)
	}
}

// HideResults does nothing; printed output cannot be taken back
func (c *Console) HideResults() {}

// ShowReceipts prints the receipts table
func (c *Console) ShowReceipts(rows []Row) {
	fmt.Fprintln(c.w)
	c.table([]string{"ID", "MERCHANT", "DATE", "AMOUNT", "LINK"}, rows)
}

// SetBusy prints a progress line when work starts
func (c *Console) SetBusy(busy bool) {
	if busy {
		fmt.Fprintln(c.w, "working...")
	}
}

func (c *Console) table(header []string, rows []Row) {
	tw := tabwriter.NewWriter(c.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		if row.FullWidth {
			fmt.Fprintln(tw, strings.Join(row.Cells, " "))
			continue
		}
		cells := row.Cells
		if row.Link != "" {
			cells = append(cells[:len(cells):len(cells)], row.Link)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}
