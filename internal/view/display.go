// Package view renders the upload pipeline: notifications, step status,
// the processed receipt and the receipts table. Presenters write to view
// bindings, and a nil binding turns every call into a no-op.
package view

import "time"

// Severity classifies a notification
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Tone is the visual style applied to an element
type Tone string

const (
	ToneNone    Tone = ""
	ToneNeutral Tone = "secondary"
	TonePrimary Tone = "primary"
	ToneSuccess Tone = "success"
	ToneDanger  Tone = "danger"
	ToneWarning Tone = "warning"
	ToneInfo    Tone = "info"
)

// Toast is a transient notification
type Toast struct {
	Title    string
	Message  string
	Severity Severity
	Tone     Tone
	Duration time.Duration
}

// StepState is the rendered state of one pipeline step
type StepState struct {
	Step  int
	Name  string
	Label string
	Badge Tone
	Text  Tone
}

// Field is one labelled value of the results panel
type Field struct {
	Key   string
	Label string
	Value string
}

// Row is one table row. A full-width row spans every column with its
// single cell.
type Row struct {
	Cells     []string
	Link      string
	FullWidth bool
}

// ResultPanel is the rendered receipt
type ResultPanel struct {
	Fields  []Field
	Items   []Row
	ViewURL string
}

// Value returns the rendered value of the field with the given key
func (p ResultPanel) Value(key string) string {
	for _, f := range p.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// ToastView shows a transient notification
type ToastView interface {
	ShowToast(t Toast)
}

// StepView shows the state of one pipeline step
type StepView interface {
	ShowStep(s StepState)
}

// ResultsView shows or hides the processed receipt panel
type ResultsView interface {
	ShowResults(p ResultPanel)
	HideResults()
}

// ReceiptsView replaces the rows of the receipts table
type ReceiptsView interface {
	ShowReceipts(rows []Row)
}

// BusyView shows the busy indicator and disables the submit control
type BusyView interface {
	SetBusy(busy bool)
}

// Display is a complete page
type Display interface {
	ToastView
	StepView
	ResultsView
	ReceiptsView
	BusyView
}
