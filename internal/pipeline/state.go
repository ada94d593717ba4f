// Package pipeline drives a receipt through upload, validation and
// processing and reflects every step on the page.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/zombor/receipt-uploader/internal/api"
	"github.com/zombor/receipt-uploader/internal/receipt"
)

var (
	// ErrBusy is returned while another submission is running
	ErrBusy = errors.New("a submission is already running")
	// ErrNoFile is returned when no file was selected
	ErrNoFile = errors.New("no file selected")
	// ErrNotPDF is returned when the declared media type is not application/pdf
	ErrNotPDF = errors.New("file is not a PDF")
	// ErrInvalidFile is returned when the API rejects the uploaded PDF
	ErrInvalidFile = errors.New("invalid PDF")
	// ErrNoReceipt is returned when no receipt has been processed yet
	ErrNoReceipt = errors.New("no processed receipt")
)

// Phase is the position of a submission in the pipeline
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseUploading  Phase = "uploading"
	PhaseValidating Phase = "validating"
	PhaseProcessing Phase = "processing"
	PhaseDone       Phase = "done"
	PhaseFailed     Phase = "failed"
)

var transitions = map[Phase][]Phase{
	PhaseIdle:       {PhaseUploading, PhaseFailed},
	PhaseUploading:  {PhaseValidating, PhaseFailed},
	PhaseValidating: {PhaseProcessing, PhaseFailed},
	PhaseProcessing: {PhaseDone, PhaseFailed},
}

// stepOf maps an active phase to its 1-based step number
var stepOf = map[Phase]int{
	PhaseUploading:  1,
	PhaseValidating: 2,
	PhaseProcessing: 3,
}

// Session carries the identifiers the API hands out from one step to the next
type Session struct {
	FileID    receipt.ID
	ReceiptID receipt.ID
}

// Outcome is the result of one submission
type Outcome struct {
	Phase Phase
	// Step is the failed step, 0 when a precondition failed
	Step    int
	Reason  string
	Session Session
	Receipt *receipt.ReceiptRecord
	Err     error
}

// OK reports whether every step succeeded
func (o Outcome) OK() bool {
	return o.Phase == PhaseDone
}

// machine is the linear state machine of a single submission
type machine struct {
	phase  Phase
	step   int
	reason string
	err    error
}

func newMachine() *machine {
	return &machine{phase: PhaseIdle}
}

func (m *machine) advance(next Phase) {
	for _, allowed := range transitions[m.phase] {
		if allowed == next {
			m.phase = next
			return
		}
	}
	panic(fmt.Sprintf("pipeline: illegal transition %s -> %s", m.phase, next))
}

// fail moves to PhaseFailed, remembering the step that failed, and returns err
func (m *machine) fail(err error, reason string) error {
	m.step = stepOf[m.phase]
	m.reason = reason
	m.err = err
	m.advance(PhaseFailed)
	return err
}

func (m *machine) outcome(session Session, record *receipt.ReceiptRecord) Outcome {
	return Outcome{
		Phase:   m.phase,
		Step:    m.step,
		Reason:  m.reason,
		Session: session,
		Receipt: record,
		Err:     m.err,
	}
}

// reasonOf prefers the message the API sent
func reasonOf(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
