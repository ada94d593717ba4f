package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/zombor/receipt-uploader/internal/api"
	"github.com/zombor/receipt-uploader/internal/receipt"
	"github.com/zombor/receipt-uploader/internal/view"
)

// API is the part of the receipt API the pipeline uses
type API interface {
	Upload(ctx context.Context, file *receipt.File) (receipt.ID, error)
	Validate(ctx context.Context, fileID receipt.ID) (api.Validation, error)
	Process(ctx context.Context, fileID receipt.ID) (*api.Processed, error)
	ReceiptLister
}

// Presenters are the page components the pipeline reports to. Every
// presenter tolerates a nil receiver.
type Presenters struct {
	Notifier *view.Notifier
	Steps    *view.StepBoard
	Results  *view.ResultRenderer
	Receipts *view.ReceiptsTable
	Busy     *view.Busy
}

// NewPresenters builds all presenters on top of one display
func NewPresenters(display view.Display, format view.Formatter) Presenters {
	if display == nil {
		return Presenters{}
	}
	return Presenters{
		Notifier: view.NewNotifier(display),
		Steps:    view.NewStepBoard(display, display),
		Results:  view.NewResultRenderer(display, format),
		Receipts: view.NewReceiptsTable(display, format),
		Busy:     view.NewBusy(display),
	}
}

// Orchestrator runs one submission at a time through the three steps and
// stops at the first failure
type Orchestrator struct {
	api     API
	ui      Presenters
	loader  *Loader
	running atomic.Bool
}

// NewOrchestrator creates a new Orchestrator. The loader refreshes the
// receipts table after a successful run.
func NewOrchestrator(client API, ui Presenters, loader *Loader) *Orchestrator {
	return &Orchestrator{api: client, ui: ui, loader: loader}
}

// Submit runs file through upload, validation and processing
func (o *Orchestrator) Submit(ctx context.Context, file *receipt.File) Outcome {
	if !o.running.CompareAndSwap(false, true) {
		return Outcome{Phase: PhaseIdle, Err: ErrBusy, Reason: ErrBusy.Error()}
	}
	defer o.running.Store(false)

	o.ui.Steps.Reset()
	m := newMachine()

	if file == nil {
		o.ui.Notifier.Notify("Error", "Please select a file to upload.", view.SeverityError)
		m.fail(ErrNoFile, "Please select a file to upload.")
		return m.outcome(Session{}, nil)
	}
	if !file.IsPDF() {
		o.ui.Notifier.Notify("Invalid File", "Please upload a PDF file.", view.SeverityError)
		m.fail(fmt.Errorf("%w: %s", ErrNotPDF, file.ContentType), "Please upload a PDF file.")
		return m.outcome(Session{}, nil)
	}

	release := o.ui.Busy.Acquire()
	defer release()

	session, record, err := o.run(ctx, m, file)
	if err != nil && !errors.Is(err, ErrInvalidFile) {
		slog.Error("Processing error", "file", file.Name, "step", m.step, "error", err)
		message := reasonOf(err)
		if message == "" {
			message = "An error occurred during processing"
		}
		o.ui.Notifier.Notify("Error", message, view.SeverityError)
	}
	return m.outcome(session, record)
}

func (o *Orchestrator) run(ctx context.Context, m *machine, file *receipt.File) (Session, *receipt.ReceiptRecord, error) {
	session, err := o.upload(ctx, m, file)
	if err != nil {
		return session, nil, err
	}
	if err := o.validate(ctx, m, session); err != nil {
		return session, nil, err
	}
	return o.process(ctx, m, session)
}

func (o *Orchestrator) upload(ctx context.Context, m *machine, file *receipt.File) (Session, error) {
	m.advance(PhaseUploading)
	o.ui.Steps.SetStatus(1, view.StatusProcessing)

	fileID, err := o.api.Upload(ctx, file)
	if err != nil {
		o.ui.Steps.SetStatus(1, view.StatusError)
		slog.Error("Error uploading file", "file", file.Name, "error", err)
		o.ui.Notifier.Notify("Upload Error", "There was an error uploading the file. Please try again.", view.SeverityError)
		return Session{}, m.fail(err, reasonOf(err))
	}

	o.ui.Steps.SetStatus(1, view.StatusSuccess)
	o.ui.Notifier.Notify("Upload Complete", "File uploaded successfully", view.SeveritySuccess)
	return Session{FileID: fileID}, nil
}

func (o *Orchestrator) validate(ctx context.Context, m *machine, session Session) error {
	m.advance(PhaseValidating)
	o.ui.Steps.SetStatus(2, view.StatusProcessing)

	result, err := o.api.Validate(ctx, session.FileID)
	if err != nil {
		o.ui.Steps.SetStatus(2, view.StatusError)
		return m.fail(err, reasonOf(err))
	}
	if !result.IsValid {
		reason := result.Reason
		if reason == "" {
			reason = "The uploaded file is not a valid PDF"
		}
		o.ui.Steps.SetStatus(2, view.StatusError)
		o.ui.Notifier.Notify("Invalid PDF", reason, view.SeverityError)
		return m.fail(fmt.Errorf("%w: %s", ErrInvalidFile, reason), reason)
	}

	o.ui.Steps.SetStatus(2, view.StatusSuccess)
	o.ui.Notifier.Notify("Validation Complete", "PDF validation successful", view.SeveritySuccess)
	return nil
}

func (o *Orchestrator) process(ctx context.Context, m *machine, session Session) (Session, *receipt.ReceiptRecord, error) {
	m.advance(PhaseProcessing)
	o.ui.Steps.SetStatus(3, view.StatusProcessing)

	processed, err := o.api.Process(ctx, session.FileID)
	if err != nil {
		o.ui.Steps.SetStatus(3, view.StatusError)
		return session, nil, m.fail(err, reasonOf(err))
	}

	o.ui.Steps.SetStatus(3, view.StatusSuccess)
	o.ui.Notifier.Notify("Processing Complete", "Receipt processed successfully", view.SeveritySuccess)

	session.ReceiptID = processed.ReceiptID
	o.ui.Results.Render(processed.Receipt, o.api.DetailURL(session.ReceiptID))

	// The loader reports its own failures; a stale table does not fail the run.
	if o.loader != nil {
		_ = o.loader.Load(ctx)
	}

	m.advance(PhaseDone)
	return session, &processed.Receipt, nil
}
