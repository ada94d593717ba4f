package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/receipt-uploader/internal/receipt"
	"github.com/zombor/receipt-uploader/internal/view"
)

// IDGenerator generates unique IDs for submissions
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates time ordered UUIDv7 ids
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Controller wires the upload page: it loads the receipts table, runs
// submissions and remembers the identifiers they produced
type Controller struct {
	api          API
	ui           Presenters
	loader       *Loader
	orchestrator *Orchestrator
	history      receipt.DB
	idGenerator  IDGenerator
	timeSource   TimeSource

	mu     sync.Mutex
	active Session
}

// NewController creates a new Controller. history may be nil.
func NewController(client API, display view.Display, format view.Formatter, history receipt.DB) *Controller {
	return NewControllerWithDeps(client, display, format, history, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewControllerWithDeps creates a new Controller with custom dependencies for testing
func NewControllerWithDeps(client API, display view.Display, format view.Formatter, history receipt.DB, idGen IDGenerator, timeSrc TimeSource) *Controller {
	ui := NewPresenters(display, format)
	loader := NewLoader(client, ui.Receipts, ui.Notifier)
	return &Controller{
		api:          client,
		ui:           ui,
		loader:       loader,
		orchestrator: NewOrchestrator(client, ui, loader),
		history:      history,
		idGenerator:  idGen,
		timeSource:   timeSrc,
	}
}

// Open prepares the page: all steps waiting, results hidden, receipts loaded
func (c *Controller) Open(ctx context.Context) error {
	c.ui.Steps.Reset()
	return c.loader.Load(ctx)
}

// Submit runs file through the pipeline and records the attempt in the
// history. The returned error only reports a failure to record.
func (c *Controller) Submit(ctx context.Context, file *receipt.File) (Outcome, error) {
	startedAt := c.timeSource.Now()
	out := c.orchestrator.Submit(ctx, file)

	c.mu.Lock()
	if out.Session.FileID != "" {
		c.active.FileID = out.Session.FileID
	}
	if out.Session.ReceiptID != "" {
		c.active.ReceiptID = out.Session.ReceiptID
	}
	c.mu.Unlock()

	// Only attempts that reached the API are worth remembering.
	if c.history == nil || (out.Phase != PhaseDone && out.Step == 0) {
		return out, nil
	}

	submission := &receipt.Submission{
		ID:         c.idGenerator.Generate(),
		FileName:   file.Name,
		FileID:     out.Session.FileID,
		ReceiptID:  out.Session.ReceiptID,
		Phase:      string(out.Phase),
		FailedStep: out.Step,
		Reason:     out.Reason,
		StartedAt:  startedAt,
		FinishedAt: c.timeSource.Now(),
	}
	if err := c.history.SaveSubmission(submission); err != nil {
		slog.Warn("Failed to record submission", "file", file.Name, "error", err)
		return out, fmt.Errorf("recording submission: %w", err)
	}
	return out, nil
}

// Session returns the identifiers produced by the submissions run through
// this controller
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// ViewReceipt returns the detail page of the active receipt. Without one,
// it falls back to the latest receipt recorded in the history.
func (c *Controller) ViewReceipt() (string, error) {
	c.mu.Lock()
	id := c.active.ReceiptID
	c.mu.Unlock()

	if id == "" && c.history != nil {
		latest, err := c.history.LatestReceipt()
		if err != nil && !errors.Is(err, receipt.ErrNotFound) {
			return "", fmt.Errorf("reading history: %w", err)
		}
		if latest != nil {
			id = latest.ReceiptID
		}
	}
	if id == "" {
		return "", ErrNoReceipt
	}
	return c.api.DetailURL(id), nil
}
