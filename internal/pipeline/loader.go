package pipeline

import (
	"context"
	"log/slog"

	"github.com/zombor/receipt-uploader/internal/receipt"
	"github.com/zombor/receipt-uploader/internal/view"
)

// ReceiptLister lists stored receipts and links to their detail pages
type ReceiptLister interface {
	ListReceipts(ctx context.Context) ([]receipt.ReceiptSummary, error)
	DetailURL(id receipt.ID) string
}

// Loader refreshes the receipts table
type Loader struct {
	api      ReceiptLister
	table    *view.ReceiptsTable
	notifier *view.Notifier
}

// NewLoader creates a new Loader
func NewLoader(client ReceiptLister, table *view.ReceiptsTable, notifier *view.Notifier) *Loader {
	return &Loader{api: client, table: table, notifier: notifier}
}

// Load fetches all receipts and rebuilds the table. On failure the table
// keeps its previous rows.
func (l *Loader) Load(ctx context.Context) error {
	receipts, err := l.api.ListReceipts(ctx)
	if err != nil {
		slog.Error("Error loading receipts", "error", err)
		l.notifier.Notify("Error", "Failed to load receipts", view.SeverityError)
		return err
	}
	l.table.Render(receipts, l.api.DetailURL)
	return nil
}
