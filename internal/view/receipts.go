package view

import "github.com/zombor/receipt-uploader/internal/receipt"

// NoReceipts is the single row shown for an empty receipts list
const NoReceipts = "No receipts found"

// ReceiptsTable renders the summary table of stored receipts
type ReceiptsTable struct {
	view   ReceiptsView
	format Formatter
}

// NewReceiptsTable creates a ReceiptsTable. A nil view makes Render a no-op.
func NewReceiptsTable(view ReceiptsView, format Formatter) *ReceiptsTable {
	return &ReceiptsTable{view: view, format: format}
}

// Render replaces the table contents with one row per receipt
func (t *ReceiptsTable) Render(summaries []receipt.ReceiptSummary, detailURL func(receipt.ID) string) {
	if t == nil || t.view == nil {
		return
	}
	if len(summaries) == 0 {
		t.view.ShowReceipts([]Row{{Cells: []string{NoReceipts}, FullWidth: true}})
		return
	}

	rows := make([]Row, 0, len(summaries))
	for _, s := range summaries {
		date, dateOK := t.format.Date(s.PurchasedAt)
		amount, amountOK := Amount(s.Currency, s.TotalAmount)
		row := Row{Cells: []string{
			string(s.ID),
			textOr(s.MerchantName, "Unknown"),
			orDefault(date, dateOK, NA),
			orDefault(amount, amountOK, NA),
		}}
		if detailURL != nil && s.ID != "" {
			row.Link = detailURL(s.ID)
		}
		rows = append(rows, row)
	}
	t.view.ShowReceipts(rows)
}
