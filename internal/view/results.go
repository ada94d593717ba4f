package view

import "github.com/zombor/receipt-uploader/internal/receipt"

// Result panel field keys
const (
	FieldMerchant      = "merchant-name"
	FieldDate          = "purchase-date"
	FieldReceiptNumber = "receipt-number"
	FieldTotal         = "total-amount"
	FieldPayment       = "payment-method"
	FieldTax           = "tax-amount"
)

// NoItems is the single row shown for a receipt without line items
const NoItems = "No items found"

// ResultRenderer projects a processed receipt into the results panel
type ResultRenderer struct {
	view   ResultsView
	format Formatter
}

// NewResultRenderer creates a ResultRenderer. A nil view makes Render a no-op.
func NewResultRenderer(view ResultsView, format Formatter) *ResultRenderer {
	return &ResultRenderer{view: view, format: format}
}

// Render shows the results panel for record. viewURL is the target of the
// "view receipt" action.
func (r *ResultRenderer) Render(record receipt.ReceiptRecord, viewURL string) {
	if r == nil || r.view == nil {
		return
	}
	r.view.ShowResults(r.Panel(record, viewURL))
}

// Panel builds the results panel without showing it
func (r *ResultRenderer) Panel(record receipt.ReceiptRecord, viewURL string) ResultPanel {
	date, dateOK := r.format.Date(record.PurchasedAt)
	total, totalOK := Amount(record.Currency, record.TotalAmount)
	tax, taxOK := Amount(record.Currency, record.TaxAmount)

	panel := ResultPanel{
		Fields: []Field{
			{Key: FieldMerchant, Label: "Merchant", Value: textOr(record.MerchantName, NotAvailable)},
			{Key: FieldDate, Label: "Date", Value: orDefault(date, dateOK, NotAvailable)},
			{Key: FieldReceiptNumber, Label: "Receipt number", Value: textOr(record.ReceiptNumber, NotAvailable)},
			{Key: FieldTotal, Label: "Total", Value: orDefault(total, totalOK, NotAvailable)},
			{Key: FieldPayment, Label: "Payment method", Value: textOr(record.PaymentMethod, NotAvailable)},
			{Key: FieldTax, Label: "Tax", Value: orDefault(tax, taxOK, NotAvailable)},
		},
		Items:   make([]Row, 0, len(record.Items)),
		ViewURL: viewURL,
	}

	if len(record.Items) == 0 {
		panel.Items = append(panel.Items, Row{Cells: []string{NoItems}, FullWidth: true})
		return panel
	}
	for _, item := range record.Items {
		qty, qtyOK := Quantity(item.Quantity)
		unit, unitOK := Amount(record.Currency, item.UnitPrice)
		sum, sumOK := Amount(record.Currency, item.TotalPrice)
		panel.Items = append(panel.Items, Row{Cells: []string{
			textOr(item.Description, NA),
			orDefault(qty, qtyOK, NA),
			orDefault(unit, unitOK, NA),
			orDefault(sum, sumOK, NA),
		}})
	}
	return panel
}
