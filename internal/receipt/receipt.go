package receipt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID is an opaque identifier issued by the receipt API. The API emits
// integers, so numeric ids are written back as JSON numbers.
type ID string

// UnmarshalJSON accepts a JSON string, number or null
func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decoding id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decoding id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers and everything else as a string
func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) numeric() bool {
	if id == "" {
		return false
	}
	return strings.Trim(string(id), "0123456789") == ""
}

// ReceiptRecord is the structured data extracted from a processed receipt
type ReceiptRecord struct {
	ID            ID         `json:"id,omitempty"`
	MerchantName  string     `json:"merchant_name"`
	PurchasedAt   string     `json:"purchased_at"` // ISO-8601, zone optional
	ReceiptNumber string     `json:"receipt_number"`
	TotalAmount   float64    `json:"total_amount"`
	Currency      string     `json:"currency"`
	PaymentMethod string     `json:"payment_method"`
	TaxAmount     float64    `json:"tax_amount"`
	Items         []LineItem `json:"items"`
}

// LineItem is one purchased entry within a receipt, in display order
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

// ReceiptSummary is one row of the receipts list
type ReceiptSummary struct {
	ID           ID      `json:"id"`
	MerchantName string  `json:"merchant_name"`
	PurchasedAt  string  `json:"purchased_at"`
	TotalAmount  float64 `json:"total_amount"`
	Currency     string  `json:"currency"`
}

// Submission records one pipeline attempt in the local history
type Submission struct {
	ID         string    `json:"id"`
	FileName   string    `json:"file_name"`
	FileID     ID        `json:"file_id,omitempty"`
	ReceiptID  ID        `json:"receipt_id,omitempty"`
	Phase      string    `json:"phase"`
	FailedStep int       `json:"failed_step,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
