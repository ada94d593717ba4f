package view

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/language"
)

const (
	// NotAvailable is shown for missing receipt fields
	NotAvailable = "Not available"
	// NA is shown for missing table cells
	NA = "N/A"
)

var (
	dateTags = []language.Tag{
		language.AmericanEnglish,
		language.BritishEnglish,
		language.German,
		language.French,
		language.Spanish,
		language.Japanese,
		language.Chinese,
	}
	dateLayouts = []string{
		"1/2/2006",
		"02/01/2006",
		"2.1.2006",
		"02/01/2006",
		"2/1/2006",
		"2006/1/2",
		"2006/1/2",
	}
	dateMatcher = language.NewMatcher(dateTags)
)

// isoLayouts are the timestamp shapes the API emits
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Formatter formats dates for a locale and amounts with their currency
type Formatter struct {
	dateLayout string
}

// NewFormatter returns a Formatter for the closest supported locale.
// Unknown locales fall back to en-US.
func NewFormatter(locale string) Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		return Formatter{dateLayout: dateLayouts[0]}
	}
	_, index, _ := dateMatcher.Match(tag)
	return Formatter{dateLayout: dateLayouts[index]}
}

// Date formats an ISO-8601 timestamp as a date. Empty input reports false;
// unparseable input is returned as is.
func (f Formatter) Date(value string) (string, bool) {
	if value == "" {
		return "", false
	}
	layout := f.dateLayout
	if layout == "" {
		layout = dateLayouts[0]
	}
	for _, iso := range isoLayouts {
		if t, err := time.Parse(iso, value); err == nil {
			return t.Format(layout), true
		}
	}
	return value, true
}

// Amount formats "<currency> <amount>" with two decimals. A zero amount
// counts as missing.
func Amount(currency string, amount float64) (string, bool) {
	if amount == 0 {
		return "", false
	}
	return fmt.Sprintf("%s %.2f", currency, amount), true
}

// Quantity formats an item quantity. Zero counts as missing.
func Quantity(q float64) (string, bool) {
	if q == 0 {
		return "", false
	}
	return strconv.FormatFloat(q, 'f', -1, 64), true
}

func orDefault(value string, ok bool, fallback string) string {
	if !ok {
		return fallback
	}
	return value
}

func textOr(value, fallback string) string {
	return orDefault(value, value != "", fallback)
}
