package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Corporate BillType = "Corporate"
	Event     BillType = "Event"
)

// DateLayout is the calendar date format used for bill and service dates.
const DateLayout = "2006-01-02"

type (
	BillType string

	// LineItem is one billable row of a Bill. Total is derived and is
	// overwritten by Recalculate.
	LineItem struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		Quantity    int64  `json:"quantity"`
		UnitPrice   Amount `json:"unitPrice"`
		Total       Amount `json:"total"`

		ServiceDate string `json:"serviceDate,omitempty"` // Corporate
		PackageType string `json:"packageType,omitempty"` // Economy, Standard, Premium
		PackageName string `json:"packageName,omitempty"` // Event
	}

	Bill struct {
		ID            string     `json:"id"`
		Type          BillType   `json:"type"`
		ClientName    string     `json:"clientName"` // corporate name or event name
		ContactPerson string     `json:"contactPerson"`
		ContactNumber string     `json:"contactNumber"`
		Date          string     `json:"date"` // billing date or event date
		Items         []LineItem `json:"items"`
		GrandTotal    Amount     `json:"grandTotal"`
		CreatedAt     time.Time  `json:"createdAt"`
	}
)

var (
	ErrInvalidBillType     = errors.New("invalid bill type")
	ErrEmptyClientName     = errors.New("empty client name")
	ErrEmptyContactPerson  = errors.New("empty contact person")
	ErrEmptyContactNumber  = errors.New("empty contact number")
	ErrInvalidDate         = errors.New("invalid date")
	ErrNoItems             = errors.New("bill must contain at least one item")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrNegativeUnitPrice   = errors.New("unit price cannot be negative")
	ErrEmptyItemDescriptor = errors.New("empty item description")
	ErrEmptyPackageName    = errors.New("empty package name")
	ErrQuantityTooLarge    = errors.New("quantity exceeds limit")
	ErrAmountTooLarge      = errors.New("amount exceeds limit")
)

// MaxQuantity bounds a row's quantity (persons or units).
const MaxQuantity = 1_000_000

// ParseBillType accepts the bill type case-insensitively.
func ParseBillType(s string) (BillType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "corporate":
		return Corporate, nil
	case "event":
		return Event, nil
	}
	return "", ErrInvalidBillType
}

// String implements fmt.Stringer
func (t BillType) String() string {
	return string(t)
}

// IsValid reports whether t is one of the known bill types.
func (t BillType) IsValid() bool {
	return t == Corporate || t == Event
}

// Recalculate sets Total from Quantity and UnitPrice.
func (li *LineItem) Recalculate() {
	li.Total = li.UnitPrice.Times(li.Quantity)
}

// Validate checks quantity and price bounds. With both in range the row
// total fits in MaxAmount without overflowing int64.
func (li LineItem) Validate() error {
	if li.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if li.Quantity > MaxQuantity {
		return ErrQuantityTooLarge
	}
	if li.UnitPrice < 0 {
		return ErrNegativeUnitPrice
	}
	if li.UnitPrice > MaxAmount || li.UnitPrice.Times(li.Quantity) > MaxAmount {
		return ErrAmountTooLarge
	}
	return nil
}

// validateFor adds the per-type row rules: corporate rows carry a
// description, event rows a package name.
func (li LineItem) validateFor(t BillType) error {
	if err := li.Validate(); err != nil {
		return err
	}
	switch t {
	case Corporate:
		if strings.TrimSpace(li.Description) == "" {
			return ErrEmptyItemDescriptor
		}
	case Event:
		if strings.TrimSpace(li.PackageName) == "" {
			return ErrEmptyPackageName
		}
	}
	return nil
}

// Recalculate refreshes every item total and the grand total.
func (b *Bill) Recalculate() {
	for i := range b.Items {
		b.Items[i].Recalculate()
	}
	b.GrandTotal = GrandTotal(b.Items)
}

// Validate applies the rules the bill forms enforce before submission.
// The store never calls it.
func (b Bill) Validate() error {
	if !b.Type.IsValid() {
		return ErrInvalidBillType
	}
	if strings.TrimSpace(b.ClientName) == "" {
		return ErrEmptyClientName
	}
	if strings.TrimSpace(b.ContactPerson) == "" {
		return ErrEmptyContactPerson
	}
	if strings.TrimSpace(b.ContactNumber) == "" {
		return ErrEmptyContactNumber
	}
	if _, err := time.Parse(DateLayout, b.Date); err != nil {
		return ErrInvalidDate
	}
	if len(b.Items) == 0 {
		return ErrNoItems
	}
	var sum Amount
	for _, item := range b.Items {
		if err := item.validateFor(b.Type); err != nil {
			return err
		}
		// each row is at most MaxAmount, so the running sum cannot wrap
		sum += item.UnitPrice.Times(item.Quantity)
		if sum > MaxAmount {
			return ErrAmountTooLarge
		}
	}
	return nil
}

// Clone returns a copy of b that shares no item storage with it.
func (b Bill) Clone() Bill {
	out := b
	if b.Items != nil {
		out.Items = make([]LineItem, len(b.Items))
		copy(out.Items, b.Items)
	}
	return out
}

// InvoiceNumber is the short printable reference derived from the bill id.
func (b Bill) InvoiceNumber() string {
	id := b.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}
