package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

func validBill() Bill {
	return Bill{
		ID:            "3f2b8c1e-0000-4000-8000-000000000001",
		Type:          Corporate,
		ClientName:    "Acme Ltd",
		ContactPerson: "Rahim",
		ContactNumber: "01700000000",
		Date:          "2025-03-01",
		Items: []LineItem{
			{ID: "a", Description: "Service on 2025-03-01", Quantity: 2, UnitPrice: 100},
			{ID: "b", Description: "Service on 2025-03-02", Quantity: 1, UnitPrice: 50},
		},
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestBillRecalculate(t *testing.T) {
	b := validBill()
	b.Items[0].Total = 9999 // stale
	b.GrandTotal = 1
	b.Recalculate()

	if b.Items[0].Total != 200 || b.Items[1].Total != 50 {
		t.Fatalf("unexpected item totals: %d %d", b.Items[0].Total, b.Items[1].Total)
	}
	if b.GrandTotal != 250 {
		t.Fatalf("expected grand total 250, got %d", b.GrandTotal)
	}
}

func TestGrandTotalMatchesSumOfProducts(t *testing.T) {
	cases := []struct {
		items []LineItem
		want  Amount
	}{
		{nil, 0},
		{[]LineItem{{Quantity: 30, UnitPrice: 200}}, 6000},
		{[]LineItem{{Quantity: 1, UnitPrice: 0}, {Quantity: 7, UnitPrice: 450}}, 3150},
		{[]LineItem{{Quantity: 3, UnitPrice: 150}, {Quantity: 3, UnitPrice: 250}, {Quantity: 3, UnitPrice: 450}}, 2550},
	}
	for i, tc := range cases {
		if got := GrandTotal(tc.items); got != tc.want {
			t.Fatalf("case %d: expected %d, got %d", i, tc.want, got)
		}
	}
}

func TestBillValidate(t *testing.T) {
	if err := validBill().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Bill)
		want   error
	}{
		{"bad type", func(b *Bill) { b.Type = "Wedding" }, ErrInvalidBillType},
		{"no client", func(b *Bill) { b.ClientName = "  " }, ErrEmptyClientName},
		{"no contact person", func(b *Bill) { b.ContactPerson = "" }, ErrEmptyContactPerson},
		{"no contact number", func(b *Bill) { b.ContactNumber = "" }, ErrEmptyContactNumber},
		{"bad date", func(b *Bill) { b.Date = "01/03/2025" }, ErrInvalidDate},
		{"no items", func(b *Bill) { b.Items = nil }, ErrNoItems},
		{"zero quantity", func(b *Bill) { b.Items[1].Quantity = 0 }, ErrInvalidQuantity},
		{"negative price", func(b *Bill) { b.Items[0].UnitPrice = -5 }, ErrNegativeUnitPrice},
		{"empty description", func(b *Bill) { b.Items[0].Description = "" }, ErrEmptyItemDescriptor},
		{"quantity over limit", func(b *Bill) { b.Items[0].Quantity = MaxQuantity + 1 }, ErrQuantityTooLarge},
		{"unit price would overflow", func(b *Bill) { b.Items[0].UnitPrice = math.MaxInt64 }, ErrAmountTooLarge},
		{"row total over limit", func(b *Bill) { b.Items[0].UnitPrice = MaxAmount; b.Items[0].Quantity = 2 }, ErrAmountTooLarge},
		{"grand total over limit", func(b *Bill) {
			b.Items[0].UnitPrice, b.Items[0].Quantity = MaxAmount, 1
			b.Items[1].UnitPrice, b.Items[1].Quantity = MaxAmount, 1
		}, ErrAmountTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := validBill()
			tc.mutate(&b)
			if err := b.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestEventItemRules(t *testing.T) {
	b := validBill()
	b.Type = Event
	for i := range b.Items {
		b.Items[i].PackageName = "Package-1"
		b.Items[i].Description = ""
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("event rows need no description, got %v", err)
	}

	b.Items[1].PackageName = " "
	if err := b.Validate(); !errors.Is(err, ErrEmptyPackageName) {
		t.Fatalf("expected ErrEmptyPackageName, got %v", err)
	}
}

func TestParseBillType(t *testing.T) {
	for in, want := range map[string]BillType{"Corporate": Corporate, "event": Event, " EVENT ": Event} {
		got, err := ParseBillType(in)
		if err != nil || got != want {
			t.Fatalf("ParseBillType(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseBillType("party"); !errors.Is(err, ErrInvalidBillType) {
		t.Fatalf("expected ErrInvalidBillType, got %v", err)
	}
}

func TestCloneDoesNotShareItems(t *testing.T) {
	b := validBill()
	c := b.Clone()
	c.Items[0].Quantity = 99
	if b.Items[0].Quantity == 99 {
		t.Fatalf("clone shares item storage")
	}
}

func TestInvoiceNumber(t *testing.T) {
	b := Bill{ID: "3f2b8c1e-aaaa-4000-8000-000000000001"}
	if got := b.InvoiceNumber(); got != "3F2B8C1E" {
		t.Fatalf("unexpected invoice number %q", got)
	}
	if got := (Bill{ID: "ab"}).InvoiceNumber(); got != "AB" {
		t.Fatalf("unexpected short invoice number %q", got)
	}
}
