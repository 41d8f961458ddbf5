// Package invoice renders bills as printable HTML and PDF invoices.
package invoice

import (
	"strings"

	"invoicer/internal/core"
	"invoicer/internal/money"
)

const (
	DefaultFooter = "Thank you for your business!"
	DefaultTerms  = "Terms & Conditions Apply"
)

// Business is the issuer shown in the invoice header.
type Business struct {
	Name    string
	Address string
	Phone   string
}

// Row is one formatted line of the invoice table.
type Row struct {
	Description string
	PackageType string
	Quantity    int64
	UnitPrice   string
	Total       string
}

// Document is the fully formatted view of a bill.
type Document struct {
	Number        string
	BillID        string
	BillType      core.BillType
	Date          string
	ClientName    string
	ContactPerson string
	ContactNumber string
	Rows          []Row
	GrandTotal    string
	AmountInWords string
	Business      Business
	Footer        string
	Terms         string
}

// NewDocument formats bill for printing. Row totals are recomputed from
// quantity and unit price; the grand total is the stored one.
func NewDocument(bill core.Bill, biz Business) Document {
	doc := Document{
		Number:        bill.InvoiceNumber(),
		BillID:        bill.ID,
		BillType:      bill.Type,
		Date:          bill.Date,
		ClientName:    bill.ClientName,
		ContactPerson: bill.ContactPerson,
		ContactNumber: bill.ContactNumber,
		Rows:          make([]Row, 0, len(bill.Items)),
		GrandTotal:    money.FormatCurrency(bill.GrandTotal.Float()),
		AmountInWords: money.AmountToWords(bill.GrandTotal.Float()),
		Business:      biz,
		Footer:        DefaultFooter,
		Terms:         DefaultTerms,
	}
	for _, item := range bill.Items {
		desc := item.Description
		if strings.TrimSpace(desc) == "" {
			// event rows may leave the description blank
			desc = item.PackageName
		}
		doc.Rows = append(doc.Rows, Row{
			Description: desc,
			PackageType: item.PackageType,
			Quantity:    item.Quantity,
			UnitPrice:   money.FormatCurrency(item.UnitPrice.Float()),
			Total:       money.FormatCurrency(item.UnitPrice.Times(item.Quantity).Float()),
		})
	}
	return doc
}
