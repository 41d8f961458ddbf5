package invoice

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"invoicer/internal/money"
)

// the core PDF fonts are single-byte encoded
var pdfText = strings.NewReplacer(money.CurrencySeparator, " ")

// RenderPDF lays doc out on A4 pages and returns the PDF bytes.
func RenderPDF(ctx context.Context, doc Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(6, "INVOICE", props.Text{Size: 20, Style: fontstyle.Bold, Align: align.Left}),
		text.NewCol(6, doc.Business.Name, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(14,
		col.New(6).Add(
			text.New("Invoice #: "+doc.Number, props.Text{Size: 9}),
			text.New("Date: "+doc.Date, props.Text{Size: 9, Top: 5}),
		),
		col.New(6).Add(
			text.New(doc.Business.Address, props.Text{Size: 9, Align: align.Right}),
			text.New(phoneLine(doc.Business.Phone), props.Text{Size: 9, Top: 5, Align: align.Right}),
		),
	)
	m.AddRow(4, line.NewCol(12))

	m.AddRow(24,
		col.New(12).Add(
			text.New("Bill To:", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.New(doc.ClientName, props.Text{Size: 12, Style: fontstyle.Bold, Top: 5}),
			text.New(doc.ContactPerson, props.Text{Size: 9, Top: 11}),
			text.New(doc.ContactNumber, props.Text{Size: 9, Top: 16}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty/Pers", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit Price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	for _, row := range doc.Rows {
		desc := row.Description
		if row.PackageType != "" {
			desc += " (" + row.PackageType + ")"
		}
		m.AddRow(8,
			text.NewCol(6, desc, props.Text{Size: 9}),
			text.NewCol(2, strconv.FormatInt(row.Quantity, 10), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, pdfText.Replace(row.UnitPrice), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, pdfText.Replace(row.Total), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(2, line.NewCol(12))
	m.AddRow(10,
		col.New(6),
		text.NewCol(3, "Grand Total:", props.Text{Size: 11, Style: fontstyle.Bold}),
		text.NewCol(3, pdfText.Replace(doc.GrandTotal), props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(8,
		text.NewCol(12, doc.AmountInWords, props.Text{Size: 9, Style: fontstyle.Italic, Align: align.Right}),
	)

	m.AddRow(20,
		col.New(12).Add(
			text.New(doc.Footer, props.Text{Size: 9, Align: align.Center, Top: 10}),
			text.New(doc.Terms, props.Text{Size: 8, Align: align.Center, Top: 15}),
		),
	)

	pdf, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return pdf.GetBytes(), nil
}

func phoneLine(phone string) string {
	if phone == "" {
		return ""
	}
	return "Phone: " + phone
}
