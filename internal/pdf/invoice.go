// Package pdf renders invoices as PDF documents with maroto.
package pdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/vortexease/backoffice/internal/models"
)

const dateLayout = "02 Jan 2006"

// RenderInvoice builds the PDF for an invoice. The invoice must come with
// Client and Applications (incl. VisaApplication) preloaded.
func RenderInvoice(inv *models.Invoice) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build()
	m := maroto.New(cfg)

	m.AddRows(
		row.New(12).Add(
			text.NewCol(8, "INVOICE", props.Text{Size: 18, Style: fontstyle.Bold}),
			text.NewCol(4, inv.InvoiceNumber, props.Text{Size: 12, Align: align.Right, Style: fontstyle.Bold}),
		),
		row.New(6).Add(
			text.NewCol(8, "Reference: "+inv.InvoiceID, props.Text{Size: 9}),
			text.NewCol(4, "Status: "+string(inv.Status), props.Text{Size: 9, Align: align.Right}),
		),
		row.New(6).Add(
			text.NewCol(8, "Invoice date: "+inv.InvoiceDate.Format(dateLayout), props.Text{Size: 9}),
			text.NewCol(4, "Due: "+inv.DueDate.Format(dateLayout), props.Text{Size: 9, Align: align.Right}),
		),
		row.New(4),
		row.New(6).Add(
			text.NewCol(12, "Billed to", props.Text{Size: 9, Style: fontstyle.Bold}),
		),
		row.New(5).Add(
			text.NewCol(12, inv.Client.FullName(), props.Text{Size: 9}),
		),
		row.New(5).Add(
			text.NewCol(12, inv.Client.Email, props.Text{Size: 9}),
		),
		row.New(5).Add(
			text.NewCol(12, "Client ref: "+inv.Client.ClientID, props.Text{Size: 9}),
		),
		row.New(6),
	)

	m.AddRows(
		row.New(7).Add(
			text.NewCol(6, "Visa application", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.NewCol(3, "Type", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.NewCol(3, "Price", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		),
		row.New(2).Add(col.New(12).Add(line.New())),
	)
	for _, ia := range inv.Applications {
		m.AddRow(6,
			text.NewCol(6, ia.VisaApplication.ApplicationID, props.Text{Size: 9}),
			text.NewCol(3, ia.VisaApplication.VisaType, props.Text{Size: 9}),
			text.NewCol(3, money(ia.UnitPrice, inv.Currency), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRows(
		row.New(2).Add(col.New(12).Add(line.New())),
		summaryRow("Subtotal", money(inv.Subtotal, inv.Currency), false),
	)
	if inv.Discount.IsPositive() {
		m.AddRows(summaryRow("Discount", "-"+money(inv.Discount, inv.Currency), false))
	}
	if inv.TaxRate.IsPositive() {
		label := fmt.Sprintf("Tax (%s%%)", inv.TaxRate.String())
		m.AddRows(summaryRow(label, money(inv.TaxAmount, inv.Currency), false))
	}
	m.AddRows(summaryRow("Total due", money(inv.TotalAmount, inv.Currency), true))

	if inv.Notes != "" {
		m.AddRows(
			row.New(6),
			row.New(5).Add(text.NewCol(12, "Notes", props.Text{Size: 9, Style: fontstyle.Bold})),
			row.New(5).Add(text.NewCol(12, inv.Notes, props.Text{Size: 9})),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func summaryRow(label, value string, bold bool) core.Row {
	style := fontstyle.Normal
	if bold {
		style = fontstyle.Bold
	}
	return row.New(6).Add(
		text.NewCol(9, label, props.Text{Size: 9, Align: align.Right, Style: style}),
		text.NewCol(3, value, props.Text{Size: 9, Align: align.Right, Style: style}),
	)
}

func money(d decimal.Decimal, currency string) string {
	return currency + " " + d.StringFixed(2)
}
