package invoice

import (
	"bytes"

	"github.com/go-pdf/fpdf"
)

// RenderPDF lays out the document as an A4 PDF. Same content as the HTML
// render, minus the tracking pixel (exports never track).
func RenderPDF(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	accent := func() { pdf.SetTextColor(79, 70, 229) }
	muted := func() { pdf.SetTextColor(136, 136, 136) }
	body := func() { pdf.SetTextColor(51, 51, 51) }

	// Header
	accent()
	pdf.SetFont("Helvetica", "B", 26)
	pdf.CellFormat(110, 12, "INVOICE", "", 0, "L", false, 0, "")
	body()
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(70, 12, doc.FromName, "", 1, "R", false, 0, "")

	muted()
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(110, 6, doc.Number, "", 0, "L", false, 0, "")
	pdf.CellFormat(70, 6, doc.FromEmail, "", 1, "R", false, 0, "")
	pdf.Ln(8)

	// Meta
	body()
	pdf.SetFont("Helvetica", "", 11)
	meta := [][2]string{}
	if doc.Title != "" {
		meta = append(meta, [2]string{"Title:", doc.Title})
	}
	meta = append(meta, [2]string{"Date:", doc.Date})
	if doc.DueDate != "" {
		meta = append(meta, [2]string{"Due Date:", doc.DueDate})
	}
	meta = append(meta, [2]string{"Currency:", doc.Currency})

	metaTop := pdf.GetY()
	for _, kv := range meta {
		muted()
		pdf.CellFormat(25, 6, kv[0], "", 0, "L", false, 0, "")
		body()
		pdf.CellFormat(75, 6, kv[1], "", 1, "L", false, 0, "")
	}
	metaBottom := pdf.GetY()

	pdf.SetY(metaTop)
	muted()
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(180, 5, "AMOUNT DUE", "", 1, "R", false, 0, "")
	accent()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(180, 10, doc.Currency+" "+FormatMoney(doc.Total), "", 1, "R", false, 0, "")
	if pdf.GetY() < metaBottom {
		pdf.SetY(metaBottom)
	}
	pdf.Ln(6)

	if doc.Notes != "" {
		pdf.SetFillColor(245, 245, 245)
		muted()
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(180, 6, doc.Notes, "", "L", true)
		pdf.Ln(4)
	}

	// Line items
	body()
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(90, 8, "Description", "B", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "Qty", "B", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, "Unit Price", "B", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Total", "B", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range doc.Items {
		pdf.CellFormat(90, 8, it.Description, "B", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, FormatQuantity(it.Quantity), "B", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, FormatMoney(it.UnitPrice), "B", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, FormatMoney(it.Total), "B", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	// Totals
	muted()
	pdf.CellFormat(110, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(35, 6, "Subtotal", "", 0, "L", false, 0, "")
	body()
	pdf.CellFormat(35, 6, doc.Currency+" "+FormatMoney(doc.Subtotal), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(110, 8, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(35, 8, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(35, 8, doc.Currency+" "+FormatMoney(doc.Total), "T", 1, "R", false, 0, "")

	pdf.Ln(15)
	muted()
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(180, 5, "Generated by NexaFlow CRM", "T", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
