package documents

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"labquote/models"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

// QuotationQR encodes the quotation number and its verification link as a PNG.
func (r *Renderer) QuotationQR(q *models.Quotation) ([]byte, error) {
	content := q.QuotationNumber + "\n" + r.company.QuotationURL(q.QuotationNumber)
	return qrcode.Encode(content, qrcode.Medium, 256)
}

// pdfText drops runes outside the Basic Multilingual Plane, which gofpdf's
// UTF-8 width tables cannot index.
func pdfText(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return -1
		}
		return r
	}, s)
}

// QuotationPDF writes an A4 quotation with items, totals and a QR code.
func (r *Renderer) QuotationPDF(w io.Writer, q *models.Quotation) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetCompression(r.compress)
	r.fonts.register(pdf)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(pdfFamily, "", 8)
		pdf.CellFormat(95, 6, "Generated on: "+r.now().Format("2006-01-02 15:04:05"), "", 0, "L", false, 0, "")
		pdf.CellFormat(95, 6, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AliasNbPages("")
	pdf.AddPage()

	// Letterhead
	pdf.SetFont(pdfFamily, "B", 16)
	pdf.Cell(150, 8, pdfText(r.company.Name))
	pdf.Ln(8)
	pdf.SetFont(pdfFamily, "", 9)
	if r.company.Address != "" {
		pdf.Cell(150, 5, pdfText(r.company.Address))
		pdf.Ln(5)
	}
	if r.company.Phone != "" {
		pdf.Cell(150, 5, "Tel. "+r.company.Phone)
		pdf.Ln(5)
	}

	png, err := r.QuotationQR(q)
	if err != nil {
		return fmt.Errorf("qr code: %w", err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("qr", 168, 8, 30, 30, false, opts, 0, "")

	pdf.SetY(40)
	pdf.SetFont(pdfFamily, "B", 18)
	pdf.CellFormat(190, 10, "QUOTATION", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Parties and reference block
	top := pdf.GetY()
	pdf.SetFont(pdfFamily, "B", 11)
	pdf.Cell(95, 7, "To")
	pdf.Ln(7)
	pdf.SetFont(pdfFamily, "", 10)
	pdf.Cell(95, 6, pdfText(customerName(q)))
	pdf.Ln(6)
	if q.Requester != nil {
		contact := q.Requester.Name
		if q.Requester.Department != "" {
			contact += ", " + q.Requester.Department
		}
		pdf.Cell(95, 6, pdfText(contact))
		pdf.Ln(6)
		if q.Requester.Email != "" {
			pdf.Cell(95, 6, pdfText(q.Requester.Email))
			pdf.Ln(6)
		}
	}
	left := pdf.GetY()

	pdf.SetXY(110, top)
	ref := [][2]string{
		{"Quotation No.", q.QuotationNumber},
		{"Study type", Label(q.QuotationType)},
		{"Issue date", date(q.IssueDate)},
		{"Valid until", date(q.ValidUntil)},
		{"Status", Label(q.Status)},
	}
	if q.Modality != "" {
		ref = append(ref, [2]string{"Modality", Label(q.Modality)})
	}
	for _, kv := range ref {
		pdf.SetX(110)
		pdf.SetFont(pdfFamily, "B", 10)
		pdf.CellFormat(35, 6, kv[0], "", 0, "L", false, 0, "")
		pdf.SetFont(pdfFamily, "", 10)
		pdf.CellFormat(55, 6, pdfText(kv[1]), "", 1, "L", false, 0, "")
	}
	if y := pdf.GetY(); y < left {
		pdf.SetY(left)
	}
	pdf.Ln(4)
	if q.Title != "" {
		pdf.SetFont(pdfFamily, "B", 11)
		pdf.MultiCell(190, 6, "Subject: "+pdfText(q.Title), "", "L", false)
		pdf.Ln(2)
	}

	// Items
	widths := []float64{10, 100, 15, 32, 33}
	pdf.SetFont(pdfFamily, "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for i, h := range []string{"No", "Item", "Qty", "Unit Price", "Amount"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(pdfFamily, "", 9)
	for i, it := range q.Items {
		name := pdfText(it.Name)
		if detail := itemDetail(it); detail != "" {
			name += " (" + detail + ")"
		}
		lines := pdf.SplitText(name, widths[1]-2)
		h := float64(len(lines)) * 5
		if h < 7 {
			h = 7
		}
		if pdf.GetY()+h > 270 {
			pdf.AddPage()
		}
		x, y := pdf.GetX(), pdf.GetY()
		pdf.CellFormat(widths[0], h, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.Rect(x+widths[0], y, widths[1], h, "D")
		pdf.SetXY(x+widths[0]+1, y+(h-float64(len(lines))*5)/2)
		pdf.MultiCell(widths[1]-2, 5, name, "", "L", false)
		pdf.SetXY(x+widths[0]+widths[1], y)
		pdf.CellFormat(widths[2], h, fmt.Sprintf("%d", it.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], h, money(it.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], h, money(it.Amount), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// Totals
	for _, line := range totals(q) {
		style := ""
		if line.Strong {
			style = "B"
		}
		pdf.SetFont(pdfFamily, style, 10)
		pdf.CellFormat(125, 7, "", "", 0, "", false, 0, "")
		pdf.CellFormat(32, 7, line.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(33, 7, line.Amount, "1", 1, "R", false, 0, "")
	}

	if q.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont(pdfFamily, "B", 11)
		pdf.Cell(190, 7, "Notes")
		pdf.Ln(7)
		pdf.SetFont(pdfFamily, "", 10)
		pdf.MultiCell(190, 5, pdfText(q.Notes), "", "L", false)
	}

	pdf.Ln(6)
	pdf.SetFont(pdfFamily, "", 8)
	pdf.MultiCell(190, 4, "Amounts in KRW. Scan the QR code or visit "+r.company.QuotationURL(q.QuotationNumber)+" to verify this quotation.", "", "L", false)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}
