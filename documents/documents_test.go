package documents

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"labquote/config"
	"labquote/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testRenderer() *Renderer {
	r := NewRenderer(config.Company{
		Name:      "LabQuote CRO",
		Address:   "1 Bio-ro, Osong",
		Phone:     "043-000-0000",
		PublicURL: "https://quote.example",
	})
	r.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }
	return r
}

func sampleQuotation() *models.Quotation {
	issue := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	requesterID := uint(1)
	return &models.Quotation{
		ID:              1,
		QuotationNumber: "25-MK-01-0001",
		QuotationType:   models.QuotationTypeToxicity,
		Title:           "HB-101 GLP package <phase 1 & 2>",
		Modality:        "small_molecule",
		Status:          models.QuotationStatusSubmitted,
		IssueDate:       issue,
		ValidUntil:      issue.AddDate(0, 0, 30),
		Subtotal:        60_000_000,
		DiscountType:    models.DiscountRate,
		DiscountValue:   10,
		DiscountAmount:  6_000_000,
		Total:           54_000_000,
		VAT:             5_400_000,
		GrandTotal:      59_400_000,
		Notes:           "Dose formulation analysis quoted separately.",
		RequesterID:     &requesterID,
		Customer:        &models.Customer{CompanyName: "Hanbit Pharma"},
		Requester:       &models.Requester{Name: "Lee Jiho", Department: "Non-clinical Team", Email: "jiho.lee@hanbit.example"},
		Items: []models.QuotationItem{
			{Name: "Single dose toxicity (rat)", Quantity: 1, UnitPrice: 12_000_000, Amount: 12_000_000, Groups: 4, AnimalsPerGroup: 5},
			{Name: "4-week repeated dose toxicity (rat)", Quantity: 1, UnitPrice: 48_000_000, Amount: 48_000_000, GLP: true, Groups: 4, AnimalsPerGroup: 10},
		},
	}
}

func TestLabel(t *testing.T) {
	tests := map[string]string{
		"":                   "",
		"draft":              "Draft",
		"clinical_pathology": "Clinical Pathology",
		"small_molecule":     "Small Molecule",
	}
	for in, want := range tests {
		assert.Equal(t, want, Label(in), in)
	}
}

func TestItemDetail(t *testing.T) {
	it := models.QuotationItem{Groups: 1, AnimalsPerGroup: 10, Timepoints: 6, WithAnalysis: true, GLP: true}
	assert.Equal(t, "1 group, 10 animals/group, 6 timepoints, with bioanalysis, GLP", itemDetail(it))
	assert.Empty(t, itemDetail(models.QuotationItem{}))
}

func TestTotals(t *testing.T) {
	lines := totals(sampleQuotation())
	require.Len(t, lines, 5)
	assert.Equal(t, "Discount (10%)", lines[1].Label)
	assert.Equal(t, "-6,000,000", lines[1].Amount)
	last := lines[len(lines)-1]
	assert.True(t, last.Strong)
	assert.Equal(t, "59,400,000", last.Amount)
}

func TestQuotationPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testRenderer().QuotationPDF(&buf, sampleQuotation()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Greater(t, buf.Len(), 1000)
}

// pdfString is s as gofpdf writes it inside a text operator for a UTF-8
// font: UTF-16BE without BOM, then PDF string escaping.
func pdfString(s string) string {
	var b []byte
	for _, r := range s {
		b = append(b, byte(r>>8), byte(r))
	}
	return strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`, "\r", `\r`).Replace(string(b))
}

func TestQuotationPDF_keepsHangul(t *testing.T) {
	r := testRenderer()
	r.compress = false
	q := sampleQuotation()
	q.Customer = &models.Customer{CompanyName: "한빛제약"}
	q.Requester.Name = "이지호"
	q.Notes = "제형 분석 별도 🧪"

	var buf bytes.Buffer
	require.NoError(t, r.QuotationPDF(&buf, q))
	out := buf.String()
	assert.Contains(t, out, pdfString("한빛제약"))
	assert.Contains(t, out, pdfString("이지호, Non-clinical Team"))
	assert.Contains(t, out, pdfString("제형 분석 별도"))
	assert.Contains(t, out, "/FontFile2", "the TrueType font is embedded")
	assert.NotContains(t, out, "/Helvetica")
}

func TestPDFText(t *testing.T) {
	assert.Equal(t, "한빛 ok", pdfText("한빛 ok"))
	assert.Equal(t, "lab ", pdfText("lab 🧪"))
}

func TestLoadFonts(t *testing.T) {
	f, err := LoadFonts("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultFonts(), f)

	dir := t.TempDir()
	ttf := filepath.Join(dir, "body.ttf")
	require.NoError(t, os.WriteFile(ttf, dejaVuRegular, 0o644))

	f, err = LoadFonts(ttf, "")
	require.NoError(t, err)
	assert.Equal(t, dejaVuRegular, f.Regular)
	assert.Equal(t, dejaVuRegular, f.Bold, "bold falls back to the regular face")

	f, err = LoadFonts(ttf, ttf)
	require.NoError(t, err)
	assert.NotEmpty(t, f.Bold)

	_, err = LoadFonts(filepath.Join(dir, "missing.ttf"), "")
	assert.Error(t, err)

	notFont := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notFont, []byte("hello world"), 0o644))
	_, err = LoadFonts(notFont, "")
	assert.ErrorContains(t, err, "not a TrueType font")
}

func TestQuotationPDF_withLoadedFont(t *testing.T) {
	dir := t.TempDir()
	ttf := filepath.Join(dir, "body.ttf")
	require.NoError(t, os.WriteFile(ttf, dejaVuBold, 0o644))
	f, err := LoadFonts(ttf, "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, testRenderer().UseFonts(f).QuotationPDF(&buf, sampleQuotation()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

// readDOCX returns the parts of a .docx keyed by name and checks that each
// XML part is well formed.
func readDOCX(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	parts := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		parts[f.Name] = string(b)

		dec := xml.NewDecoder(bytes.NewReader(b))
		for {
			_, err := dec.Token()
			if errors.Is(err, io.EOF) {
				break
			}
			require.NoError(t, err, f.Name)
		}
	}
	return parts
}

func TestQuotationDOCX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testRenderer().QuotationDOCX(&buf, sampleQuotation()))

	parts := readDOCX(t, buf.Bytes())
	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/styles.xml"} {
		assert.Contains(t, parts, name)
	}
	doc := parts["word/document.xml"]
	assert.Contains(t, doc, "25-MK-01-0001")
	assert.Contains(t, doc, "Hanbit Pharma")
	assert.Contains(t, doc, "&lt;phase 1 &amp; 2&gt;", "text is escaped")
	assert.Contains(t, doc, "59,400,000")
	assert.Contains(t, doc, "https://quote.example/quotations/verify/25-MK-01-0001")
}

func TestContractDOCX(t *testing.T) {
	q := sampleQuotation()
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	c := &models.Contract{
		ContractNumber: "CT-25-MK-01-0001",
		Title:          q.Title,
		ContractDate:   time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		StartDate:      &start,
		Amount:         q.GrandTotal,
		AdvanceRate:    50,
		Status:         models.ContractStatusActive,
		Quotation:      q,
		Customer:       q.Customer,
	}
	var buf bytes.Buffer
	require.NoError(t, testRenderer().ContractDOCX(&buf, c))

	doc := readDOCX(t, buf.Bytes())["word/document.xml"]
	assert.Contains(t, doc, "CT-25-MK-01-0001")
	assert.Contains(t, doc, "29,700,000 KRW (50%)")
	assert.Contains(t, doc, "2025-04-01 ~ ")
	assert.Contains(t, doc, "4-week repeated dose toxicity (rat)")

	c.Quotation = nil
	buf.Reset()
	require.NoError(t, testRenderer().ContractDOCX(&buf, c), "contract without loaded quotation")
}

func TestQuotationsXLSX(t *testing.T) {
	won := *sampleQuotation()
	won.QuotationNumber = "25-MK-01-0002"
	won.Status = models.QuotationStatusWon
	list := []models.Quotation{*sampleQuotation(), won}

	var buf bytes.Buffer
	require.NoError(t, testRenderer().QuotationsXLSX(&buf, list))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{quotationsSheet, summarySheet}, f.GetSheetList())

	rows, err := f.GetRows(quotationsSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Quotation No.", rows[0][0])
	assert.Equal(t, "25-MK-01-0001", rows[1][0])
	assert.Equal(t, "Submitted", rows[1][5])
	assert.Equal(t, "59400000", rows[2][11])

	summary, err := f.GetRows(summarySheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, summary, len(models.QuotationStatuses)+2)
	assert.Equal(t, []string{"Submitted", "1", "59400000"}, summary[2])
	assert.Equal(t, []string{"Won", "1", "59400000"}, summary[3])
	assert.Equal(t, []string{"Total", "2", "118800000"}, summary[len(summary)-1])
}

func TestQuotationsXLSX_empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testRenderer().QuotationsXLSX(&buf, nil))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(quotationsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
