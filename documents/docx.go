package documents

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"text/template"

	"labquote/models"
)

// docField is a label/value line in the header block.
type docField struct {
	Label string
	Value string
}

// docTable is a bordered table with a shaded header row.
type docTable struct {
	Header []string
	Widths []int // twentieths of a point
	Rows   [][]string
}

// docContent is everything the WordprocessingML template renders.
type docContent struct {
	Company    string
	Letterhead string
	Title      string
	Fields     []docField
	Subject    string
	Table      docTable
	Totals     []totalLine
	Notes      string
	Footer     string
}

func xmlText(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

var docxTemplate = template.Must(template.New("document.xml").Funcs(template.FuncMap{"x": xmlText}).Parse(
	`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:pPr><w:pStyle w:val="Company"/></w:pPr><w:r><w:t>{{x .Company}}</w:t></w:r></w:p>
{{- if .Letterhead}}
<w:p><w:r><w:t xml:space="preserve">{{x .Letterhead}}</w:t></w:r></w:p>
{{- end}}
<w:p><w:pPr><w:pStyle w:val="Title"/></w:pPr><w:r><w:t>{{x .Title}}</w:t></w:r></w:p>
{{- range .Fields}}
<w:p><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">{{x .Label}}: </w:t></w:r><w:r><w:t xml:space="preserve">{{x .Value}}</w:t></w:r></w:p>
{{- end}}
{{- if .Subject}}
<w:p><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">Subject: {{x .Subject}}</w:t></w:r></w:p>
{{- end}}
<w:tbl>
<w:tblPr><w:tblStyle w:val="TableGrid"/><w:tblW w:w="0" w:type="auto"/></w:tblPr>
<w:tblGrid>{{range .Table.Widths}}<w:gridCol w:w="{{.}}"/>{{end}}</w:tblGrid>
<w:tr>{{range $i, $h := .Table.Header}}<w:tc><w:tcPr><w:tcW w:w="{{index $.Table.Widths $i}}" w:type="dxa"/><w:shd w:val="clear" w:color="auto" w:fill="F0F0F0"/></w:tcPr><w:p><w:r><w:rPr><w:b/></w:rPr><w:t>{{x $h}}</w:t></w:r></w:p></w:tc>{{end}}</w:tr>
{{- range .Table.Rows}}
<w:tr>{{range $i, $c := .}}<w:tc><w:tcPr><w:tcW w:w="{{index $.Table.Widths $i}}" w:type="dxa"/></w:tcPr><w:p>{{if ge $i 2}}<w:pPr><w:jc w:val="right"/></w:pPr>{{end}}<w:r><w:t xml:space="preserve">{{x $c}}</w:t></w:r></w:p></w:tc>{{end}}</w:tr>
{{- end}}
</w:tbl>
{{- range .Totals}}
<w:p><w:pPr><w:jc w:val="right"/></w:pPr><w:r>{{if .Strong}}<w:rPr><w:b/></w:rPr>{{end}}<w:t xml:space="preserve">{{x .Label}}: {{x .Amount}}</w:t></w:r></w:p>
{{- end}}
{{- if .Notes}}
<w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>Notes</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">{{x .Notes}}</w:t></w:r></w:p>
{{- end}}
<w:p><w:r><w:rPr><w:i/><w:sz w:val="16"/></w:rPr><w:t xml:space="preserve">{{x .Footer}}</w:t></w:r></w:p>
<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1134" w:right="1134" w:bottom="1134" w:left="1134" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr>
</w:body>
</w:document>
`))

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>
`

const rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>
`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>
`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Arial" w:hAnsi="Arial" w:eastAsia="Malgun Gothic"/><w:sz w:val="20"/></w:rPr></w:rPrDefault></w:docDefaults>
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:pPr><w:spacing w:after="60"/></w:pPr></w:style>
<w:style w:type="paragraph" w:styleId="Company"><w:name w:val="Company"/><w:basedOn w:val="Normal"/><w:rPr><w:b/><w:sz w:val="32"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:pPr><w:jc w:val="center"/><w:spacing w:before="240" w:after="240"/></w:pPr><w:rPr><w:b/><w:sz w:val="36"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/><w:pPr><w:spacing w:before="200"/></w:pPr><w:rPr><w:b/><w:sz w:val="24"/></w:rPr></w:style>
<w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/><w:tblPr><w:tblBorders>
<w:top w:val="single" w:sz="4" w:space="0" w:color="808080"/><w:left w:val="single" w:sz="4" w:space="0" w:color="808080"/>
<w:bottom w:val="single" w:sz="4" w:space="0" w:color="808080"/><w:right w:val="single" w:sz="4" w:space="0" w:color="808080"/>
<w:insideH w:val="single" w:sz="4" w:space="0" w:color="808080"/><w:insideV w:val="single" w:sz="4" w:space="0" w:color="808080"/>
</w:tblBorders></w:tblPr></w:style>
</w:styles>
`

// writeDOCX packages content as a minimal .docx.
func writeDOCX(w io.Writer, content docContent) error {
	var doc bytes.Buffer
	if err := docxTemplate.Execute(&doc, content); err != nil {
		return fmt.Errorf("render document.xml: %w", err)
	}

	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(rootRelsXML)},
		{"word/_rels/document.xml.rels", []byte(documentRelsXML)},
		{"word/styles.xml", []byte(stylesXML)},
		{"word/document.xml", doc.Bytes()},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return err
		}
		if _, err := f.Write(p.data); err != nil {
			return err
		}
	}
	return zw.Close()
}

func (r *Renderer) letterhead() string {
	switch {
	case r.company.Address != "" && r.company.Phone != "":
		return r.company.Address + " | Tel. " + r.company.Phone
	case r.company.Address != "":
		return r.company.Address
	default:
		return r.company.Phone
	}
}

var itemTableWidths = []int{600, 5200, 800, 1500, 1600}

func itemRows(items []models.QuotationItem) [][]string {
	rows := make([][]string, 0, len(items))
	for i, it := range items {
		name := it.Name
		if detail := itemDetail(it); detail != "" {
			name += " (" + detail + ")"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			name,
			strconv.Itoa(it.Quantity),
			money(it.UnitPrice),
			money(it.Amount),
		})
	}
	return rows
}

func (r *Renderer) footer() string {
	return "Amounts in KRW. Generated on " + r.now().Format("2006-01-02 15:04:05") + "."
}

// QuotationDOCX writes the quotation as a Word document with the same
// content as the PDF.
func (r *Renderer) QuotationDOCX(w io.Writer, q *models.Quotation) error {
	fields := []docField{
		{"Quotation No.", q.QuotationNumber},
		{"To", customerName(q)},
	}
	if q.Requester != nil {
		fields = append(fields, docField{"Attention", q.Requester.Name})
	}
	fields = append(fields,
		docField{"Study type", Label(q.QuotationType)},
		docField{"Issue date", date(q.IssueDate)},
		docField{"Valid until", date(q.ValidUntil)},
		docField{"Status", Label(q.Status)},
		docField{"Verify at", r.company.QuotationURL(q.QuotationNumber)},
	)
	return writeDOCX(w, docContent{
		Company:    r.company.Name,
		Letterhead: r.letterhead(),
		Title:      "QUOTATION",
		Fields:     fields,
		Subject:    q.Title,
		Table: docTable{
			Header: []string{"No", "Item", "Qty", "Unit Price", "Amount"},
			Widths: itemTableWidths,
			Rows:   itemRows(q.Items),
		},
		Totals: totals(q),
		Notes:  q.Notes,
		Footer: r.footer(),
	})
}

// ContractDOCX writes a contract summary listing the contracted items.
func (r *Renderer) ContractDOCX(w io.Writer, c *models.Contract) error {
	customer := ""
	if c.Customer != nil {
		customer = c.Customer.CompanyName
	}
	fields := []docField{
		{"Contract No.", c.ContractNumber},
		{"Client", customer},
		{"Contract date", date(c.ContractDate)},
		{"Study period", datePtr(c.StartDate) + " ~ " + datePtr(c.EndDate)},
		{"Contract amount (VAT incl.)", money(c.Amount) + " KRW"},
		{"Advance payment", fmt.Sprintf("%s KRW (%s%%)", money(c.AdvanceAmount()), strconv.FormatFloat(c.AdvanceRate, 'f', -1, 64))},
		{"Balance", money(c.Amount-c.AdvanceAmount()) + " KRW"},
		{"Status", Label(c.Status)},
	}
	content := docContent{
		Company:    r.company.Name,
		Letterhead: r.letterhead(),
		Title:      "SERVICE CONTRACT",
		Subject:    c.Title,
		Table: docTable{
			Header: []string{"No", "Item", "Qty", "Unit Price", "Amount"},
			Widths: itemTableWidths,
		},
		Notes:  c.Notes,
		Footer: r.footer(),
	}
	if q := c.Quotation; q != nil {
		fields = append(fields, docField{"Quotation No.", q.QuotationNumber})
		content.Table.Rows = itemRows(q.Items)
		content.Totals = totals(q)
	}
	content.Fields = fields
	return writeDOCX(w, content)
}
