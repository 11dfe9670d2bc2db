// Package documents renders quotations and contracts as PDF, DOCX and XLSX.
package documents

import (
	"strconv"
	"strings"
	"time"

	"labquote/config"
	"labquote/models"
	"labquote/pricing"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const dateLayout = "2006-01-02"

// Renderer builds documents under one company letterhead.
type Renderer struct {
	company  config.Company
	fonts    Fonts
	compress bool
	now      func() time.Time
}

func NewRenderer(company config.Company) *Renderer {
	return &Renderer{company: company, fonts: DefaultFonts(), compress: true, now: time.Now}
}

// UseFonts replaces the TrueType fonts embedded into PDFs.
func (r *Renderer) UseFonts(f Fonts) *Renderer {
	r.fonts = f
	return r
}

// Label turns an enum value such as "clinical_pathology" into
// "Clinical Pathology".
func Label(v string) string {
	if v == "" {
		return ""
	}
	return cases.Title(language.Und).String(strings.ReplaceAll(v, "_", " "))
}

func money(n int64) string { return pricing.FormatAmount(n) }

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func datePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return date(*t)
}

func customerName(q *models.Quotation) string {
	if q.Customer != nil {
		return q.Customer.CompanyName
	}
	return ""
}

// itemDetail summarises the study design columns of an item.
func itemDetail(it models.QuotationItem) string {
	var parts []string
	if it.Groups > 0 {
		parts = append(parts, plural(it.Groups, "group"))
	}
	if it.AnimalsPerGroup > 0 {
		parts = append(parts, plural(it.AnimalsPerGroup, "animal")+"/group")
	}
	if it.Timepoints > 0 {
		parts = append(parts, plural(it.Timepoints, "timepoint"))
	}
	if it.Samples > 0 {
		parts = append(parts, plural(it.Samples, "sample"))
	}
	if it.WithAnalysis {
		parts = append(parts, "with bioanalysis")
	}
	if it.GLP {
		parts = append(parts, "GLP")
	}
	return strings.Join(parts, ", ")
}

func plural(n int, word string) string {
	s := strconv.Itoa(n) + " " + word
	if n != 1 {
		s += "s"
	}
	return s
}

// totalLine is one row of the amount summary under the item table.
type totalLine struct {
	Label  string
	Amount string
	Strong bool
}

func totals(q *models.Quotation) []totalLine {
	lines := []totalLine{{Label: "Subtotal", Amount: money(q.Subtotal)}}
	if q.AnalysisCost > 0 {
		lines = append(lines, totalLine{Label: "Bioanalysis", Amount: money(q.AnalysisCost)})
	}
	if q.DiscountAmount > 0 {
		label := "Discount"
		if q.DiscountType == models.DiscountRate {
			label = "Discount (" + strconv.FormatFloat(q.DiscountValue, 'f', -1, 64) + "%)"
		}
		lines = append(lines, totalLine{Label: label, Amount: "-" + money(q.DiscountAmount)})
	}
	return append(lines,
		totalLine{Label: "Total", Amount: money(q.Total)},
		totalLine{Label: "VAT", Amount: money(q.VAT)},
		totalLine{Label: "Grand Total (KRW)", Amount: money(q.GrandTotal), Strong: true},
	)
}
