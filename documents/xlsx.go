package documents

import (
	"fmt"
	"io"

	"labquote/models"

	"github.com/xuri/excelize/v2"
)

const (
	quotationsSheet = "Quotations"
	summarySheet    = "Summary"
)

var quotationColumns = []struct {
	title string
	width float64
}{
	{"Quotation No.", 18},
	{"Type", 18},
	{"Title", 40},
	{"Customer", 28},
	{"Requester", 16},
	{"Status", 12},
	{"Issue Date", 12},
	{"Valid Until", 12},
	{"Subtotal", 16},
	{"Discount", 14},
	{"VAT", 14},
	{"Grand Total", 16},
}

// QuotationsXLSX writes the listing as a workbook with a per-status summary.
func (r *Renderer) QuotationsXLSX(w io.Writer, list []models.Quotation) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", quotationsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Family: "Arial",
			Color:  "#FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}

	header := make([]any, len(quotationColumns))
	for i, col := range quotationColumns {
		header[i] = col.title
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(quotationsSheet, name, name, col.width); err != nil {
			return err
		}
	}
	if err := f.SetSheetRow(quotationsSheet, "A1", &header); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(quotationColumns))
	if err := f.SetCellStyle(quotationsSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	type statusTotal struct {
		count int
		total int64
	}
	byStatus := map[string]*statusTotal{}
	for i, q := range list {
		requester := ""
		if q.Requester != nil {
			requester = q.Requester.Name
		}
		row := []any{
			q.QuotationNumber,
			Label(q.QuotationType),
			q.Title,
			customerName(&q),
			requester,
			Label(q.Status),
			date(q.IssueDate),
			date(q.ValidUntil),
			q.Subtotal,
			q.DiscountAmount,
			q.VAT,
			q.GrandTotal,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(quotationsSheet, cell, &row); err != nil {
			return err
		}

		st := byStatus[q.Status]
		if st == nil {
			st = &statusTotal{}
			byStatus[q.Status] = st
		}
		st.count++
		st.total += q.GrandTotal
	}
	if len(list) > 0 {
		last := len(list) + 1
		if err := f.SetCellStyle(quotationsSheet, "I2", fmt.Sprintf("L%d", last), amountStyle); err != nil {
			return err
		}
	}
	if err := f.SetPanes(quotationsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	if err := f.AutoFilter(quotationsSheet, fmt.Sprintf("A1:%s%d", lastCol, len(list)+1), nil); err != nil {
		return err
	}

	// Summary sheet
	summaryHeader := []any{"Status", "Count", "Grand Total"}
	if err := f.SetSheetRow(summarySheet, "A1", &summaryHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "C1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "A", "C", 18); err != nil {
		return err
	}
	row := 2
	var count int
	var total int64
	for _, status := range models.QuotationStatuses {
		st := byStatus[status]
		if st == nil {
			st = &statusTotal{}
		}
		values := []any{Label(status), st.count, st.total}
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
		count += st.count
		total += st.total
		row++
	}
	values := []any{"Total", count, total}
	if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", row), &values); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "C2", fmt.Sprintf("C%d", row), amountStyle); err != nil {
		return err
	}
	f.SetActiveSheet(0)

	return f.Write(w)
}
