package convert

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/paulgagnon1969/nexus-enterprise-sub006/internal/core/domain"
)

// convertSpreadsheet renders each sheet of a workbook as an HTML table.
// The first row of a sheet is treated as its header.
func (r *Registry) convertSpreadsheet(raw []byte) (domain.ConversionResult, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return domain.ConversionResult{}, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if closeErr := workbook.Close(); closeErr != nil {
			r.logger.Warn("close workbook", "error", closeErr)
		}
	}()

	var htmlOut, textOut strings.Builder
	for _, sheet := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			r.logger.Warn("skipping unreadable sheet", "sheet", sheet, "error", err)
			continue
		}
		if len(rows) == 0 {
			continue
		}

		fmt.Fprintf(&htmlOut, "<h2>%s</h2>\n<table>\n", html.EscapeString(sheet))
		for i, row := range rows {
			cellTag := "td"
			if i == 0 {
				cellTag = "th"
			}
			htmlOut.WriteString("<tr>")
			for _, cell := range row {
				fmt.Fprintf(&htmlOut, "<%s>%s</%s>", cellTag, html.EscapeString(cell), cellTag)
			}
			htmlOut.WriteString("</tr>\n")
			textOut.WriteString(strings.Join(row, " "))
			textOut.WriteString("\n")
		}
		htmlOut.WriteString("</table>\n")
	}

	if htmlOut.Len() == 0 {
		return domain.ConversionResult{}, fmt.Errorf("workbook contains no rows")
	}
	return domain.ConversionResult{
		HTML:      strings.TrimSpace(htmlOut.String()),
		PlainText: strings.TrimSpace(textOut.String()),
	}, nil
}
