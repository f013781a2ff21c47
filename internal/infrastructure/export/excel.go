// Package export renders the derived roster view as a spreadsheet.
package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gerenciadorpro/roster-api/internal/core/domain"
)

const sheetName = "Clientes"

var headers = []string{"Nome", "Login", "Servidor", "Telefone", "Vencimento", "Status", "Dias Restantes"}

// FileName returns the dated attachment name for an export.
func FileName(now time.Time) string {
	return fmt.Sprintf("clientes_%s.xlsx", now.Format("02-01-2006"))
}

// Workbook builds an xlsx workbook with one row per client and auto-sized
// columns.
func Workbook(clients []domain.ClientWithStatus) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}

	rows := make([][]string, 0, len(clients)+1)
	rows = append(rows, headers)
	for _, c := range clients {
		phone := c.Phone
		if phone == "" {
			phone = "N/A"
		}
		days := "N/A"
		if c.DaysRemaining != nil {
			days = strconv.Itoa(*c.DaysRemaining)
		}
		rows = append(rows, []string{c.Name, c.Login, c.Server, phone, c.DueDate, string(c.Status), days})
	}

	widths := make([]int, len(headers))
	for rowIdx, row := range rows {
		for colIdx, val := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, fmt.Errorf("export: cell name: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				return nil, fmt.Errorf("export: set cell: %w", err)
			}
			if len(val) > widths[colIdx] {
				widths[colIdx] = len(val)
			}
		}
	}

	for colIdx, width := range widths {
		col, err := excelize.ColumnNumberToName(colIdx + 1)
		if err != nil {
			return nil, fmt.Errorf("export: column name: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, float64(width+2)); err != nil {
			return nil, fmt.Errorf("export: column width: %w", err)
		}
	}

	return f, nil
}
