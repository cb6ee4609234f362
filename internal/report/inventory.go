package report

import (
	"fmt"
	"time"

	"go-winery-scm/internal/model"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const inventorySheet = "Inventory"

var inventoryHeader = []interface{}{
	"Name", "Category", "Quantity", "Min Stock", "Unit", "Unit Price", "Stock Value", "Low Stock",
}

// InventoryXLSX renders products as a single-sheet workbook with a totals row.
func InventoryXLSX(products []model.Product, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", inventorySheet); err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Inventory report %s", generatedAt.Format("2006-01-02 15:04"))
	if err := f.SetCellValue(inventorySheet, "A1", title); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(inventorySheet, "A3", &inventoryHeader); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(inventorySheet, "A1", "A1", bold); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(inventorySheet, "A3", "H3", bold); err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	row := 4
	var totalUnits int64
	for _, p := range products {
		value := p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
		low := "no"
		if p.IsLowStock() {
			low = "yes"
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []interface{}{
			p.Name, p.Category, p.Quantity, p.MinStock, p.Unit,
			p.Price.InexactFloat64(), value.InexactFloat64(), low,
		}
		if err := f.SetSheetRow(inventorySheet, cell, &values); err != nil {
			return nil, err
		}
		totalUnits += int64(p.Quantity)
		row++
	}

	if len(products) > 0 {
		from, _ := excelize.CoordinatesToCellName(6, 4)
		to, _ := excelize.CoordinatesToCellName(7, row-1)
		if err := f.SetCellStyle(inventorySheet, from, to, money); err != nil {
			return nil, err
		}
	}

	totalCell, _ := excelize.CoordinatesToCellName(1, row+1)
	totals := []interface{}{"Total", "", totalUnits}
	if err := f.SetSheetRow(inventorySheet, totalCell, &totals); err != nil {
		return nil, err
	}
	if len(products) > 0 {
		valueCell, _ := excelize.CoordinatesToCellName(7, row+1)
		if err := f.SetCellFormula(inventorySheet, valueCell, fmt.Sprintf("SUM(G4:G%d)", row-1)); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(inventorySheet, "A", "A", 32); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(inventorySheet, "B", "H", 14); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
