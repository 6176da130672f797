package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"stockpulse/internal/inventory"
	"stockpulse/pkg/contracts/domain"
)

// RequestSheet is the sheet name of a request workbook
const RequestSheet = "Solicitud de Stock"

// RequestColumns are the header labels of each request block
var RequestColumns = []string{"SKU", "Stock CD", "Stock tienda", "Tránsito", "Venta 2W", "RA."}

var requestColumnWidths = []float64{25, 10, 12, 10, 10, 8}

const blockSpacing = 2

type workbookStyles struct {
	title     int
	note      int
	header    int
	highlight int
}

// BuildRequestWorkbook lays out one block per request: a store title row, a
// code and description row, a header row and one row per size variant of the
// product family in that store. Requested sizes are filled yellow.
func BuildRequestWorkbook(requests []domain.ReplenishmentRequest, records []domain.NormalizedRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", RequestSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := newWorkbookStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	for i, width := range requestColumnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(RequestSheet, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	families := familyIndex(records)
	row := 1
	for i, req := range requests {
		if i > 0 {
			row += blockSpacing
		}
		next, err := writeRequestBlock(f, styles, row, req, families[familyKey(req.BaseSKU, req.StoreID)])
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("request %s@%s: %w", req.BaseSKU, req.StoreID, err)
		}
		row = next
	}

	return f, nil
}

// WriteRequestWorkbook renders the request workbook to w
func WriteRequestWorkbook(w io.Writer, requests []domain.ReplenishmentRequest, records []domain.NormalizedRecord) error {
	f, err := BuildRequestWorkbook(requests, records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveRequestWorkbook renders the request workbook to a file
func SaveRequestWorkbook(path string, requests []domain.ReplenishmentRequest, records []domain.NormalizedRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := BuildRequestWorkbook(requests, records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var s workbookStyles
	var err error

	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, fmt.Errorf("failed to create title style: %w", err)
	}
	if s.note, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Italic: true}}); err != nil {
		return s, fmt.Errorf("failed to create note style: %w", err)
	}
	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F3F3F3"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return s, fmt.Errorf("failed to create header style: %w", err)
	}
	s.highlight, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFF00"}},
	})
	if err != nil {
		return s, fmt.Errorf("failed to create highlight style: %w", err)
	}
	return s, nil
}

// writeRequestBlock writes one block starting at row and returns the row
// after it.
func writeRequestBlock(f *excelize.File, styles workbookStyles, row int, req domain.ReplenishmentRequest, family []domain.NormalizedRecord) (int, error) {
	title := cellName(1, row)
	if err := f.SetCellValue(RequestSheet, title, req.Store); err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(RequestSheet, title, title, styles.title); err != nil {
		return 0, err
	}
	row++

	if req.StoreCode != "" {
		if err := f.SetCellValue(RequestSheet, cellName(1, row), req.StoreCode); err != nil {
			return 0, err
		}
	}
	note := cellName(2, row)
	if err := f.SetCellValue(RequestSheet, note, req.Description); err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(RequestSheet, note, note, styles.note); err != nil {
		return 0, err
	}
	row++

	header := make([]any, len(RequestColumns))
	for i, label := range RequestColumns {
		header[i] = label
	}
	if err := f.SetSheetRow(RequestSheet, cellName(1, row), &header); err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(RequestSheet, cellName(1, row), cellName(len(RequestColumns), row), styles.header); err != nil {
		return 0, err
	}
	row++

	requested := make(map[string]bool, len(req.SKUs))
	for _, sku := range req.SKUs {
		requested[sku] = true
	}

	for _, rec := range family {
		values := []any{
			rec.SKU,
			quantityCell(rec.DCStock),
			quantityCell(rec.LocalStock),
			quantityCell(rec.TransitStock),
			quantityCell(rec.Sales2W),
			quantityCell(rec.Replenishment),
		}
		if err := f.SetSheetRow(RequestSheet, cellName(1, row), &values); err != nil {
			return 0, err
		}
		if requested[rec.SKU] {
			if err := f.SetCellStyle(RequestSheet, cellName(1, row), cellName(len(values), row), styles.highlight); err != nil {
				return 0, err
			}
		}
		row++
	}

	return row, nil
}

// familyIndex groups records by base SKU and store, in scan order
func familyIndex(records []domain.NormalizedRecord) map[string][]domain.NormalizedRecord {
	index := make(map[string][]domain.NormalizedRecord)
	for _, rec := range records {
		key := familyKey(inventory.BaseSKU(rec.SKU), rec.StoreID)
		index[key] = append(index[key], rec)
	}
	return index
}

func familyKey(base, storeID string) string {
	return base + "@" + storeID
}

// quantityCell leaves unknown quantities as empty cells
func quantityCell(q domain.Quantity) any {
	if !q.Known {
		return nil
	}
	return q.Value
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
