package inventory

import (
	"strings"
	"unicode/utf8"

	"stockpulse/pkg/contracts/domain"
)

// HeaderRows is the number of structural rows preceding the data rows:
// store names, store codes, then column labels.
const HeaderRows = 3

const (
	storeRow  = 0
	codeRow   = 1
	labelRow  = 2
	noColumn  = -1
	minSubstr = 3 // aliases shorter than this only match exactly
)

// Field identifies a column the locator knows how to find
type Field string

const (
	FieldSKU           Field = "sku"
	FieldDescription   Field = "description"
	FieldBrand         Field = "brand"
	FieldArea          Field = "area"
	FieldCategory      Field = "category"
	FieldSize          Field = "size"
	FieldDCStock       Field = "dc_stock"
	FieldLocalStock    Field = "local_stock"
	FieldTransitStock  Field = "transit_stock"
	FieldSales2W       Field = "sales_2w"
	FieldReplenishment Field = "replenishment"
)

// AliasTable lists the accepted header labels per field, in priority order
type AliasTable map[Field][]string

// DefaultAliases returns the header labels seen in retail stock exports
func DefaultAliases() AliasTable {
	return AliasTable{
		FieldSKU:           {"sku"},
		FieldDescription:   {"descripcion", "description"},
		FieldBrand:         {"marca", "brand"},
		FieldArea:          {"area"},
		FieldCategory:      {"categoria", "category"},
		FieldSize:          {"talla", "size"},
		FieldDCStock:       {"stock cd", "stock dc", "dc stock", "cd"},
		FieldLocalStock:    {"stock tienda", "store stock", "local stock"},
		FieldTransitStock:  {"transito", "transit", "en transito"},
		FieldSales2W:       {"venta 2w", "sales 2w", "venta 2 semanas"},
		FieldReplenishment: {"ra.", "ra", "reposicion automatica"},
	}
}

// defaultStoreBlacklist holds generic labels that never name a store
var defaultStoreBlacklist = []string{
	"total", "totales", "total general", "stock", "stock cd", "stock tienda",
	"transito", "transit", "sku", "descripcion", "description", "marca", "brand",
	"area", "categoria", "category", "subcategoria", "talla", "size", "segm",
	"temporada", "estilo color",
}

// Layout is the structure discovered in a grid's header rows
type Layout struct {
	Stores []domain.StoreBlock

	SKUColumn         int
	DescriptionColumn int
	BrandColumn       int
	AreaColumn        int
	CategoryColumn    int
	SizeColumn        int
	DCColumn          int

	// BlocksDropped counts store-name cells whose range held no metric column
	BlocksDropped int
}

// Locator finds store blocks and fixed columns in a grid
type Locator struct {
	aliases   map[Field][]string
	blacklist map[string]struct{}
}

// NewLocator builds a locator over an alias table. A nil table selects
// DefaultAliases.
func NewLocator(aliases AliasTable) *Locator {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	l := &Locator{
		aliases:   make(map[Field][]string, len(aliases)),
		blacklist: make(map[string]struct{}, len(defaultStoreBlacklist)),
	}
	for field, labels := range aliases {
		for _, label := range labels {
			if n := normalizeLabel(label); n != "" {
				l.aliases[field] = append(l.aliases[field], n)
			}
		}
	}
	for _, label := range defaultStoreBlacklist {
		l.blacklist[normalizeLabel(label)] = struct{}{}
	}
	return l
}

// Locate scans the structural rows of grid. It returns a StructuralError when
// the grid has fewer than HeaderRows rows, no SKU column, or no store block.
func (l *Locator) Locate(grid [][]string) (*Layout, error) {
	if len(grid) < HeaderRows {
		return nil, newStructuralError("grid has %d header rows, need at least %d", len(grid), HeaderRows)
	}

	labels := make([]string, width(grid[:HeaderRows]))
	for i := range labels {
		labels[i] = normalizeLabel(cellAt(grid[labelRow], i))
	}

	layout := &Layout{}
	for _, block := range l.scanBlocks(grid, len(labels)) {
		block.LocalColumn = l.match(labels, block.StartColumn, block.EndColumn, FieldLocalStock, nil)
		block.TransitColumn = l.match(labels, block.StartColumn, block.EndColumn, FieldTransitStock, nil)
		block.SalesColumn = l.match(labels, block.StartColumn, block.EndColumn, FieldSales2W, nil)
		block.ReplenishmentColumn = l.match(labels, block.StartColumn, block.EndColumn, FieldReplenishment, nil)

		if block.LocalColumn == noColumn && block.TransitColumn == noColumn &&
			block.SalesColumn == noColumn && block.ReplenishmentColumn == noColumn {
			layout.BlocksDropped++
			continue
		}
		layout.Stores = append(layout.Stores, block)
	}

	inBlock := func(col int) bool {
		for _, b := range layout.Stores {
			if col >= b.StartColumn && col <= b.EndColumn {
				return true
			}
		}
		return false
	}
	last := len(labels) - 1
	layout.SKUColumn = l.match(labels, 0, last, FieldSKU, inBlock)
	layout.DescriptionColumn = l.match(labels, 0, last, FieldDescription, inBlock)
	layout.BrandColumn = l.match(labels, 0, last, FieldBrand, inBlock)
	layout.AreaColumn = l.match(labels, 0, last, FieldArea, inBlock)
	layout.CategoryColumn = l.match(labels, 0, last, FieldCategory, inBlock)
	layout.SizeColumn = l.match(labels, 0, last, FieldSize, inBlock)
	layout.DCColumn = l.match(labels, 0, last, FieldDCStock, inBlock)

	if layout.SKUColumn == noColumn {
		return nil, newStructuralError("no SKU column found in header row %d", labelRow+1)
	}
	if len(layout.Stores) == 0 {
		return nil, newStructuralError("no store blocks found in header row %d", storeRow+1)
	}
	return layout, nil
}

// scanBlocks opens a block at every non-blacklisted cell of the store row.
// The last block runs to the widest header column.
func (l *Locator) scanBlocks(grid [][]string, columns int) []domain.StoreBlock {
	var blocks []domain.StoreBlock
	for col, raw := range grid[storeRow] {
		name := normalizeLabel(raw)
		if name == "" {
			continue
		}
		if _, generic := l.blacklist[name]; generic {
			continue
		}
		if n := len(blocks); n > 0 {
			blocks[n-1].EndColumn = col - 1
		}
		blocks = append(blocks, domain.StoreBlock{
			DisplayName: SanitizeStoreName(raw),
			ID:          SanitizeStoreID(raw),
			Code:        cleanText(cellAt(grid[codeRow], col)),
			StartColumn: col,
			EndColumn:   columns - 1,
		})
	}
	return blocks
}

// match returns the first column in [from, to] whose label equals one of the
// field's aliases, falling back to a label containing one. Columns for which
// skip returns true are ignored.
func (l *Locator) match(labels []string, from, to int, field Field, skip func(int) bool) int {
	aliases := l.aliases[field]
	if to >= len(labels) {
		to = len(labels) - 1
	}
	for _, alias := range aliases {
		for col := from; col <= to; col++ {
			if skip != nil && skip(col) {
				continue
			}
			if labels[col] == alias {
				return col
			}
		}
	}
	for _, alias := range aliases {
		if utf8.RuneCountInString(alias) < minSubstr {
			continue
		}
		for col := from; col <= to; col++ {
			if skip != nil && skip(col) {
				continue
			}
			if strings.Contains(labels[col], alias) {
				return col
			}
		}
	}
	return noColumn
}

func width(rows [][]string) int {
	w := 0
	for _, r := range rows {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
