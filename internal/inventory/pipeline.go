package inventory

import "stockpulse/pkg/contracts/domain"

// Options configures a pipeline run
type Options struct {
	Convention    NumericConvention `json:"convention" yaml:"convention" validate:"omitempty,oneof=unknown zero"`
	SuppressEmpty bool              `json:"suppress_empty" yaml:"suppress_empty"`
	Mode          Mode              `json:"mode" yaml:"mode" validate:"omitempty,oneof=grouped breakdown"`
	Aliases       AliasTable        `json:"-" yaml:"-"`
}

// DefaultOptions returns options that keep every record and group across stores
func DefaultOptions() Options {
	return Options{
		Convention:    ConventionUnknown,
		SuppressEmpty: false,
		Mode:          ModeGrouped,
	}
}

// Result is the output of one pipeline run
type Result struct {
	Stores      []domain.StoreBlock       `json:"stores"`
	Records     []domain.NormalizedRecord `json:"records"`
	Products    []domain.GroupedProduct   `json:"products"`
	Diagnostics Diagnostics               `json:"diagnostics"`
}

// Pipeline turns a grid into normalized records and classified product groups.
// It keeps no state between runs and is safe for concurrent use.
type Pipeline struct {
	opts    Options
	locator *Locator
}

// NewPipeline creates a pipeline, filling unset options with defaults
func NewPipeline(opts Options) *Pipeline {
	if !opts.Convention.Valid() {
		opts.Convention = ConventionUnknown
	}
	if !opts.Mode.Valid() {
		opts.Mode = ModeGrouped
	}
	return &Pipeline{opts: opts, locator: NewLocator(opts.Aliases)}
}

// Options returns the effective options
func (p *Pipeline) Options() Options {
	return p.opts
}

// Run processes grid with the caller's dictionaries. A StructuralError
// aborts the run with no result.
func (p *Pipeline) Run(grid [][]string, products ProductDictionary, sizes SizeDictionary) (*Result, error) {
	layout, err := p.locator.Locate(grid)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Stores:      layout.Stores,
		Diagnostics: Diagnostics{BlocksDropped: layout.BlocksDropped},
	}

	extractor := NewExtractor(layout, sizes, p.opts.Convention, p.opts.SuppressEmpty)
	result.Records = make([]domain.NormalizedRecord, 0, (len(grid)-HeaderRows)*len(layout.Stores))
	for _, row := range grid[HeaderRows:] {
		result.Records = append(result.Records, extractor.ExtractRow(row, &result.Diagnostics)...)
	}

	result.Products = NewAggregator(products, p.opts.Mode).Aggregate(result.Records)
	return result, nil
}
