// Package importer loads store and price catalogs from CSV or XLSX files.
package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/inflationfighter/price-service/internal/catalog"
)

// Format is the container format of an import file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for file extensions the importer cannot read.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing required column")

const defaultStoreColor = "#000000"

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Options tune how a file is read.
type Options struct {
	Format   Format
	Encoding Encoding // CSV only, detected when empty
	Sheet    string   // XLSX only, first sheet when empty
}

// RowError describes a row that was skipped.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Result summarizes an import.
type Result struct {
	Rows     int        `json:"rows"`
	Imported int        `json:"imported"`
	Errors   []RowError `json:"errors,omitempty"`
}

func (r *Result) skip(line int, format string, args ...any) {
	r.Errors = append(r.Errors, RowError{Line: line, Message: fmt.Sprintf(format, args...)})
}

// Importer parses import files and writes them through a catalog.Writer.
type Importer struct {
	writer catalog.Writer
	logger zerolog.Logger
}

// New creates an importer writing to w.
func New(w catalog.Writer) *Importer {
	return &Importer{
		writer: w,
		logger: log.With().Str("component", "importer").Logger(),
	}
}

func readTable(data []byte, opts Options) (*table, error) {
	switch opts.Format {
	case FormatXLSX:
		return readXLSX(data, opts.Sheet)
	case FormatCSV, "":
		content, err := Decode(data, opts.Encoding)
		if err != nil {
			return nil, err
		}
		return readCSV(content)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, opts.Format)
	}
}

func requireColumns(t *table, names ...string) (map[string]int, error) {
	cols := make(map[string]int, len(names))
	var missing []string
	for _, name := range names {
		idx := t.column(name)
		if idx < 0 {
			missing = append(missing, name)
		}
		cols[name] = idx
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

func optionalColumns(t *table, cols map[string]int, names ...string) {
	for _, name := range names {
		cols[name] = t.column(name)
	}
}

// ImportStores reads a stores file with columns store_id, name and optional
// color, address, lat, lng. A store with both coordinates blank is imported
// without a location.
func (im *Importer) ImportStores(ctx context.Context, data []byte, opts Options) (*Result, error) {
	t, err := readTable(data, opts)
	if err != nil {
		return nil, err
	}
	cols, err := requireColumns(t, "store_id", "name")
	if err != nil {
		return nil, err
	}
	optionalColumns(t, cols, "color", "address", "lat", "lng")

	result := &Result{}
	seen := make(map[string]int)
	var stores []catalog.Store

	for i, row := range t.rows {
		line := t.line(i)
		result.Rows++

		id := cell(row, cols["store_id"])
		name := cell(row, cols["name"])
		if id == "" || name == "" {
			result.skip(line, "store_id and name are required")
			continue
		}

		loc, err := parseLocation(cell(row, cols["lat"]), cell(row, cols["lng"]))
		if err != nil {
			result.skip(line, "store %s: %v", id, err)
			continue
		}

		color := cell(row, cols["color"])
		if color == "" {
			color = defaultStoreColor
		}

		store := catalog.Store{
			ID:       id,
			Name:     name,
			Color:    color,
			Address:  cell(row, cols["address"]),
			Location: loc,
		}
		if prev, ok := seen[id]; ok {
			stores[prev] = store
			continue
		}
		seen[id] = len(stores)
		stores = append(stores, store)
	}

	if len(stores) > 0 {
		if err := im.writer.UpsertStores(ctx, stores); err != nil {
			return nil, fmt.Errorf("failed to save stores: %w", err)
		}
	}
	result.Imported = len(stores)

	im.logger.Info().
		Int("rows", result.Rows).
		Int("imported", result.Imported).
		Int("skipped", len(result.Errors)).
		Msg("Stores imported")
	return result, nil
}

func parseLocation(latRaw, lngRaw string) (*catalog.Location, error) {
	if latRaw == "" && lngRaw == "" {
		return nil, nil
	}
	if latRaw == "" || lngRaw == "" {
		return nil, fmt.Errorf("lat and lng must both be set or both be blank")
	}
	lat, err := strconv.ParseFloat(strings.ReplaceAll(latRaw, ",", "."), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lat %q", latRaw)
	}
	lng, err := strconv.ParseFloat(strings.ReplaceAll(lngRaw, ",", "."), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lng %q", lngRaw)
	}
	loc := catalog.Location{Latitude: lat, Longitude: lng}
	if !loc.Valid() {
		return nil, fmt.Errorf("coordinates out of range (%g, %g)", lat, lng)
	}
	return &loc, nil
}

// ImportPrices reads a prices file. Each row describes one category and
// optionally its price at one store, so a category spans as many rows as it
// has stores. Category attributes are taken from the first row that sets
// them. A sale_price becomes a deal against the row's regular price.
func (im *Importer) ImportPrices(ctx context.Context, data []byte, opts Options) (*Result, error) {
	t, err := readTable(data, opts)
	if err != nil {
		return nil, err
	}
	cols, err := requireColumns(t, "category_id")
	if err != nil {
		return nil, err
	}
	optionalColumns(t, cols, "name", "icon", "unit", "image_url", "search_terms",
		"store_id", "price", "sale_price", "sale_ends")

	result := &Result{}
	byID := make(map[string]*catalog.Category)
	var categories []*catalog.Category

	for i, row := range t.rows {
		line := t.line(i)
		result.Rows++

		id := cell(row, cols["category_id"])
		if id == "" {
			result.skip(line, "category_id is required")
			continue
		}

		storeID := cell(row, cols["store_id"])
		var price, sale catalog.Cents
		hasSale := false
		if storeID != "" {
			price, err = ParsePrice(cell(row, cols["price"]))
			if err != nil {
				result.skip(line, "category %s at %s: %v", id, storeID, err)
				continue
			}
			if raw := cell(row, cols["sale_price"]); raw != "" {
				sale, err = ParsePrice(raw)
				if err != nil {
					result.skip(line, "category %s at %s: sale price: %v", id, storeID, err)
					continue
				}
				hasSale = true
			}
		} else if cell(row, cols["price"]) != "" {
			result.skip(line, "category %s: price without store_id", id)
			continue
		}

		c, ok := byID[id]
		if !ok {
			c = &catalog.Category{ID: id, Deals: make(map[string]catalog.Deal)}
			byID[id] = c
			categories = append(categories, c)
		}
		mergeCategory(c, row, cols)

		if storeID == "" {
			continue
		}
		c.Prices.Set(storeID, price)
		if hasSale {
			c.Deals[storeID] = catalog.Deal{
				SalePrice:    sale,
				RegularPrice: price,
				Ends:         cell(row, cols["sale_ends"]),
			}
		} else {
			delete(c.Deals, storeID)
		}
	}

	for _, c := range categories {
		if c.Name == "" {
			c.Name = c.ID
		}
	}

	if len(categories) > 0 {
		if err := im.writer.UpsertCategories(ctx, categories); err != nil {
			return nil, fmt.Errorf("failed to save categories: %w", err)
		}
	}
	result.Imported = len(categories)

	im.logger.Info().
		Int("rows", result.Rows).
		Int("categories", result.Imported).
		Int("skipped", len(result.Errors)).
		Msg("Prices imported")
	return result, nil
}

func mergeCategory(c *catalog.Category, row []string, cols map[string]int) {
	setIfEmpty(&c.Name, cell(row, cols["name"]))
	setIfEmpty(&c.Icon, cell(row, cols["icon"]))
	setIfEmpty(&c.Unit, cell(row, cols["unit"]))
	setIfEmpty(&c.ImageURL, cell(row, cols["image_url"]))

	if len(c.SearchTerms) == 0 {
		for _, term := range strings.Split(cell(row, cols["search_terms"]), "|") {
			if term = strings.TrimSpace(term); term != "" {
				c.SearchTerms = append(c.SearchTerms, term)
			}
		}
	}
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
