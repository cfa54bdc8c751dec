// Package csvfeed reads Instacart-style catalog exports (products.csv plus
// aisles.csv) into indexable products.
package csvfeed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/kailas-cloud/qou/internal/domain/product"
)

// Defaults applied to rows that lack the information.
const (
	PrivateLabel    = "Private Label"
	UnknownCategory = "Unknown"
	idPrefix        = "instacart-"
)

// productNamespace scopes name-derived product ids.
var productNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://qou.kailas.cloud/products"))

var dietaryKeywords = map[string]string{
	"gluten free":  "gluten-free",
	"gluten-free":  "gluten-free",
	"vegan":        "vegan",
	"lactose free": "lactose free",
}

// Feed converts CSV rows to products. Immutable after construction.
type Feed struct {
	brands []string // longest first
}

// New creates a feed that attributes products to the given brands by name
// containment.
func New(brands []string) *Feed {
	cp := make([]string, 0, len(brands))
	for _, b := range brands {
		if b = strings.TrimSpace(b); b != "" {
			cp = append(cp, b)
		}
	}
	sort.SliceStable(cp, func(i, j int) bool { return len(cp[i]) > len(cp[j]) })
	return &Feed{brands: cp}
}

// ReadFiles loads both exports from disk.
func (f *Feed) ReadFiles(productsPath, aislesPath string) ([]product.Product, error) {
	aisles := map[string]string{}
	if aislesPath != "" {
		af, err := os.Open(aislesPath)
		if err != nil {
			return nil, fmt.Errorf("open aisles: %w", err)
		}
		defer func() { _ = af.Close() }()
		if aisles, err = ReadAisles(af); err != nil {
			return nil, err
		}
	}

	pf, err := os.Open(productsPath)
	if err != nil {
		return nil, fmt.Errorf("open products: %w", err)
	}
	defer func() { _ = pf.Close() }()
	return f.ReadProducts(pf, aisles)
}

// ReadAisles parses aisle_id,aisle rows into an id->name map.
func ReadAisles(r io.Reader) (map[string]string, error) {
	rows, cols, err := readAll(r, "aisle_id", "aisle")
	if err != nil {
		return nil, fmt.Errorf("read aisles: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		id, name := field(row, cols["aisle_id"]), field(row, cols["aisle"])
		if id != "" && name != "" {
			out[id] = name
		}
	}
	return out, nil
}

// ReadProducts parses product rows. The product_name column is required;
// product_id and aisle_id are optional. Rows without a name are skipped.
func (f *Feed) ReadProducts(r io.Reader, aisles map[string]string) ([]product.Product, error) {
	rows, cols, err := readAll(r, "product_name")
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}

	idCol, hasID := cols["product_id"]
	aisleCol, hasAisle := cols["aisle_id"]

	out := make([]product.Product, 0, len(rows))
	for _, row := range rows {
		name := field(row, cols["product_name"])
		if name == "" {
			continue
		}
		var id, aisleID string
		if hasID {
			id = field(row, idCol)
		}
		if hasAisle {
			aisleID = field(row, aisleCol)
		}
		category := aisles[aisleID]
		if category == "" {
			category = UnknownCategory
		}
		out = append(out, f.toProduct(id, name, category))
	}
	return out, nil
}

func (f *Feed) toProduct(id, name, category string) product.Product {
	if id == "" {
		id = uuid.NewSHA1(productNamespace, []byte(strings.ToLower(name))).String()
	} else {
		id = idPrefix + id
	}

	p := product.Product{
		ProductID:  id,
		Name:       name,
		Brand:      f.brandOf(name),
		Categories: []string{category},
		SearchAid:  strings.ToLower(name) + " " + strings.ToLower(category),
	}

	lower := strings.ToLower(name)
	var dietary []string
	for kw, tag := range dietaryKeywords {
		if strings.Contains(lower, kw) && !slices.Contains(dietary, tag) {
			dietary = append(dietary, tag)
		}
	}
	sort.Strings(dietary)
	organic := strings.Contains(lower, "organic")
	if organic || len(dietary) > 0 {
		p.GroceryAttributes = &product.GroceryAttributes{Dietary: dietary, IsOrganic: organic}
	}
	return p
}

func (f *Feed) brandOf(name string) string {
	lower := strings.ToLower(name)
	for _, b := range f.brands {
		if strings.Contains(lower, strings.ToLower(b)) {
			return b
		}
	}
	return PrivateLabel
}

// readAll reads a headered CSV and indexes its columns by name.
func readAll(r io.Reader, required ...string) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("empty file")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", name)
		}
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("rows: %w", err)
	}
	return rows, cols, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
