// Package catalog builds the read-only brand catalog that every generator
// samples from.
package catalog

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"dashboard-datagen/internal/errors"
	"dashboard-datagen/internal/models"
)

// Catalog groups raw brand observations by brand name. It is never mutated
// after Build returns, so it can be shared between goroutines freely.
type Catalog struct {
	brands      []string
	records     []models.BrandRecord
	byBrand     map[string][]models.BrandRecord
	fingerprint string
}

// Build de-duplicates and groups records. An empty input or a record with a
// blank brand is an input error.
func Build(records []models.BrandRecord) (*Catalog, error) {
	if len(records) == 0 {
		return nil, errors.Input("brand catalog is empty")
	}

	c := &Catalog{
		records: make([]models.BrandRecord, 0, len(records)),
		byBrand: make(map[string][]models.BrandRecord),
	}

	for i, rec := range records {
		rec.Brand = strings.TrimSpace(rec.Brand)
		if rec.Brand == "" {
			return nil, errors.Input(fmt.Sprintf("brand record %d has no brand", i))
		}

		if _, seen := c.byBrand[rec.Brand]; !seen {
			c.brands = append(c.brands, rec.Brand)
		}
		c.byBrand[rec.Brand] = append(c.byBrand[rec.Brand], rec)
		c.records = append(c.records, rec)
	}

	// Sorted so a seeded run enumerates brands in the same order every time.
	slices.Sort(c.brands)
	c.fingerprint = fingerprint(c.records)

	return c, nil
}

// Fingerprint identifies the catalog contents independent of record order.
// Datasets generated from equal catalogs carry equal fingerprints.
func (c *Catalog) Fingerprint() string {
	return c.fingerprint
}

func fingerprint(records []models.BrandRecord) string {
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b models.BrandRecord) int {
		return cmp.Or(
			strings.Compare(a.Brand, b.Brand),
			cmp.Compare(a.Value, b.Value),
			cmp.Compare(a.PctChange, b.PctChange),
		)
	})

	h := sha256.New()
	for _, rec := range sorted {
		h.Write([]byte(rec.Brand))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatFloat(rec.Value, 'g', -1, 64)))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatFloat(rec.PctChange, 'g', -1, 64)))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Brands returns the distinct brand names in sorted order.
func (c *Catalog) Brands() []string {
	return c.brands
}

func (c *Catalog) Records() []models.BrandRecord {
	return c.records
}

func (c *Catalog) RecordsFor(brand string) []models.BrandRecord {
	return c.byBrand[brand]
}

// Frequency is the number of observations recorded for brand.
func (c *Catalog) Frequency(brand string) int {
	return len(c.byBrand[brand])
}

func (c *Catalog) Contains(brand string) bool {
	_, ok := c.byBrand[brand]
	return ok
}

// LoadJSON decodes a JSON array of brand records.
func LoadJSON(r io.Reader) ([]models.BrandRecord, error) {
	var records []models.BrandRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, errors.InputWrap(err, "decode brand catalog")
	}
	return records, nil
}

func LoadFile(path string) ([]models.BrandRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.InputWrap(err, fmt.Sprintf("open brand catalog %s", path))
	}
	defer file.Close()

	return LoadJSON(file)
}
