// Package services contains the promo order pipeline: barcode
// normalization, weekday splitting, and the orchestrator composing them.
package services

import (
	"fmt"
	"strings"

	"github.com/nikora-inc/promo-engine/pkg/apperrors"
	"github.com/nikora-inc/promo-engine/pkg/models"
)

// MatchPolicy controls how lookup keys are compared. Keys are always
// trimmed of surrounding whitespace; case folding is optional because shop
// codes commonly vary in casing while barcodes are treated verbatim.
type MatchPolicy struct {
	CaseInsensitive bool
}

// Key normalizes a raw cell value into a lookup key.
func (p MatchPolicy) Key(s string) string {
	s = strings.TrimSpace(s)
	if p.CaseInsensitive {
		s = strings.ToUpper(s)
	}
	return s
}

// BuildBarcodeLookup builds the old-value to new-value lookup from the
// mapping dataset, iterating rows in file order. On a key collision the
// later row overwrites the earlier one; this "last row wins" tie-break is
// the documented policy. Rows with a blank old value are skipped.
func BuildBarcodeLookup(mapping *models.Dataset, newCol, oldCol string, policy MatchPolicy) map[string]string {
	lookup := make(map[string]string, mapping.Len())
	for _, row := range mapping.Rows {
		key := policy.Key(row[oldCol])
		if key == "" {
			continue
		}
		lookup[key] = row[newCol]
	}
	return lookup
}

// NormalizeBarcodes rewrites every cell of the order's barcode column
// through the barcode lookup. Unmapped and blank cells pass through
// unchanged; that is expected data, not an error. The inputs are not
// mutated. Returns the rewritten dataset and the number of cells replaced.
func NormalizeBarcodes(order, mapping *models.Dataset, barcodeCol, newCol, oldCol string, policy MatchPolicy) (*models.Dataset, int, error) {
	if !order.HasColumn(barcodeCol) {
		return nil, 0, fmt.Errorf("order barcode column %q: %w", barcodeCol, apperrors.ErrMissingColumn)
	}
	if len(mapping.Columns) < 2 {
		return nil, 0, apperrors.ErrMappingShape
	}

	lookup := BuildBarcodeLookup(mapping, newCol, oldCol, policy)

	out := order.Clone()
	rewritten := 0
	for _, row := range out.Rows {
		key := policy.Key(row[barcodeCol])
		if key == "" {
			continue
		}
		if mapped, ok := lookup[key]; ok {
			row[barcodeCol] = mapped
			rewritten++
		}
	}
	return out, rewritten, nil
}
