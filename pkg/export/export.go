// Package export shapes pipeline buckets for delivery: column cleanup,
// Georgian file naming, and ZIP packaging. The core pipeline result stays
// unshaped; these rules apply only at the output boundary.
package export

import (
	"archive/zip"
	"fmt"
	"io"
	"time"

	"github.com/nikora-inc/promo-engine/pkg/models"
	"github.com/nikora-inc/promo-engine/pkg/tabular"
)

const dateFormat = "2006-01-02"

var georgianDay = map[string]string{
	"Monday":    "ორშაბათი",
	"Tuesday":   "სამშაბათი",
	"Wednesday": "ოთხშაბათი",
	"Thursday":  "ხუთშაბათი",
	"Friday":    "პარასკევი",
}

const georgianUnassigned = "გაურკვეველი დღე"

// Shape prepares a bucket for export: configured columns are dropped if
// present, then the first column moves to the last position. The input is
// not mutated.
func Shape(ds *models.Dataset, dropColumns []string) *models.Dataset {
	drop := make(map[string]struct{}, len(dropColumns))
	for _, c := range dropColumns {
		drop[c] = struct{}{}
	}

	kept := make([]string, 0, len(ds.Columns))
	for _, c := range ds.Columns {
		if _, skip := drop[c]; !skip {
			kept = append(kept, c)
		}
	}
	if len(kept) > 1 {
		kept = append(kept[1:], kept[0])
	}

	out := models.NewDataset(kept)
	for _, row := range ds.Rows {
		shaped := make(models.Row, len(kept))
		for _, c := range kept {
			shaped[c] = row[c]
		}
		out.Append(shaped)
	}
	return out
}

// FileName returns the delivery file name for a bucket, using the Georgian
// day name and the run date.
func FileName(bucket string, date time.Time) string {
	day, ok := georgianDay[bucket]
	if !ok {
		day = georgianUnassigned
	}
	return fmt.Sprintf("ნიკორა, %s, %s.xlsx", day, date.Format(dateFormat))
}

// ZipName returns the combined archive's file name for the run date.
func ZipName(date time.Time) string {
	return fmt.Sprintf("ნიკორა, დაგრუპული დღეებით, %s.zip", date.Format(dateFormat))
}

// WriteZip packages the buckets into a deflate ZIP, one workbook per
// bucket in fixed weekday order. Weekday files are always written, empty
// ones included; the Unassigned file appears only when it has rows.
func WriteZip(buckets map[string]*models.Dataset, dropColumns []string, date time.Time, w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, bucket := range models.BucketNames() {
		ds, ok := buckets[bucket]
		if !ok {
			continue
		}
		if bucket == models.BucketUnassigned && ds.Len() == 0 {
			continue
		}
		entry, err := zw.Create(FileName(bucket, date))
		if err != nil {
			return fmt.Errorf("create zip entry for %s: %w", bucket, err)
		}
		if err := tabular.WriteXLSX(Shape(ds, dropColumns), entry); err != nil {
			return fmt.Errorf("write %s: %w", bucket, err)
		}
	}
	return zw.Close()
}
