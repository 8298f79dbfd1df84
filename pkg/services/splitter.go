package services

import (
	"fmt"

	"github.com/nikora-inc/promo-engine/pkg/apperrors"
	"github.com/nikora-inc/promo-engine/pkg/models"
)

// BuildScheduleLookup maps each normalized shop key to its parsed weekday.
// Unparsable weekday text maps the shop to WeekdayInvalid so its rows can
// be routed to Unassigned. Later rows overwrite earlier ones on shop key
// collision, matching the barcode lookup tie-break.
func BuildScheduleLookup(schedule *models.Dataset, shopCol, dayCol string, policy MatchPolicy) map[string]models.Weekday {
	lookup := make(map[string]models.Weekday, schedule.Len())
	for _, row := range schedule.Rows {
		key := policy.Key(row[shopCol])
		if key == "" {
			continue
		}
		lookup[key] = models.ParseWeekday(row[dayCol])
	}
	return lookup
}

// SplitByWeekday partitions every order row into exactly one of six
// buckets: Monday through Friday per the shop schedule, or Unassigned when
// the shop has no schedule entry or an unrecognized weekday. The partition
// is stable and exhaustive; all six buckets are always present, each with
// the order's full column set. Dates inside the order are never consulted:
// the schedule, not the order's embedded date, is authoritative.
func SplitByWeekday(order, schedule *models.Dataset, shopCol, schedShopCol, schedDayCol string, policy MatchPolicy) (map[string]*models.Dataset, error) {
	if !order.HasColumn(shopCol) {
		return nil, fmt.Errorf("order shop column %q: %w", shopCol, apperrors.ErrMissingColumn)
	}
	if !schedule.HasColumn(schedShopCol) {
		return nil, fmt.Errorf("schedule shop column %q: %w", schedShopCol, apperrors.ErrMissingColumn)
	}
	if !schedule.HasColumn(schedDayCol) {
		return nil, fmt.Errorf("schedule weekday column %q: %w", schedDayCol, apperrors.ErrMissingColumn)
	}

	lookup := BuildScheduleLookup(schedule, schedShopCol, schedDayCol, policy)

	buckets := make(map[string]*models.Dataset, len(models.BucketNames()))
	for _, name := range models.BucketNames() {
		buckets[name] = models.NewDataset(order.Columns)
	}

	for _, row := range order.Rows {
		bucket := models.BucketUnassigned
		if day, ok := lookup[policy.Key(row[shopCol])]; ok && day != models.WeekdayInvalid {
			bucket = day.String()
		}
		buckets[bucket].Append(row.Clone())
	}
	return buckets, nil
}
