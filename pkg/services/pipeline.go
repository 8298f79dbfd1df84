package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nikora-inc/promo-engine/pkg/apperrors"
	"github.com/nikora-inc/promo-engine/pkg/models"
)

// PipelineConfig holds the column selections and matching policies for one
// run. It is resolved and validated once at the boundary and never
// re-resolved mid-run.
type PipelineConfig struct {
	OrderBarcodeColumn    string
	OrderShopColumn       string
	ScheduleShopColumn    string
	ScheduleWeekdayColumn string

	// Mapping columns are selected by header name when present; if the
	// named headers are absent the mapping's first two columns are used
	// positionally (first = new value, second = old value).
	MappingNewColumn string
	MappingOldColumn string

	BarcodeMatch MatchPolicy
	ShopMatch    MatchPolicy
}

// RunResult is the outcome of one pipeline run: the six output buckets
// keyed by bucket name, plus a summary for display and logging.
type RunResult struct {
	RunID   uuid.UUID
	Buckets map[string]*models.Dataset
	Summary RunSummary
}

// RunSummary reports per-run row accounting. The bucket counts always sum
// to TotalRows: no row is created, dropped, or duplicated.
type RunSummary struct {
	RunID             string         `json:"run_id"`
	TotalRows         int            `json:"total_rows"`
	RewrittenBarcodes int            `json:"rewritten_barcodes"`
	BucketCounts      map[string]int `json:"bucket_counts"`
	Elapsed           time.Duration  `json:"-"`
}

// Pipeline runs the two-stage transform: barcode normalization followed by
// weekday splitting. It is stateless between invocations; every call is
// independent and reproducible given the same inputs.
type Pipeline struct {
	logger *zap.Logger
}

// NewPipeline creates a Pipeline with the given logger.
func NewPipeline(logger *zap.Logger) *Pipeline {
	return &Pipeline{logger: logger}
}

// Run validates the configuration against all three datasets, then applies
// the normalizer and the splitter in that fixed order. Configuration
// errors surface before any row is processed; no partial output is ever
// produced. Input datasets are not mutated.
func (p *Pipeline) Run(order, schedule, mapping *models.Dataset, cfg PipelineConfig) (*RunResult, error) {
	start := time.Now()

	if order.IsEmpty() {
		return nil, fmt.Errorf("order: %w", apperrors.ErrEmptyDataset)
	}
	if schedule.IsEmpty() {
		return nil, fmt.Errorf("schedule: %w", apperrors.ErrEmptyDataset)
	}
	if mapping.IsEmpty() {
		return nil, fmt.Errorf("barcode mapping: %w", apperrors.ErrEmptyDataset)
	}
	if len(mapping.Columns) < 2 {
		return nil, apperrors.ErrMappingShape
	}

	newCol, oldCol := resolveMappingColumns(mapping, cfg)
	if err := validateColumns(order, schedule, cfg); err != nil {
		return nil, err
	}

	normalized, rewritten, err := NormalizeBarcodes(order, mapping, cfg.OrderBarcodeColumn, newCol, oldCol, cfg.BarcodeMatch)
	if err != nil {
		return nil, err
	}

	buckets, err := SplitByWeekday(normalized, schedule, cfg.OrderShopColumn, cfg.ScheduleShopColumn, cfg.ScheduleWeekdayColumn, cfg.ShopMatch)
	if err != nil {
		return nil, err
	}

	runID := uuid.New()
	counts := make(map[string]int, len(buckets))
	for name, ds := range buckets {
		counts[name] = ds.Len()
	}

	summary := RunSummary{
		RunID:             runID.String(),
		TotalRows:         order.Len(),
		RewrittenBarcodes: rewritten,
		BucketCounts:      counts,
		Elapsed:           time.Since(start),
	}

	p.logger.Info("pipeline run complete",
		zap.String("run_id", summary.RunID),
		zap.Int("total_rows", summary.TotalRows),
		zap.Int("rewritten_barcodes", rewritten),
		zap.Int("unassigned_rows", counts[models.BucketUnassigned]),
		zap.Duration("elapsed", summary.Elapsed),
	)

	return &RunResult{RunID: runID, Buckets: buckets, Summary: summary}, nil
}

// validateColumns checks every selected column before processing begins and
// reports all missing ones in a single error.
func validateColumns(order, schedule *models.Dataset, cfg PipelineConfig) error {
	var missing []string
	if !order.HasColumn(cfg.OrderBarcodeColumn) {
		missing = append(missing, fmt.Sprintf("order: %q", cfg.OrderBarcodeColumn))
	}
	if !order.HasColumn(cfg.OrderShopColumn) {
		missing = append(missing, fmt.Sprintf("order: %q", cfg.OrderShopColumn))
	}
	if !schedule.HasColumn(cfg.ScheduleShopColumn) {
		missing = append(missing, fmt.Sprintf("schedule: %q", cfg.ScheduleShopColumn))
	}
	if !schedule.HasColumn(cfg.ScheduleWeekdayColumn) {
		missing = append(missing, fmt.Sprintf("schedule: %q", cfg.ScheduleWeekdayColumn))
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// resolveMappingColumns picks the mapping's new/old columns by configured
// header name, falling back to the first two columns positionally when the
// named headers are absent. The mapping file is order-significant by
// convention: column 1 = new value, column 2 = old value.
func resolveMappingColumns(mapping *models.Dataset, cfg PipelineConfig) (newCol, oldCol string) {
	newCol, oldCol = cfg.MappingNewColumn, cfg.MappingOldColumn
	if newCol == "" || !mapping.HasColumn(newCol) {
		newCol = mapping.Columns[0]
	}
	if oldCol == "" || !mapping.HasColumn(oldCol) {
		oldCol = mapping.Columns[1]
	}
	return newCol, oldCol
}
