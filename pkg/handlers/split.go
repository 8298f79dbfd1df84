package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/nikora-inc/promo-engine/pkg/apperrors"
	"github.com/nikora-inc/promo-engine/pkg/config"
	"github.com/nikora-inc/promo-engine/pkg/export"
	"github.com/nikora-inc/promo-engine/pkg/metrics"
	"github.com/nikora-inc/promo-engine/pkg/models"
	"github.com/nikora-inc/promo-engine/pkg/services"
	"github.com/nikora-inc/promo-engine/pkg/tabular"
)

// Defaults holds the locally loaded schedule and mapping tables. Either
// may be nil when the local file was absent; requests must then carry an
// override upload for it.
type Defaults struct {
	Schedule *models.Dataset
	Mapping  *models.Dataset
}

// SplitHandler runs the promo order pipeline for uploaded order files.
type SplitHandler struct {
	cfg      *config.Config
	pipeline *services.Pipeline
	defaults Defaults
	metrics  *metrics.Registry
	logger   *zap.Logger
}

// NewSplitHandler creates a new SplitHandler.
func NewSplitHandler(cfg *config.Config, pipeline *services.Pipeline, defaults Defaults, reg *metrics.Registry, logger *zap.Logger) *SplitHandler {
	return &SplitHandler{cfg: cfg, pipeline: pipeline, defaults: defaults, metrics: reg, logger: logger}
}

// RegisterRoutes registers the split handler's routes on the given mux.
func (h *SplitHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/split", h.Split)
	mux.HandleFunc("POST /api/split/preview", h.Preview)
}

// Split handles POST /api/split.
// Accepts a multipart form with a required "order" file and optional
// "schedule"/"mapping" override files, runs the pipeline, and streams back
// a ZIP of the weekday workbooks.
func (h *SplitHandler) Split(w http.ResponseWriter, r *http.Request) {
	result, ok := h.run(w, r)
	if !ok {
		return
	}

	date := time.Now()
	var buf bytes.Buffer
	if err := export.WriteZip(result.Buckets, h.cfg.Export.DropColumns, date, &buf); err != nil {
		h.logger.Error("Failed to package run output", zap.String("run_id", result.Summary.RunID), zap.Error(err))
		http.Error(w, "failed to package output", http.StatusInternalServerError)
		return
	}

	name := export.ZipName(date)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="promo-orders.zip"; filename*=UTF-8''%s`, url.PathEscape(name)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Run-Id", result.Summary.RunID)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("Failed to write zip response", zap.String("run_id", result.Summary.RunID), zap.Error(err))
	}
}

// Preview handles POST /api/split/preview.
// Runs the same pipeline but returns only the run summary, so operators
// can check per-bucket row counts before downloading files.
func (h *SplitHandler) Preview(w http.ResponseWriter, r *http.Request) {
	result, ok := h.run(w, r)
	if !ok {
		return
	}
	if err := WriteJSON(w, http.StatusOK, result.Summary); err != nil {
		h.logger.Error("Failed to encode run summary", zap.String("run_id", result.Summary.RunID), zap.Error(err))
	}
}

// run parses the multipart form, resolves overrides against the local
// defaults, and executes the pipeline. On failure it writes the error
// response and returns ok=false.
func (h *SplitHandler) run(w http.ResponseWriter, r *http.Request) (*services.RunResult, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_upload", "could not parse multipart form: "+err.Error())
		return nil, false
	}

	order, ok := h.formTable(w, r, "order", nil)
	if !ok {
		return nil, false
	}
	if order == nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "missing_order", "an order file upload is required")
		return nil, false
	}

	schedule, ok := h.formTable(w, r, "schedule", h.defaults.Schedule)
	if !ok {
		return nil, false
	}
	if schedule == nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "missing_schedule", "no shop schedule: place shop_schedule.xlsx next to the server or upload an override")
		return nil, false
	}

	mapping, ok := h.formTable(w, r, "mapping", h.defaults.Mapping)
	if !ok {
		return nil, false
	}
	if mapping == nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "missing_mapping", "no barcode map: place barcode_map.xlsx next to the server or upload an override")
		return nil, false
	}

	result, err := h.pipeline.Run(order, schedule, mapping, h.cfg.PipelineConfig())
	if err != nil {
		h.metrics.RunFailures.Inc()
		switch {
		case errors.Is(err, apperrors.ErrMissingColumn):
			_ = ErrorResponse(w, http.StatusUnprocessableEntity, "missing_columns", err.Error())
		case errors.Is(err, apperrors.ErrMappingShape), errors.Is(err, apperrors.ErrEmptyDataset):
			_ = ErrorResponse(w, http.StatusUnprocessableEntity, "invalid_configuration", err.Error())
		default:
			h.logger.Error("Pipeline run failed", zap.Error(err))
			http.Error(w, "pipeline run failed", http.StatusInternalServerError)
		}
		return nil, false
	}

	h.metrics.Runs.Inc()
	h.metrics.RowsProcessed.Add(float64(result.Summary.TotalRows))
	h.metrics.RowsUnassigned.Add(float64(result.Summary.BucketCounts[models.BucketUnassigned]))
	h.metrics.BarcodesRewritten.Add(float64(result.Summary.RewrittenBarcodes))
	h.metrics.RunDuration.Observe(result.Summary.Elapsed.Seconds())
	return result, true
}

// formTable reads the named multipart file into a dataset, returning the
// fallback when the field is absent. ok=false means an error response was
// already written.
func (h *SplitHandler) formTable(w http.ResponseWriter, r *http.Request, field string, fallback *models.Dataset) (*models.Dataset, bool) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return fallback, true
	}
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_upload", fmt.Sprintf("could not read %q upload: %v", field, err))
		return nil, false
	}
	defer closeQuietly(file)

	ds, err := tabular.ReadTable(header.Filename, file)
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_table", fmt.Sprintf("could not parse %q upload: %v", field, err))
		return nil, false
	}
	return ds, true
}

func closeQuietly(f multipart.File) {
	_ = f.Close()
}
