package tabular

import (
	"os"

	"go.uber.org/zap"

	"github.com/nikora-inc/promo-engine/pkg/models"
)

// TryLoadFirst reads the first candidate path that exists on disk. It
// returns (nil, nil) when no candidate exists, so callers can decide
// whether a missing default table is fatal; the HTTP surface allows
// per-request override uploads instead.
func TryLoadFirst(candidates []string, logger *zap.Logger) (*models.Dataset, error) {
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		ds, err := ReadTableFile(path)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded local table",
			zap.String("path", path),
			zap.Int("rows", ds.Len()),
		)
		return ds, nil
	}
	return nil, nil
}
