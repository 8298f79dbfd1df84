package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nikora-inc/promo-engine/pkg/apperrors"
	"github.com/nikora-inc/promo-engine/pkg/models"
)

func testPipelineConfig() PipelineConfig {
	return PipelineConfig{
		OrderBarcodeColumn:    "Код EAN/UPC",
		OrderShopColumn:       "Завод",
		ScheduleShopColumn:    "shop_code",
		ScheduleWeekdayColumn: "allowed_weekday",
		MappingNewColumn:      "ძირითადი შტრიხკოდი",
		MappingOldColumn:      "შტრიხკოდი",
		ShopMatch:             MatchPolicy{CaseInsensitive: true},
	}
}

func TestPipelineRun(t *testing.T) {
	order := orderTable(
		models.Row{"Завод": "A", "Код EAN/UPC": "123"},
		models.Row{"Завод": "B", "Код EAN/UPC": "999"},
	)
	schedule := scheduleTable([2]string{"A", "Monday"})
	mapping := mappingTable([2]string{"X1", "123"})

	result, err := NewPipeline(zap.NewNop()).Run(order, schedule, mapping, testPipelineConfig())
	require.NoError(t, err)

	require.Equal(t, 1, result.Buckets["Monday"].Len())
	assert.Equal(t, "X1", result.Buckets["Monday"].Rows[0]["Код EAN/UPC"])
	require.Equal(t, 1, result.Buckets[models.BucketUnassigned].Len())
	assert.Equal(t, "999", result.Buckets[models.BucketUnassigned].Rows[0]["Код EAN/UPC"])
	for _, day := range []string{"Tuesday", "Wednesday", "Thursday", "Friday"} {
		assert.Equal(t, 0, result.Buckets[day].Len())
	}

	assert.NotEmpty(t, result.Summary.RunID)
	assert.Equal(t, 2, result.Summary.TotalRows)
	assert.Equal(t, 1, result.Summary.RewrittenBarcodes)
	assert.Equal(t, 1, result.Summary.BucketCounts["Monday"])
	assert.Equal(t, 1, result.Summary.BucketCounts[models.BucketUnassigned])
}

func TestPipelineRunReproducible(t *testing.T) {
	order := orderTable(
		models.Row{"Завод": "A", "Код EAN/UPC": "123"},
		models.Row{"Завод": "B", "Код EAN/UPC": "999"},
	)
	schedule := scheduleTable([2]string{"A", "Monday"})
	mapping := mappingTable([2]string{"X1", "123"})

	p := NewPipeline(zap.NewNop())
	first, err := p.Run(order, schedule, mapping, testPipelineConfig())
	require.NoError(t, err)
	second, err := p.Run(order, schedule, mapping, testPipelineConfig())
	require.NoError(t, err)

	// Stateless between invocations: identical buckets, fresh run IDs.
	assert.Equal(t, first.Buckets, second.Buckets)
	assert.NotEqual(t, first.Summary.RunID, second.Summary.RunID)
}

func TestPipelineRunFailsFastOnMissingColumns(t *testing.T) {
	order := models.NewDataset([]string{"other"})
	order.Append(models.Row{"other": "x"})
	schedule := models.NewDataset([]string{"also_other"})
	schedule.Append(models.Row{"also_other": "y"})
	mapping := mappingTable([2]string{"X1", "123"})

	_, err := NewPipeline(zap.NewNop()).Run(order, schedule, mapping, testPipelineConfig())
	require.ErrorIs(t, err, apperrors.ErrMissingColumn)

	// Every missing selection is named in one error, before any row work.
	for _, col := range []string{"Код EAN/UPC", "Завод", "shop_code", "allowed_weekday"} {
		assert.Contains(t, err.Error(), col)
	}
}

func TestPipelineRunEmptyDatasets(t *testing.T) {
	order := orderTable(models.Row{"Завод": "A", "Код EAN/UPC": "123"})
	schedule := scheduleTable([2]string{"A", "Monday"})
	mapping := mappingTable([2]string{"X1", "123"})

	_, err := NewPipeline(zap.NewNop()).Run(&models.Dataset{}, schedule, mapping, testPipelineConfig())
	assert.ErrorIs(t, err, apperrors.ErrEmptyDataset)
	_, err = NewPipeline(zap.NewNop()).Run(order, &models.Dataset{}, mapping, testPipelineConfig())
	assert.ErrorIs(t, err, apperrors.ErrEmptyDataset)
	_, err = NewPipeline(zap.NewNop()).Run(order, schedule, &models.Dataset{}, testPipelineConfig())
	assert.ErrorIs(t, err, apperrors.ErrEmptyDataset)
}

func TestPipelineRunPositionalMappingFallback(t *testing.T) {
	order := orderTable(models.Row{"Завод": "A", "Код EAN/UPC": "123"})
	schedule := scheduleTable([2]string{"A", "Monday"})

	// Mapping without the Georgian headers: first column is the new
	// value, second is the old value, by file convention.
	mapping := models.NewDataset([]string{"new", "old"})
	mapping.Append(models.Row{"new": "X1", "old": "123"})

	result, err := NewPipeline(zap.NewNop()).Run(order, schedule, mapping, testPipelineConfig())
	require.NoError(t, err)
	assert.Equal(t, "X1", result.Buckets["Monday"].Rows[0]["Код EAN/UPC"])
}

func TestPipelineRunDoesNotMutateInputs(t *testing.T) {
	order := orderTable(models.Row{"Завод": "a", "Код EAN/UPC": " 123 "})
	schedule := scheduleTable([2]string{" A ", "monday"})
	mapping := mappingTable([2]string{"X1", "123"})

	_, err := NewPipeline(zap.NewNop()).Run(order, schedule, mapping, testPipelineConfig())
	require.NoError(t, err)

	assert.Equal(t, " 123 ", order.Rows[0]["Код EAN/UPC"])
	assert.Equal(t, "a", order.Rows[0]["Завод"])
	assert.Equal(t, " A ", schedule.Rows[0]["shop_code"])
}
