package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikora-inc/promo-engine/pkg/apperrors"
	"github.com/nikora-inc/promo-engine/pkg/models"
)

func TestReadTableCSV(t *testing.T) {
	csv := "shop_code,allowed_weekday\nA,Monday\nB,Friday\n"
	ds, err := ReadTable("schedule.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, []string{"shop_code", "allowed_weekday"}, ds.Columns)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, "A", ds.Rows[0]["shop_code"])
	assert.Equal(t, "Friday", ds.Rows[1]["allowed_weekday"])
}

func TestReadTableCSVPadsShortRows(t *testing.T) {
	csv := "a,b,c\n1,2\n"
	ds, err := ReadTable("x.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, "", ds.Rows[0]["c"], "short rows are padded with blank cells")
}

func TestReadTableHeaderValidation(t *testing.T) {
	_, err := ReadTable("x.csv", strings.NewReader("a,a\n1,2\n"))
	assert.ErrorContains(t, err, "duplicate column")

	_, err = ReadTable("x.csv", strings.NewReader("a,,c\n1,2,3\n"))
	assert.ErrorContains(t, err, "blank header")

	_, err = ReadTable("x.csv", strings.NewReader(""))
	assert.ErrorIs(t, err, apperrors.ErrEmptyDataset)
}

func TestReadTableUnsupportedFormats(t *testing.T) {
	_, err := ReadTable("orders.xls", strings.NewReader("x"))
	assert.ErrorIs(t, err, apperrors.ErrUnsupported)

	_, err = ReadTable("orders.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, apperrors.ErrUnsupported)
}

func TestXLSXRoundTrip(t *testing.T) {
	ds := models.NewDataset([]string{"Завод", "Код EAN/UPC"})
	ds.Append(models.Row{"Завод": "A", "Код EAN/UPC": "123"})
	ds.Append(models.Row{"Завод": "B", "Код EAN/UPC": ""})

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(ds, &buf))

	got, err := ReadTable("orders.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, ds.Columns, got.Columns)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, "A", got.Rows[0]["Завод"])
	assert.Equal(t, "123", got.Rows[0]["Код EAN/UPC"])
	assert.Equal(t, "", got.Rows[1]["Код EAN/UPC"])
}
