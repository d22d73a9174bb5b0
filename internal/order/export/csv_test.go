package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfgtrack/internal/domain"
	"mfgtrack/internal/dto"
)

func TestWriteOrders_OneRecordPerOrder(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	orders := []domain.Order{
		{
			OrderNumber:    "EM-20240601-001",
			ProductName:    "UTM-100",
			CustomerName:   "Tata Steel, Jamshedpur",
			StartDate:      now.AddDate(0, -1, 0),
			DeliveryDate:   now.AddDate(0, 0, -3),
			Status:         domain.StageFinalAssembly,
			Amount:         decimal.NewFromInt(1000),
			AmountReceived: decimal.NewFromInt(250),
			Notes:          "line one\nline two",
		},
		{
			OrderNumber:  "EM-20240601-002",
			StartDate:    now,
			DeliveryDate: now,
			Status:       domain.StageDispatch,
			Amount:       decimal.NewFromInt(10),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOrders(&buf, dto.NewOrderResponses(orders, now)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(orders)+1)
	assert.Equal(t, Header, records[0])

	first := records[1]
	assert.Equal(t, "Tata Steel, Jamshedpur", first[2])
	assert.Equal(t, "750.00", first[10])
	assert.Equal(t, "partial", first[11])
	assert.Equal(t, "Yes", first[12])
	assert.Equal(t, "3", first[13])
	assert.Equal(t, "line one\nline two", first[14])

	assert.Equal(t, "No", records[2][12])
}

func TestWriteOrders_EmptyHasHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOrders(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "orders_export_20240615.csv", Filename("20240615"))
}
