package export

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hospitality/models"
	"hospitality/store/storetest"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleBookings() []models.Booking {
	table := 3
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return []models.Booking{
		{ID: "b-1", BookingType: models.HotelBooking, Status: models.StatusPending, FullName: "Ann", HotelID: "h-1",
			CheckInDate: day, CheckOutDate: day.AddDate(0, 0, 2), TimeOfArrival: day.Add(14 * time.Hour), Adult: 2},
		{ID: "b-2", BookingType: models.RestaurantBooking, Status: models.StatusDone, FullName: "Bob", RestaurantID: "r-1",
			TableNumber: &table, CheckInDate: day, CheckOutDate: day, TimeOfArrival: day.Add(19 * time.Hour), Adult: 4},
	}
}

func TestWriteBookings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBookings(&buf, sampleBookings()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetBookings}, f.GetSheetList())
	rows, err := f.GetRows(SheetBookings)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, bookingColumns, rows[0])
	assert.Equal(t, "b-1", rows[1][0])
	assert.Equal(t, "HotelBooking", rows[1][1])
	assert.Equal(t, "2024-03-03", rows[1][11])
	assert.Equal(t, "3", rows[2][9])

	styleID, err := f.GetCellStyle(SheetBookings, "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestExportHandlerFilters(t *testing.T) {
	mem := storetest.NewMemory(func(b models.Booking) string { return b.ID })
	for _, b := range sampleBookings() {
		require.NoError(t, mem.Insert(context.Background(), b))
	}
	router := httprouter.New()
	router.GET("/api/exports/bookings.xlsx", NewHandler(mem, zerolog.Nop()).ExportBookings)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports/bookings.xlsx?status=done", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxMIME, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetBookings)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b-2", rows[1][0])
}

func TestExportHandlerStorageError(t *testing.T) {
	mem := storetest.NewMemory(func(b models.Booking) string { return b.ID })
	mem.Err = assert.AnError
	rec := httptest.NewRecorder()
	NewHandler(mem, zerolog.Nop()).ExportBookings(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
