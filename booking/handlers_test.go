package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hospitality/models"
	"hospitality/store/storetest"
	"hospitality/tickets"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	router      *httprouter.Router
	bookings    *storetest.Memory[models.Booking]
	hotels      *storetest.Memory[models.Hotel]
	restaurants *storetest.Memory[models.Restaurant]
	hub         *Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		bookings:    storetest.NewMemory(func(b models.Booking) string { return b.ID }),
		hotels:      storetest.NewMemory(func(h models.Hotel) string { return h.ID }),
		restaurants: storetest.NewMemory(func(r models.Restaurant) string { return r.ID }),
		hub:         NewHub(zerolog.Nop()),
	}
	require.NoError(t, f.hotels.Insert(context.Background(), models.Hotel{ID: "h-1", Name: "Grand", Address: "Main St"}))
	require.NoError(t, f.restaurants.Insert(context.Background(), models.Restaurant{ID: "r-1", Name: "Bistro"}))

	h := NewHandler(f.bookings, References{Hotels: f.hotels, Restaurants: f.restaurants}, f.hub, nil, "test-secret", zerolog.Nop())
	h.now = func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) }

	router := httprouter.New()
	router.GET("/api/bookings", h.ListBookings)
	router.POST("/api/bookings", h.CreateBooking)
	router.GET("/api/bookings/:id", h.GetBooking)
	router.PATCH("/api/bookings/:id", h.UpdateBooking)
	router.DELETE("/api/bookings/:id", h.DeleteBooking)
	router.PATCH("/api/bookings/:id/status", h.UpdateBookingStatus)
	router.GET("/api/bookings/:id/voucher", h.GetVoucher)
	router.POST("/api/vouchers/verify", h.VerifyVoucher)
	router.GET("/ws/bookings/:targetType/:targetId", f.hub.HandleWS)
	f.router = router
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Field   string `json:"field"`
	Reason  string `json:"reason"`
	Results int    `json:"results"`
	Data    struct {
		Booking  models.Booking   `json:"booking"`
		Bookings []models.Booking `json:"bookings"`
	} `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func hotelPayload() map[string]any {
	return map[string]any{
		"bookingType":     "HotelBooking",
		"hotelId":         "h-1",
		"fullName":        "Grace Hopper",
		"email":           "grace@example.com",
		"phoneNumber":     "+1 555 0100",
		"address":         "1 Navy Way",
		"checkInDate":     "2024-01-01",
		"checkOutDate":    "2024-01-02",
		"timeOfArrival":   "2024-01-01T14:00:00Z",
		"timeOfDeparture": "2024-01-01T16:00:00Z",
		"adult":           2,
		"children":        0,
	}
}

func (f *fixture) create(t *testing.T, payload map[string]any) models.Booking {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/bookings", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(t, rec).Data.Booking
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)

	b := f.create(t, hotelPayload())
	assert.NotEmpty(t, b.ID)
	assert.True(t, b.Availability)
	assert.Equal(t, models.StatusPending, b.Status)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), b.CreatedAt)
	assert.Equal(t, 1, f.bookings.Len())
}

func TestCreateRestaurantBookingWithoutTable(t *testing.T) {
	f := newFixture(t)
	payload := hotelPayload()
	payload["bookingType"] = "RestaurantBooking"
	payload["restaurantId"] = "r-1"
	delete(payload, "hotelId")

	rec := f.do(t, http.MethodPost, "/api/bookings", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "fail", env.Status)
	assert.Equal(t, "tableNumber", env.Field)
	assert.Equal(t, "required for RestaurantBooking", env.Reason)
	assert.Equal(t, 0, f.bookings.Len())

	payload["tableNumber"] = 4
	b := f.create(t, payload)
	require.NotNil(t, b.TableNumber)
	assert.Equal(t, 4, *b.TableNumber)
}

func TestCreateBookingRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/bookings", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	payload := hotelPayload()
	delete(payload, "email")
	rec = f.do(t, http.MethodPost, "/api/bookings", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email", decode(t, rec).Field)

	payload = hotelPayload()
	payload["hotelId"] = "missing"
	rec = f.do(t, http.MethodPost, "/api/bookings", payload)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Hotel not found with this ID.", decode(t, rec).Message)
}

func TestGetAndListBookings(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, hotelPayload())

	payload := hotelPayload()
	payload["bookingType"] = "RestaurantBooking"
	payload["restaurantId"] = "r-1"
	payload["tableNumber"] = 2
	delete(payload, "hotelId")
	f.create(t, payload)

	rec := f.do(t, http.MethodGet, "/api/bookings/"+first.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first.ID, decode(t, rec).Data.Booking.ID)

	rec = f.do(t, http.MethodGet, "/api/bookings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode(t, rec).Results)

	rec = f.do(t, http.MethodGet, "/api/bookings?bookingType=RestaurantBooking", nil)
	env := decode(t, rec)
	require.Equal(t, 1, env.Results)
	assert.Equal(t, models.RestaurantBooking, env.Data.Bookings[0].BookingType)

	rec = f.do(t, http.MethodGet, "/api/bookings?limit=1&page=2", nil)
	assert.Equal(t, 1, decode(t, rec).Results)

	rec = f.do(t, http.MethodGet, "/api/bookings/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Booking not found with this ID.", decode(t, rec).Message)
}

func TestUpdateBookingRederivesAvailability(t *testing.T) {
	f := newFixture(t)
	b := f.create(t, hotelPayload())
	require.True(t, b.Availability)

	rec := f.do(t, http.MethodPatch, "/api/bookings/"+b.ID, map[string]any{"checkOutDate": "2023-12-31"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode(t, rec).Data.Booking
	assert.False(t, updated.Availability)
	assert.Equal(t, b.FullName, updated.FullName)
	assert.Equal(t, b.CreatedAt, updated.CreatedAt)

	stored, err := f.bookings.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.False(t, stored.Availability)
}

func TestUpdateBookingRevalidatesWholeRecord(t *testing.T) {
	f := newFixture(t)
	b := f.create(t, hotelPayload())

	rec := f.do(t, http.MethodPatch, "/api/bookings/"+b.ID, map[string]any{"bookingType": "RestaurantBooking"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "tableNumber", decode(t, rec).Field)

	rec = f.do(t, http.MethodPatch, "/api/bookings/"+b.ID, map[string]any{"adult": nil})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "adult", decode(t, rec).Field)

	rec = f.do(t, http.MethodPatch, "/api/bookings/unknown", map[string]any{"fullName": "X"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateBookingStatus(t *testing.T) {
	f := newFixture(t)
	b := f.create(t, hotelPayload())

	for _, status := range []string{"done", "pending", "cancelled", "accepted"} {
		rec := f.do(t, http.MethodPatch, "/api/bookings/"+b.ID+"/status", map[string]any{"status": status})
		require.Equal(t, http.StatusOK, rec.Code, status)
		assert.Equal(t, models.BookingStatus(status), decode(t, rec).Data.Booking.Status)
	}

	rec := f.do(t, http.MethodPatch, "/api/bookings/"+b.ID+"/status", map[string]any{"status": "confirmed"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "status", decode(t, rec).Field)

	rec = f.do(t, http.MethodPatch, "/api/bookings/"+b.ID+"/status", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "status", env.Field)
	assert.Equal(t, "required", env.Reason)
}

func TestBookingOfDeletedHotelStaysEditable(t *testing.T) {
	f := newFixture(t)
	b := f.create(t, hotelPayload())
	require.NoError(t, f.hotels.Delete(context.Background(), "h-1"))

	rec := f.do(t, http.MethodPatch, "/api/bookings/"+b.ID+"/status", map[string]any{"status": "cancelled"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.StatusCancelled, decode(t, rec).Data.Booking.Status)

	rec = f.do(t, http.MethodPatch, "/api/bookings/"+b.ID, map[string]any{"fullName": "Grace B. Hopper"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPatch, "/api/bookings/"+b.ID, map[string]any{"hotelId": "h-2"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Hotel not found with this ID.", decode(t, rec).Message)
}

func TestUpdateBookingClearsDeparture(t *testing.T) {
	f := newFixture(t)
	b := f.create(t, hotelPayload())
	require.NotNil(t, b.TimeOfDeparture)

	rec := f.do(t, http.MethodPatch, "/api/bookings/"+b.ID, `{"timeOfDeparture": null}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode(t, rec).Data.Booking
	assert.Nil(t, updated.TimeOfDeparture)
	assert.False(t, updated.Availability)
	assert.Equal(t, b.FullName, updated.FullName)
}

func TestDeleteBooking(t *testing.T) {
	f := newFixture(t)
	b := f.create(t, hotelPayload())

	rec := f.do(t, http.MethodDelete, "/api/bookings/"+b.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/bookings/"+b.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/bookings/"+b.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVoucher(t *testing.T) {
	f := newFixture(t)
	b := f.create(t, hotelPayload())

	rec := f.do(t, http.MethodGet, "/api/bookings/"+b.ID+"/voucher", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))

	rec = f.do(t, http.MethodPost, "/api/vouchers/verify", map[string]any{"payload": tickets.GenerateQRPayload(b, "test-secret")})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, b.ID, decode(t, rec).Data.Booking.ID)

	rec = f.do(t, http.MethodPost, "/api/vouchers/verify", map[string]any{"payload": tickets.GenerateQRPayload(b, "wrong")})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.do(t, http.MethodPatch, "/api/bookings/"+b.ID+"/status", map[string]any{"status": "cancelled"})
	rec = f.do(t, http.MethodGet, "/api/bookings/"+b.ID+"/voucher", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
