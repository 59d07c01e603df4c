package booking

import (
	"testing"
	"time"

	"hospitality/models"
	"hospitality/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func hotelDraft() Draft {
	return Draft{
		BookingType:     "HotelBooking",
		HotelID:         "h-1",
		FullName:        "Grace Hopper",
		Email:           "grace@example.com",
		PhoneNumber:     "+1 555 0100",
		Address:         "1 Navy Way",
		CheckInDate:     "2024-01-01",
		CheckOutDate:    "2024-01-03",
		TimeOfArrival:   "2024-01-01T14:00:00Z",
		TimeOfDeparture: "2024-01-03T10:00:00Z",
		Adult:           intPtr(2),
		Children:        intPtr(0),
	}
}

func requireFieldError(t *testing.T, err error, field, reason string) {
	t.Helper()
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, field, verr.Field)
	assert.Equal(t, reason, verr.Reason)
}

func TestValidateHotelBooking(t *testing.T) {
	b, err := Validate(hotelDraft())
	require.NoError(t, err)

	assert.Equal(t, models.HotelBooking, b.BookingType)
	assert.Equal(t, models.StatusPending, b.Status)
	assert.True(t, b.Availability)
	assert.Nil(t, b.TableNumber)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), b.CheckInDate)
	assert.Equal(t, 2, b.Adult)
	assert.Equal(t, 0, b.Children)
}

func TestValidateRestaurantBookingNeedsTable(t *testing.T) {
	d := hotelDraft()
	d.BookingType = "RestaurantBooking"
	d.RestaurantID = "r-1"

	_, err := Validate(d)
	requireFieldError(t, err, "tableNumber", "required for RestaurantBooking")

	d.TableNumber = intPtr(0)
	b, err := Validate(d)
	require.NoError(t, err)
	require.NotNil(t, b.TableNumber)
	assert.Equal(t, 0, *b.TableNumber)
}

func TestValidateRequiredFields(t *testing.T) {
	tests := []struct {
		field string
		clear func(*Draft)
	}{
		{"bookingType", func(d *Draft) { d.BookingType = "" }},
		{"fullName", func(d *Draft) { d.FullName = "" }},
		{"email", func(d *Draft) { d.Email = "" }},
		{"phoneNumber", func(d *Draft) { d.PhoneNumber = "" }},
		{"address", func(d *Draft) { d.Address = "" }},
		{"checkInDate", func(d *Draft) { d.CheckInDate = "" }},
		{"checkOutDate", func(d *Draft) { d.CheckOutDate = "" }},
		{"timeOfArrival", func(d *Draft) { d.TimeOfArrival = "" }},
		{"adult", func(d *Draft) { d.Adult = nil }},
		{"children", func(d *Draft) { d.Children = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			d := hotelDraft()
			tt.clear(&d)
			_, err := Validate(d)
			requireFieldError(t, err, tt.field, "required")
		})
	}
}

func TestValidateFirstFailureWins(t *testing.T) {
	d := hotelDraft()
	d.FullName = ""
	d.Adult = nil
	_, err := Validate(d)
	requireFieldError(t, err, "fullName", "required")
}

func TestValidateRejectsBadValues(t *testing.T) {
	d := hotelDraft()
	d.BookingType = "SpaBooking"
	_, err := Validate(d)
	requireFieldError(t, err, "bookingType", "must be one of HotelBooking RestaurantBooking")

	d = hotelDraft()
	d.Status = "confirmed"
	_, err = Validate(d)
	requireFieldError(t, err, "status", "must be one of pending accepted cancelled rejected done")

	d = hotelDraft()
	d.Email = "not-an-email"
	_, err = Validate(d)
	requireFieldError(t, err, "email", "must be a valid email")

	d = hotelDraft()
	d.Children = intPtr(-1)
	_, err = Validate(d)
	requireFieldError(t, err, "children", "must be >= 0")

	d = hotelDraft()
	d.CheckOutDate = "next tuesday"
	_, err = Validate(d)
	requireFieldError(t, err, "checkOutDate", "invalid date")
}

func TestDeriveAvailability(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	at := func(h int) *time.Time { v := time.Date(2024, 1, 1, h, 0, 0, 0, time.UTC); return &v }

	assert.True(t, DeriveAvailability(day(1), day(2), *at(14), at(16)))
	assert.False(t, DeriveAvailability(day(2), day(1), *at(14), at(16)), "checkout before checkin")
	assert.False(t, DeriveAvailability(day(1), day(1), *at(14), at(16)), "zero-length stay")
	assert.False(t, DeriveAvailability(day(1), day(2), *at(16), at(14)), "departure before arrival")
	assert.False(t, DeriveAvailability(day(1), day(2), *at(14), nil), "no departure")
}

func TestValidateWithoutDepartureIsUnavailable(t *testing.T) {
	d := hotelDraft()
	d.TimeOfDeparture = ""
	b, err := Validate(d)
	require.NoError(t, err)
	assert.False(t, b.Availability)
	assert.Nil(t, b.TimeOfDeparture)
}

func TestParseDateLayouts(t *testing.T) {
	for _, in := range []string{"2024-01-01T14:00:00Z", "2024-01-01T14:00:00", "2024-01-01T14:00", " 2024-01-01T15:00:00+01:00 "} {
		got, ok := ParseDate(in)
		require.True(t, ok, in)
		assert.Equal(t, time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC), got, in)
	}
	_, ok := ParseDate("01/02/2024")
	assert.False(t, ok)
}

func TestDraftFromRoundTrip(t *testing.T) {
	original, err := Validate(hotelDraft())
	require.NoError(t, err)

	again, err := Validate(DraftFrom(original))
	require.NoError(t, err)
	assert.Equal(t, original, again)
}

func TestDraftFromDoesNotAlias(t *testing.T) {
	b := models.Booking{TableNumber: intPtr(3)}
	d := DraftFrom(b)
	*d.TableNumber = 9
	assert.Equal(t, 3, *b.TableNumber)
}
