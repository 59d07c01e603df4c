package booking

import (
	"strings"
	"time"

	"hospitality/models"
	"hospitality/validation"
)

// Draft is a booking as submitted by a client, before validation. Dates are raw
// strings so that a malformed value can be reported against its field.
type Draft struct {
	BookingType     string   `json:"bookingType" validate:"required,oneof=HotelBooking RestaurantBooking"`
	HotelID         string   `json:"hotelId"`
	RoomID          string   `json:"roomId"`
	RestaurantID    string   `json:"restaurantId"`
	FullName        string   `json:"fullName" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	PhoneNumber     string   `json:"phoneNumber" validate:"required"`
	Address         string   `json:"address" validate:"required"`
	TableNumber     *int     `json:"tableNumber" validate:"omitempty,gte=0"`
	CheckInDate     string   `json:"checkInDate" validate:"required"`
	CheckOutDate    string   `json:"checkOutDate" validate:"required"`
	TimeOfArrival   string   `json:"timeOfArrival" validate:"required"`
	TimeOfDeparture string   `json:"timeOfDeparture"`
	TotalPrice      *float64 `json:"totalPrice" validate:"omitempty,gte=0"`
	Adult           *int     `json:"adult" validate:"required,gte=0"`
	Children        *int     `json:"children" validate:"required,gte=0"`
	Status          string   `json:"status" validate:"omitempty,oneof=pending accepted cancelled rejected done"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate accepts RFC 3339 or a zone-less date/time, read as UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// DeriveAvailability is true when the stay and the visit both have positive length.
// A booking without a departure time is never available.
func DeriveAvailability(checkIn, checkOut, arrival time.Time, departure *time.Time) bool {
	if departure == nil {
		return false
	}
	return checkOut.After(checkIn) && arrival.Before(*departure)
}

// Validate turns a draft into a booking or returns the first *validation.Error.
// The result has no ID or timestamps.
func Validate(d Draft) (models.Booking, error) {
	if err := validation.Struct(d); err != nil {
		return models.Booking{}, err
	}
	if models.BookingType(d.BookingType) == models.RestaurantBooking && d.TableNumber == nil {
		return models.Booking{}, &validation.Error{Field: "tableNumber", Reason: "required for RestaurantBooking"}
	}

	checkIn, err := parseField("checkInDate", d.CheckInDate)
	if err != nil {
		return models.Booking{}, err
	}
	checkOut, err := parseField("checkOutDate", d.CheckOutDate)
	if err != nil {
		return models.Booking{}, err
	}
	arrival, err := parseField("timeOfArrival", d.TimeOfArrival)
	if err != nil {
		return models.Booking{}, err
	}
	var departure *time.Time
	if strings.TrimSpace(d.TimeOfDeparture) != "" {
		t, err := parseField("timeOfDeparture", d.TimeOfDeparture)
		if err != nil {
			return models.Booking{}, err
		}
		departure = &t
	}

	status := models.BookingStatus(d.Status)
	if status == "" {
		status = models.StatusPending
	}

	return models.Booking{
		BookingType:     models.BookingType(d.BookingType),
		HotelID:         strings.TrimSpace(d.HotelID),
		RoomID:          strings.TrimSpace(d.RoomID),
		RestaurantID:    strings.TrimSpace(d.RestaurantID),
		FullName:        strings.TrimSpace(d.FullName),
		Email:           strings.TrimSpace(d.Email),
		PhoneNumber:     strings.TrimSpace(d.PhoneNumber),
		Address:         strings.TrimSpace(d.Address),
		TableNumber:     d.TableNumber,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		TimeOfArrival:   arrival,
		TimeOfDeparture: departure,
		TotalPrice:      d.TotalPrice,
		Adult:           *d.Adult,
		Children:        *d.Children,
		Status:          status,
		Availability:    DeriveAvailability(checkIn, checkOut, arrival, departure),
	}, nil
}

func parseField(field, value string) (time.Time, error) {
	t, ok := ParseDate(value)
	if !ok {
		return time.Time{}, &validation.Error{Field: field, Reason: "invalid date"}
	}
	return t, nil
}

// DraftFrom is the inverse of Validate, used to overlay a partial update onto a
// stored booking.
func DraftFrom(b models.Booking) Draft {
	adult, children := b.Adult, b.Children
	d := Draft{
		BookingType:   string(b.BookingType),
		HotelID:       b.HotelID,
		RoomID:        b.RoomID,
		RestaurantID:  b.RestaurantID,
		FullName:      b.FullName,
		Email:         b.Email,
		PhoneNumber:   b.PhoneNumber,
		Address:       b.Address,
		TableNumber:   clonePtr(b.TableNumber),
		CheckInDate:   b.CheckInDate.UTC().Format(time.RFC3339),
		CheckOutDate:  b.CheckOutDate.UTC().Format(time.RFC3339),
		TimeOfArrival: b.TimeOfArrival.UTC().Format(time.RFC3339),
		TotalPrice:    clonePtr(b.TotalPrice),
		Adult:         &adult,
		Children:      &children,
		Status:        string(b.Status),
	}
	if b.TimeOfDeparture != nil {
		d.TimeOfDeparture = b.TimeOfDeparture.UTC().Format(time.RFC3339)
	}
	return d
}

// clearNulls empties the string fields sent as an explicit JSON null. Pointer
// fields are already reset to nil by the decoder.
func (d *Draft) clearNulls(nulls map[string]bool) {
	fields := map[string]*string{
		"bookingType":     &d.BookingType,
		"hotelId":         &d.HotelID,
		"roomId":          &d.RoomID,
		"restaurantId":    &d.RestaurantID,
		"fullName":        &d.FullName,
		"email":           &d.Email,
		"phoneNumber":     &d.PhoneNumber,
		"address":         &d.Address,
		"checkInDate":     &d.CheckInDate,
		"checkOutDate":    &d.CheckOutDate,
		"timeOfArrival":   &d.TimeOfArrival,
		"timeOfDeparture": &d.TimeOfDeparture,
	}
	for key, dst := range fields {
		if nulls[key] {
			*dst = ""
		}
	}
}

// clonePtr keeps decoding into a draft from writing through to the source booking.
func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
