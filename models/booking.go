package models

import "time"

type BookingType string

const (
	HotelBooking      BookingType = "HotelBooking"
	RestaurantBooking BookingType = "RestaurantBooking"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusAccepted  BookingStatus = "accepted"
	StatusCancelled BookingStatus = "cancelled"
	StatusRejected  BookingStatus = "rejected"
	StatusDone      BookingStatus = "done"
)

// Booking is a validated reservation. Availability is derived, never supplied.
type Booking struct {
	ID              string        `json:"id" bson:"_id"`
	BookingType     BookingType   `json:"bookingType" bson:"bookingType"`
	HotelID         string        `json:"hotelId,omitempty" bson:"hotelId,omitempty"`
	RoomID          string        `json:"roomId,omitempty" bson:"roomId,omitempty"`
	RestaurantID    string        `json:"restaurantId,omitempty" bson:"restaurantId,omitempty"`
	FullName        string        `json:"fullName" bson:"fullName"`
	Email           string        `json:"email" bson:"email"`
	PhoneNumber     string        `json:"phoneNumber" bson:"phoneNumber"`
	Address         string        `json:"address" bson:"address"`
	TableNumber     *int          `json:"tableNumber,omitempty" bson:"tableNumber,omitempty"`
	CheckInDate     time.Time     `json:"checkInDate" bson:"checkInDate"`
	CheckOutDate    time.Time     `json:"checkOutDate" bson:"checkOutDate"`
	TimeOfArrival   time.Time     `json:"timeOfArrival" bson:"timeOfArrival"`
	TimeOfDeparture *time.Time    `json:"timeOfDeparture,omitempty" bson:"timeOfDeparture,omitempty"`
	TotalPrice      *float64      `json:"totalPrice,omitempty" bson:"totalPrice,omitempty"`
	Adult           int           `json:"adult" bson:"adult"`
	Children        int           `json:"children" bson:"children"`
	Status          BookingStatus `json:"status" bson:"status"`
	Availability    bool          `json:"availability" bson:"availability"`
	CreatedAt       time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// Target is the live-feed key for the venue a booking belongs to, e.g. "hotel:42".
func (b Booking) Target() string {
	switch {
	case b.BookingType == RestaurantBooking && b.RestaurantID != "":
		return "restaurant:" + b.RestaurantID
	case b.HotelID != "":
		return "hotel:" + b.HotelID
	default:
		return ""
	}
}
