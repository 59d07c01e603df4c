package models

import "time"

type Hotel struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name" validate:"required,max=200"`
	Address     string    `json:"address" bson:"address" validate:"required"`
	City        string    `json:"city,omitempty" bson:"city,omitempty"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Stars       int       `json:"stars" bson:"stars" validate:"gte=0,lte=5"`
	HotelImage  string    `json:"hotelImage,omitempty" bson:"hotelImage,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

type Room struct {
	ID         string    `json:"id" bson:"_id"`
	HotelID    string    `json:"hotelId" bson:"hotelId" validate:"required"`
	RoomNumber string    `json:"roomNumber" bson:"roomNumber" validate:"required"`
	RoomType   string    `json:"roomType,omitempty" bson:"roomType,omitempty"`
	Price      float64   `json:"price" bson:"price" validate:"gte=0"`
	Capacity   int       `json:"capacity" bson:"capacity" validate:"gte=1"`
	RoomImage  string    `json:"roomImage,omitempty" bson:"roomImage,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}
