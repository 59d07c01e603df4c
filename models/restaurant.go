package models

import "time"

// Restaurant is a bookable dining venue. AveragePrice is the same on every record:
// the mean Price across all restaurants as of the last restaurant write.
type Restaurant struct {
	ID              string    `json:"id" bson:"_id"`
	TableNumber     int       `json:"tableNumber" bson:"tableNumber" validate:"gte=0"`
	Name            string    `json:"name" bson:"name" validate:"required,max=200"`
	Price           float64   `json:"price" bson:"price" validate:"gte=0"`
	Capacity        int       `json:"capacity" bson:"capacity" validate:"gte=0"`
	RestaurantImage string    `json:"restaurantImage,omitempty" bson:"restaurantImage,omitempty"`
	Ratings         []string  `json:"ratings" bson:"ratings"`
	AveragePrice    float64   `json:"averagePrice" bson:"averagePrice"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt"`
}
