package store

import (
	"context"
	"fmt"

	"hospitality/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Restaurants adds the denormalized average-price write to the generic repository.
type Restaurants struct {
	*Collection[models.Restaurant]
}

func NewRestaurants(coll *mongo.Collection) *Restaurants {
	return &Restaurants{Collection: NewCollection[models.Restaurant](coll)}
}

// SetAveragePrice stamps avg onto every restaurant in one UpdateMany.
func (r *Restaurants) SetAveragePrice(ctx context.Context, avg float64) error {
	_, err := r.coll.UpdateMany(ctx, bson.M{}, bson.M{"$set": bson.M{"averagePrice": avg}})
	if err != nil {
		return fmt.Errorf("set average price: %w", err)
	}
	return nil
}

func NewHotels(coll *mongo.Collection) *Collection[models.Hotel] {
	return NewCollection[models.Hotel](coll)
}

func NewRooms(coll *mongo.Collection) *Collection[models.Room] {
	return NewCollection[models.Room](coll)
}

func NewBookings(coll *mongo.Collection) *Collection[models.Booking] {
	return NewCollection[models.Booking](coll)
}
