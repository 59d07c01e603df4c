package restaurants

import (
	"net/http"

	"hospitality/apperr"
	"hospitality/filemgr"
	"hospitality/models"
	"hospitality/utils"
)

// input is the writable subset of a restaurant. Absent fields leave the target untouched.
type input struct {
	TableNumber     *int     `json:"tableNumber"`
	Name            *string  `json:"name"`
	Price           *float64 `json:"price"`
	Capacity        *int     `json:"capacity"`
	RestaurantImage *string  `json:"restaurantImage"`
	Ratings         []string `json:"ratings"`
	RatingID        []string `json:"ratingId"`

	clearImage bool
}

func (in input) apply(r *models.Restaurant) {
	if in.TableNumber != nil {
		r.TableNumber = *in.TableNumber
	}
	if in.Name != nil {
		r.Name = *in.Name
	}
	if in.Price != nil {
		r.Price = *in.Price
	}
	if in.Capacity != nil {
		r.Capacity = *in.Capacity
	}
	if in.RestaurantImage != nil {
		r.RestaurantImage = *in.RestaurantImage
	}
	if in.clearImage {
		r.RestaurantImage = ""
	}
	switch {
	case in.Ratings != nil:
		r.Ratings = in.Ratings
	case in.RatingID != nil:
		r.Ratings = in.RatingID
	}
}

// readInput decodes a JSON body or a multipart form into an input.
func readInput(r *http.Request) (input, error) {
	var in input
	if !filemgr.IsMultipart(r) {
		nulls, err := utils.DecodeOverlay(r.Body, &in)
		if err != nil {
			return in, apperr.BadRequest("Invalid request body")
		}
		in.clearImage = nulls["restaurantImage"]
		return in, nil
	}

	if err := r.ParseMultipartForm(filemgr.DefaultMaxSize); err != nil {
		return in, apperr.BadRequest("Unable to parse form")
	}
	var err error
	if in.TableNumber, err = utils.FormInt(r, "tableNumber"); err != nil {
		return in, err
	}
	if in.Price, err = utils.FormFloat(r, "price"); err != nil {
		return in, err
	}
	if in.Capacity, err = utils.FormInt(r, "capacity"); err != nil {
		return in, err
	}
	in.Name = utils.FormString(r, "name")
	in.Ratings = utils.FormList(r, "ratings")
	if in.Ratings == nil {
		in.Ratings = utils.FormList(r, "ratingId")
	}
	return in, nil
}
