package places

import (
	"encoding/json"
	"net/http"

	"hospitality/apperr"
	"hospitality/filemgr"
	"hospitality/models"
	"hospitality/utils"
)

type hotelInput struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	Description *string `json:"description"`
	Stars       *int    `json:"stars"`
	HotelImage  *string `json:"hotelImage"`
}

func (in hotelInput) apply(h *models.Hotel) {
	setIf(&h.Name, in.Name)
	setIf(&h.Address, in.Address)
	setIf(&h.City, in.City)
	setIf(&h.Description, in.Description)
	setIf(&h.Stars, in.Stars)
	setIf(&h.HotelImage, in.HotelImage)
}

type roomInput struct {
	HotelID    *string  `json:"hotelId"`
	RoomNumber *string  `json:"roomNumber"`
	RoomType   *string  `json:"roomType"`
	Price      *float64 `json:"price"`
	Capacity   *int     `json:"capacity"`
	RoomImage  *string  `json:"roomImage"`
}

func (in roomInput) apply(r *models.Room) {
	setIf(&r.HotelID, in.HotelID)
	setIf(&r.RoomNumber, in.RoomNumber)
	setIf(&r.RoomType, in.RoomType)
	setIf(&r.Price, in.Price)
	setIf(&r.Capacity, in.Capacity)
	setIf(&r.RoomImage, in.RoomImage)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// decodeJSONOrForm decodes a JSON body into dst, or parses the multipart form and
// lets fromForm fill dst from it.
func decodeJSONOrForm(r *http.Request, dst any, fromForm func(*http.Request) error) error {
	if !filemgr.IsMultipart(r) {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return apperr.BadRequest("Invalid request body")
		}
		return nil
	}
	if err := r.ParseMultipartForm(filemgr.DefaultMaxSize); err != nil {
		return apperr.BadRequest("Unable to parse form")
	}
	return fromForm(r)
}

func readHotel(r *http.Request) (hotelInput, error) {
	var in hotelInput
	err := decodeJSONOrForm(r, &in, func(r *http.Request) error {
		var err error
		in.Name = utils.FormString(r, "name")
		in.Address = utils.FormString(r, "address")
		in.City = utils.FormString(r, "city")
		in.Description = utils.FormString(r, "description")
		in.Stars, err = utils.FormInt(r, "stars")
		return err
	})
	return in, err
}

func readRoom(r *http.Request) (roomInput, error) {
	var in roomInput
	err := decodeJSONOrForm(r, &in, func(r *http.Request) error {
		var err error
		in.HotelID = utils.FormString(r, "hotelId")
		in.RoomNumber = utils.FormString(r, "roomNumber")
		in.RoomType = utils.FormString(r, "roomType")
		if in.Price, err = utils.FormFloat(r, "price"); err != nil {
			return err
		}
		in.Capacity, err = utils.FormInt(r, "capacity")
		return err
	})
	return in, err
}
