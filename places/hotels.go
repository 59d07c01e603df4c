package places

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"hospitality/apperr"
	"hospitality/filemgr"
	"hospitality/models"
	"hospitality/store"
	"hospitality/utils"
	"hospitality/validation"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// GET /api/hotels
func (h *Handler) GetHotels(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	filter := bson.M{}
	if city := strings.TrimSpace(r.URL.Query().Get("city")); city != "" {
		filter["city"] = city
	}
	opts := utils.ParseQueryOptions(r)
	hotels, err := h.hotels.FindWith(ctx, filter, store.FindOptions{
		Skip:  opts.Skip(),
		Limit: int64(opts.Limit),
		Sort:  bson.D{{Key: "name", Value: 1}},
	})
	if err != nil {
		apperr.Respond(w, h.log, storageError(err, "Failed to fetch hotels"))
		return
	}
	utils.SuccessList(w, len(hotels), utils.M{"hotels": hotels})
}

// GET /api/hotels/:id
func (h *Handler) GetHotel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	hotel, err := h.findHotel(ctx, ps.ByName("id"))
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	utils.Success(w, http.StatusOK, utils.M{"hotel": hotel})
}

// POST /api/hotels
func (h *Handler) CreateHotel(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	in, err := readHotel(r)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	var hotel models.Hotel
	in.apply(&hotel)
	if err := validation.Struct(hotel); err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	if !h.uploadImage(w, r, "hotelImage", filemgr.EntityHotel, &hotel.HotelImage) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	now := h.now()
	hotel.ID = utils.GetUUID()
	hotel.CreatedAt = now
	hotel.UpdatedAt = now
	if err := h.hotels.Insert(ctx, hotel); err != nil {
		apperr.Respond(w, h.log, storageError(err, "Failed to create hotel"))
		return
	}

	h.log.Info().Str("hotel_id", hotel.ID).Str("name", hotel.Name).Msg("hotel created")
	h.emit(r.Context(), "hotel-created", "hotel", hotel.ID, http.MethodPost)
	utils.Success(w, http.StatusCreated, utils.M{"hotel": hotel})
}

// PATCH|PUT /api/hotels/:id
func (h *Handler) UpdateHotel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	hotel, err := h.findHotel(ctx, ps.ByName("id"))
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	in, err := readHotel(r)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	in.apply(&hotel)
	if err := validation.Struct(hotel); err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	if !h.uploadImage(w, r, "hotelImage", filemgr.EntityHotel, &hotel.HotelImage) {
		return
	}

	hotel.UpdatedAt = h.now()
	if err := h.hotels.Replace(ctx, hotel.ID, hotel); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apperr.Respond(w, h.log, apperr.NotFound("Hotel"))
			return
		}
		apperr.Respond(w, h.log, storageError(err, "Failed to update hotel"))
		return
	}

	h.emit(r.Context(), "hotel-updated", "hotel", hotel.ID, r.Method)
	utils.Success(w, http.StatusOK, utils.M{"hotel": hotel})
}

// DELETE /api/hotels/:id
// Rooms of the hotel go with it.
func (h *Handler) DeleteHotel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := ps.ByName("id")
	if _, err := h.findHotel(ctx, id); err != nil {
		apperr.Respond(w, h.log, err)
		return
	}

	// Rooms first: a failure here leaves the hotel in place for a retry.
	removed, err := h.rooms.DeleteMany(ctx, bson.M{"hotelId": id})
	if err != nil {
		apperr.Respond(w, h.log, storageError(err, "Failed to delete hotel rooms"))
		return
	}

	if err := h.hotels.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apperr.Respond(w, h.log, apperr.NotFound("Hotel"))
			return
		}
		apperr.Respond(w, h.log, storageError(err, "Failed to delete hotel"))
		return
	}

	h.log.Info().Str("hotel_id", id).Int64("rooms", removed).Msg("hotel deleted")
	h.emit(r.Context(), "hotel-deleted", "hotel", id, http.MethodDelete)
	utils.Success(w, http.StatusNoContent, nil)
}

// GET /api/hotels/:id/rooms
func (h *Handler) GetHotelRooms(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := ps.ByName("id")
	if _, err := h.findHotel(ctx, id); err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	rooms, err := h.rooms.FindWith(ctx, bson.M{"hotelId": id}, store.FindOptions{Sort: bson.D{{Key: "roomNumber", Value: 1}}})
	if err != nil {
		apperr.Respond(w, h.log, storageError(err, "Failed to fetch rooms"))
		return
	}
	utils.SuccessList(w, len(rooms), utils.M{"rooms": rooms})
}

func (h *Handler) findHotel(ctx context.Context, id string) (models.Hotel, error) {
	hotel, err := h.hotels.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return hotel, apperr.NotFound("Hotel")
	}
	if err != nil {
		return hotel, storageError(err, "Failed to fetch hotel")
	}
	return hotel, nil
}
