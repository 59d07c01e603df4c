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

// GET /api/rooms
func (h *Handler) GetRooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	filter := bson.M{}
	if hotelID := strings.TrimSpace(r.URL.Query().Get("hotelId")); hotelID != "" {
		filter["hotelId"] = hotelID
	}
	opts := utils.ParseQueryOptions(r)
	rooms, err := h.rooms.FindWith(ctx, filter, store.FindOptions{Skip: opts.Skip(), Limit: int64(opts.Limit)})
	if err != nil {
		apperr.Respond(w, h.log, storageError(err, "Failed to fetch rooms"))
		return
	}
	utils.SuccessList(w, len(rooms), utils.M{"rooms": rooms})
}

// GET /api/rooms/:id
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	room, err := h.findRoom(ctx, ps.ByName("id"))
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	utils.Success(w, http.StatusOK, utils.M{"room": room})
}

// POST /api/rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	in, err := readRoom(r)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	room := models.Room{Capacity: 1}
	in.apply(&room)
	if err := validation.Struct(room); err != nil {
		apperr.Respond(w, h.log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.requireHotel(ctx, room.HotelID); err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	if !h.uploadImage(w, r, "roomImage", filemgr.EntityRoom, &room.RoomImage) {
		return
	}

	now := h.now()
	room.ID = utils.GetUUID()
	room.CreatedAt = now
	room.UpdatedAt = now
	if err := h.rooms.Insert(ctx, room); err != nil {
		apperr.Respond(w, h.log, roomWriteError(err, "Failed to create room"))
		return
	}

	h.emit(r.Context(), "room-created", "room", room.ID, http.MethodPost)
	utils.Success(w, http.StatusCreated, utils.M{"room": room})
}

// PATCH|PUT /api/rooms/:id
func (h *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	room, err := h.findRoom(ctx, ps.ByName("id"))
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	in, err := readRoom(r)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	previousHotel := room.HotelID
	in.apply(&room)
	if err := validation.Struct(room); err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	if room.HotelID != previousHotel {
		if err := h.requireHotel(ctx, room.HotelID); err != nil {
			apperr.Respond(w, h.log, err)
			return
		}
	}
	if !h.uploadImage(w, r, "roomImage", filemgr.EntityRoom, &room.RoomImage) {
		return
	}

	room.UpdatedAt = h.now()
	if err := h.rooms.Replace(ctx, room.ID, room); err != nil {
		apperr.Respond(w, h.log, roomWriteError(err, "Failed to update room"))
		return
	}

	h.emit(r.Context(), "room-updated", "room", room.ID, r.Method)
	utils.Success(w, http.StatusOK, utils.M{"room": room})
}

// DELETE /api/rooms/:id
func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := ps.ByName("id")
	if err := h.rooms.Delete(ctx, id); err != nil {
		apperr.Respond(w, h.log, roomWriteError(err, "Failed to delete room"))
		return
	}

	h.emit(r.Context(), "room-deleted", "room", id, http.MethodDelete)
	utils.Success(w, http.StatusNoContent, nil)
}

func (h *Handler) findRoom(ctx context.Context, id string) (models.Room, error) {
	room, err := h.rooms.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return room, apperr.NotFound("Room")
	}
	if err != nil {
		return room, storageError(err, "Failed to fetch room")
	}
	return room, nil
}

func (h *Handler) requireHotel(ctx context.Context, hotelID string) error {
	ok, err := h.hotels.Exists(ctx, hotelID)
	if err != nil {
		return storageError(err, "Failed to resolve hotel")
	}
	if !ok {
		return apperr.NotFound("Hotel")
	}
	return nil
}

func roomWriteError(err error, message string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("Room")
	case errors.Is(err, store.ErrDuplicate):
		return apperr.New("Room number already exists for this hotel", http.StatusConflict)
	default:
		return storageError(err, message)
	}
}
