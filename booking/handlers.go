// Package booking serves the booking API: validated create and update, status
// changes, vouchers and a live feed per hotel or restaurant.
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"hospitality/apperr"
	"hospitality/metrics"
	"hospitality/models"
	"hospitality/mq"
	"hospitality/store"
	"hospitality/tickets"
	"hospitality/utils"
	"hospitality/validation"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
)

const requestTimeout = 5 * time.Second

// Store is the booking repository.
type Store interface {
	FindWith(ctx context.Context, filter bson.M, opts store.FindOptions) ([]models.Booking, error)
	FindByID(ctx context.Context, id string) (models.Booking, error)
	Insert(ctx context.Context, b models.Booking) error
	Replace(ctx context.Context, id string, b models.Booking) error
	Delete(ctx context.Context, id string) error
}

// Lookup resolves a referenced entity id.
type Lookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// References are the collections a booking may point at.
type References struct {
	Hotels      Lookup
	Rooms       Lookup
	Restaurants Lookup
}

type Handler struct {
	bookings      Store
	refs          References
	hub           *Hub
	emitter       *mq.Emitter
	voucherSecret string
	log           zerolog.Logger
	now           func() time.Time
}

func NewHandler(bookings Store, refs References, hub *Hub, emitter *mq.Emitter, voucherSecret string, log zerolog.Logger) *Handler {
	return &Handler{
		bookings:      bookings,
		refs:          refs,
		hub:           hub,
		emitter:       emitter,
		voucherSecret: voucherSecret,
		log:           log.With().Str("component", "bookings").Logger(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

var filterParams = []string{"bookingType", "status", "hotelId", "restaurantId"}

// ListFilter builds the store filter from the query string.
func ListFilter(r *http.Request) bson.M {
	q := r.URL.Query()
	filter := bson.M{}
	for _, key := range filterParams {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			filter[key] = v
		}
	}
	return filter
}

// GET /api/bookings
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	opts := utils.ParseQueryOptions(r)
	bookings, err := h.bookings.FindWith(ctx, ListFilter(r), store.FindOptions{
		Skip:  opts.Skip(),
		Limit: int64(opts.Limit),
		Sort:  bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(err, "Failed to fetch bookings", http.StatusInternalServerError))
		return
	}
	utils.SuccessList(w, len(bookings), utils.M{"bookings": bookings})
}

// GET /api/bookings/:id
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	b, err := h.find(ctx, ps.ByName("id"))
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	utils.Success(w, http.StatusOK, utils.M{"booking": b})
}

// POST /api/bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var d Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		apperr.Respond(w, h.log, apperr.BadRequest("Invalid request body"))
		return
	}

	b, err := Validate(d)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.checkReferences(ctx, b, models.Booking{}); err != nil {
		apperr.Respond(w, h.log, err)
		return
	}

	now := h.now()
	b.ID = utils.GetUUID()
	b.CreatedAt = now
	b.UpdatedAt = now
	if err := h.bookings.Insert(ctx, b); err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(err, "Failed to create booking", http.StatusInternalServerError))
		return
	}

	h.published(r.Context(), "booking-created", http.MethodPost, b)
	utils.Success(w, http.StatusCreated, utils.M{"booking": b})
}

// PATCH /api/bookings/:id
// The stored booking is overlaid with the request fields and re-validated as a whole.
func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	existing, err := h.find(ctx, ps.ByName("id"))
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}

	d := DraftFrom(existing)
	nulls, err := utils.DecodeOverlay(r.Body, &d)
	if err != nil {
		apperr.Respond(w, h.log, apperr.BadRequest("Invalid request body"))
		return
	}
	d.clearNulls(nulls)

	b, err := h.save(ctx, existing, d)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}

	h.published(r.Context(), "booking-updated", http.MethodPatch, b)
	utils.Success(w, http.StatusOK, utils.M{"booking": b})
}

// PATCH /api/bookings/:id/status
// Any status may follow any other; only the value itself is checked.
func (h *Handler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		apperr.Respond(w, h.log, apperr.BadRequest("Invalid request body"))
		return
	}
	if strings.TrimSpace(body.Status) == "" {
		apperr.Respond(w, h.log, validation.Required("status"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	existing, err := h.find(ctx, ps.ByName("id"))
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}

	d := DraftFrom(existing)
	d.Status = strings.TrimSpace(body.Status)
	b, err := h.save(ctx, existing, d)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}

	h.log.Info().Str("booking_id", b.ID).Str("from", string(existing.Status)).Str("to", string(b.Status)).Msg("booking status changed")
	h.published(r.Context(), "booking-status-changed", http.MethodPatch, b)
	utils.Success(w, http.StatusOK, utils.M{"booking": b})
}

// DELETE /api/bookings/:id
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	existing, err := h.find(ctx, ps.ByName("id"))
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	if err := h.bookings.Delete(ctx, existing.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apperr.Respond(w, h.log, apperr.NotFound("Booking"))
			return
		}
		apperr.Respond(w, h.log, apperr.Wrap(err, "Failed to delete booking", http.StatusInternalServerError))
		return
	}

	h.published(r.Context(), "booking-deleted", http.MethodDelete, existing)
	utils.Success(w, http.StatusNoContent, nil)
}

// GET /api/bookings/:id/voucher
func (h *Handler) GetVoucher(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	b, err := h.find(ctx, ps.ByName("id"))
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	if b.Status == models.StatusCancelled || b.Status == models.StatusRejected {
		apperr.Respond(w, h.log, apperr.New("No voucher for a "+string(b.Status)+" booking", http.StatusConflict))
		return
	}

	pdf, err := tickets.RenderVoucher(b, h.voucherSecret)
	if err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(err, "Failed to generate voucher", http.StatusInternalServerError))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=booking-"+b.ID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// POST /api/vouchers/verify
func (h *Handler) VerifyVoucher(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Payload string `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Payload == "" {
		apperr.Respond(w, h.log, apperr.BadRequest("Invalid request body"))
		return
	}

	id, err := tickets.VerifyVoucherQR(body.Payload, h.voucherSecret)
	if err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(err, "Invalid voucher", http.StatusBadRequest))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	b, err := h.find(ctx, id)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	utils.Success(w, http.StatusOK, utils.M{"booking": b, "valid": true})
}

func (h *Handler) find(ctx context.Context, id string) (models.Booking, error) {
	b, err := h.bookings.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return b, apperr.NotFound("Booking")
	}
	if err != nil {
		return b, apperr.Wrap(err, "Failed to fetch booking", http.StatusInternalServerError)
	}
	return b, nil
}

// save validates d and replaces existing with the result, keeping identity and createdAt.
func (h *Handler) save(ctx context.Context, existing models.Booking, d Draft) (models.Booking, error) {
	b, err := Validate(d)
	if err != nil {
		return b, err
	}
	if err := h.checkReferences(ctx, b, existing); err != nil {
		return b, err
	}

	b.ID = existing.ID
	b.CreatedAt = existing.CreatedAt
	b.UpdatedAt = h.now()
	if err := h.bookings.Replace(ctx, b.ID, b); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return b, apperr.NotFound("Booking")
		}
		return b, apperr.Wrap(err, "Failed to update booking", http.StatusInternalServerError)
	}
	return b, nil
}

// checkReferences resolves the hotel, room and restaurant ids of b. Ids unchanged
// from prev are not looked up again, so bookings of a deleted venue stay editable.
func (h *Handler) checkReferences(ctx context.Context, b, prev models.Booking) error {
	checks := []struct {
		id     string
		prev   string
		lookup Lookup
		entity string
	}{
		{b.HotelID, prev.HotelID, h.refs.Hotels, "Hotel"},
		{b.RoomID, prev.RoomID, h.refs.Rooms, "Room"},
		{b.RestaurantID, prev.RestaurantID, h.refs.Restaurants, "Restaurant"},
	}
	for _, c := range checks {
		if c.id == "" || c.id == c.prev || c.lookup == nil {
			continue
		}
		ok, err := c.lookup.Exists(ctx, c.id)
		if err != nil {
			return apperr.Wrap(err, "Failed to resolve "+strings.ToLower(c.entity), http.StatusInternalServerError)
		}
		if !ok {
			return apperr.NotFound(c.entity)
		}
	}
	return nil
}

// published fans a committed change out to metrics, the live feed and the event bus.
func (h *Handler) published(ctx context.Context, event, method string, b models.Booking) {
	metrics.BookingEvents.WithLabelValues(strings.TrimPrefix(event, "booking-")).Inc()
	h.hub.Broadcast(b.Target(), Event{
		Type:         event,
		BookingID:    b.ID,
		Status:       string(b.Status),
		Availability: b.Availability,
	})
	go h.emitter.Emit(context.WithoutCancel(ctx), event, mq.Index{
		EntityType: "booking",
		EntityId:   b.ID,
		Method:     method,
		ItemType:   string(b.BookingType),
	})
	h.log.Info().Str("event", event).Str("booking_id", b.ID).Msg("booking changed")
}
