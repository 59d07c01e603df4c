package export

import (
	"context"
	"io"
	"net/http"
	"time"

	"hospitality/apperr"
	"hospitality/booking"
	"hospitality/models"
	"hospitality/store"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	SheetBookings = "Bookings"
	xlsxMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var bookingColumns = []string{
	"ID", "Type", "Status", "Full Name", "Email", "Phone", "Hotel", "Room", "Restaurant",
	"Table", "Check-in", "Check-out", "Arrival", "Departure", "Adults", "Children",
	"Total Price", "Available", "Created",
}

// WriteBookings writes bookings as an xlsx workbook with a single Bookings sheet.
func WriteBookings(wr io.Writer, bookings []models.Booking) error {
	w := newSheetWriter()
	defer w.Close()

	if err := w.AddSheet(SheetBookings); err != nil {
		return err
	}
	if err := w.WriteHeader(bookingColumns); err != nil {
		return err
	}
	for _, b := range bookings {
		if err := w.WriteRow(bookingRow(b)); err != nil {
			return err
		}
	}
	return w.Save(wr)
}

func bookingRow(b models.Booking) []any {
	var table, departure, total any = "", "", ""
	if b.TableNumber != nil {
		table = *b.TableNumber
	}
	if b.TimeOfDeparture != nil {
		departure = b.TimeOfDeparture.UTC().Format(time.RFC3339)
	}
	if b.TotalPrice != nil {
		total = *b.TotalPrice
	}
	return []any{
		b.ID, string(b.BookingType), string(b.Status), b.FullName, b.Email, b.PhoneNumber,
		b.HotelID, b.RoomID, b.RestaurantID, table,
		b.CheckInDate.UTC().Format("2006-01-02"),
		b.CheckOutDate.UTC().Format("2006-01-02"),
		b.TimeOfArrival.UTC().Format(time.RFC3339),
		departure, b.Adult, b.Children, total, b.Availability,
		b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type BookingSource interface {
	FindWith(ctx context.Context, filter bson.M, opts store.FindOptions) ([]models.Booking, error)
}

type Handler struct {
	bookings BookingSource
	log      zerolog.Logger
}

func NewHandler(bookings BookingSource, log zerolog.Logger) *Handler {
	return &Handler{bookings: bookings, log: log.With().Str("component", "export").Logger()}
}

// GET /api/exports/bookings.xlsx accepts the same filters as the booking list.
func (h *Handler) ExportBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	bookings, err := h.bookings.FindWith(ctx, booking.ListFilter(r), store.FindOptions{
		Sort: bson.D{{Key: "checkInDate", Value: 1}},
	})
	if err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(err, "Failed to fetch bookings", http.StatusInternalServerError))
		return
	}

	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", "attachment; filename=bookings.xlsx")
	if err := WriteBookings(w, bookings); err != nil {
		// Headers may be out already; all that is left is to log.
		h.log.Error().Err(err).Msg("write bookings export")
		return
	}
	h.log.Info().Int("rows", len(bookings)).Msg("bookings exported")
}
