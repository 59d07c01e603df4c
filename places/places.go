// Package places serves hotel and room CRUD. Rooms belong to a hotel and are
// removed together with it.
package places

import (
	"context"
	"net/http"
	"time"

	"hospitality/apperr"
	"hospitality/filemgr"
	"hospitality/models"
	"hospitality/mq"
	"hospitality/store"
	"hospitality/utils"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
)

const requestTimeout = 5 * time.Second

type HotelStore interface {
	FindWith(ctx context.Context, filter bson.M, opts store.FindOptions) ([]models.Hotel, error)
	FindByID(ctx context.Context, id string) (models.Hotel, error)
	Exists(ctx context.Context, id string) (bool, error)
	Insert(ctx context.Context, h models.Hotel) error
	Replace(ctx context.Context, id string, h models.Hotel) error
	Delete(ctx context.Context, id string) error
}

type RoomStore interface {
	FindWith(ctx context.Context, filter bson.M, opts store.FindOptions) ([]models.Room, error)
	FindByID(ctx context.Context, id string) (models.Room, error)
	Insert(ctx context.Context, r models.Room) error
	Replace(ctx context.Context, id string, r models.Room) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, filter bson.M) (int64, error)
}

type ImageUploader interface {
	UploadEveryImage(r *http.Request, field string, entity filemgr.EntityType) (string, error)
}

type Handler struct {
	hotels   HotelStore
	rooms    RoomStore
	uploader ImageUploader
	emitter  *mq.Emitter
	log      zerolog.Logger
	now      func() time.Time
}

func NewHandler(hotels HotelStore, rooms RoomStore, uploader ImageUploader, emitter *mq.Emitter, log zerolog.Logger) *Handler {
	return &Handler{
		hotels:   hotels,
		rooms:    rooms,
		uploader: uploader,
		emitter:  emitter,
		log:      log.With().Str("component", "places").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// uploadImage stores the optional image under field. On failure it has already
// written the 500 response and returns false.
func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request, field string, entity filemgr.EntityType, dst *string) bool {
	if !filemgr.HasFile(r, field) {
		return true
	}
	link, err := h.uploader.UploadEveryImage(r, field, entity)
	if err != nil {
		h.log.Error().Err(err).Str("entity", string(entity)).Msg("image upload failed")
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{
			"status":  "error",
			"message": "Image upload failed",
			"error":   err.Error(),
		})
		return false
	}
	if link != "" {
		*dst = link
	}
	return true
}

func (h *Handler) emit(ctx context.Context, event, entityType, id, method string) {
	go h.emitter.Emit(context.WithoutCancel(ctx), event, mq.Index{
		EntityType: entityType,
		EntityId:   id,
		Method:     method,
	})
}

func storageError(err error, message string) error {
	return apperr.Wrap(err, message, http.StatusInternalServerError)
}
