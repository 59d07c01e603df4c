// Package restaurants serves restaurant CRUD. Every successful write recomputes the
// average price and stamps it onto all restaurants before the response is sent.
package restaurants

import (
	"context"
	"errors"
	"net/http"
	"time"

	"hospitality/apperr"
	"hospitality/filemgr"
	"hospitality/models"
	"hospitality/mq"
	"hospitality/rdx"
	"hospitality/store"
	"hospitality/utils"
	"hospitality/validation"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	listCacheKey     = "restaurants:all"
	listGenKey       = "restaurants:all:gen"
	requestTimeout   = 5 * time.Second
	aggregateTimeout = 10 * time.Second
)

type Store interface {
	Find(ctx context.Context, filter bson.M) ([]models.Restaurant, error)
	FindByID(ctx context.Context, id string) (models.Restaurant, error)
	Insert(ctx context.Context, r models.Restaurant) error
	Replace(ctx context.Context, id string, r models.Restaurant) error
	Delete(ctx context.Context, id string) error
}

// Aggregator keeps averagePrice in step with the collection.
type Aggregator interface {
	Refresh(ctx context.Context) (float64, error)
	Current(ctx context.Context) (float64, error)
}

type ImageUploader interface {
	UploadEveryImage(r *http.Request, field string, entity filemgr.EntityType) (string, error)
}

type Handler struct {
	restaurants Store
	aggregator  Aggregator
	uploader    ImageUploader
	cache       *rdx.Cache
	emitter     *mq.Emitter
	log         zerolog.Logger
	now         func() time.Time
}

func NewHandler(restaurants Store, aggregator Aggregator, uploader ImageUploader, cache *rdx.Cache, emitter *mq.Emitter, log zerolog.Logger) *Handler {
	return &Handler{
		restaurants: restaurants,
		aggregator:  aggregator,
		uploader:    uploader,
		cache:       cache,
		emitter:     emitter,
		log:         log.With().Str("component", "restaurants").Logger(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// GET /api/restaurants
func (h *Handler) GetRestaurants(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	// The generation is read before the store so a list fetched across a write is
	// cached under a key no reader will ask for again.
	gen, err := h.cache.Generation(ctx, listGenKey)
	cacheable := err == nil
	if err != nil {
		h.log.Warn().Err(err).Msg("read restaurant cache generation")
	}
	key := rdx.VersionedKey(listCacheKey, gen)

	var list []models.Restaurant
	if cacheable {
		err := h.cache.GetJSON(ctx, key, &list)
		if err == nil {
			utils.Success(w, http.StatusOK, utils.M{"restaurant": list})
			return
		}
		if !errors.Is(err, rdx.ErrMiss) {
			h.log.Warn().Err(err).Msg("read restaurant cache")
		}
	}

	list, err = h.restaurants.Find(ctx, bson.M{})
	if err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(err, "Failed to fetch restaurants", http.StatusInternalServerError))
		return
	}
	if cacheable {
		if err := h.cache.SetJSON(ctx, key, list); err != nil {
			h.log.Warn().Err(err).Msg("write restaurant cache")
		}
	}
	utils.Success(w, http.StatusOK, utils.M{"restaurant": list})
}

// GET /api/restaurants/:id
func (h *Handler) GetRestaurant(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	restaurant, err := h.find(ctx, ps.ByName("id"))
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	utils.Success(w, http.StatusOK, utils.M{"restaurant": restaurant})
}

// POST /api/restaurants
func (h *Handler) CreateRestaurant(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	in, err := readInput(r)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}

	restaurant := models.Restaurant{Ratings: []string{}}
	in.apply(&restaurant)
	if err := validation.Struct(restaurant); err != nil {
		apperr.Respond(w, h.log, err)
		return
	}

	if !h.attachImage(w, r, &restaurant) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), aggregateTimeout)
	defer cancel()

	now := h.now()
	restaurant.ID = utils.GetUUID()
	restaurant.CreatedAt = now
	restaurant.UpdatedAt = now
	if err := h.restaurants.Insert(ctx, restaurant); err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(err, "Failed to create restaurant", http.StatusInternalServerError))
		return
	}

	avg, ok := h.afterWrite(ctx, w, "restaurant-created", http.MethodPost, restaurant.ID)
	if !ok {
		return
	}
	restaurant.AveragePrice = avg

	h.log.Info().Str("restaurant_id", restaurant.ID).Str("name", restaurant.Name).Msg("restaurant created")
	utils.Success(w, http.StatusCreated, utils.M{"restaurant": restaurant, "averagePrice": avg})
}

// PATCH|PUT /api/restaurants/:id
func (h *Handler) UpdateRestaurant(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), aggregateTimeout)
	defer cancel()

	restaurant, err := h.find(ctx, ps.ByName("id"))
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}

	in, err := readInput(r)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	in.apply(&restaurant)
	if restaurant.Ratings == nil {
		restaurant.Ratings = []string{}
	}
	if err := validation.Struct(restaurant); err != nil {
		apperr.Respond(w, h.log, err)
		return
	}

	if !h.attachImage(w, r, &restaurant) {
		return
	}

	restaurant.UpdatedAt = h.now()
	if err := h.restaurants.Replace(ctx, restaurant.ID, restaurant); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apperr.Respond(w, h.log, apperr.NotFound("Restaurant"))
			return
		}
		apperr.Respond(w, h.log, apperr.Wrap(err, "Failed to update restaurant", http.StatusInternalServerError))
		return
	}

	avg, ok := h.afterWrite(ctx, w, "restaurant-updated", r.Method, restaurant.ID)
	if !ok {
		return
	}
	restaurant.AveragePrice = avg

	utils.Success(w, http.StatusOK, utils.M{"restaurant": restaurant})
}

// DELETE /api/restaurants/:id
func (h *Handler) DeleteRestaurant(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), aggregateTimeout)
	defer cancel()

	id := ps.ByName("id")
	if err := h.restaurants.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apperr.Respond(w, h.log, apperr.NotFound("Restaurant"))
			return
		}
		apperr.Respond(w, h.log, apperr.Wrap(err, "Failed to delete restaurant", http.StatusInternalServerError))
		return
	}

	if _, ok := h.afterWrite(ctx, w, "restaurant-deleted", http.MethodDelete, id); !ok {
		return
	}
	utils.Success(w, http.StatusNoContent, nil)
}

// GET /api/restaurant-stats/average-price
func (h *Handler) GetAveragePrice(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	avg, err := h.aggregator.Current(ctx)
	if err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(err, "Failed to compute average price", http.StatusInternalServerError))
		return
	}
	utils.Success(w, http.StatusOK, utils.M{"averagePrice": avg})
}

func (h *Handler) find(ctx context.Context, id string) (models.Restaurant, error) {
	restaurant, err := h.restaurants.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return restaurant, apperr.NotFound("Restaurant")
	}
	if err != nil {
		return restaurant, apperr.Wrap(err, "Failed to fetch restaurant", http.StatusInternalServerError)
	}
	return restaurant, nil
}

// attachImage stores an uploaded restaurantImage, answering 500 itself on failure.
func (h *Handler) attachImage(w http.ResponseWriter, r *http.Request, restaurant *models.Restaurant) bool {
	if !filemgr.HasFile(r, "restaurantImage") {
		return true
	}
	link, err := h.uploader.UploadEveryImage(r, "restaurantImage", filemgr.EntityRestaurant)
	if err != nil {
		h.log.Error().Err(err).Msg("restaurant image upload failed")
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{
			"status":  "error",
			"message": "Image upload failed",
			"error":   err.Error(),
		})
		return false
	}
	if link != "" {
		restaurant.RestaurantImage = link
	}
	return true
}

// invalidateList moves readers to a new list generation and drops the previous entry.
func (h *Handler) invalidateList(ctx context.Context) {
	gen, err := h.cache.Bump(ctx, listGenKey)
	if err != nil {
		h.log.Warn().Err(err).Msg("bump restaurant cache generation")
		return
	}
	if err := h.cache.RdxDel(ctx, rdx.VersionedKey(listCacheKey, gen-1)); err != nil {
		h.log.Warn().Err(err).Msg("invalidate restaurant cache")
	}
}

// afterWrite refreshes the average, drops the list cache and publishes the change.
// The write itself is already committed; a failed refresh is still reported as 500.
func (h *Handler) afterWrite(ctx context.Context, w http.ResponseWriter, event, method, id string) (float64, bool) {
	avg, err := h.aggregator.Refresh(ctx)
	// The cached list carries averagePrice, so it is retired only after the refresh.
	h.invalidateList(ctx)
	if err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(err, "Failed to recompute average price", http.StatusInternalServerError))
		return 0, false
	}

	go h.emitter.Emit(context.WithoutCancel(ctx), event, mq.Index{
		EntityType: "restaurant",
		EntityId:   id,
		Method:     method,
	})
	return avg, true
}
