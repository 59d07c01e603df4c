package routes

import (
	"net/http"

	"hospitality/booking"
	"hospitality/export"
	"hospitality/places"
	"hospitality/ratelim"
	"hospitality/restaurants"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Restaurants *restaurants.Handler
	Bookings    *booking.Handler
	Hub         *booking.Hub
	Places      *places.Handler
	Export      *export.Handler
}

// Health is a simple liveness check.
func Health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("200"))
}

func AddUtilityRoutes(router *httprouter.Router) {
	router.GET("/health", Health)
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())
}

func AddStaticRoutes(router *httprouter.Router, uploadDir string) {
	router.ServeFiles("/uploads/*filepath", http.Dir(uploadDir))
}

func AddRestaurantRoutes(router *httprouter.Router, h *restaurants.Handler, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/restaurants", h.GetRestaurants)
	router.POST("/api/restaurants", rateLimiter.Limit(h.CreateRestaurant))
	router.GET("/api/restaurants/:id", h.GetRestaurant)
	router.PATCH("/api/restaurants/:id", rateLimiter.Limit(h.UpdateRestaurant))
	router.PUT("/api/restaurants/:id", rateLimiter.Limit(h.UpdateRestaurant))
	router.DELETE("/api/restaurants/:id", rateLimiter.Limit(h.DeleteRestaurant))
	router.GET("/api/restaurant-stats/average-price", h.GetAveragePrice)
}

func AddBookingRoutes(router *httprouter.Router, h *booking.Handler, hub *booking.Hub, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/bookings", h.ListBookings)
	router.POST("/api/bookings", rateLimiter.Limit(h.CreateBooking))
	router.GET("/api/bookings/:id", h.GetBooking)
	router.PATCH("/api/bookings/:id", rateLimiter.Limit(h.UpdateBooking))
	router.PUT("/api/bookings/:id", rateLimiter.Limit(h.UpdateBooking))
	router.DELETE("/api/bookings/:id", rateLimiter.Limit(h.DeleteBooking))
	router.PATCH("/api/bookings/:id/status", rateLimiter.Limit(h.UpdateBookingStatus))
	router.GET("/api/bookings/:id/voucher", h.GetVoucher)
	router.POST("/api/vouchers/verify", rateLimiter.Limit(h.VerifyVoucher))
	router.GET("/ws/bookings/:targetType/:targetId", hub.HandleWS)
}

func AddPlaceRoutes(router *httprouter.Router, h *places.Handler, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/hotels", h.GetHotels)
	router.POST("/api/hotels", rateLimiter.Limit(h.CreateHotel))
	router.GET("/api/hotels/:id", h.GetHotel)
	router.PATCH("/api/hotels/:id", rateLimiter.Limit(h.UpdateHotel))
	router.PUT("/api/hotels/:id", rateLimiter.Limit(h.UpdateHotel))
	router.DELETE("/api/hotels/:id", rateLimiter.Limit(h.DeleteHotel))
	router.GET("/api/hotels/:id/rooms", h.GetHotelRooms)

	router.GET("/api/rooms", h.GetRooms)
	router.POST("/api/rooms", rateLimiter.Limit(h.CreateRoom))
	router.GET("/api/rooms/:id", h.GetRoom)
	router.PATCH("/api/rooms/:id", rateLimiter.Limit(h.UpdateRoom))
	router.PUT("/api/rooms/:id", rateLimiter.Limit(h.UpdateRoom))
	router.DELETE("/api/rooms/:id", rateLimiter.Limit(h.DeleteRoom))
}

func AddExportRoutes(router *httprouter.Router, h *export.Handler, rateLimiter *ratelim.RateLimiter) {
	router.GET("/api/exports/bookings.xlsx", rateLimiter.Limit(h.ExportBookings))
}

// New builds the router with every route registered.
func New(h Handlers, rateLimiter *ratelim.RateLimiter, uploadDir string) *httprouter.Router {
	router := httprouter.New()
	AddUtilityRoutes(router)
	AddStaticRoutes(router, uploadDir)
	AddRestaurantRoutes(router, h.Restaurants, rateLimiter)
	AddBookingRoutes(router, h.Bookings, h.Hub, rateLimiter)
	AddPlaceRoutes(router, h.Places, rateLimiter)
	AddExportRoutes(router, h.Export, rateLimiter)
	return router
}
