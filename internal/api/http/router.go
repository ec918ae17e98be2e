package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"fleetrent-backend/internal/repository"
	"fleetrent-backend/internal/security"
	"fleetrent-backend/internal/service"
	"fleetrent-backend/internal/storage"
)

// Services are the engine operations exposed over HTTP.
type Services struct {
	Availability service.AvailabilityService
	Pricing      service.PricingService
	Discounts    service.DiscountService
	Rates        service.RateService
	Bookings     service.BookingService
	Payments     service.PaymentService
	Photos       service.PhotoService
	Health       repository.Pinger
}

type Handler struct {
	svc Services
}

func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc}
}

// NewRouter builds the /api/v1 router. files may be nil when photos live in
// an external store that serves its own URLs.
func NewRouter(svc Services, tokens security.TokenManager, files storage.StorageInterface, storageCfg storage.Config) *mux.Router {
	h := NewHandler(svc)
	auth := &authMiddleware{tokens: tokens}

	router := mux.NewRouter()
	router.Use(requestIDMiddleware, loggingMiddleware, auth.Middleware)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "route not found")
	})

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", h.Health).Methods(http.MethodGet).Name("Health")

	c := api.PathPrefix("/companies/{companyID:[0-9]+}").Subrouter()

	// Catalogue
	c.HandleFunc("/availability", h.SearchAvailable).Methods(http.MethodGet).Name("SearchAvailable")
	c.HandleFunc("/quotes", h.QuoteBooking).Methods(http.MethodPost).Name("QuoteBooking")
	c.HandleFunc("/discounts/validate", h.ValidateDiscount).Methods(http.MethodPost).Name("ValidateDiscount")

	// Administration
	c.HandleFunc("/discounts", h.CreateDiscountCode).Methods(http.MethodPost).Name("CreateDiscountCode")
	c.HandleFunc("/rates/{rateID:[0-9]+}/groups/{groupID:[0-9]+}/tiers", h.SetPriceTiers).Methods(http.MethodPut).Name("SetPriceTiers")

	// Bookings
	c.HandleFunc("/bookings", h.CreateBooking).Methods(http.MethodPost).Name("CreateBooking")
	c.HandleFunc("/bookings", h.ListBookings).Methods(http.MethodGet).Name("ListBookings")
	c.HandleFunc("/bookings/{bookingID:[0-9]+}", h.GetBooking).Methods(http.MethodGet).Name("GetBooking")
	b := c.PathPrefix("/bookings/{bookingID:[0-9]+}").Subrouter()
	b.HandleFunc("/confirm", h.ConfirmBooking).Methods(http.MethodPost).Name("ConfirmBooking")
	b.HandleFunc("/start", h.StartRental).Methods(http.MethodPost).Name("StartRental")
	b.HandleFunc("/complete", h.CompleteRental).Methods(http.MethodPost).Name("CompleteRental")
	b.HandleFunc("/cancel", h.CancelBooking).Methods(http.MethodPost).Name("CancelBooking")
	b.HandleFunc("/status", h.UpdateBookingStatus).Methods(http.MethodPatch).Name("UpdateBookingStatus")
	b.HandleFunc("/payments", h.RequestPayment).Methods(http.MethodPost).Name("RequestPayment")
	b.HandleFunc("/payments/result", h.RecordPayment).Methods(http.MethodPost).Name("RecordPayment")
	b.HandleFunc("/photos", h.GetPhotoUploadURL).Methods(http.MethodPost).Name("GetPhotoUploadURL")
	b.HandleFunc("/photos", h.GetPhotoDownloadURL).Methods(http.MethodGet).Name("GetPhotoDownloadURL")

	if files != nil {
		sh := NewStorageHandler(files, storageCfg)
		api.HandleFunc("/upload/{token}", sh.HandleUpload).Methods(http.MethodPut).Name("StorageUpload")
		api.HandleFunc("/download/{key}", sh.HandleDownload).Methods(http.MethodGet).Name("StorageDownload")
	}

	return router
}
