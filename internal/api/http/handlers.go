package http

import (
	"context"
	"net/http"
	"time"

	"fleetrent-backend/internal/domain"
	"fleetrent-backend/internal/security"
)

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.svc.Health.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SearchAvailable handles GET /availability?pickup_date=&pickup_time=&return_date=&return_time=[&vehicle_type=][&location_id=]
func (h *Handler) SearchAvailable(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()

	filter := domain.SearchFilter{
		CompanyID:  companyID,
		PickupTime: q.Get("pickup_time"),
		ReturnTime: q.Get("return_time"),
	}
	if filter.PickupDate, err = parseDate("pickup_date", q.Get("pickup_date")); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.ReturnDate, err = parseDate("return_date", q.Get("return_date")); err != nil {
		writeError(w, r, err)
		return
	}
	if v := q.Get("vehicle_type"); v != "" {
		vt := domain.VehicleType(v)
		filter.VehicleType = &vt
	}
	if v := q.Get("location_id"); v != "" {
		loc, err := parseInt32("location_id", v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.LocationID = &loc
	}

	offers, err := h.svc.Availability.Search(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": offers})
}

func (h *Handler) QuoteBooking(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body quoteBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	req, err := body.toQuoteRequest(companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	quote, err := h.svc.Pricing.Quote(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// ValidateDiscount always answers 200; an unusable code is reported in the body.
func (h *Handler) ValidateDiscount(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body discountCheckBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.svc.Discounts.Validate(r.Context(), domain.DiscountCheck{
		CompanyID:  companyID,
		Code:       body.Code,
		CustomerID: body.CustomerID,
		TotalDays:  body.TotalDays,
		Amount:     body.Amount,
		GroupID:    body.GroupID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) CreateDiscountCode(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body discountCodeBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	code, err := body.toDiscountCode(companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Discounts.CreateCode(r.Context(), code); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, code)
}

func (h *Handler) SetPriceTiers(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rateID, err := pathID(r, "rateID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	groupID, err := pathID(r, "groupID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body []priceTierBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	tiers := make([]domain.PriceTier, 0, len(body))
	for _, t := range body {
		tiers = append(tiers, domain.PriceTier{
			MinDays:    t.MinDays,
			MaxDays:    t.MaxDays,
			DailyPrice: t.DailyPrice,
			KmPerDay:   t.KmPerDay,
		})
	}
	if err := h.svc.Rates.SetPriceTiers(r.Context(), companyID, rateID, groupID, tiers); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tiers": tiers})
}

// CreateBooking books for the caller. Staff may book on behalf of any
// customer; customers always book for themselves.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body quoteBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if claims := ClaimsFromContext(r.Context()); !claims.HasRole(security.RoleStaff) {
		self := claims.UserID
		body.CustomerID = &self
	}
	qr, err := body.toQuoteRequest(companyID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	booking, err := h.svc.Bookings.CreateBooking(r.Context(), domain.CreateBookingRequest{
		QuoteRequest: qr,
		VehicleID:    body.VehicleID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, ok := h.visibleBooking(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// visibleBooking loads the path booking, hiding other customers' bookings.
func (h *Handler) visibleBooking(w http.ResponseWriter, r *http.Request) (*domain.Booking, bool) {
	companyID, bookingID, err := bookingPath(r)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	booking, err := h.svc.Bookings.GetBooking(r.Context(), companyID, bookingID)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	claims := ClaimsFromContext(r.Context())
	if !claims.HasRole(security.RoleStaff) && booking.CustomerID != claims.UserID {
		writeError(w, r, domain.NotFoundError{Resource: "booking"})
		return nil, false
	}
	return booking, true
}

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	filter := domain.BookingFilter{
		CompanyID: companyID,
		Status:    domain.BookingStatus(q.Get("status")),
	}
	if filter.From, err = parseOptionalDate("from", q.Get("from")); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.To, err = parseOptionalDate("to", q.Get("to")); err != nil {
		writeError(w, r, err)
		return
	}
	if v := q.Get("page"); v != "" {
		if filter.Page, err = parseInt32("page", v); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if v := q.Get("page_size"); v != "" {
		if filter.PageSize, err = parseInt32("page_size", v); err != nil {
			writeError(w, r, err)
			return
		}
	}

	bookings, total, err := h.svc.Bookings.ListBookings(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingListResponse{
		Bookings: bookings,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

func (h *Handler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	companyID, bookingID, err := bookingPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body confirmBody
	if r.ContentLength > 0 {
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, r, err)
			return
		}
	}
	var payment *domain.PaymentInfo
	if body.PaymentMethod != "" {
		payment = &domain.PaymentInfo{Method: body.PaymentMethod, PaidAt: time.Now().UTC()}
	}

	booking, err := h.svc.Bookings.ConfirmBooking(r.Context(), companyID, bookingID, payment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *Handler) StartRental(w http.ResponseWriter, r *http.Request) {
	companyID, bookingID, err := bookingPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body handoverBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	booking, err := h.svc.Bookings.StartRental(r.Context(), domain.HandoverRequest{
		CompanyID:        companyID,
		BookingID:        bookingID,
		VehicleID:        body.VehicleID,
		InspectionRecord: body.InspectionRecord,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *Handler) CompleteRental(w http.ResponseWriter, r *http.Request) {
	companyID, bookingID, err := bookingPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body returnBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	booking, err := h.svc.Bookings.CompleteRental(r.Context(), domain.ReturnRequest{
		CompanyID:        companyID,
		BookingID:        bookingID,
		Charges:          body.Charges,
		InspectionRecord: body.InspectionRecord,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	companyID, bookingID, err := bookingPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body cancelBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	booking, err := h.svc.Bookings.CancelBooking(r.Context(), companyID, bookingID, body.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *Handler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	companyID, bookingID, err := bookingPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body statusBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	booking, err := h.svc.Bookings.UpdateStatus(r.Context(), companyID, bookingID, body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *Handler) RequestPayment(w http.ResponseWriter, r *http.Request) {
	booking, ok := h.visibleBooking(w, r)
	if !ok {
		return
	}
	intent, err := h.svc.Payments.RequestPayment(r.Context(), booking.CompanyID, booking.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, intent)
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	companyID, bookingID, err := bookingPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body domain.PaymentResult
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	booking, err := h.svc.Payments.RecordPaymentResult(r.Context(), companyID, bookingID, body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *Handler) GetPhotoUploadURL(w http.ResponseWriter, r *http.Request) {
	companyID, bookingID, err := bookingPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body photoUploadBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	upload, err := h.svc.Photos.GetUploadURL(r.Context(), companyID, bookingID, body.Filename, body.ContentType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, upload)
}

func (h *Handler) GetPhotoDownloadURL(w http.ResponseWriter, r *http.Request) {
	companyID, bookingID, err := bookingPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, r, domain.ValidationError{Field: "key", Msg: "is required"})
		return
	}

	url, expiresAt, err := h.svc.Photos.GetDownloadURL(r.Context(), companyID, bookingID, key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, photoDownloadResponse{URL: url, ExpiresAt: expiresAt})
}

func bookingPath(r *http.Request) (int32, int32, error) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		return 0, 0, err
	}
	bookingID, err := pathID(r, "bookingID")
	if err != nil {
		return 0, 0, err
	}
	return companyID, bookingID, nil
}
