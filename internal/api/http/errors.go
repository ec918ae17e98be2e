package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fleetrent-backend/internal/domain"
	"fleetrent-backend/internal/logger"
)

type errorResponse struct {
	Error                  string `json:"error"`
	Field                  string `json:"field,omitempty"`
	Resource               string `json:"resource,omitempty"`
	BookingNumber          string `json:"booking_number,omitempty"`
	ReconciliationRequired *bool  `json:"reconciliation_required,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps service errors onto HTTP statuses.
//
//	NotFoundError                      404
//	ValidationError (invalid transitions included) 422
//	ConflictError                      409
//	partial write, compensated, caused by a validation failure 422
//	any other partial write            500, reconciliation_required unless compensated
//	anything else                      500
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		partial    domain.PartialWriteInconsistencyError
		notFound   domain.NotFoundError
		validation domain.ValidationError
		conflict   domain.ConflictError
	)

	switch {
	case errors.As(err, &partial):
		if partial.Compensated && domain.IsValidation(partial.Err) {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Error:         validationMessage(partial.Err),
				BookingNumber: partial.Number,
			})
			return
		}
		required := !partial.Compensated
		logger.Error("Booking partially written",
			"request_id", RequestIDFromContext(r.Context()),
			"booking_id", partial.BookingID,
			"number", partial.Number,
			"step", partial.Step,
			"compensated", partial.Compensated,
			"error", partial.Err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:                  "booking could not be completed",
			BookingNumber:          partial.Number,
			ReconciliationRequired: &required,
		})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: notFound.Error(), Resource: notFound.Resource})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: validation.Error(), Field: validation.Field})
	case errors.As(err, &conflict):
		msg := conflict.Error()
		if errors.Is(err, domain.ErrVehicleUnavailable) {
			msg += ", please search again"
		}
		writeJSON(w, http.StatusConflict, errorResponse{Error: msg, Resource: conflict.Resource})
	default:
		logger.Error("Request failed",
			"request_id", RequestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func validationMessage(err error) string {
	var v domain.ValidationError
	if errors.As(err, &v) {
		return v.Error()
	}
	return err.Error()
}
