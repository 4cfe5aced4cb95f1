package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"positions-console/internal/model"
	"positions-console/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
	})
}

// statusFor maps a failed remote call to the status of the page that shows
// its message.
func statusFor(err error) int {
	kind, ok := apierror.KindOf(err)
	switch {
	case ok && kind == apierror.KindValidation:
		return http.StatusUnprocessableEntity
	case ok && kind == apierror.KindNetwork:
		return http.StatusBadGateway
	case ok && kind == apierror.KindUnauthorized:
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrPositionNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func Health(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}
