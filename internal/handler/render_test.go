package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"positions-console/internal/model"
	"positions-console/internal/positions"
	"positions-console/pkg/apierror"
)

func TestRendererRendersEveryPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	for _, page := range pages {
		rec := httptest.NewRecorder()
		r.Render(rec, req, http.StatusOK, page, PageData{})
		assert.Equal(t, http.StatusOK, rec.Code, page)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"), page)
	}

	rec := httptest.NewRecorder()
	r.Render(rec, req, http.StatusOK, "missing", PageData{})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPositionsPageModes(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	r.Render(rec, req, http.StatusOK, "positions", PageData{Authenticated: true})
	body := rec.Body.String()
	assert.Contains(t, body, "Create Position")
	assert.Contains(t, body, "No positions found.")

	id := int64(6)
	rec = httptest.NewRecorder()
	r.Render(rec, req, http.StatusUnprocessableEntity, "positions", PageData{
		Authenticated: true,
		View: positions.View{
			Positions: []model.Position{{PositionID: 6, PositionCode: "M1", PositionName: "<Manager>"}},
			Form:      model.FormState{EditingID: &id, PositionCode: "M1"},
			Error:     "Request failed: 500",
		},
	})
	body = rec.Body.String()
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body, "Edit Position")
	assert.Contains(t, body, "Request failed: 500")
	assert.Contains(t, body, "&lt;Manager&gt;")
	assert.Contains(t, body, "/dashboard/positions/6/delete")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(apierror.Validation(404, "Delete failed: 404")))
	assert.Equal(t, http.StatusBadGateway, statusFor(apierror.Network(errors.New("refused"))))
	assert.Equal(t, http.StatusUnauthorized, statusFor(apierror.Unauthorized("")))
	assert.Equal(t, http.StatusNotFound, statusFor(model.ErrPositionNotFound))
	assert.Equal(t, http.StatusBadRequest, statusFor(model.ErrInvalidInput))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
