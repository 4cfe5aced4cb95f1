package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"positions-console/internal/guard"
	"positions-console/internal/middleware"
	"positions-console/internal/model"
	"positions-console/internal/positions"
	"positions-console/internal/util"
)

type PositionsHandler struct {
	ctrl   *positions.Controller
	render *Renderer
}

func NewPositionsHandler(ctrl *positions.Controller, render *Renderer) *PositionsHandler {
	return &PositionsHandler{ctrl: ctrl, render: render}
}

// Index reloads the list on every visit and keeps the form as it is.
func (h *PositionsHandler) Index(w http.ResponseWriter, r *http.Request) {
	err := h.ctrl.Refresh(r.Context())
	if middleware.Redirected(w, r) {
		return
	}

	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
	}
	h.renderList(w, r, status)
}

func (h *PositionsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.ctrl.SetField(
		util.CleanField(r.PostFormValue("position_code")),
		util.CleanField(r.PostFormValue("position_name")),
	)

	if err := h.ctrl.Submit(r.Context()); err != nil {
		if middleware.Redirected(w, r) {
			return
		}
		h.renderList(w, r, statusFor(err))
		return
	}

	h.backToList(w, r)
}

func (h *PositionsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.backToList(w, r)
}

func (h *PositionsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := positionID(r)
	if err != nil {
		h.renderList(w, r, http.StatusBadRequest)
		return
	}

	if err := h.ctrl.BeginEditByID(id); errors.Is(err, model.ErrPositionNotFound) {
		// The list may be older than the row; reload once and retry.
		_ = h.ctrl.Refresh(r.Context())
		if middleware.Redirected(w, r) {
			return
		}
		if err := h.ctrl.BeginEditByID(id); err != nil {
			h.renderList(w, r, statusFor(err))
			return
		}
	}

	h.backToList(w, r)
}

func (h *PositionsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.ctrl.CancelEdit()
	h.backToList(w, r)
}

func (h *PositionsHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, err := positionID(r)
	if err != nil {
		h.renderList(w, r, http.StatusBadRequest)
		return
	}

	data := h.page(r)
	data.Prompt = positions.DeletePrompt
	data.PositionID = id
	for _, p := range data.View.Positions {
		if p.PositionID == id {
			data.Position = &p
			break
		}
	}

	h.render.Render(w, r, http.StatusOK, "confirm_delete", data)
}

// Delete only goes ahead when the confirmation form was submitted.
func (h *PositionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := positionID(r)
	if err != nil {
		h.renderList(w, r, http.StatusBadRequest)
		return
	}

	confirmed := r.PostFormValue("confirm") == "yes"
	confirm := positions.ConfirmFunc(func(context.Context, string) bool { return confirmed })

	err = h.ctrl.Remove(r.Context(), id, confirm)
	switch {
	case err == nil, errors.Is(err, model.ErrNotConfirmed):
		h.backToList(w, r)
	case middleware.Redirected(w, r):
	default:
		h.renderList(w, r, statusFor(err))
	}
}

func (h *PositionsHandler) page(r *http.Request) PageData {
	data := PageData{Authenticated: true, View: h.ctrl.Snapshot()}
	if decision, ok := middleware.DecisionFromContext(r.Context()); ok {
		data.Session = decision.Session
	}
	return data
}

func (h *PositionsHandler) renderList(w http.ResponseWriter, r *http.Request, status int) {
	h.render.Render(w, r, status, "positions", h.page(r))
}

func (h *PositionsHandler) backToList(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, middleware.ViewPath(guard.ViewPositions), http.StatusSeeOther)
}

func positionID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.ErrInvalidInput
	}
	return id, nil
}
