package handler

import (
	"net/http"

	"positions-console/internal/guard"
	"positions-console/internal/middleware"
)

type DashboardHandler struct {
	render *Renderer
}

func NewDashboardHandler(render *Renderer) *DashboardHandler {
	return &DashboardHandler{render: render}
}

// Show renders the welcome view. The raw token is only included when asked
// for with ?token=show.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	decision, ok := middleware.DecisionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, middleware.ViewPath(guard.ViewLogin), http.StatusSeeOther)
		return
	}

	data := PageData{
		Authenticated: true,
		Session:       decision.Session,
		ShowToken:     r.URL.Query().Get("token") == "show",
	}
	if data.ShowToken {
		data.Token = decision.Token
	}

	h.render.Render(w, r, http.StatusOK, "dashboard", data)
}
