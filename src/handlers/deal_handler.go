package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/dealfolio/backend/src/logger"
	"github.com/username/dealfolio/backend/src/services"
	"github.com/username/dealfolio/backend/src/utils"
	"github.com/username/dealfolio/backend/src/views"
)

type DealHandler struct {
	dealService services.DealService
	registry    *views.Registry
}

func NewDealHandler(dealService services.DealService, registry *views.Registry) *DealHandler {
	return &DealHandler{
		dealService: dealService,
		registry:    registry,
	}
}

// HandleGetViews lists the configured view names so the frontend can build
// its view switcher without hardcoding them.
func (h *DealHandler) HandleGetViews(w http.ResponseWriter, r *http.Request) {
	type viewInfo struct {
		Name  string `json:"name"`
		Label string `json:"label"`
	}
	names := h.registry.Names()
	out := make([]viewInfo, 0, len(names))
	for _, name := range names {
		v, err := h.registry.Get(name)
		if err != nil {
			continue
		}
		label := v.Label
		if label == "" {
			label = v.Name
		}
		out = append(out, viewInfo{Name: v.Name, Label: label})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (h *DealHandler) HandleGetDeals(w http.ResponseWriter, r *http.Request) {
	view, ok := requireView(w, r)
	if !ok {
		return
	}
	deals, err := h.dealService.GetDeals(view)
	if err != nil {
		if errors.Is(err, views.ErrUnknownView) {
			utils.SendJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to fetch deals", "view", view, "error", err)
		utils.SendJSONError(w, "Failed to fetch deals", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(deals)
}

func (h *DealHandler) HandleDeleteAllDeals(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	view, ok := requireView(w, r)
	if !ok {
		return
	}
	if err := h.dealService.DeleteAllDeals(view); err != nil {
		if errors.Is(err, views.ErrUnknownView) {
			utils.SendJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete deals", "userID", userID, "view", view, "error", err)
		utils.SendJSONError(w, "Failed to delete deals", http.StatusInternalServerError)
		return
	}
	logger.L.Info("Deleted all deals for view", "userID", userID, "view", view)
	w.WriteHeader(http.StatusNoContent)
}

// requireView reads the mandatory "view" query parameter.
func requireView(w http.ResponseWriter, r *http.Request) (string, bool) {
	view := r.URL.Query().Get("view")
	if view == "" {
		utils.SendJSONError(w, "A 'view' query parameter is required", http.StatusBadRequest)
		return "", false
	}
	return view, true
}
