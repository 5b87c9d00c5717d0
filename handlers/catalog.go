package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"storefront/catalog"
	"storefront/session"
	"storefront/utils"
)

func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request, _ httprouter.Params, s *session.Session) {
	view, err := s.Catalog(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"types": view})
}

// ReloadCatalog fetches the catalog again. On failure the previous catalog is
// still returned next to the error.
func (h *Handler) ReloadCatalog(w http.ResponseWriter, r *http.Request, _ httprouter.Params, s *session.Session) {
	view, err := s.LoadCatalog(r.Context())
	if err != nil {
		if errors.Is(err, catalog.ErrFetchFailure) {
			utils.RespondWithJSON(w, http.StatusBadGateway, utils.M{
				"error": "Failed to load products",
				"types": view,
			})
			return
		}
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"types": view})
}

type colorRequest struct {
	Color string `json:"color"`
}

func (h *Handler) SelectColor(w http.ResponseWriter, r *http.Request, ps httprouter.Params, s *session.Session) {
	var req colorRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Color) == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "color is required")
		return
	}
	card, err := s.SelectColor(r.Context(), ps.ByName("product"), req.Color)
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, card)
}
