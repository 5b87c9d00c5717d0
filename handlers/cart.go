package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"storefront/cart"
	"storefront/models"
	"storefront/session"
	"storefront/utils"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params, s *session.Session) {
	utils.RespondWithJSON(w, http.StatusOK, s.Cart())
}

type addItemRequest struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// AddToCart adds the product's currently displayed variant.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params, s *session.Session) {
	var req addItemRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "name is required")
		return
	}
	if _, err := s.Catalog(r.Context()); err != nil {
		respondErr(w, err)
		return
	}
	summary, err := s.AddToCart(req.Type, req.Name)
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, summary)
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request, ps httprouter.Params, s *session.Session) {
	var req quantityRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Quantity == nil {
		utils.RespondWithError(w, http.StatusBadRequest, "quantity is required")
		return
	}
	respondCart(w)(s.SetQuantity(models.ID(ps.ByName("id")), *req.Quantity))
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params, s *session.Session) {
	respondCart(w)(s.RemoveItem(models.ID(ps.ByName("id"))))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params, s *session.Session) {
	respondCart(w)(s.ClearCart())
}

func respondCart(w http.ResponseWriter) func(cart.Summary, error) {
	return func(summary cart.Summary, err error) {
		if err != nil {
			respondErr(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, summary)
	}
}
