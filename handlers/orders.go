package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"storefront/session"
	"storefront/utils"
)

// PlaceOrder submits the cart. The response is the confirmed order.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params, s *session.Session) {
	order, err := s.PlaceOrder(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, order)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params, s *session.Session) {
	order, ok := s.Order()
	if !ok {
		respondErr(w, session.ErrNoOrder)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"order": order,
		"total": order.Total(),
		"state": s.CheckoutState(),
	})
}

// DismissOrder closes the confirmation and returns the reloaded catalog.
func (h *Handler) DismissOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params, s *session.Session) {
	view, err := s.DismissOrder(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"types": view})
}

// DownloadReceipt streams the receipt PDF of the confirmed order.
func (h *Handler) DownloadReceipt(w http.ResponseWriter, r *http.Request, _ httprouter.Params, s *session.Session) {
	doc, err := s.Receipt(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Bytes)))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Bytes)
}
