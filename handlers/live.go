package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"storefront/session"
)

// Live upgrades to a websocket that receives the session's events.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request, _ httprouter.Params, s *session.Session) {
	h.Hub.Serve(w, r, s.ID, &h.Upgrader)
}
