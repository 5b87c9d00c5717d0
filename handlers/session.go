package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"storefront/middleware"
	"storefront/session"
	"storefront/utils"
)

// CreateSession starts a session and returns its token.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s := h.Sessions.Create()
	token, err := middleware.IssueToken(s.ID, h.TokenTTL)
	if err != nil {
		h.Sessions.Delete(r.Context(), s.ID)
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"token":   token,
		"session": s.Snapshot(r.Context()),
	})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params, s *session.Session) {
	utils.RespondWithJSON(w, http.StatusOK, s.Snapshot(r.Context()))
}

func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params, s *session.Session) {
	h.Sessions.Delete(r.Context(), s.ID)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Session ended"})
}
