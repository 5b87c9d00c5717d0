package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"storefront/auth"
	"storefront/cart"
	"storefront/catalog"
	"storefront/live"
	"storefront/middleware"
	"storefront/orders"
	"storefront/receipt"
	"storefront/remote"
	"storefront/session"
	"storefront/utils"
)

// Handler serves the storefront API.
type Handler struct {
	Sessions *session.Manager
	Hub      *live.Hub
	TokenTTL time.Duration
	Upgrader websocket.Upgrader
}

func New(sessions *session.Manager, hub *live.Hub, tokenTTL time.Duration) *Handler {
	return &Handler{
		Sessions: sessions,
		Hub:      hub,
		TokenTTL: tokenTTL,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type SessionHandle func(w http.ResponseWriter, r *http.Request, ps httprouter.Params, s *session.Session)

// WithSession resolves the session of an authenticated request.
func (h *Handler) WithSession(next SessionHandle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		s, ok := h.Sessions.Get(middleware.SessionID(r.Context()))
		if !ok {
			utils.RespondWithError(w, http.StatusUnauthorized, "Session expired")
			return
		}
		next(w, r, ps, s)
	}
}

// respondErr maps domain errors to statuses.
func respondErr(w http.ResponseWriter, err error) {
	var (
		validation *auth.ValidationError
		loginErr   *auth.LoginError
	)
	switch {
	case errors.As(err, &validation):
		utils.RespondWithJSON(w, http.StatusUnprocessableEntity, utils.M{
			"error":  validation.Error(),
			"fields": validation.Fields,
		})
		return
	case errors.As(err, &loginErr):
		utils.RespondWithError(w, http.StatusUnauthorized, loginErr.Message)
		return
	}

	status := http.StatusInternalServerError
	msg := "Internal server error"
	switch {
	case errors.Is(err, cart.ErrStockExceeded), errors.Is(err, cart.ErrOutOfStock):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, orders.ErrSubmitInFlight):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, orders.ErrEmptyCart), errors.Is(err, auth.ErrUnknownField):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, orders.ErrSubmitFailure):
		status, msg = http.StatusBadGateway, err.Error()
	case errors.Is(err, catalog.ErrFetchFailure):
		status, msg = http.StatusBadGateway, "Failed to load products"
	case errors.Is(err, session.ErrUnknownProduct), errors.Is(err, session.ErrNoOrder):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, receipt.ErrNoOrderData):
		status, msg = http.StatusNotFound, err.Error()
	case remote.StatusOf(err) >= 400 && remote.StatusOf(err) < 500:
		status, msg = remote.StatusOf(err), remote.Detail(err)
	case remote.StatusOf(err) != 0:
		status, msg = http.StatusBadGateway, remote.Detail(err)
	default:
		zap.L().Error("request failed", zap.Error(err))
	}
	utils.RespondWithError(w, status, msg)
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "ok"})
}
