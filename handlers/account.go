package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"storefront/auth"
	"storefront/session"
	"storefront/utils"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params, s *session.Session) {
	var form auth.LoginForm
	if err := utils.DecodeJSON(r, &form); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, err := s.Login(r.Context(), form)
	if err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"user": user})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params, s *session.Session) {
	if err := s.Logout(r.Context()); err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"user": s.User(r.Context())})
}

// Me returns the signed in user, or the guest.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params, s *session.Session) {
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"user": s.User(r.Context())})
}

type fieldRequest struct {
	Value string `json:"value"`
}

// ChangeField updates one registration field. Its check runs after the
// debounce delay; results arrive over the live feed or from RegisterErrors.
func (h *Handler) ChangeField(w http.ResponseWriter, r *http.Request, ps httprouter.Params, s *session.Session) {
	var req fieldRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.Registration().Change(ps.ByName("field"), req.Value); err != nil {
		respondErr(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusAccepted, utils.M{"errors": s.Registration().Errors()})
}

func (h *Handler) RegisterErrors(w http.ResponseWriter, r *http.Request, _ httprouter.Params, s *session.Session) {
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"errors": s.Registration().Errors()})
}

// Register submits the registration form. A body, when present, replaces the
// form values first.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params, s *session.Session) {
	var form auth.RegisterForm
	if err := utils.DecodeJSON(r, &form); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	reg := s.Registration()
	for field, value := range map[string]string{
		auth.FieldUsername: form.Username,
		auth.FieldEmail:    form.Email,
		auth.FieldPassword: form.Password,
	} {
		if value != "" {
			reg.Change(field, value)
		}
	}
	msg, err := reg.Submit(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	if msg == "" {
		msg = "Registration successful"
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"message": msg})
}
