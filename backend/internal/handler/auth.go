package handler

import (
	"net/http"

	"github.com/itchan-dev/authgate/shared/api"
	"github.com/itchan-dev/authgate/shared/utils"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if _, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, api.MessageResponse{Message: "Account created. Check your email to confirm it"})
}

// VerifyEmail is opened from the emailed link, so it answers with a page
// instead of JSON.
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	email, err := h.auth.VerifyEmail(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeVerificationFailure(w, err)
		return
	}
	writeVerificationSuccess(w, email)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.LoginResponse{Message: "You logged in", Token: token})
}

func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req api.ResendVerificationRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.auth.ResendVerification(r.Context(), req.Email); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Verification email sent"})
}
