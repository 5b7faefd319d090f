package handler

import (
	"net/http"

	"github.com/itchan-dev/authgate/shared/api"
	"github.com/itchan-dev/authgate/shared/domain"
	internal_errors "github.com/itchan-dev/authgate/shared/errors"
	"github.com/itchan-dev/authgate/shared/middleware"
	"github.com/itchan-dev/authgate/shared/utils"
)

// Me returns the identity carried by the session token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.WriteErrorAndStatusCode(w, internal_errors.Authentication("Please sign-in"))
		return
	}
	accountId, _ := claims.String(domain.ClaimAccountId)
	email, _ := claims.String(domain.ClaimEmail)

	writeJSON(w, http.StatusOK, api.MeResponse{AccountId: accountId, Email: email})
}
