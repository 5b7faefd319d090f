package handler

import (
	"context"
	"net/http"

	"github.com/itchan-dev/authgate/backend/internal/service"
	"github.com/itchan-dev/authgate/shared/config"
	"github.com/itchan-dev/authgate/shared/utils"
)

// HealthChecker reports whether the database is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	auth   service.AuthService
	health HealthChecker
	cfg    *config.Config
}

func New(auth service.AuthService, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{auth: auth, health: health, cfg: cfg}
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	utils.WriteJSON(w, statusCode, v)
}
