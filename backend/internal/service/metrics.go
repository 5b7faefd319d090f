package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess         = "success"
	outcomeValidation      = "validation_error"
	outcomeConflict        = "conflict"
	outcomeDeliveryFailed  = "delivery_failed"
	outcomeInvalidToken    = "invalid_token"
	outcomeExpiredToken    = "expired_token"
	outcomeNotFound        = "not_found"
	outcomeInvalidCreds    = "invalid_credentials"
	outcomeUnverified      = "unverified"
	outcomeAlreadyVerified = "already_verified"
	outcomeInternalFailure = "internal_error"
	notificationSent       = "sent"
	notificationFailed     = "failed"
)

var (
	registrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authgate_registrations_total",
			Help: "Registration attempts by outcome",
		},
		[]string{"outcome"},
	)

	verificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authgate_verifications_total",
			Help: "Email verification attempts by outcome",
		},
		[]string{"outcome"},
	)

	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authgate_logins_total",
			Help: "Login attempts by outcome",
		},
		[]string{"outcome"},
	)

	verificationEmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authgate_verification_emails_total",
			Help: "Verification email delivery attempts by result",
		},
		[]string{"result"},
	)
)
