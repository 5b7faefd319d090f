package domain

import "time"

type (
	AccountId = string
	Email     = string
	Username  = string
	Password  = string
)

type Account struct {
	Id        AccountId `json:"id"`
	Username  *Username `json:"username,omitempty"`
	Email     Email     `json:"email"`
	PassHash  string    `json:"-"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}
