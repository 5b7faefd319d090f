package domain

// Claims is the payload embedded in a token. Registered claims (exp, iat)
// are not part of it.
type Claims map[string]any

const (
	ClaimEmail     = "email"
	ClaimAccountId = "account_id"
)

// String returns the claim as a string, false if absent or of another type.
func (c Claims) String(key string) (string, bool) {
	v, ok := c[key].(string)
	return v, ok && v != ""
}
