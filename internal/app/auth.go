package app

import (
	"crypto/subtle"
	"strings"
)

// Authorize checks an Authorization header against the configured static
// bearer token.
func (s *Service) Authorize(authHeader string) error {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return newError(KindUnauthorized, "Invalid authorization header")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	if subtle.ConstantTimeCompare([]byte(token), []byte(s.Config.Auth.Token)) != 1 {
		return newError(KindUnauthorized, "Invalid authorization header")
	}
	return nil
}
