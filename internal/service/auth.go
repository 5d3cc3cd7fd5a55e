package service

import (
	"context"
	"crypto/subtle"

	"github.com/craftmind/contextd/internal/domain"
)

// StaticTokenValidator accepts a single deployment-configured bearer
// token. Real per-caller authentication lives in the surrounding
// application; this gate keeps the engine from being open to the network.
type StaticTokenValidator struct {
	token string
}

func NewStaticTokenValidator(token string) *StaticTokenValidator {
	return &StaticTokenValidator{token: token}
}

// ValidateToken implements middleware.AuthValidator.
func (v *StaticTokenValidator) ValidateToken(_ context.Context, token string) error {
	if v.token == "" || subtle.ConstantTimeCompare([]byte(v.token), []byte(token)) != 1 {
		return domain.ErrInvalidAPIToken
	}
	return nil
}
