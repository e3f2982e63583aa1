package auth

import (
	"crypto/rand"
	"encoding/hex"

	"chrono/internal/domain/entity"
	"chrono/internal/domain/service"
	"chrono/internal/errors"
)

// randomTokenSource mints opaque session tokens from crypto/rand. A token is
// hex-encoded, so entity.SessionTokenLength characters cover half as many
// random bytes.
type randomTokenSource struct{}

// NewRandomTokenSource is the constructor for randomTokenSource.
func NewRandomTokenSource() service.TokenSource {
	return &randomTokenSource{}
}

// NewToken returns a fresh random token of entity.SessionTokenLength characters.
func (s *randomTokenSource) NewToken() (string, error) {
	raw := make([]byte, entity.SessionTokenLength/2)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes")
	}

	return hex.EncodeToString(raw), nil
}
