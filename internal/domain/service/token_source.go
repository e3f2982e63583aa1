package service

// TokenSource produces fresh opaque session tokens. Tokens are random,
// fixed-length and carry no embedded claims; everything about a session lives
// in its stored row.
type TokenSource interface {
	// NewToken returns a fresh random token of entity.SessionTokenLength characters.
	NewToken() (string, error)
}
