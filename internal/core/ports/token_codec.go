package ports

// TokenCodec turns a user ID into a signed bearer token and back.
type TokenCodec interface {
	Encode(userID string) (string, error)
	// Decode returns the user ID carried by token, or domain.ErrInvalidToken.
	Decode(token string) (string, error)
}
