package auth

import (
	"context"

	"github.com/lrcr/todoplane/internal/services"
)

// Verifier turns a session token into a verified Identity.
type Verifier interface {
	Verify(ctx context.Context, tokenString string) (services.Identity, error)
}

// SessionVerifier validates the token and then reloads the user from the
// store, so role changes take effect on the next identity check even
// for tokens issued before the change.
type SessionVerifier struct {
	codec *TokenCodec
	users services.UserService
}

func NewSessionVerifier(codec *TokenCodec, users services.UserService) *SessionVerifier {
	return &SessionVerifier{
		codec: codec,
		users: users,
	}
}

func (v *SessionVerifier) Verify(ctx context.Context, tokenString string) (services.Identity, error) {
	claims, err := v.codec.Parse(tokenString)
	if err != nil {
		return services.Identity{}, err
	}

	user, err := v.users.GetUser(ctx, claims.Subject)
	if err != nil {
		return services.Identity{}, err
	}

	return services.Identity{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}, nil
}
