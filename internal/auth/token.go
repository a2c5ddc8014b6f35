package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vovakirdan/wirechat-client/internal/chat"
)

// Claims carried in a wirechat access token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// ParseIdentity extracts the user identity from a token without verifying
// the signature. Verification is the server's job; the client only needs the
// claims to know who it is acting as. An empty token means nobody is
// authenticated.
func ParseIdentity(token string) (*chat.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, chat.ErrNoUser
	}

	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("token carries no user id")
	}

	email := claims.Email
	if email == "" {
		email = claims.Username
	}
	return &chat.User{ID: claims.UserID, Email: email}, nil
}

// GenerateToken mints a signed token. Used by tests and local tooling; real
// tokens come from the server's login flow.
func GenerateToken(secret []byte, userID, username, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
