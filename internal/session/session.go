// Package session keeps the list view state of a browser in a signed token.
package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/erazemk/paklijst/internal/controller"
	"github.com/erazemk/paklijst/internal/model"
)

// Claims represents the JWT claims.
type Claims struct {
	User       string              `json:"user,omitempty"`
	Filter     string              `json:"filter,omitempty"`
	Search     string              `json:"q,omitempty"`
	Suggestion *controller.Pending `json:"suggestion,omitempty"`
	jwt.RegisteredClaims
}

// Expiry is the lifetime of a session token. Every response that changes
// the state issues a fresh one.
const Expiry = 30 * 24 * time.Hour

// Encode signs the view state.
func Encode(secret string, st controller.ViewState) (string, error) {
	now := time.Now()
	claims := Claims{
		User:       st.User,
		Filter:     st.Filter.String(),
		Search:     st.Search,
		Suggestion: st.Suggestion,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing session: %w", err)
	}
	return signed, nil
}

// Decode parses and validates a session token.
func Decode(secret, tokenStr string) (controller.ViewState, error) {
	claims, err := parse(secret, tokenStr)
	if err != nil {
		return controller.ViewState{}, err
	}

	filter, err := model.ParseFilter(claims.Filter)
	if err != nil {
		return controller.ViewState{}, fmt.Errorf("session filter: %w", err)
	}

	return controller.ViewState{
		User:       claims.User,
		Filter:     filter,
		Search:     claims.Search,
		Suggestion: claims.Suggestion,
	}, nil
}

func parse(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing session: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session")
	}
	return claims, nil
}
