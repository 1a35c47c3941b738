package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/okatenko/planhub/internal/model"
)

var tokenSecret []byte

// SetSecret installs the HMAC signing key. Call once at startup before any
// token is issued or verified.
func SetSecret(secret string) {
	tokenSecret = []byte(secret)
}

type TokenClaims struct {
	UserID int64            `json:"user_id"`
	Role   model.GlobalRole `json:"role"`
	jwt.RegisteredClaims
}

func GenerateToken(userID int64, role model.GlobalRole, dur time.Duration) (string, error) {
	claims := TokenClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(dur)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tokenSecret)
}

func VerifyToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Wrap(ErrInvalidSigningMethod, token.Header["alg"].(string))
		}
		return tokenSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// Identity resolves a bearer token into the caller identity consumed by
// guards. Invalid or expired tokens yield no identity.
func Identity(tokenString string) (model.Identity, bool) {
	claims, err := VerifyToken(tokenString)
	if err != nil {
		return model.Identity{}, false
	}
	return model.Identity{UserID: claims.UserID, Role: claims.Role}, true
}
