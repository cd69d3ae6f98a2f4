package utils

import (
	"fmt"

	"github.com/golang-jwt/jwt"
	"github.com/spf13/viper"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/constants"
)

type AuthClaims struct {
	Secret string `json:"secret"`
	jwt.StandardClaims
}

// ParseAuthToken validates a signed admin token and returns its claims.
func ParseAuthToken(tokenString string) (*AuthClaims, error) {
	claims := &AuthClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(viper.GetString(constants.ViperSecretKey)), nil
	})
	if err != nil {
		return nil, constants.ErrUnauthorized
	}

	if !token.Valid {
		return nil, constants.ErrUnauthorized
	}

	return claims, nil
}
