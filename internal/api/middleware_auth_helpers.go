package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "bearer "

// authenticateRequest verifies the bearer token issued by the identity
// provider. The subject claim carries the numeric user id.
func (handler *Handler) authenticateRequest(c *fiber.Ctx) (uint, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return 0, errors.New("missing bearer token")
	}
	tokenValue := strings.TrimSpace(header[len(bearerPrefix):])

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenValue, claims, func(token *jwt.Token) (interface{}, error) {
		return handler.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(handler.now),
	)
	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}

	userID, err := strconv.ParseUint(strings.TrimSpace(claims.Subject), 10, 64)
	if err != nil || userID == 0 {
		return 0, errors.New("invalid token subject")
	}
	return uint(userID), nil
}
