package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/commentguard/commentguard/automod"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const callerKey = "commentguard-caller"

var ErrNoSecret = errors.New("no JWT secret configured")

type callerClaims struct {
	jwt.RegisteredClaims

	Group string `json:"group,omitempty"`
}

// Mints an HS256 bearer token identifying a user and group.
func mintToken(secret []byte, subject, group string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := callerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "commentguard",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Group: group,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseToken(secret []byte, tokenString string) (*automod.Caller, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer("commentguard"),
		jwt.WithLeeway(5 * time.Second),
	}
	token, err := jwt.ParseWithClaims(tokenString, &callerClaims{}, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*callerClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return &automod.Caller{UserID: claims.Subject, Group: claims.Group}, nil
}

// Parses an optional "Authorization: Bearer" header into the request's caller. Requests without the header are anonymous; a bad token is rejected.
func (srv *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		hdr := c.Request().Header.Get(echo.HeaderAuthorization)
		if hdr == "" {
			return next(c)
		}
		tok, ok := strings.CutPrefix(hdr, "Bearer ")
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "expected bearer token")
		}
		caller, err := parseToken(srv.jwtSecret, strings.TrimSpace(tok))
		if err != nil {
			srv.logger.Debug("rejected auth token", "err", err)
			return echo.NewHTTPError(http.StatusUnauthorized, fmt.Sprintf("invalid token: %s", err))
		}
		c.Set(callerKey, caller)
		return next(c)
	}
}

func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		caller := callerFrom(c)
		if caller.UserID == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		if !caller.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "administrator access required")
		}
		return next(c)
	}
}

func callerFrom(c echo.Context) automod.Caller {
	if v, ok := c.Get(callerKey).(*automod.Caller); ok && v != nil {
		return *v
	}
	return automod.Caller{}
}
