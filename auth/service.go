package auth

import (
	"strconv"
	"time"

	"github.com/go-pkgz/auth/v2/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/superrabbithero/appmanage/models"
)

const audience = "appmanage"

// Service issues and validates the bearer tokens handed out at login.
type Service struct {
	tokens *token.Service
	issuer string
	ttl    time.Duration
}

func NewService(secret, issuer string, ttl time.Duration) *Service {
	tokens := token.NewService(token.Opts{
		SecretReader: token.SecretFunc(func(string) (string, error) {
			return secret, nil
		}),
		TokenDuration:  ttl,
		CookieDuration: 7 * ttl,
		Issuer:         issuer,
		JWTCookieName:  "JWT",
		DisableXSRF:    true,
	})
	return &Service{tokens: tokens, issuer: issuer, ttl: ttl}
}

// TTL is how long an issued token stays valid.
func (s *Service) TTL() time.Duration { return s.ttl }

func (s *Service) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := token.Claims{
		User: &token.User{
			ID:   strconv.FormatUint(uint64(user.ID), 10),
			Name: user.UserName,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Audience:  []string{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tokenStr, err := s.tokens.Token(claims)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}
	return tokenStr, nil
}

// Parse validates tokenStr and returns the user it was issued for.
func (s *Service) Parse(tokenStr string) (token.User, error) {
	claims, err := s.tokens.Parse(tokenStr)
	if err != nil {
		return token.User{}, errors.Wrap(err, "invalid token")
	}
	if claims.User == nil {
		return token.User{}, errors.New("token has no user")
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return token.User{}, errors.New("token expired")
	}
	return *claims.User, nil
}

// UserID converts the id carried by a token back to a database id.
func UserID(user token.User) (uint, error) {
	id, err := strconv.ParseUint(user.ID, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "malformed user id %q", user.ID)
	}
	return uint(id), nil
}
