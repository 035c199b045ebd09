package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/segmentio/ksuid"

	"microblogTTS/internal/apperror"
)

// SigningMethod is the only algorithm accepted on verification.
var SigningMethod = jwt.SigningMethodHS256

type TokenService interface {
	Issue(userID int64) (string, error)
	Verify(tokenString string) (int64, error)
}

// Claims carries the user id under "id"; older clients may have encoded it
// as a string.
type Claims struct {
	UserID any `json:"id"`
	jwt.RegisteredClaims
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) TokenService {
	return NewTokenServiceWithClock(secret, ttl, time.Now)
}

func NewTokenServiceWithClock(secret string, ttl time.Duration, now func() time.Time) TokenService {
	return &tokenService{secret: []byte(secret), ttl: ttl, now: now}
}

func (s *tokenService) Issue(userID int64) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        ksuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(SigningMethod, claims)

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return tokenString, nil
}

// Verify returns the subject user id, or one of apperror.ErrExpiredToken,
// apperror.ErrMalformedToken, apperror.ErrInvalidToken.
func (s *tokenService) Verify(tokenString string) (int64, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{SigningMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithJSONNumber(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, apperror.ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenMalformed):
			return 0, apperror.ErrMalformedToken
		default:
			return 0, apperror.ErrInvalidToken
		}
	}

	userID, err := subjectID(claims)
	if err != nil {
		return 0, apperror.ErrInvalidToken
	}
	return userID, nil
}

func subjectID(c *Claims) (int64, error) {
	var (
		id  int64
		err error
	)

	switch v := c.UserID.(type) {
	case json.Number:
		id, err = v.Int64()
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("нецелый id: %v", v)
		}
		id = int64(v)
	case string:
		id, err = strconv.ParseInt(v, 10, 64)
	case nil:
		id, err = strconv.ParseInt(c.Subject, 10, 64)
	default:
		return 0, fmt.Errorf("неверный тип id: %T", v)
	}
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("неверный id: %d", id)
	}
	return id, nil
}
