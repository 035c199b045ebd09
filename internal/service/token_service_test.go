package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microblogTTS/internal/apperror"
)

const testSecret = "test-secret"

func TestTokenService_IssueVerify(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	tokens := NewTokenServiceWithClock(testSecret, 24*time.Hour, func() time.Time { return clock })

	token, err := tokens.Issue(42)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	t.Run("Действительный токен", func(t *testing.T) {
		clock = now.Add(time.Hour)
		id, err := tokens.Verify(token)

		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
	})

	t.Run("Просроченный токен", func(t *testing.T) {
		clock = now.Add(25 * time.Hour)
		_, err := tokens.Verify(token)

		assert.ErrorIs(t, err, apperror.ErrExpiredToken)
	})
}

func TestTokenService_UniqueIDs(t *testing.T) {
	tokens := NewTokenService(testSecret, time.Hour)

	a, err := tokens.Issue(1)
	require.NoError(t, err)
	b, err := tokens.Issue(1)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestTokenService_Rejects(t *testing.T) {
	tokens := NewTokenService(testSecret, time.Hour)
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	sign := func(method jwt.SigningMethod, secret string, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{
			name:  "Другой секрет",
			token: sign(jwt.SigningMethodHS256, "other", Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}),
			want:  apperror.ErrInvalidToken,
		},
		{
			name:  "Другой алгоритм",
			token: sign(jwt.SigningMethodHS384, testSecret, Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}),
			want:  apperror.ErrInvalidToken,
		},
		{
			name:  "Без срока действия",
			token: sign(jwt.SigningMethodHS256, testSecret, Claims{UserID: 1}),
			want:  apperror.ErrInvalidToken,
		},
		{
			name:  "Нулевой id",
			token: sign(jwt.SigningMethodHS256, testSecret, Claims{UserID: 0, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}),
			want:  apperror.ErrInvalidToken,
		},
		{
			name:  "Испорченная строка",
			token: "not.a.token",
			want:  apperror.ErrMalformedToken,
		},
		{
			name:  "Пустая строка",
			token: "",
			want:  apperror.ErrMalformedToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Verify(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTokenService_LegacyClaims(t *testing.T) {
	tokens := NewTokenService(testSecret, time.Hour)
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	t.Run("Строковый id", func(t *testing.T) {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "17", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}).
			SignedString([]byte(testSecret))
		require.NoError(t, err)

		id, err := tokens.Verify(s)
		require.NoError(t, err)
		assert.Equal(t, int64(17), id)
	})

	t.Run("Только subject", func(t *testing.T) {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "23", ExpiresAt: exp}).
			SignedString([]byte(testSecret))
		require.NoError(t, err)

		id, err := tokens.Verify(s)
		require.NoError(t, err)
		assert.Equal(t, int64(23), id)
	})
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)

	hash, err := h.Hash("password1")
	require.NoError(t, err)
	assert.NotEqual(t, "password1", hash)

	other, err := h.Hash("password1")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)

	assert.True(t, h.Verify(hash, "password1"))
	assert.False(t, h.Verify(hash, "password2"))
	assert.Equal(t, 10, NewBcryptHasher(99).Cost)
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidPseudo("bob"))
	assert.False(t, ValidPseudo(" ab "))
	assert.True(t, ValidEmail("a@b.co"))
	assert.False(t, ValidEmail("a@b"))
	assert.False(t, ValidEmail("a b@c.d"))
	assert.True(t, ValidPassword("abcdefg1"))
	assert.False(t, ValidPassword("abcdefgh"))
	assert.False(t, ValidPassword("12345678"))
	assert.False(t, ValidPassword("abc12"))
}
