package service

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"microblogTTS/internal/models"
)

const (
	MinPseudoLength   = 3
	MinPasswordLength = 8
	MaxKindLength     = 32
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NewValidator returns a validator with the account and post rules
// registered as tags: pseudo, simpleemail, password, visibility.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("pseudo", func(fl validator.FieldLevel) bool {
		return ValidPseudo(fl.Field().String())
	})
	v.RegisterValidation("simpleemail", func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	})
	v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return ValidPassword(fl.Field().String())
	})
	v.RegisterValidation("visibility", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case models.VisibilityPublic, models.VisibilityPrivate:
			return true
		}
		return false
	})
	return v
}

func ValidPseudo(pseudo string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(pseudo)) >= MinPseudoLength
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPassword requires MinPasswordLength characters with at least one
// ASCII letter and one digit.
func ValidPassword(password string) bool {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return false
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return letter && digit
}
