package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/hongminglow/homeride-be/internal/http/respond"
)

const maxBodyBytes = 1 << 20

var (
	validate     *validator.Validate
	validateOnce sync.Once
	phonePattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// Registration only fails on an empty tag name or nil func.
		_ = validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return validPassword(fl.Field().String())
		})
		_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		// Values are trimmed before storage, so whitespace alone counts as empty.
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

// validPassword requires 8 to 128 characters mixing upper case, lower case and digits.
func validPassword(p string) bool {
	if !utf8.ValidString(p) {
		return false
	}
	if n := utf8.RuneCountInString(p); n < 8 || n > 128 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// validateStruct returns one FieldError per failed rule, nil when s is valid.
func validateStruct(s any) []respond.FieldError {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []respond.FieldError{{Field: "body", Message: "is invalid"}}
	}
	out := make([]respond.FieldError, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, respond.FieldError{Field: e.Field(), Message: fieldMessage(e)})
	}
	return out
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be 8 to 15 digits, optionally prefixed with +"
	case "password":
		return "must be 8 to 128 characters and contain upper case, lower case and digits"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", e.Param())
	default:
		return "is invalid"
	}
}

// decodeAndValidate reads a JSON body into dst and validates it. It writes the
// 400 response itself and reports false when the request should stop.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeJSON(w, r, dst) && validRequest(w, r, dst)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

func validRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if fields := validateStruct(dst); fields != nil {
		respond.ValidationError(w, r, fields)
		return false
	}
	return true
}
