// internal/app/system/inputval/inputval.go
package inputval

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/journalhub/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldError is one failed rule, already rendered for display.
type FieldError struct {
	Field   string
	Message string
}

// Result collects the failures from Validate.
type Result struct {
	Errors []FieldError
}

func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their human label.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return IsValidObjectID(fl.Field().String())
		})
		_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
			return IsValidHTTPURL(fl.Field().String())
		})
		_ = v.RegisterValidation("teamrole", func(fl validator.FieldLevel) bool {
			return IsValidTeamRole(fl.Field().String())
		})
		_ = v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
			return IsValidEmail(fl.Field().String())
		})
	})
	return v
}

// Validate checks s against its `validate` struct tags.
func Validate(s any) *Result {
	res := &Result{}
	err := instance().Struct(s)
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "email", "emailaddr":
		return "A valid email address is required."
	case "dive":
		return label + " contains an invalid value."
	default:
		return label + " is invalid."
	}
}

// IsValidEmail reports whether s is a bare, deliverable address: the
// validator's email rule (which requires a dotted domain and rejects display
// names), plus sane dot placement in both parts. Surrounding whitespace is
// ignored.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t<>") {
		return false
	}
	if instance().Var(s, "email") != nil {
		return false
	}
	at := strings.LastIndex(s, "@")
	local, domain := s[:at], s[at+1:]
	for _, part := range []string{local, domain} {
		if part == "" || strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	return true
}

// IsValidHTTPURL reports whether s is an absolute http(s) URL with a host.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsValidObjectID reports whether s is a 24-character hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}

// IsValidTeamRole reports whether s names a team role.
func IsValidTeamRole(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case models.TeamRoleAdmin, models.TeamRoleMember:
		return true
	}
	return false
}
