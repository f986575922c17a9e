// Package validate wraps go-playground/validator with english messages and project errors
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	perr "modhost/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Svc holds the validator and its translator
type Svc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	once sync.Once
	svc  *Svc
)

// identifiers used for module names and provider tokens
var identRE = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:/-]*$`)

// Get returns the validator singleton, initializing on first use
func Get() *Svc {
	once.Do(func() {
		enLoc := en.New()
		trans, _ := ut.New(enLoc, enLoc).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// prefer json tag names in messages, fall back to the Go field name
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag == "" || tag == "-" {
				return fld.Name
			}
			return tag
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)
		registerIdent(v, trans)

		svc = &Svc{Validator: v, Translator: trans}
	})
	return svc
}

// Struct validates s and maps the first failure to a validation error with its field attached
func Struct(s any) error {
	err := Get().Validator.Struct(s)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		return perr.Wrap(inv, perr.ErrorCodeInvalidArgument, "validator misuse")
	}
	field, msg := FieldAndMessage(err)
	return perr.WithField(perr.New(perr.ErrorCodeValidation, msg), field)
}

// FieldAndMessage returns the first failing field and its translated message
func FieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fe.Field(), fe.Translate(Get().Translator)
	}
	return "", err.Error()
}

// IsIdent reports whether s is usable as a module name or provider token
func IsIdent(s string) bool { return identRE.MatchString(s) }

func registerIdent(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		return IsIdent(fl.Field().String())
	})
	_ = v.RegisterTranslation("ident", trans,
		func(t ut.Translator) error {
			return t.Add("ident", "{0} must start with a letter or digit and contain only letters, digits, and _ . : / -", true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T("ident", fe.Field())
			return msg
		},
	)
}
