// Package validator wraps the go-playground/validator library,
// error messages are translated and prefixed by the field namespace.
package validator

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslation "github.com/go-playground/validator/v10/translations/en"

	"github.com/forgeport/forgeport/internal/pkg/utils/errors"
)

// Rule is a custom validation rule.
type Rule struct {
	Tag  string
	Func validator.Func
}

func Validate(ctx context.Context, value any, rules ...Rule) error {
	validate, enTranslator := newValidator(rules...)

	if err := validate.StructCtx(ctx, value); err != nil {
		var validationErrs validator.ValidationErrors
		switch {
		case errors.As(err, &validationErrs):
			return processValidateError(validationErrs, enTranslator)
		default:
			panic(err)
		}
	}

	return nil
}

func newValidator(rules ...Rule) (*validator.Validate, ut.Translator) {
	validate := validator.New()

	// Register default EN translator
	enLocale := en.New()
	enTranslator, found := ut.New(enLocale, enLocale).GetTranslator("en")
	if !found {
		panic(errors.New("en translator was not found"))
	}
	if err := enTranslation.RegisterDefaultTranslations(validate, enTranslator); err != nil {
		panic(errors.Errorf("translator was not registered: %w", err))
	}

	// Register custom validation rules
	for _, rule := range rules {
		if err := validate.RegisterValidation(rule.Tag, rule.Func); err != nil {
			panic(err)
		}
	}

	// Use JSON field name in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return validate, enTranslator
}

// processNamespace removes the struct name (first part)
// and the field name (last part), the field name is part of the message.
func processNamespace(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) <= 2 {
		return ""
	}
	return strings.Join(parts[1:len(parts)-1], ".")
}

func processValidateError(err validator.ValidationErrors, translator ut.Translator) error {
	result := errors.NewMultiError()
	for _, e := range err {
		// Prefix error message by the field namespace
		prefix := ""
		if namespace := processNamespace(e.Namespace()); namespace != "" {
			prefix = namespace + "."
		}
		result.Append(errors.Errorf("%s%s", prefix, strings.TrimSpace(e.Translate(translator))))
	}

	return result.ErrorOrNil()
}
