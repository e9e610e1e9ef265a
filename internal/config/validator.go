package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/go-playground/validator/v10"
)

func oneOfLower(values ...string) validator.Func {
	allowed := make(map[string]struct{}, len(values)+1)
	allowed[""] = struct{}{}
	for _, v := range values {
		allowed[v] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		_, ok := allowed[strings.ToLower(fl.Field().String())]
		return ok
	}
}

func newValidator() *validator.Validate {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", oneOfLower("debug", "info", "warn", "error", "fatal", "panic"))
	_ = validate.RegisterValidation("logformat", oneOfLower("console", "text", "json"))
	_ = validate.RegisterValidation("engine", oneOfLower("dmp", "myers"))
	_ = validate.RegisterValidation("granularity", oneOfLower("line", "word", "character", "char"))
	_ = validate.RegisterValidation("strategy", oneOfLower("positional", "edit_script"))
	_ = validate.RegisterValidation("presentation", oneOfLower("unified", "split"))

	return validate
}

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return common.WrapError(common.ErrInvalidConfiguration, "config is nil")
	}

	err := newValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return common.WrapError(err, "configuration validation error")
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		fieldName := strings.TrimPrefix(e.StructNamespace(), "GlobalConfig.")
		msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", fieldName, e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		messages = append(messages, msg)
	}
	return fmt.Errorf("%w: validation failed:\n  %s", common.ErrInvalidConfiguration, strings.Join(messages, "\n  "))
}
