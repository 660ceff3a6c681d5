package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-lifewheel/internal/domain"
)

// newValidator returns a validator with the custom rules used by Config
// and domain.Participant registered.
func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := registerCustomValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	return v, nil
}

// registerCustomValidators registers domain-specific validation functions
// with the validator instance.
// registerCustomValidators returns an error if any validator registration fails.
func registerCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}
	if err := v.RegisterValidation("nonblank", validateNonBlank); err != nil {
		return fmt.Errorf("failed to register nonblank validator: %w", err)
	}
	return nil
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	n, err := fmt.Sscanf(value, "%d.%d.%d", &major, &minor, &patch)
	return err == nil && n == 3 && major >= 0 && minor >= 0 && patch >= 0
}

// validateNonBlank rejects strings that are empty after trimming space.
func validateNonBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validateConfig performs struct tag validation followed by the semantic
// checks tags cannot express.
func validateConfig(v *validator.Validate, cfg *Config) error {
	if err := v.Struct(cfg); err != nil {
		return toValidationError("config", err)
	}
	return validateSemantics(cfg)
}

// validateSemantics checks that categories stay distinct once they are
// compared the way keywords are, since a keyword is later checked
// against every category name.
func validateSemantics(cfg *Config) error {
	norm := NewNormalizer(cfg.Keywords.CaseSensitive)
	seen := make(map[string]string, len(cfg.Categories))
	for _, c := range cfg.Categories {
		key := norm.Key(c)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%w: categories %q and %q collide after normalization",
				domain.ErrInvalidConfiguration, prev, c)
		}
		seen[key] = c
	}
	return nil
}

// ValidateParticipant checks a participant profile against its struct
// tags. The returned error is a *domain.ValidationError listing every
// failing field.
func ValidateParticipant(p domain.Participant) error {
	v, err := newValidator()
	if err != nil {
		return err
	}
	if err := v.Struct(p); err != nil {
		return toValidationError("participant", err)
	}
	return nil
}

// toValidationError flattens validator.ValidationErrors into a
// domain.ValidationError wrapped with ErrInvalidConfiguration for configs.
func toValidationError(entity string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%s validation failed: %w", entity, err)
	}

	ve := domain.NewValidationError(entity)
	for _, fe := range verrs {
		if fe.Param() != "" {
			ve.AddError(fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		ve.AddError(fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	if entity == "config" {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, ve)
	}
	return ve
}
