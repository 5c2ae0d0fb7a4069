package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate = validator.New(validator.WithRequiredStructEnabled())

	// MaxIDLength bounds a graph id accepted from the command line
	MaxIDLength = 1024
)

// ErrNoIDs is returned when an id list holds nothing but blanks
var ErrNoIDs = errors.New("no graph ids given")

// Struct validates v using its `validate` struct tags
func Struct(v any) error {
	if v == nil {
		return errors.New("value cannot be nil")
	}
	return formatValidationError(validate.Struct(v))
}

// GraphIDs trims and deduplicates ids, skipping blank entries. An id may not
// contain whitespace or a colon, since neither survives a TSG record.
func GraphIDs(ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if err := validate.Var(id, fmt.Sprintf("max=%d", MaxIDLength)); err != nil {
			return nil, fmt.Errorf("graph id of %d characters exceeds maximum length of %d", len(id), MaxIDLength)
		}
		if strings.ContainsAny(id, " \t\r\n:") {
			return nil, fmt.Errorf("graph id %q contains whitespace or ':'", id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, ErrNoIDs
	}
	return out, nil
}

// formatValidationError converts validator errors to a more user-friendly
// format, keeping one error per failing field
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	errs := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Namespace()
		param := e.Param()

		switch e.Tag() {
		case "required":
			errs = append(errs, fmt.Errorf("%s: field is required", field))
		case "min", "gte":
			errs = append(errs, fmt.Errorf("%s: must be at least %s", field, param))
		case "max", "lte":
			errs = append(errs, fmt.Errorf("%s: must not exceed %s", field, param))
		case "oneof":
			errs = append(errs, fmt.Errorf("%s: %v is not one of [%s]", field, e.Value(), param))
		default:
			errs = append(errs, fmt.Errorf("%s: validation failed (%s)", field, e.Tag()))
		}
	}
	return errors.Join(errs...)
}
