package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator"

	perrors "github.com/matzehuels/passrank/pkg/errors"
)

// Validate checks field constraints and that every checkpoint lies in
// [1, max_level]. Failures are reported as INVALID_CONFIG.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = describe(fe)
			}
			return perrors.New(perrors.ErrCodeInvalidConfig, "%s", strings.Join(msgs, "; "))
		}
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "validate config")
	}

	for _, l := range c.Analysis.Checkpoints {
		if l > c.Analysis.MaxLevel {
			return perrors.New(perrors.ErrCodeInvalidConfig,
				"analysis.checkpoints: %d exceeds max_level %d", l, c.Analysis.MaxLevel)
		}
	}
	return nil
}

// describe renders one field error as "section.key: problem".
func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", field)
	case "min":
		return fmt.Sprintf("%s: must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s: must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s: failed %q", field, fe.Tag())
	}
}
