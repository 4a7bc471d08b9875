// Package validation provides struct validation for guard policies.
//
// It uses the validator library with `validate` struct tags and returns
// *errors.AppError values so invalid policies surface as permanent failures.
//
//	type RetryPolicy struct {
//	    Multiplier float64 `mapstructure:"multiplier" validate:"omitempty,gt=1"`
//	}
//	err := validation.Validate(policy)
package validation
