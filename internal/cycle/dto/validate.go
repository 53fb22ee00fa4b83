package dto

import (
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-stockcount-service/internal/apperr"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and reports every failing field as an
// INVALID_INPUT detail of the form "Field:tag".
func Validate(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.CodeInvalidInput, err)
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fmt.Sprintf("%s:%s", fe.Field(), fe.Tag()))
	}
	return apperr.New(apperr.CodeInvalidInput, details...)
}
