package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jjudge-oj/userservice/internal/apperrors"
)

const (
	msgInvalidUserID    = "Invalid null or empty user id"
	msgInvalidAddressID = "Invalid null or empty address id"
)

var fieldLabels = map[string]string{
	"Username":     "Username",
	"Email":        "Email",
	"Password":     "Password",
	"FirstName":    "First name",
	"LastName":     "Last name",
	"PhoneNumber":  "Phone number",
	"AddressType":  "Address type",
	"AddressLine1": "Address line 1",
	"AddressLine2": "Address line 2",
	"City":         "City",
	"State":        "State",
	"ZipCode":      "Zip code",
	"Country":      "Country",
}

var addressFields = map[string]bool{
	"AddressType":  true,
	"AddressLine1": true,
	"AddressLine2": true,
	"City":         true,
	"State":        true,
	"ZipCode":      true,
	"Country":      true,
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// validateStruct runs v over req and turns the first failure into an
// invalid-input error naming the field.
func validateStruct(v *validator.Validate, req any) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.InvalidInput("Invalid request data.")
	}
	return apperrors.InvalidInput("%s", fieldMessage(fieldErrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.StructField()]
	if !ok {
		label = fe.Field()
	}
	suffix := ""
	if addressFields[fe.StructField()] {
		suffix = " in create user address request"
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s must be included%s", label, suffix)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func parseUserID(raw string) (uuid.UUID, error) {
	return parseID(raw, msgInvalidUserID)
}

func parseAddressID(raw string) (uuid.UUID, error) {
	return parseID(raw, msgInvalidAddressID)
}

func parseID(raw, emptyMsg string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, apperrors.InvalidInput("%s", emptyMsg)
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apperrors.InvalidInput("Invalid id: %s", raw)
	}
	return id, nil
}
