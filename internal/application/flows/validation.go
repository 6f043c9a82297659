package flows

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/minitask/client/internal/domain/entities"
	"github.com/minitask/client/internal/ports"
)

// Messages shown for blocked submissions.
const (
	MsgEnterCredentials  = "Enter email and password"
	MsgCredentialLength  = "Email must be at least 5 characters & password at least 4 characters"
	MsgInvalidEmail      = "Invalid email"
	MsgPasswordMismatch  = "Passwords do not match!"
	MsgTitleRequired     = "Title is required"
	MsgLocationsRequired = "Please select state, district, and city"
	MsgInvalidStatus     = "Status must be pending, in-progress or completed"
)

var formValidator = validator.New()

// credential checks run in a fixed order; the first failing rule wins.
var credentialRules = []struct {
	tags    []string
	message string
}{
	{[]string{"required"}, MsgEnterCredentials},
	{[]string{"min"}, MsgCredentialLength},
	{[]string{"contains"}, MsgInvalidEmail},
	{[]string{"eqfield"}, MsgPasswordMismatch},
}

func validateCredentials(form any) error {
	err := formValidator.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	for _, rule := range credentialRules {
		for _, fe := range fieldErrs {
			for _, tag := range rule.tags {
				if fe.Tag() == tag {
					return entities.NewValidationError(strings.ToLower(fe.Field()), rule.message)
				}
			}
		}
	}
	return entities.NewValidationError(strings.ToLower(fieldErrs[0].Field()), MsgEnterCredentials)
}

func validateTaskInput(input ports.TaskInput) error {
	err := formValidator.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	// Title is reported before the location triple.
	for _, fe := range fieldErrs {
		if fe.Field() == "Title" {
			return entities.NewValidationError("title", MsgTitleRequired)
		}
	}
	for _, fe := range fieldErrs {
		switch fe.Field() {
		case "State", "District", "City":
			return entities.NewValidationError("location", MsgLocationsRequired)
		case "Status":
			return entities.NewValidationError("status", MsgInvalidStatus)
		}
	}
	return entities.NewValidationError(strings.ToLower(fieldErrs[0].Field()), fieldErrs[0].Error())
}
