package session

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// LoginDTO carries the credential form submission.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Email,
			validation.Required.Error("Email is required"),
			is.EmailFormat.Error("Enter a valid email address"),
		),
		validation.Field(&d.Password,
			validation.Required.Error("Password is required"),
		),
	)
}
