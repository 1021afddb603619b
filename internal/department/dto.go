package department

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FormDTO carries the create/edit form for a department.
type FormDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func FromForm(r *http.Request) FormDTO {
	return FormDTO{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
	}
}

func (d FormDTO) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name,
			validation.Required.Error("Department name is required"),
			validation.Length(1, 255),
		),
		validation.Field(&d.Description,
			validation.Length(0, 1000),
		),
	)
}
