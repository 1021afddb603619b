package designation

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type FormDTO struct {
	Name string `json:"name"`
}

func FromForm(r *http.Request) FormDTO {
	return FormDTO{Name: r.PostFormValue("name")}
}

func (d FormDTO) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name,
			validation.Required.Error("Designation name is required"),
			validation.Length(1, 255),
		),
	)
}
