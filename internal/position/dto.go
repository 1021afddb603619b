package position

import (
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type FormDTO struct {
	UserID        string `json:"user_id"`
	DepartmentID  int64  `json:"department_id"`
	DesignationID int64  `json:"designation_id"`
	SectionHead   bool   `json:"section_head"`
}

func FromForm(r *http.Request) FormDTO {
	departmentID, _ := strconv.ParseInt(r.PostFormValue("department_id"), 10, 64)
	designationID, _ := strconv.ParseInt(r.PostFormValue("designation_id"), 10, 64)
	return FormDTO{
		UserID:        r.PostFormValue("user_id"),
		DepartmentID:  departmentID,
		DesignationID: designationID,
		SectionHead:   r.PostFormValue("section_head") == "1",
	}
}

func (d FormDTO) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.UserID,
			validation.Required.Error("User is required"),
		),
		validation.Field(&d.DepartmentID,
			validation.Required.Error("Department is required"),
		),
		validation.Field(&d.DesignationID,
			validation.Required.Error("Designation is required"),
		),
	)
}

// payload converts the section-head flag to the 0/1 integer the API stores.
func (d FormDTO) payload() map[string]any {
	sectionHead := 0
	if d.SectionHead {
		sectionHead = 1
	}
	return map[string]any{
		"user_id":        d.UserID,
		"department_id":  d.DepartmentID,
		"designation_id": d.DesignationID,
		"section_head":   sectionHead,
	}
}
