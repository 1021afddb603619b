package user

import (
	"io"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/docuflow/records-console/internal/backend"
	corevalidation "github.com/docuflow/records-console/internal/core/validation"
)

const maxFormMemory = 32 << 20

// ImageUpload is an optional profile image taken from the form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     []byte
}

// FormDTO carries the user create/edit form. Password fields are only
// required in create mode.
type FormDTO struct {
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	Address              string `json:"address"`
	Role                 string `json:"role"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Image                *ImageUpload
}

// FromForm reads the user form, which arrives as multipart when an image is
// attached and urlencoded otherwise.
func FromForm(r *http.Request) (FormDTO, error) {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return FormDTO{}, err
	}

	dto := FormDTO{
		FirstName:            r.PostFormValue("first_name"),
		LastName:             r.PostFormValue("last_name"),
		Email:                r.PostFormValue("email"),
		Phone:                r.PostFormValue("phone"),
		Address:              r.PostFormValue("address"),
		Role:                 r.PostFormValue("role"),
		Password:             r.PostFormValue("password"),
		PasswordConfirmation: r.PostFormValue("password_confirmation"),
	}

	if r.MultipartForm != nil {
		if headers := r.MultipartForm.File["image"]; len(headers) > 0 && headers[0].Filename != "" {
			file, err := headers[0].Open()
			if err != nil {
				return dto, err
			}
			content, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				return dto, err
			}
			dto.Image = &ImageUpload{
				Filename:    headers[0].Filename,
				ContentType: headers[0].Header.Get("Content-Type"),
				Size:        headers[0].Size,
				Content:     content,
			}
		}
	}

	return dto, nil
}

func (d FormDTO) validateCommon(create bool) error {
	passwordRules := []validation.Rule{validation.Length(8, 72)}
	if create {
		passwordRules = append([]validation.Rule{validation.Required.Error("Password is required")}, passwordRules...)
	}

	return validation.ValidateStruct(&d,
		validation.Field(&d.FirstName,
			validation.Required.Error("First name is required"),
			validation.Length(1, 255),
		),
		validation.Field(&d.LastName,
			validation.Required.Error("Last name is required"),
			validation.Length(1, 255),
		),
		validation.Field(&d.Email,
			validation.Required.Error("Email is required"),
			is.EmailFormat.Error("Enter a valid email address"),
		),
		validation.Field(&d.Role,
			validation.Required.Error("Role is required"),
			validation.In(RoleAdmin, RoleUser).Error("Role must be admin or user"),
		),
		validation.Field(&d.Password, passwordRules...),
		validation.Field(&d.PasswordConfirmation,
			validation.By(d.checkConfirmation),
		),
		validation.Field(&d.Image,
			validation.By(checkImage),
		),
	)
}

func (d FormDTO) ValidateCreate() error { return d.validateCommon(true) }
func (d FormDTO) ValidateUpdate() error { return d.validateCommon(false) }

func (d FormDTO) checkConfirmation(value interface{}) error {
	if d.Password == "" {
		return nil
	}
	if d.Password != d.PasswordConfirmation {
		return validation.NewError("validation_password_confirmation", "Passwords do not match")
	}
	return nil
}

func checkImage(value interface{}) error {
	image, ok := value.(*ImageUpload)
	if !ok || image == nil {
		return nil
	}
	if err := corevalidation.CheckImage(image.Filename, image.Size); err != nil {
		return validation.NewError("validation_image", err.Error())
	}
	return nil
}

// HasAttachments selects multipart over JSON encoding for the submission.
func (d FormDTO) HasAttachments() bool {
	return d.Image != nil
}

// ToJSON builds the JSON payload for image-less submissions.
func (d FormDTO) ToJSON() map[string]string {
	payload := map[string]string{
		"first_name": d.FirstName,
		"last_name":  d.LastName,
		"email":      d.Email,
		"phone":      d.Phone,
		"address":    d.Address,
		"role":       d.Role,
	}
	if d.Password != "" {
		payload["password"] = d.Password
		payload["password_confirmation"] = d.PasswordConfirmation
	}
	return payload
}

// ToPayload builds the multipart payload when an image is attached.
func (d FormDTO) ToPayload(update bool) *backend.MultipartPayload {
	payload := backend.NewMultipartPayload()
	payload.SetField("first_name", d.FirstName)
	payload.SetField("last_name", d.LastName)
	payload.SetField("email", d.Email)
	payload.SetField("phone", d.Phone)
	payload.SetField("address", d.Address)
	payload.SetField("role", d.Role)
	if d.Password != "" {
		payload.SetField("password", d.Password)
		payload.SetField("password_confirmation", d.PasswordConfirmation)
	}
	if d.Image != nil {
		payload.AddFile("image", d.Image.Filename, d.Image.ContentType, d.Image.Content)
	}
	if update {
		payload.OverrideMethod(http.MethodPut)
	}
	return payload
}

// ResetPasswordDTO carries the admin reset-password dialog.
type ResetPasswordDTO struct {
	NewPassword  string `json:"new_password"`
	Confirmation string `json:"confirmation"`
}

func ResetPasswordFromForm(r *http.Request) ResetPasswordDTO {
	return ResetPasswordDTO{
		NewPassword:  r.PostFormValue("new_password"),
		Confirmation: r.PostFormValue("confirmation"),
	}
}

func (d ResetPasswordDTO) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.NewPassword,
			validation.Required.Error("New password is required"),
			validation.Length(8, 72).Error("Password must be at least 8 characters"),
		),
		validation.Field(&d.Confirmation,
			validation.Required.Error("Confirm the new password"),
			validation.By(d.checkConfirmation),
		),
	)
}

func (d ResetPasswordDTO) checkConfirmation(value interface{}) error {
	if d.Confirmation != "" && d.NewPassword != d.Confirmation {
		return validation.NewError("validation_password_confirmation", "Passwords do not match")
	}
	return nil
}

// ProfileDTO carries the signed-in operator's own profile form; role and
// password are not editable here.
type ProfileDTO struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Image     *ImageUpload
}

func ProfileFromForm(r *http.Request) (ProfileDTO, error) {
	full, err := FromForm(r)
	if err != nil {
		return ProfileDTO{}, err
	}
	return ProfileDTO{
		FirstName: full.FirstName,
		LastName:  full.LastName,
		Phone:     full.Phone,
		Address:   full.Address,
		Image:     full.Image,
	}, nil
}

func (d ProfileDTO) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.FirstName,
			validation.Required.Error("First name is required"),
		),
		validation.Field(&d.LastName,
			validation.Required.Error("Last name is required"),
		),
		validation.Field(&d.Image,
			validation.By(checkImage),
		),
	)
}

func (d ProfileDTO) HasAttachments() bool {
	return d.Image != nil
}

func (d ProfileDTO) ToJSON() map[string]string {
	return map[string]string{
		"first_name": d.FirstName,
		"last_name":  d.LastName,
		"phone":      d.Phone,
		"address":    d.Address,
	}
}

func (d ProfileDTO) ToPayload() *backend.MultipartPayload {
	payload := backend.NewMultipartPayload()
	payload.SetField("first_name", d.FirstName)
	payload.SetField("last_name", d.LastName)
	payload.SetField("phone", d.Phone)
	payload.SetField("address", d.Address)
	if d.Image != nil {
		payload.AddFile("image", d.Image.Filename, d.Image.ContentType, d.Image.Content)
	}
	payload.OverrideMethod(http.MethodPut)
	return payload
}
