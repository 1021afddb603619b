package folder

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/docuflow/records-console/internal/backend"
	corevalidation "github.com/docuflow/records-console/internal/core/validation"
)

const dateLayout = "2006-01-02"

// maxFormMemory bounds in-memory multipart parsing; larger parts spill to
// temp files.
const maxFormMemory = 32 << 20

// Attachment is an upload taken from the form, validated before anything is
// sent to the backend.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Content     []byte
}

// FormDTO carries the folder create/edit form.
type FormDTO struct {
	FolderName     string  `json:"folder_name"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	ParentID       *int64  `json:"parent_id"`
	DepartmentIDs  []int64 `json:"department_id"`
	Attachments    []Attachment
	RemovedFileIDs []int64
}

// ParseForm reads the multipart folder form: scalar fields, the repeated
// department select, the file inputs, and (in edit mode) the ids of existing
// files the operator removed.
func ParseForm(r *http.Request) (FormDTO, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return FormDTO{}, err
	}

	dto := FormDTO{
		FolderName: r.PostFormValue("folder_name"),
		StartDate:  r.PostFormValue("start_date"),
		EndDate:    r.PostFormValue("end_date"),
	}

	if raw := r.PostFormValue("parent_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			dto.ParentID = &id
		}
	}

	for _, raw := range r.PostForm["department_id"] {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			dto.DepartmentIDs = append(dto.DepartmentIDs, id)
		}
	}

	for _, raw := range r.PostForm["current_files"] {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			dto.RemovedFileIDs = append(dto.RemovedFileIDs, id)
		}
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["uploaded_files"] {
			if header.Filename == "" {
				continue
			}
			file, err := header.Open()
			if err != nil {
				return dto, err
			}
			content, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				return dto, err
			}
			dto.Attachments = append(dto.Attachments, Attachment{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Content:     content,
			})
		}
	}

	return dto, nil
}

func (d FormDTO) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.FolderName,
			validation.Required.Error("Folder name is required"),
			validation.Length(1, 255),
		),
		validation.Field(&d.StartDate,
			validation.Date(dateLayout).Error("Enter a valid start date"),
		),
		validation.Field(&d.EndDate,
			validation.Date(dateLayout).Error("Enter a valid end date"),
			validation.By(d.checkDateRange),
		),
		validation.Field(&d.Attachments,
			validation.By(checkAttachments),
		),
	)
}

func (d FormDTO) checkDateRange(value interface{}) error {
	if d.StartDate == "" || d.EndDate == "" {
		return nil
	}
	start, err := time.Parse(dateLayout, d.StartDate)
	if err != nil {
		return nil
	}
	end, err := time.Parse(dateLayout, d.EndDate)
	if err != nil {
		return nil
	}
	if end.Before(start) {
		return validation.NewError("validation_date_range", "End date cannot be before start date")
	}
	return nil
}

func checkAttachments(value interface{}) error {
	attachments, ok := value.([]Attachment)
	if !ok {
		return nil
	}
	for _, a := range attachments {
		if err := corevalidation.CheckAttachment(a.Filename, a.Size); err != nil {
			return validation.NewError("validation_attachment", err.Error())
		}
	}
	return nil
}

// HasAttachments is the capability check that selects multipart encoding.
// The folder endpoint always takes multipart, so this is informational here,
// but the payload builder keys file parts off it.
func (d FormDTO) HasAttachments() bool {
	return len(d.Attachments) > 0
}

// ToPayload assembles the multipart body the folder endpoint expects:
// scalar fields, department_id[] per department, indexed file parts, the
// removed-file ids as a JSON field, and _method=PUT when updating.
func (d FormDTO) ToPayload(update bool) *backend.MultipartPayload {
	payload := backend.NewMultipartPayload()
	payload.SetField("folder_name", d.FolderName)

	if d.ParentID != nil {
		payload.SetField("parent_id", strconv.FormatInt(*d.ParentID, 10))
	}
	for _, id := range d.DepartmentIDs {
		payload.AddArrayField("department_id", strconv.FormatInt(id, 10))
	}
	if d.StartDate != "" {
		payload.SetField("start_date", d.StartDate)
	}
	if d.EndDate != "" {
		payload.SetField("end_date", d.EndDate)
	}

	for i, a := range d.Attachments {
		payload.AddFile("uploaded_files["+strconv.Itoa(i)+"]", a.Filename, a.ContentType, a.Content)
	}

	if update {
		if len(d.RemovedFileIDs) > 0 {
			removed, _ := json.Marshal(d.RemovedFileIDs)
			payload.SetField("current_files", string(removed))
		}
		payload.OverrideMethod(http.MethodPut)
	}

	return payload
}

// ReportDTO carries the generate-report dialog: the selected folder ids, the
// effective date, and an optional reviewer.
type ReportDTO struct {
	EffectiveDate string  `json:"effective_date"`
	FolderIDs     []int64 `json:"folders"`
	CheckedBy     *int64  `json:"checked_by,omitempty"`
}

func ParseReportForm(r *http.Request) (ReportDTO, error) {
	if err := r.ParseForm(); err != nil {
		return ReportDTO{}, err
	}

	dto := ReportDTO{EffectiveDate: r.PostFormValue("effective_date")}
	for _, raw := range r.PostForm["folders"] {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			dto.FolderIDs = append(dto.FolderIDs, id)
		}
	}
	if raw := r.PostFormValue("checked_by"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			dto.CheckedBy = &id
		}
	}
	return dto, nil
}

func (d ReportDTO) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.EffectiveDate,
			validation.Required.Error("Effective date is required"),
			validation.Date(dateLayout).Error("Enter a valid effective date"),
		),
		validation.Field(&d.FolderIDs,
			validation.Required.Error("Select at least one folder"),
		),
	)
}
