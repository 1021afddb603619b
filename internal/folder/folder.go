package folder

import (
	"time"

	"github.com/docuflow/records-console/internal/department"
	"github.com/docuflow/records-console/internal/session"
)

// Status is the folder approval state. Approved and rejected are terminal;
// the console never offers a transition out of them.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Folder is a named container of uploaded files, optionally nested one level
// under a parent, scoped to one or more departments.
type Folder struct {
	ID            int64                   `json:"id"`
	FolderName    string                  `json:"folder_name"`
	LocalPath     string                  `json:"local_path"`
	StartDate     string                  `json:"start_date"`
	EndDate       string                  `json:"end_date"`
	ParentID      *int64                  `json:"parent_id"`
	DepartmentIDs []int64                 `json:"department_id"`
	Departments   []department.Department `json:"departments"`
	Status        Status                  `json:"status"`
	AddedBy       *AddedBy                `json:"added_by"`
	UploadedFiles []UploadedFile          `json:"uploaded_files"`
	Subfolders    []Folder                `json:"subfolders"`
	DownloadURL   string                  `json:"downloadUrl"`
	CreatedAt     time.Time               `json:"created_at"`
}

type AddedBy struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UploadedFile is a file record owned by a folder or subfolder.
type UploadedFile struct {
	ID             int64     `json:"id"`
	Filename       string    `json:"filename"`
	Path           string    `json:"path"`
	MimeType       string    `json:"mime_type"`
	Size           string    `json:"size"`
	UploadableType string    `json:"uploadable_type"`
	UploadableID   int64     `json:"uploadable_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func (f *Folder) IsPending() bool {
	return f.Status == StatusPending
}

func (f *Folder) IsSubfolder() bool {
	return f.ParentID != nil
}

func (f *Folder) CanBeApproved() bool {
	return f.IsPending()
}

func (f *Folder) CanBeRejected() bool {
	return f.IsPending()
}

// CanModerate gates the approve/reject affordances: the folder must still be
// pending and the operator's position must be flagged section head. Legal
// transitions themselves are enforced by the backend.
func CanModerate(profile *session.Profile, f *Folder) bool {
	if profile == nil || f == nil {
		return false
	}
	return f.IsPending() && profile.IsSectionHead()
}
