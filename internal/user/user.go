package user

import (
	"time"

	"github.com/docuflow/records-console/internal/department"
	"github.com/docuflow/records-console/internal/designation"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	StatusInactive = 0
	StatusActive   = 1
)

type User struct {
	ID            string                   `json:"id"`
	FirstName     string                   `json:"first_name"`
	LastName      string                   `json:"last_name"`
	Name          string                   `json:"name"`
	Email         string                   `json:"email"`
	Phone         string                   `json:"phone"`
	Address       string                   `json:"address"`
	Image         string                   `json:"image"`
	Role          string                   `json:"role"`
	Status        int                      `json:"status"`
	DepartmentID  *int64                   `json:"department_id"`
	DesignationID *int64                   `json:"designation_id"`
	Department    *department.Department   `json:"department"`
	Designation   *designation.Designation `json:"designation"`
	Position      *Position                `json:"position"`
	CreatedAt     time.Time                `json:"created_at"`
}

// Position is the user's assignment to a department and designation; the
// section-head flag grants folder approval authority.
type Position struct {
	ID            int64  `json:"id"`
	UserID        string `json:"user_id"`
	DepartmentID  int64  `json:"department_id"`
	DesignationID int64  `json:"designation_id"`
	SectionHead   bool   `json:"section_head"`
}

func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.FirstName + " " + u.LastName
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// NextStatus is the value the status toggle submits.
func (u *User) NextStatus() int {
	if u.IsActive() {
		return StatusInactive
	}
	return StatusActive
}
