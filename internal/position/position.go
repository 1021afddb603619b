// Package position manages a user's assignment to a department and
// designation. Positions have no listing of their own; they are edited from
// the users table, so mutations invalidate the users list.
package position

import (
	"github.com/docuflow/records-console/internal/department"
	"github.com/docuflow/records-console/internal/designation"
	"github.com/docuflow/records-console/internal/user"
)

type Position struct {
	ID            int64                    `json:"id"`
	UserID        string                   `json:"user_id"`
	DepartmentID  int64                    `json:"department_id"`
	DesignationID int64                    `json:"designation_id"`
	SectionHead   bool                     `json:"section_head"`
	User          *user.User               `json:"user"`
	Department    *department.Department   `json:"department"`
	Designation   *designation.Designation `json:"designation"`
}
