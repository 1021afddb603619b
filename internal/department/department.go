package department

import "time"

// Department is a lookup entity mirrored from the backend; the console never
// owns it, it only renders and submits changes.
type Department struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
