package admin

import (
	"time"

	"github.com/gofrs/uuid"
)

// AdminUser marks an authentication identity as allowed into the back
// office. Row existence is the entire authorization check.
type AdminUser struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
