package models

import (
	"time"

	"github.com/google/uuid"
)

const RoleAdmin = "admin"

type Organization struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	CreatedAt time.Time `db:"created_at"`
}

// Member links a user to an organization they may act in.
type Member struct {
	ID             uuid.UUID `db:"id"`
	UserID         uuid.UUID `db:"user_id"`
	OrganizationID uuid.UUID `db:"organization_id"`
	Role           string    `db:"role"`
	CreatedAt      time.Time `db:"created_at"`
}
