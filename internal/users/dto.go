package users

import (
	"time"

	"github.com/waytrackhq/waytrack-backend/pkg/db/models"
)

// UserDTO is the transport shape for directory entries.
type UserDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UpsertUserDTO holds the data synced from the identity token on first sight.
type UpsertUserDTO struct {
	ID    string
	Name  string
	Email string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func (c UpsertUserDTO) ToModel() *models.User {
	return &models.User{
		ID:    c.ID,
		Name:  c.Name,
		Email: c.Email,
	}
}
