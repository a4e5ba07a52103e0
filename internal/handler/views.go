package handler

import (
	"time"

	"github.com/google/uuid"

	"loanflow/internal/models"
)

// UserView hides the password hash from every response.
type UserView struct {
	ID         uuid.UUID `json:"id"`
	CustomerID string    `json:"customer_id,omitempty"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func userView(u *models.User) UserView {
	return UserView{
		ID:         u.ID,
		CustomerID: u.CustomerID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		CreatedAt:  u.CreatedAt,
	}
}
