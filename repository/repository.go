package repository

import (
	"context"
	"errors"

	"cravesmart-backend/models"

	"github.com/google/uuid"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrUsernameTaken   = errors.New("username already exists")
)

// AccountStore persists accounts together with their saved profiles
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	// FindByLogin matches either the username or the email
	FindByLogin(ctx context.Context, login string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	// Modify loads an account, applies fn and saves it as one atomic step.
	// An error from fn aborts the save and is returned unchanged.
	Modify(ctx context.Context, id uuid.UUID, fn func(*models.Account) error) error
}

var (
	_ AccountStore = (*AccountRepository)(nil)
	_ AccountStore = (*DocumentAccountRepository)(nil)
)

func cloneAccount(a *models.Account) *models.Account {
	out := *a
	if a.Email != nil {
		email := *a.Email
		out.Email = &email
	}
	out.Profiles = append(models.SavedProfiles{}, a.Profiles...)
	return &out
}
