package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cravesmart-backend/models"
	"cravesmart-backend/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingFields       = errors.New("please fill in all required fields")
	ErrMissingCredentials  = errors.New("please enter username/email and password")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrUsernameTaken       = errors.New("username already exists")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrAccountNotFound     = errors.New("account not found")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrProfileNameRequired = errors.New("profile name is required")
	ErrInvalidProfile      = errors.New("invalid profile")
)

// AccountService handles signup, login and saved profile management
type AccountService struct {
	accounts     repository.AccountStore
	passwordCost int
}

// AccountServiceOption is a functional option for AccountService
type AccountServiceOption func(*AccountService)

// AccountWithStore sets the account repository
func AccountWithStore(store repository.AccountStore) AccountServiceOption {
	return func(s *AccountService) {
		s.accounts = store
	}
}

// AccountWithPasswordCost sets the bcrypt cost
func AccountWithPasswordCost(cost int) AccountServiceOption {
	return func(s *AccountService) {
		s.passwordCost = cost
	}
}

// NewAccountService creates a new account service
func NewAccountService(opts ...AccountServiceOption) *AccountService {
	s := &AccountService{passwordCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignupRequest represents a request to create an account
type SignupRequest struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Signup creates an account with a bcrypt-hashed password
func (s *AccountService) Signup(ctx context.Context, req SignupRequest) (*models.Account, error) {
	if s.accounts == nil {
		return nil, errors.New("account repository not set")
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" || req.ConfirmPassword == "" {
		return nil, ErrMissingFields
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.passwordCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Profiles:     models.SavedProfiles{},
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		account.Email = &email
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

// Login verifies a username or email and password
func (s *AccountService) Login(ctx context.Context, login, password string) (*models.Account, error) {
	if s.accounts == nil {
		return nil, errors.New("account repository not set")
	}

	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	account, err := s.accounts.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// GetAccount retrieves an account by ID
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	if s.accounts == nil {
		return nil, errors.New("account repository not set")
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// ListProfiles returns the saved profiles of an account
func (s *AccountService) ListProfiles(ctx context.Context, accountID uuid.UUID) (models.SavedProfiles, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return account.Profiles, nil
}

// GetProfile returns one saved profile
func (s *AccountService) GetProfile(ctx context.Context, accountID, profileID uuid.UUID) (*models.SavedProfile, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	profile, ok := account.FindProfile(profileID)
	if !ok {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// CreateProfile saves a new named profile
func (s *AccountService) CreateProfile(ctx context.Context, accountID uuid.UUID, name string, profile models.Profile) (*models.SavedProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrProfileNameRequired
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	saved := models.SavedProfile{
		Profile:     profile,
		ID:          uuid.New(),
		ProfileName: name,
	}
	err := s.modify(ctx, accountID, func(account *models.Account) error {
		account.Profiles = append(account.Profiles, saved)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateProfile replaces a saved profile's fields, keeping its ID and name
func (s *AccountService) UpdateProfile(ctx context.Context, accountID, profileID uuid.UUID, profile models.Profile) (*models.SavedProfile, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	var updated models.SavedProfile
	err := s.modify(ctx, accountID, func(account *models.Account) error {
		existing, ok := account.FindProfile(profileID)
		if !ok {
			return ErrProfileNotFound
		}
		existing.Profile = profile
		updated = *existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProfile removes a saved profile
func (s *AccountService) DeleteProfile(ctx context.Context, accountID, profileID uuid.UUID) error {
	return s.modify(ctx, accountID, func(account *models.Account) error {
		kept := make(models.SavedProfiles, 0, len(account.Profiles))
		for _, p := range account.Profiles {
			if p.ID != profileID {
				kept = append(kept, p)
			}
		}
		if len(kept) == len(account.Profiles) {
			return ErrProfileNotFound
		}
		account.Profiles = kept
		return nil
	})
}

// modify runs fn as one atomic load-modify-save on the account
func (s *AccountService) modify(ctx context.Context, accountID uuid.UUID, fn func(*models.Account) error) error {
	if s.accounts == nil {
		return errors.New("account repository not set")
	}

	err := s.accounts.Modify(ctx, accountID, fn)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrAccountNotFound):
		return ErrAccountNotFound
	case errors.Is(err, ErrProfileNotFound):
		return err
	default:
		return fmt.Errorf("failed to save profile: %w", err)
	}
}
