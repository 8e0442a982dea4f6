package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"cravesmart-backend/models"
	"cravesmart-backend/storage"

	"github.com/google/uuid"
)

const (
	// AccountsKey is the storage key of the accounts document
	AccountsKey = "craveSmart_db"
	// ThemeKey is the storage key of the theme preference
	ThemeKey = "craveSmartTheme"
)

// AccountDocument is the persisted shape of the accounts key
type AccountDocument struct {
	Accounts []accountRecord `json:"accounts"`
}

type accountRecord struct {
	ID           uuid.UUID            `json:"id"`
	Username     string               `json:"username"`
	Email        *string              `json:"email,omitempty"`
	PasswordHash string               `json:"passwordHash"`
	Profiles     models.SavedProfiles `json:"profiles"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

func (r accountRecord) toModel() *models.Account {
	return cloneAccount(&models.Account{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Profiles:     r.Profiles,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	})
}

func recordFromModel(a *models.Account) accountRecord {
	c := cloneAccount(a)
	return accountRecord{
		ID:           c.ID,
		Username:     c.Username,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Profiles:     c.Profiles,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// DocumentAccountRepository keeps every account in one JSON document
type DocumentAccountRepository struct {
	store storage.Storage
	mu    sync.Mutex
}

// NewDocumentAccountRepository creates a new document-backed account repository
func NewDocumentAccountRepository(store storage.Storage) *DocumentAccountRepository {
	return &DocumentAccountRepository{store: store}
}

// Load reads the accounts document; a missing document is empty
func (r *DocumentAccountRepository) Load(ctx context.Context) (*AccountDocument, error) {
	reader, err := r.store.Download(ctx, AccountsKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &AccountDocument{Accounts: []accountRecord{}}, nil
		}
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}

	doc := &AccountDocument{}
	if len(bytes.TrimSpace(data)) == 0 {
		doc.Accounts = []accountRecord{}
		return doc, nil
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}
	if doc.Accounts == nil {
		doc.Accounts = []accountRecord{}
	}
	return doc, nil
}

// Save replaces the accounts document
func (r *DocumentAccountRepository) Save(ctx context.Context, doc *AccountDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode accounts: %w", err)
	}
	return r.store.Put(ctx, AccountsKey, bytes.NewReader(data))
}

// Create adds a new account, enforcing username uniqueness
func (r *DocumentAccountRepository) Create(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.Load(ctx)
	if err != nil {
		return err
	}

	for _, existing := range doc.Accounts {
		if existing.Username == account.Username {
			return ErrUsernameTaken
		}
	}

	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	doc.Accounts = append(doc.Accounts, recordFromModel(account))

	return r.Save(ctx, doc)
}

// GetByID retrieves an account by ID
func (r *DocumentAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}

	for _, rec := range doc.Accounts {
		if rec.ID == id {
			return rec.toModel(), nil
		}
	}
	return nil, ErrAccountNotFound
}

// FindByLogin retrieves an account by username or email
func (r *DocumentAccountRepository) FindByLogin(ctx context.Context, login string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}

	for _, rec := range doc.Accounts {
		if rec.Username == login || (rec.Email != nil && *rec.Email == login) {
			return rec.toModel(), nil
		}
	}
	return nil, ErrAccountNotFound
}

// Update replaces a stored account
func (r *DocumentAccountRepository) Update(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.Load(ctx)
	if err != nil {
		return err
	}

	for i, rec := range doc.Accounts {
		if rec.ID != account.ID {
			continue
		}
		account.CreatedAt = rec.CreatedAt
		account.UpdatedAt = time.Now().UTC()
		doc.Accounts[i] = recordFromModel(account)
		return r.Save(ctx, doc)
	}
	return ErrAccountNotFound
}

// Modify applies fn to an account while holding the document lock
func (r *DocumentAccountRepository) Modify(ctx context.Context, id uuid.UUID, fn func(*models.Account) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.Load(ctx)
	if err != nil {
		return err
	}

	for i, rec := range doc.Accounts {
		if rec.ID != id {
			continue
		}
		account := rec.toModel()
		if err := fn(account); err != nil {
			return err
		}
		account.ID = rec.ID
		account.CreatedAt = rec.CreatedAt
		account.UpdatedAt = time.Now().UTC()
		doc.Accounts[i] = recordFromModel(account)
		return r.Save(ctx, doc)
	}
	return ErrAccountNotFound
}
