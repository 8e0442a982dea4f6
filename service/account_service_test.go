package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"cravesmart-backend/models"
	"cravesmart-backend/repository"
	"cravesmart-backend/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAccountService(t *testing.T) (*AccountService, *repository.DocumentAccountRepository) {
	t.Helper()

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	repo := repository.NewDocumentAccountRepository(store)
	svc := NewAccountService(
		AccountWithStore(repo),
		AccountWithPasswordCost(bcrypt.MinCost),
	)
	return svc, repo
}

func signupTestUser(t *testing.T, svc *AccountService) *models.Account {
	t.Helper()

	account, err := svc.Signup(context.Background(), SignupRequest{
		Username:        "asha",
		Email:           "asha@example.com",
		Password:        "s3cret",
		ConfirmPassword: "s3cret",
	})
	require.NoError(t, err)
	return account
}

func TestSignup_HashesPassword(t *testing.T) {
	svc, repo := newTestAccountService(t)
	account := signupTestUser(t, svc)

	stored, err := repo.GetByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")))
	assert.NotNil(t, stored.Profiles)
	require.NotNil(t, stored.Email)
	assert.Equal(t, "asha@example.com", *stored.Email)
}

func TestSignup_Validation(t *testing.T) {
	svc, _ := newTestAccountService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupRequest{Username: "  ", Password: "a", ConfirmPassword: "a"})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Signup(ctx, SignupRequest{Username: "ravi", Password: "a", ConfirmPassword: "b"})
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	signupTestUser(t, svc)
	_, err = svc.Signup(ctx, SignupRequest{Username: "asha", Password: "x", ConfirmPassword: "x"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestSignup_EmailIsOptional(t *testing.T) {
	svc, _ := newTestAccountService(t)

	account, err := svc.Signup(context.Background(), SignupRequest{Username: "ravi", Password: "p", ConfirmPassword: "p"})
	require.NoError(t, err)
	assert.Nil(t, account.Email)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAccountService(t)
	created := signupTestUser(t, svc)
	ctx := context.Background()

	byName, err := svc.Login(ctx, "asha", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byEmail, err := svc.Login(ctx, " asha@example.com ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = svc.Login(ctx, "asha", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "", "s3cret")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestProfileLifecycle(t *testing.T) {
	svc, _ := newTestAccountService(t)
	account := signupTestUser(t, svc)
	ctx := context.Background()

	_, err := svc.CreateProfile(ctx, account.ID, "   ", models.DefaultProfile())
	assert.ErrorIs(t, err, ErrProfileNameRequired)

	bad := models.DefaultProfile()
	bad.DietType = "Keto"
	_, err = svc.CreateProfile(ctx, account.ID, "Keto", bad)
	assert.ErrorIs(t, err, ErrInvalidProfile)

	saved, err := svc.CreateProfile(ctx, account.ID, " Cutting ", models.DefaultProfile())
	require.NoError(t, err)
	assert.Equal(t, "Cutting", saved.ProfileName)

	list, err := svc.ListProfiles(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	changed := models.DefaultProfile()
	changed.Weight = 82
	updated, err := svc.UpdateProfile(ctx, account.ID, saved.ID, changed)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, "Cutting", updated.ProfileName)
	assert.Equal(t, 82.0, updated.Weight)

	fetched, err := svc.GetProfile(ctx, account.ID, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 82.0, fetched.Weight)

	require.NoError(t, svc.DeleteProfile(ctx, account.ID, saved.ID))
	_, err = svc.GetProfile(ctx, account.ID, saved.ID)
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.ErrorIs(t, svc.DeleteProfile(ctx, account.ID, saved.ID), ErrProfileNotFound)
}

func TestProfilesUnknownAccount(t *testing.T) {
	svc, _ := newTestAccountService(t)

	_, err := svc.ListProfiles(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = svc.UpdateProfile(context.Background(), uuid.New(), uuid.New(), models.DefaultProfile())
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestProfileEditsAreNotLostUnderConcurrency(t *testing.T) {
	svc, _ := newTestAccountService(t)
	account := signupTestUser(t, svc)
	ctx := context.Background()

	const writers = 50
	start := make(chan struct{})
	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start
			_, err := svc.CreateProfile(ctx, account.ID, fmt.Sprintf("p%d", n), models.DefaultProfile())
			errs <- err
		}(i)
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	profiles, err := svc.ListProfiles(ctx, account.ID)
	require.NoError(t, err)
	assert.Len(t, profiles, writers)

	// concurrent deletes of every profile leave none behind
	var dwg sync.WaitGroup
	for _, p := range profiles {
		dwg.Add(1)
		go func(id uuid.UUID) {
			defer dwg.Done()
			assert.NoError(t, svc.DeleteProfile(ctx, account.ID, id))
		}(p.ID)
	}
	dwg.Wait()

	profiles, err = svc.ListProfiles(ctx, account.ID)
	require.NoError(t, err)
	assert.Empty(t, profiles)
}
