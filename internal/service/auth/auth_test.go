package authservice

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askar/teamboard/internal/models"
	"github.com/askar/teamboard/internal/store"
)

type fakeUserStore struct {
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*models.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, u *models.User) error {
	for _, existing := range f.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return store.ErrUserExists
		}
	}
	f.nextID++
	u.UserID = f.nextID
	cp := *u
	f.users[u.UserID] = &cp
	return nil
}

func (f *fakeUserStore) UserByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) UserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

const testSecret = "test-secret"

func TestSignupAndLogin(t *testing.T) {
	users := newFakeUserStore()
	svc := New(users, testSecret)
	ctx := context.Background()

	u := &models.User{Username: "alice", Email: "alice@example.com", Password: "hunter22"}
	require.NoError(t, svc.Signup(ctx, u))
	assert.NotZero(t, u.UserID)
	// The plaintext never leaves the service.
	assert.Empty(t, u.Password)

	stored := users.users[u.UserID]
	assert.NotEqual(t, "hunter22", stored.Password)

	token, loggedIn, err := svc.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, u.UserID, loggedIn.UserID)
	assert.Empty(t, loggedIn.Password)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(u.UserID), claims["user_id"])
	assert.Equal(t, "alice", claims["username"])
}

func TestSignupDuplicate(t *testing.T) {
	users := newFakeUserStore()
	svc := New(users, testSecret)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, &models.User{Username: "alice", Email: "a@example.com", Password: "pw"}))
	err := svc.Signup(ctx, &models.User{Username: "alice", Email: "other@example.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLoginWrongPassword(t *testing.T) {
	users := newFakeUserStore()
	svc := New(users, testSecret)
	ctx := context.Background()

	require.NoError(t, svc.Signup(ctx, &models.User{Username: "alice", Email: "a@example.com", Password: "right"}))

	_, _, err := svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := New(newFakeUserStore(), testSecret)

	_, _, err := svc.Login(context.Background(), "nobody", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
