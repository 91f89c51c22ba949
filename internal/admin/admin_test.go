package admin

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/woominecraft/wmcbridge/internal/types/admin"
	"golang.org/x/crypto/bcrypt"
)

type mockRepo struct {
	createFn func(ctx context.Context, a *admin.Admin) error
	findFn   func(ctx context.Context, login string) (*admin.Admin, error)
}

func (m *mockRepo) CreateAdmin(ctx context.Context, a *admin.Admin) error {
	return m.createFn(ctx, a)
}
func (m *mockRepo) FindAdminByLogin(ctx context.Context, login string) (*admin.Admin, error) {
	return m.findFn(ctx, login)
}

func TestRegisterShortPassword(t *testing.T) {
	svc := NewService(&mockRepo{}, []byte("secret"), time.Hour)
	_, err := svc.Register(context.Background(), "ops", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterDuplicateLogin(t *testing.T) {
	repo := &mockRepo{
		findFn: func(ctx context.Context, login string) (*admin.Admin, error) {
			return &admin.Admin{ID: 1, Login: login}, nil
		},
	}
	svc := NewService(repo, []byte("secret"), time.Hour)
	_, err := svc.Register(context.Background(), "ops", "longenough")
	assert.ErrorIs(t, err, ErrAdminExists)
}

func TestRegisterHashesPassword(t *testing.T) {
	var created *admin.Admin
	repo := &mockRepo{
		findFn: func(ctx context.Context, login string) (*admin.Admin, error) {
			return nil, sql.ErrNoRows
		},
		createFn: func(ctx context.Context, a *admin.Admin) error {
			created = a
			return nil
		},
	}
	svc := NewService(repo, []byte("secret"), time.Hour)
	_, err := svc.Register(context.Background(), "ops", "longenough")
	assert.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("longenough")))
}

func TestAuthenticateWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("rightpass"), bcrypt.DefaultCost)
	repo := &mockRepo{
		findFn: func(ctx context.Context, login string) (*admin.Admin, error) {
			return &admin.Admin{Login: login, PasswordHash: string(hash)}, nil
		},
	}
	svc := NewService(repo, []byte("secret"), time.Hour)
	_, err := svc.Authenticate(context.Background(), "ops", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCreds)
}

func TestAuthenticateIssuesToken(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("rightpass"), bcrypt.DefaultCost)
	repo := &mockRepo{
		findFn: func(ctx context.Context, login string) (*admin.Admin, error) {
			return &admin.Admin{Login: login, PasswordHash: string(hash)}, nil
		},
	}
	svc := NewService(repo, []byte("secret"), time.Hour)
	token, err := svc.Authenticate(context.Background(), "ops", "rightpass")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
}
