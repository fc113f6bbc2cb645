package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/inventario-cacc/internal/application/dto"
	"github.com/jhoicas/inventario-cacc/internal/domain"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
	"github.com/jhoicas/inventario-cacc/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-cacc/pkg/jwt"
)

func newTestUseCase() *AuthUseCase {
	uc := NewAuthUseCase(memory.NewUserRepository(memory.NewStore()), JWTConfig{Secret: "s3cret", ExpMinutes: 5, Issuer: "test"})
	uc.cost = bcrypt.MinCost
	return uc
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase()

	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Username: "ana", Email: "ana@x.co", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleCliente, u.Role)

	resp, err := uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, resp.User.ID)

	claims, err := jwt.Parse("s3cret", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, entity.RoleCliente, claims.Role)
}

func TestRegister_Duplicate(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase()

	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Username: "ana", Password: "password1"})
	require.NoError(t, err)
	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Username: "ana", Password: "password2"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestLogin_Failures(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Username: "ana", Password: "password1"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "mala"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase()

	require.NoError(t, uc.EnsureAdmin(ctx, "root", "rootpass"))
	require.NoError(t, uc.EnsureAdmin(ctx, "root", "otra"))
	require.NoError(t, uc.EnsureAdmin(ctx, "", ""))

	resp, err := uc.Login(ctx, dto.LoginRequest{Username: "root", Password: "rootpass"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, resp.User.Role)
}
