package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/wmou-edu/portal-api/internal/models"
	appErrors "github.com/wmou-edu/portal-api/pkg/errors"
)

type fakeAuthUsers struct {
	byRegNo   map[string]*models.User
	byID      map[string]*models.User
	passwords map[string]string
}

func (f *fakeAuthUsers) FindByRegNo(_ context.Context, regNo string) (*models.User, error) {
	user, ok := f.byRegNo[regNo]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeAuthUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeAuthUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	f.passwords[id] = passwordHash
	return nil
}

func newAuthFixture(t *testing.T, status string) (*AuthService, *fakeAuthUsers) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		ID:           "stu-1",
		RegNo:        "WMOU/2023/001",
		Email:        "ada@example.edu",
		PasswordHash: string(hash),
		FullName:     "Ada Obi",
		Department:   "Computer Science",
		Role:         models.RoleStudent,
		Status:       &status,
	}
	repo := &fakeAuthUsers{
		byRegNo:   map[string]*models.User{user.RegNo: user},
		byID:      map[string]*models.User{user.ID: user},
		passwords: map[string]string{},
	}
	svc := NewAuthService(repo, nil, zap.NewNop(), AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "portal-api-test",
	})
	return svc, repo
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc, _ := newAuthFixture(t, "active")

	resp, err := svc.Login(context.Background(), models.LoginRequest{RegNo: "WMOU/2023/001", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "WMOU/2023/001", resp.User.RegNo)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "stu-1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t, "active")

	_, err := svc.Login(context.Background(), models.LoginRequest{RegNo: "WMOU/2023/001", Password: "wrong"})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginUnknownRegNo(t *testing.T) {
	svc, _ := newAuthFixture(t, "active")

	_, err := svc.Login(context.Background(), models.LoginRequest{RegNo: "WMOU/2023/999", Password: "secret123"})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginSuspendedStudentRefused(t *testing.T) {
	svc, _ := newAuthFixture(t, " Suspended ")

	_, err := svc.Login(context.Background(), models.LoginRequest{RegNo: "WMOU/2023/001", Password: "secret123"})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrAccountSuspended.Code, appErr.Code)
}

func TestChangePassword(t *testing.T) {
	svc, repo := newAuthFixture(t, "active")

	err := svc.ChangePassword(context.Background(), "stu-1", models.ChangePasswordRequest{
		OldPassword: "secret123",
		NewPassword: "brandnew1",
	})
	require.NoError(t, err)

	newHash, ok := repo.passwords["stu-1"]
	require.True(t, ok)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte("brandnew1")))
}

func TestChangePasswordWrongOld(t *testing.T) {
	svc, _ := newAuthFixture(t, "active")

	err := svc.ChangePassword(context.Background(), "stu-1", models.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "brandnew1",
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t, "active")

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
}
