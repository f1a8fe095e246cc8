package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smarthealthy/tracker-api/internal/models"
)

func newTestAuth(t *testing.T) (*AuthService, *Session) {
	t.Helper()
	session, _ := newTestSession(t)
	svc, err := NewAuthService(session, validator.New(), zap.NewNop(), nil, AuthConfig{
		Secret:          "test-secret",
		StudentDuration: time.Hour,
		TeacherDuration: 30 * time.Minute,
		Issuer:          "tracker-api",
		TeacherPassword: "1234",
	})
	require.NoError(t, err)
	return svc, session
}

func TestLoginCreatesStudent(t *testing.T) {
	svc, _ := newTestAuth(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Name:  "Omar",
		Class: "6B",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.Student.ID)
	assert.Equal(t, 1, resp.Student.Level)
	assert.Empty(t, resp.Student.Badges)
}

func TestLoginSameIdentityResolvesSameStudent(t *testing.T) {
	svc, _ := newTestAuth(t)

	first, err := svc.Login(context.Background(), models.LoginRequest{Name: "Omar", Class: "6B"})
	require.NoError(t, err)

	// Identity matching is case-insensitive and whitespace-trimmed.
	second, err := svc.Login(context.Background(), models.LoginRequest{Name: "  omar ", Class: "6b"})
	require.NoError(t, err)
	assert.Equal(t, first.Student.ID, second.Student.ID)
}

func TestLoginDifferentSectionIsDifferentStudent(t *testing.T) {
	svc, _ := newTestAuth(t)

	first, err := svc.Login(context.Background(), models.LoginRequest{Name: "Omar", Class: "6B", Section: "1"})
	require.NoError(t, err)
	second, err := svc.Login(context.Background(), models.LoginRequest{Name: "Omar", Class: "6B", Section: "2"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Student.ID, second.Student.ID)
}

func TestLoginRefreshesProfileFields(t *testing.T) {
	svc, session := newTestAuth(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Name:       "Sara",
		Class:      "5A",
		Section:    "1",
		SchoolCode: "SCH-1",
	})
	require.NoError(t, err)
	// Seeded student with matching identity: points survive the re-login.
	assert.Equal(t, "s1", resp.Student.ID)

	err = session.View(context.Background(), func(doc *models.Document) error {
		assert.Len(t, doc.Users, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestLoginRegistrationInvalidatesLeaderboard(t *testing.T) {
	session, _ := newTestSession(t)
	invalidator := &mockInvalidator{}
	svc, err := NewAuthService(session, validator.New(), zap.NewNop(), invalidator, AuthConfig{
		Secret:          "test-secret",
		StudentDuration: time.Hour,
		TeacherDuration: time.Hour,
		TeacherPassword: "1234",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{Name: "Omar", Class: "6B"})
	require.NoError(t, err)
	assert.Equal(t, 1, invalidator.calls)

	// Re-login with the same identity is not a registration.
	_, err = svc.Login(context.Background(), models.LoginRequest{Name: "Omar", Class: "6B"})
	require.NoError(t, err)
	assert.Equal(t, 1, invalidator.calls)
}

func TestLoginRequiresNameAndClass(t *testing.T) {
	svc, _ := newTestAuth(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Name: "Omar"})
	require.Error(t, err)
}

func TestStudentTokenRoundTrip(t *testing.T) {
	svc, _ := newTestAuth(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Name: "Omar", Class: "6B"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, resp.Student.ID, claims.StudentID)
}

func TestTeacherUnlock(t *testing.T) {
	svc, _ := newTestAuth(t)

	resp, err := svc.TeacherUnlock(context.Background(), models.TeacherUnlockRequest{Password: "1234"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, claims.Role)
	assert.Empty(t, claims.StudentID)
}

func TestTeacherUnlockWrongPassword(t *testing.T) {
	svc, _ := newTestAuth(t)

	_, err := svc.TeacherUnlock(context.Background(), models.TeacherUnlockRequest{Password: "wrong"})
	require.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newTestAuth(t)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc, _ := newTestAuth(t)

	session, _ := newTestSession(t)
	other, err := NewAuthService(session, validator.New(), zap.NewNop(), nil, AuthConfig{
		Secret:          "other-secret",
		StudentDuration: time.Hour,
		TeacherDuration: time.Hour,
		TeacherPassword: "1234",
	})
	require.NoError(t, err)

	resp, err := other.Login(context.Background(), models.LoginRequest{Name: "Omar", Class: "6B"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken)
	require.Error(t, err)
}
