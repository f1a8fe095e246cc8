package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/smarthealthy/tracker-api/internal/models"
	appErrors "github.com/smarthealthy/tracker-api/pkg/errors"
)

// AuthConfig defines configuration for session issuing.
type AuthConfig struct {
	Secret          string
	StudentDuration time.Duration
	TeacherDuration time.Duration
	Issuer          string
	TeacherPassword string
}

// AuthService issues and validates session tokens. Students identify
// themselves by name/class/section/school code; re-login with the same
// identity resolves to the same student record. The teacher gate is a role
// gate guarding station administration and transfer endpoints.
type AuthService struct {
	session     documentSession
	validator   *validator.Validate
	logger      *zap.Logger
	leaderboard leaderboardInvalidator
	config      AuthConfig
	teacherHash []byte
}

// NewAuthService constructs an AuthService. A plain configured teacher
// password is hashed once here; an already-bcrypt value is used as is.
// leaderboard may be nil.
func NewAuthService(session documentSession, validate *validator.Validate, logger *zap.Logger, leaderboard leaderboardInvalidator, config AuthConfig) (*AuthService, error) {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var hash []byte
	if strings.HasPrefix(config.TeacherPassword, "$2a$") || strings.HasPrefix(config.TeacherPassword, "$2b$") {
		hash = []byte(config.TeacherPassword)
	} else {
		generated, err := bcrypt.GenerateFromPassword([]byte(config.TeacherPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash teacher password: %w", err)
		}
		hash = generated
	}

	return &AuthService{session: session, validator: validate, logger: logger, leaderboard: leaderboard, config: config, teacherHash: hash}, nil
}

// Login upserts the student record for the given identity and issues a
// student session token. Profile fields are refreshed on re-login.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	key := models.IdentityKeyFor(req.Name, req.Class, req.Section, req.SchoolCode)

	var student *models.Student
	registered := false
	err := s.session.Update(ctx, func(doc *models.Document) error {
		for _, u := range doc.Users {
			if u.IdentityKey == key {
				u.Name = strings.TrimSpace(req.Name)
				u.Class = strings.TrimSpace(req.Class)
				u.Section = strings.TrimSpace(req.Section)
				u.SchoolCode = strings.TrimSpace(req.SchoolCode)
				copied := *u
				student = &copied
				return nil
			}
		}

		created := &models.Student{
			ID:          uuid.NewString(),
			IdentityKey: key,
			Name:        strings.TrimSpace(req.Name),
			Class:       strings.TrimSpace(req.Class),
			Section:     strings.TrimSpace(req.Section),
			SchoolCode:  strings.TrimSpace(req.SchoolCode),
			Points:      0,
			PostCount:   0,
			Level:       1,
			Badges:      []models.BadgeID{},
			CreatedAt:   time.Now().UTC(),
		}
		doc.Users[created.ID] = created
		registered = true
		copied := *created
		student = &copied
		return nil
	})
	if err != nil && !IsPersistWarning(err) {
		return nil, err
	}

	// A fresh registrant belongs on the board right away.
	if registered && s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx)
	}

	token, err2 := s.issueToken(models.RoleStudent, student.ID, s.config.StudentDuration)
	if err2 != nil {
		return nil, appErrors.Wrap(err2, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue session token")
	}

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.StudentDuration.Seconds()),
		IssuedAt:    time.Now().UTC(),
		Student:     student,
	}, err
}

// TeacherUnlock checks the teacher password and issues a teacher session.
func (s *AuthService) TeacherUnlock(ctx context.Context, req models.TeacherUnlockRequest) (*models.TeacherUnlockResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid unlock payload")
	}

	if err := bcrypt.CompareHashAndPassword(s.teacherHash, []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "wrong teacher password")
	}

	token, err := s.issueToken(models.RoleTeacher, "", s.config.TeacherDuration)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue session token")
	}

	return &models.TeacherUnlockResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.TeacherDuration.Seconds()),
		IssuedAt:    time.Now().UTC(),
	}, nil
}

// ValidateToken parses and validates a session token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) issueToken(role models.Role, studentID string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := models.SessionClaims{
		StudentID: studentID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   studentID,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}
