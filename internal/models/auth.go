package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role distinguishes the two session kinds.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
)

// SessionClaims is the JWT payload for both student and teacher sessions.
type SessionClaims struct {
	StudentID string `json:"student_id,omitempty"`
	Role      Role   `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest identifies a student. Name and class are required; section and
// school code refine the identity key.
type LoginRequest struct {
	Name       string `json:"name" validate:"required"`
	Class      string `json:"class" validate:"required"`
	Section    string `json:"section"`
	SchoolCode string `json:"school_code"`
}

// LoginResponse returns the issued token and the (possibly new) student.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	Student     *Student  `json:"student"`
}

// TeacherUnlockRequest carries the teacher-panel password.
type TeacherUnlockRequest struct {
	Password string `json:"password" validate:"required"`
}

// TeacherUnlockResponse returns the teacher session token.
type TeacherUnlockResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
}
