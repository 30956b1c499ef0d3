package identity

import (
	"fmt"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// ParseRole validates a role string at the boundary.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient, RoleDoctor, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// DOBLayout is the wire format for dates of birth.
const DOBLayout = "2006-01-02"

// User represents a portal account holder.
type User struct {
	ID           string
	Name         string
	Email        string
	Gender       string
	DOB          time.Time
	PasswordHash []byte
	Role         Role
	CreatedAt    time.Time
}

// Summary is the user shape exposed over HTTP. Secret material never
// appears here.
type Summary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Gender string `json:"gender"`
	DOB    string `json:"dob"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Summary projects the user into its public shape.
func (u User) Summary() Summary {
	return Summary{
		ID:     u.ID,
		Name:   u.Name,
		Gender: u.Gender,
		DOB:    u.DOB.Format(DOBLayout),
		Email:  u.Email,
		Role:   string(u.Role),
	}
}
