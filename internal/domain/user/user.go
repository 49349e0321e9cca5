package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/valehub/internal/domain"
	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Public strips the credential hash.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// Option is the shape used by employee pickers.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var (
	ErrNotFound     = fmt.Errorf("user %w", domain.ErrNotFound)
	ErrEmailTaken   = &domain.ValidationError{Field: "email", Message: "email is already in use"}
	ErrIDTaken      = &domain.ValidationError{Field: "id", Message: "id is already in use"}
	ErrLastAdmin    = &domain.ValidationError{Field: "role", Message: "cannot remove the last administrator"}
	ErrPrimaryAdmin = &domain.ValidationError{Field: "id", Message: "the primary administrator cannot be deleted or demoted"}
)

// Guard is evaluated by a store inside its critical section, against the
// current target row and the current number of admins.
type Guard func(target User, adminCount int) error

const MinPasswordLength = 6

type CreateRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     Role   `json:"role" binding:"required,oneof=admin employee"`
}

// Email is not part of the update payload: it is immutable after creation.
type UpdateRequest struct {
	Name string `json:"name" binding:"required,max=120"`
	Role Role   `json:"role" binding:"required,oneof=admin employee"`
}

// Patch is the set of mutable fields applied by a store.
type Patch struct {
	Name string
	Role Role
}

func (r CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return domain.Invalid("name", "is required")
	}
	if strings.TrimSpace(r.Email) == "" || !strings.Contains(r.Email, "@") {
		return domain.Invalid("email", "must be a valid email address")
	}
	if len(r.Password) < MinPasswordLength {
		return domain.Invalid("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if !r.Role.Valid() {
		return domain.Invalid("role", "must be one of admin, employee")
	}
	return nil
}

func (r UpdateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return domain.Invalid("name", "is required")
	}
	if !r.Role.Valid() {
		return domain.Invalid("role", "must be one of admin, employee")
	}
	return nil
}

// New builds a User from the create request and an already computed hash.
func New(req CreateRequest, passwordHash string) User {
	now := time.Now().UTC()
	return User{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(req.Name),
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
