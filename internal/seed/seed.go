// Package seed creates the primary admin at startup and, optionally, the demo
// employees and vouchers.
package seed

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/valehub/internal/domain"
	"github.com/geocoder89/valehub/internal/domain/user"
	"github.com/geocoder89/valehub/internal/domain/voucher"
	"github.com/geocoder89/valehub/internal/money"
	"github.com/geocoder89/valehub/internal/security"
)

type Store interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUserByID(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	CreateVoucher(ctx context.Context, v voucher.Voucher) (voucher.Voucher, error)
	ListYears(ctx context.Context) ([]string, error)
	CountAdmins(ctx context.Context) (int, error)
}

// ErrNoAdmin means the store has no admin and none could be seeded.
var ErrNoAdmin = errors.New("no admin account exists: set ADMIN_EMAIL and ADMIN_PASSWORD to seed the primary admin")

type Admin struct {
	ID       string
	Email    string
	Password string
	Name     string
}

// EnsureAdmin creates the primary admin unless a user with that id or email
// already exists. Without credentials it only checks that some admin exists,
// and returns ErrNoAdmin otherwise.
func EnsureAdmin(ctx context.Context, store Store, a Admin, log *slog.Logger) error {
	if a.Email == "" || a.Password == "" {
		n, err := store.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNoAdmin
		}
		return nil
	}

	if _, err := store.GetUserByID(ctx, a.ID); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if _, err := store.GetUserByEmail(ctx, a.Email); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	hash, err := security.HashPassword(a.Password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = store.CreateUser(ctx, user.User{
		ID:           a.ID,
		Email:        a.Email,
		PasswordHash: hash,
		Name:         a.Name,
		Role:         user.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "primary admin created", "user_id", a.ID, "email", a.Email)
	return nil
}

type demoUser struct {
	id, email, name string
}

var demoUsers = []demoUser{
	{"user1", "funcionario1@empresa.com", "Ana Silva"},
	{"user2", "funcionario2@empresa.com", "Carlos Santos"},
	{"user3", "funcionario3@empresa.com", "Mariana Oliveira"},
}

const demoPassword = "func123"

type demoVoucher struct {
	owner, month, year, product, date, value string
	status                                   voucher.Status
}

var demoVouchers = []demoVoucher{
	{"user1", "Janeiro", "2023", "Vale Alimentação", "2023-01-05", "500.00", voucher.StatusSettled},
	{"user1", "Janeiro", "2023", "Vale Transporte", "2023-01-05", "200.00", voucher.StatusSettled},
	{"user1", "Fevereiro", "2023", "Vale Alimentação", "2023-02-05", "500.00", voucher.StatusSettled},
	{"user1", "Janeiro", "2024", "Vale Alimentação", "2024-01-05", "550.00", voucher.StatusOpen},
	{"user2", "Janeiro", "2023", "Vale Alimentação", "2023-01-05", "500.00", voucher.StatusSettled},
	{"user2", "Fevereiro", "2023", "Vale Alimentação", "2023-02-05", "500.00", voucher.StatusSettled},
	{"user2", "Janeiro", "2024", "Vale Alimentação", "2024-01-05", "550.00", voucher.StatusOpen},
	{"user3", "Janeiro", "2023", "Vale Alimentação", "2023-01-05", "500.00", voucher.StatusSettled},
	{"user3", "Janeiro", "2023", "Vale Refeição", "2023-01-05", "350.00", voucher.StatusSettled},
	{"user3", "Fevereiro", "2023", "Vale Alimentação", "2023-02-05", "500.00", voucher.StatusSettled},
	{"user3", "Janeiro", "2024", "Vale Alimentação", "2024-01-05", "550.00", voucher.StatusOpen},
	{"user3", "Janeiro", "2024", "Vale Refeição", "2024-01-05", "380.00", voucher.StatusOpen},
}

// Demo loads the demo employees and their vouchers. It does nothing when the
// store already has vouchers.
func Demo(ctx context.Context, store Store, log *slog.Logger) error {
	years, err := store.ListYears(ctx)
	if err != nil {
		return err
	}
	if len(years) > 0 {
		return nil
	}

	hash, err := security.HashPassword(demoPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, d := range demoUsers {
		_, err := store.CreateUser(ctx, user.User{
			ID: d.id, Email: d.email, PasswordHash: hash, Name: d.name,
			Role: user.RoleEmployee, CreatedAt: now, UpdatedAt: now,
		})
		if err != nil && !errors.Is(err, domain.ErrValidation) {
			return err
		}
	}

	for _, d := range demoVouchers {
		value, err := money.Parse(d.value)
		if err != nil {
			return err
		}
		_, err = store.CreateVoucher(ctx, voucher.New(voucher.Fields{
			UserID:  d.owner,
			Month:   d.month,
			Year:    d.year,
			Product: d.product,
			Date:    voucher.MustDate(d.date),
			Value:   value,
			Status:  d.status,
		}))
		if err != nil {
			return err
		}
	}

	log.InfoContext(ctx, "demo data loaded", "users", len(demoUsers), "vouchers", len(demoVouchers))
	return nil
}
