// Package service holds the authorization-checked operations behind the HTTP
// handlers. Every operation evaluates policy.Authorize before touching the store.
package service

import (
	"context"

	"github.com/geocoder89/valehub/internal/domain/user"
	"github.com/geocoder89/valehub/internal/domain/voucher"
)

type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUserByID(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
	UpdateUser(ctx context.Context, id string, patch user.Patch, guard user.Guard) (user.User, error)
	DeleteUser(ctx context.Context, id string, guard user.Guard) error
}

type VoucherStore interface {
	CreateVoucher(ctx context.Context, v voucher.Voucher) (voucher.Voucher, error)
	GetVoucherByID(ctx context.Context, id int64) (voucher.Voucher, error)
	ListVouchers(ctx context.Context, f voucher.ListFilter) ([]voucher.Voucher, error)
	UpdateVoucher(ctx context.Context, id int64, f voucher.Fields) (voucher.Voucher, error)
	ToggleVoucherStatus(ctx context.Context, id int64) (voucher.Voucher, error)
	DeleteVoucher(ctx context.Context, id int64) error
	ListYears(ctx context.Context) ([]string, error)
}

// Store is the record store contract shared by the memory and postgres
// backends. CountAdmins backs the startup admin check in seed.EnsureAdmin.
type Store interface {
	Ping(ctx context.Context) error
	CountAdmins(ctx context.Context) (int, error)
	UserStore
	VoucherStore
}
