package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/geocoder89/valehub/internal/domain"
	"github.com/geocoder89/valehub/internal/domain/user"
	"github.com/geocoder89/valehub/internal/domain/voucher"
	"github.com/geocoder89/valehub/internal/money"
	"github.com/geocoder89/valehub/internal/policy"
	"github.com/geocoder89/valehub/internal/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	adminActor = policy.Actor{UserID: "admin", Role: user.RoleAdmin}
	anaActor   = policy.Actor{UserID: "user1", Role: user.RoleEmployee}
)

type fixture struct {
	store    *memory.Store
	users    *UserService
	vouchers *VoucherService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()

	users := NewUserService(store, "admin", log)
	// skip bcrypt in tests
	users.hash = func(pw string) (string, error) { return "hash:" + pw, nil }

	vouchers := NewVoucherService(store, log)
	vouchers.now = func() time.Time { return time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	for _, u := range []user.User{
		{ID: "admin", Email: "admin@empresa.com", Name: "Administrador", Role: user.RoleAdmin},
		{ID: "user1", Email: "funcionario1@empresa.com", Name: "Ana Silva", Role: user.RoleEmployee},
		{ID: "user2", Email: "funcionario2@empresa.com", Name: "Carlos Santos", Role: user.RoleEmployee},
	} {
		_, err := store.CreateUser(ctx, u)
		require.NoError(t, err)
	}

	return fixture{store: store, users: users, vouchers: vouchers}
}

func input(owner, year, month, date, value string) voucher.Input {
	m, _ := money.Parse(value)
	return voucher.Input{
		UserID: owner, Month: month, Year: year, Product: "Vale Alimentação",
		Date: date, Value: m, Status: voucher.StatusOpen,
	}
}

func TestUserService_CreateHashesAndHidesCredential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Create(ctx, adminActor, user.CreateRequest{
		Name: "Mariana Oliveira", Email: "funcionario3@empresa.com", Password: "func123", Role: user.RoleEmployee,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Empty(t, u.PasswordHash)

	stored, err := f.store.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash:func123", stored.PasswordHash)
}

func TestUserService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Create(ctx, adminActor, user.CreateRequest{
		Name: "X", Email: "x@empresa.com", Password: "12345", Role: user.RoleEmployee,
	})
	ve, ok := domain.FieldOf(err)
	require.True(t, ok)
	assert.Equal(t, "password", ve.Field)

	_, err = f.users.Create(ctx, adminActor, user.CreateRequest{
		Name: "X", Email: "admin@empresa.com", Password: "123456", Role: user.RoleEmployee,
	})
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestUserService_EmployeesAreDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.List(ctx, anaActor)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.users.Create(ctx, anaActor, user.CreateRequest{Name: "X", Email: "x@x", Password: "123456", Role: user.RoleAdmin})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.ErrorIs(t, f.users.Delete(ctx, anaActor, "user2"), domain.ErrUnauthorized)

	_, err = f.users.List(ctx, policy.Actor{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUserService_ListEmployees(t *testing.T) {
	f := newFixture(t)

	opts, err := f.users.ListEmployees(context.Background(), adminActor)
	require.NoError(t, err)
	assert.Equal(t, []user.Option{
		{Value: "user1", Label: "Ana Silva"},
		{Value: "user2", Label: "Carlos Santos"},
	}, opts)
}

func TestUserService_UpdateKeepsEmail(t *testing.T) {
	f := newFixture(t)

	u, err := f.users.Update(context.Background(), adminActor, "user1", user.UpdateRequest{Name: " Ana S. ", Role: user.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "Ana S.", u.Name)
	assert.Equal(t, user.RoleAdmin, u.Role)
	assert.Equal(t, "funcionario1@empresa.com", u.Email)
}

func TestUserService_PrimaryAndLastAdminGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.users.Delete(ctx, adminActor, "admin")
	assert.ErrorIs(t, err, user.ErrPrimaryAdmin)

	_, err = f.users.Update(ctx, adminActor, "admin", user.UpdateRequest{Name: "Administrador", Role: user.RoleEmployee})
	assert.ErrorIs(t, err, user.ErrPrimaryAdmin)

	// a second admin can be demoted while the primary one remains
	_, err = f.users.Update(ctx, adminActor, "user1", user.UpdateRequest{Name: "Ana", Role: user.RoleAdmin})
	require.NoError(t, err)
	_, err = f.users.Update(ctx, adminActor, "user1", user.UpdateRequest{Name: "Ana", Role: user.RoleEmployee})
	require.NoError(t, err)

	n, err := f.store.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUserService_LastAdminWithoutPrimary(t *testing.T) {
	f := newFixture(t)
	f.users.primaryAdminID = ""
	ctx := context.Background()

	err := f.users.Delete(ctx, adminActor, "admin")
	assert.ErrorIs(t, err, user.ErrLastAdmin)
	assert.ErrorIs(t, err, domain.ErrValidation)

	all, err := f.users.List(ctx, adminActor)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUserService_DeleteCascadesOnlyThatUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.vouchers.Create(ctx, adminActor, input("user1", "2024", "Janeiro", "2024-01-05", "550"))
	require.NoError(t, err)
	other, err := f.vouchers.Create(ctx, adminActor, input("user2", "2024", "Janeiro", "2024-01-05", "380"))
	require.NoError(t, err)

	require.NoError(t, f.users.Delete(ctx, adminActor, "user1"))

	list, err := f.vouchers.List(ctx, adminActor, ListQuery{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, other.ID, list.Items[0].ID)

	list, err = f.vouchers.List(ctx, adminActor, ListQuery{UserID: "user1"})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestVoucherService_ListScopesEmployees(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.vouchers.Create(ctx, adminActor, input("user1", "2024", "Janeiro", "2024-01-05", "550"))
	require.NoError(t, err)
	_, err = f.vouchers.Create(ctx, adminActor, input("user2", "2024", "Janeiro", "2024-01-05", "500"))
	require.NoError(t, err)

	own, err := f.vouchers.List(ctx, anaActor, ListQuery{})
	require.NoError(t, err)
	require.Len(t, own.Items, 1)
	assert.Equal(t, "user1", own.Items[0].UserID)

	_, err = f.vouchers.List(ctx, anaActor, ListQuery{UserID: "user2"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	all, err := f.vouchers.List(ctx, adminActor, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
}

func TestVoucherService_FilterOrderAndExactTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	older, err := f.vouchers.Create(ctx, adminActor, input("user1", "2024", "Janeiro", "2024-01-05", "550.00"))
	require.NoError(t, err)
	newer, err := f.vouchers.Create(ctx, adminActor, input("user1", "2024", "Janeiro", "2024-01-20", "380,00"))
	require.NoError(t, err)
	_, err = f.vouchers.Create(ctx, adminActor, input("user1", "2024", "Fevereiro", "2024-02-01", "1"))
	require.NoError(t, err)
	_, err = f.vouchers.Create(ctx, adminActor, input("user1", "2023", "Janeiro", "2023-01-20", "1"))
	require.NoError(t, err)

	list, err := f.vouchers.List(ctx, anaActor, ListQuery{Year: "2024", Month: "Janeiro"})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, newer.ID, list.Items[0].ID)
	assert.Equal(t, older.ID, list.Items[1].ID)
	assert.Equal(t, "930.00", list.Total.String())
	assert.Equal(t, 2, list.Count)

	_, err = f.vouchers.List(ctx, anaActor, ListQuery{Month: "January"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestVoucherService_Summary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.vouchers.Create(ctx, adminActor, input("user1", "2024", "Janeiro", "2024-01-05", "550"))
	require.NoError(t, err)
	settled := input("user1", "2024", "Janeiro", "2024-01-06", "380")
	settled.Status = voucher.StatusSettled
	_, err = f.vouchers.Create(ctx, adminActor, settled)
	require.NoError(t, err)

	s, err := f.vouchers.Summary(ctx, anaActor, ListQuery{Year: "2024", Month: "Janeiro"})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Count)
	assert.Equal(t, "930.00", s.Total.String())
	assert.Equal(t, "550.00", s.Open.Total.String())
	assert.Equal(t, 1, s.Settled.Count)
}

func TestVoucherService_ToggleIsAdminOnlyAndInvolutive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := f.vouchers.Create(ctx, adminActor, input("user1", "2024", "Janeiro", "2024-01-05", "550"))
	require.NoError(t, err)

	_, err = f.vouchers.ToggleStatus(ctx, anaActor, v.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	got, err := f.vouchers.Get(ctx, anaActor, v.ID)
	require.NoError(t, err)
	assert.Equal(t, voucher.StatusOpen, got.Status)

	once, err := f.vouchers.ToggleStatus(ctx, adminActor, v.ID)
	require.NoError(t, err)
	assert.Equal(t, voucher.StatusSettled, once.Status)

	twice, err := f.vouchers.ToggleStatus(ctx, adminActor, v.ID)
	require.NoError(t, err)
	assert.Equal(t, voucher.StatusOpen, twice.Status)
}

func TestVoucherService_GetOtherOwnersVoucher(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := f.vouchers.Create(ctx, adminActor, input("user2", "2024", "Janeiro", "2024-01-05", "550"))
	require.NoError(t, err)

	_, err = f.vouchers.Get(ctx, anaActor, v.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.vouchers.Get(ctx, adminActor, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVoucherService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	zero := input("user1", "2024", "Janeiro", "2024-01-05", "0")
	_, err := f.vouchers.Create(ctx, adminActor, zero)
	ve, ok := domain.FieldOf(err)
	require.True(t, ok)
	assert.Equal(t, "value", ve.Field)

	_, err = f.vouchers.Create(ctx, adminActor, input("ghost", "2024", "Janeiro", "2024-01-05", "1"))
	assert.ErrorIs(t, err, voucher.ErrOwnerNotFound)

	_, err = f.vouchers.Create(ctx, anaActor, input("user1", "2024", "Janeiro", "2024-01-05", "1"))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVoucherService_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := f.vouchers.Create(ctx, adminActor, input("user1", "2024", "Janeiro", "2024-01-05", "550"))
	require.NoError(t, err)

	in := input("user2", "2024", "Fevereiro", "2024-02-05", "12,5")
	updated, err := f.vouchers.Update(ctx, adminActor, v.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "user2", updated.UserID)
	assert.Equal(t, "12.50", updated.Value.String())

	_, err = f.vouchers.Update(ctx, anaActor, v.ID, in)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.ErrorIs(t, f.vouchers.Delete(ctx, anaActor, v.ID), domain.ErrUnauthorized)
	require.NoError(t, f.vouchers.Delete(ctx, adminActor, v.ID))
	assert.ErrorIs(t, f.vouchers.Delete(ctx, adminActor, v.ID), domain.ErrNotFound)
}

func TestVoucherService_YearsFallBackToCurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	years, err := f.vouchers.Years(ctx, anaActor)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024"}, years)

	_, err = f.vouchers.Create(ctx, adminActor, input("user1", "2022", "Janeiro", "2022-01-05", "1"))
	require.NoError(t, err)
	_, err = f.vouchers.Create(ctx, adminActor, input("user1", "2023", "Janeiro", "2023-01-05", "1"))
	require.NoError(t, err)

	years, err = f.vouchers.Years(ctx, anaActor)
	require.NoError(t, err)
	assert.Equal(t, []string{"2023", "2022"}, years)
}

func TestVoucherService_Dashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.vouchers.Create(ctx, adminActor, input("user1", "2024", "Março", "2024-03-01", "550"))
	require.NoError(t, err)
	_, err = f.vouchers.Create(ctx, adminActor, input("user2", "2024", "Março", "2024-03-02", "500"))
	require.NoError(t, err)
	_, err = f.vouchers.Create(ctx, adminActor, input("user1", "2022", "Janeiro", "2022-01-05", "1"))
	require.NoError(t, err)

	ana, err := f.store.GetUserByID(ctx, "user1")
	require.NoError(t, err)

	d, err := f.vouchers.Dashboard(ctx, ana)
	require.NoError(t, err)
	assert.Equal(t, "2024", d.Year)
	assert.Equal(t, "Março", d.Month)
	assert.Equal(t, 2022, d.MinYear)
	assert.Equal(t, 2024, d.MaxYear)
	require.Len(t, d.Vouchers.Items, 1)
	assert.Equal(t, "550.00", d.Summary.Total.String())

	admin, err := f.store.GetUserByID(ctx, "admin")
	require.NoError(t, err)
	d, err = f.vouchers.Dashboard(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, d.Vouchers.Items, 2)
}
