package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/geocoder89/valehub/internal/domain/user"
	"github.com/geocoder89/valehub/internal/domain/voucher"
)

// Store keeps users and vouchers in process memory. One RWMutex guards both
// collections so cascades and admin guards see a consistent view.
type Store struct {
	mu sync.RWMutex

	users     map[string]user.User
	userOrder []string

	vouchers      []voucher.Voucher // insertion order
	lastVoucherID int64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]user.User),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Ping(context.Context) error {
	return nil
}

// Users

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; ok {
		return user.User{}, user.ErrIDTaken
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	s.users[u.ID] = u
	s.userOrder = append(s.userOrder, u.ID)

	return u, nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

// GetUserByEmail is an exact, case-sensitive match.
func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (s *Store) ListUsers(context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]user.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, s.users[id])
	}
	return out, nil
}

func (s *Store) CountAdmins(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.countAdminsLocked(), nil
}

func (s *Store) countAdminsLocked() int {
	n := 0
	for _, u := range s.users {
		if u.IsAdmin() {
			n++
		}
	}
	return n
}

func (s *Store) UpdateUser(_ context.Context, id string, patch user.Patch, guard user.Guard) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if guard != nil {
		if err := guard(u, s.countAdminsLocked()); err != nil {
			return user.User{}, err
		}
	}

	u.Name = patch.Name
	u.Role = patch.Role
	u.UpdatedAt = s.now()
	s.users[id] = u

	return u, nil
}

// DeleteUser removes the user and every voucher it owns.
func (s *Store) DeleteUser(_ context.Context, id string, guard user.Guard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return user.ErrNotFound
	}

	if guard != nil {
		if err := guard(u, s.countAdminsLocked()); err != nil {
			return err
		}
	}

	delete(s.users, id)
	for i, uid := range s.userOrder {
		if uid == id {
			s.userOrder = append(s.userOrder[:i], s.userOrder[i+1:]...)
			break
		}
	}

	kept := s.vouchers[:0]
	for _, v := range s.vouchers {
		if v.UserID != id {
			kept = append(kept, v)
		}
	}
	s.vouchers = kept

	return nil
}

// Vouchers

func (s *Store) CreateVoucher(_ context.Context, v voucher.Voucher) (voucher.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[v.UserID]; !ok {
		return voucher.Voucher{}, voucher.ErrOwnerNotFound
	}

	s.lastVoucherID++
	v.ID = s.lastVoucherID
	s.vouchers = append(s.vouchers, v)

	return v, nil
}

func (s *Store) GetVoucherByID(_ context.Context, id int64) (voucher.Voucher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return voucher.Voucher{}, voucher.ErrNotFound
	}
	return s.vouchers[i], nil
}

func (s *Store) indexLocked(id int64) int {
	for i, v := range s.vouchers {
		if v.ID == id {
			return i
		}
	}
	return -1
}

// ListVouchers returns matches newest date first; ties keep insertion order.
func (s *Store) ListVouchers(_ context.Context, f voucher.ListFilter) ([]voucher.Voucher, error) {
	s.mu.RLock()
	out := make([]voucher.Voucher, 0)
	for _, v := range s.vouchers {
		if f.Matches(v) {
			out = append(out, v)
		}
	}
	s.mu.RUnlock()

	voucher.SortByDateDesc(out)
	return out, nil
}

func (s *Store) UpdateVoucher(_ context.Context, id int64, fields voucher.Fields) (voucher.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return voucher.Voucher{}, voucher.ErrNotFound
	}
	if _, ok := s.users[fields.UserID]; !ok {
		return voucher.Voucher{}, voucher.ErrOwnerNotFound
	}

	v := s.vouchers[i]
	fields.Apply(&v)
	v.UpdatedAt = s.now()
	s.vouchers[i] = v

	return v, nil
}

func (s *Store) ToggleVoucherStatus(_ context.Context, id int64) (voucher.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return voucher.Voucher{}, voucher.ErrNotFound
	}

	v := s.vouchers[i]
	v.Status = v.Status.Toggled()
	v.UpdatedAt = s.now()
	s.vouchers[i] = v

	return v, nil
}

func (s *Store) DeleteVoucher(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return voucher.ErrNotFound
	}
	s.vouchers = append(s.vouchers[:i], s.vouchers[i+1:]...)
	return nil
}

// ListYears returns the distinct voucher years, newest first.
func (s *Store) ListYears(context.Context) ([]string, error) {
	s.mu.RLock()
	seen := make(map[string]struct{})
	years := make([]string, 0)
	for _, v := range s.vouchers {
		if _, ok := seen[v.Year]; ok {
			continue
		}
		if _, err := strconv.Atoi(v.Year); err != nil {
			continue
		}
		seen[v.Year] = struct{}{}
		years = append(years, v.Year)
	}
	s.mu.RUnlock()

	voucher.SortYearsDesc(years)
	return years, nil
}
