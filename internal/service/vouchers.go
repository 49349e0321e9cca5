package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/geocoder89/valehub/internal/domain"
	"github.com/geocoder89/valehub/internal/domain/user"
	"github.com/geocoder89/valehub/internal/domain/voucher"
	"github.com/geocoder89/valehub/internal/money"
	"github.com/geocoder89/valehub/internal/policy"
)

// ListQuery is the optional owner/year/month filter of a voucher listing.
// Empty fields are not applied.
type ListQuery struct {
	UserID string `form:"userId"`
	Year   string `form:"year"`
	Month  string `form:"month"`
}

type VoucherList struct {
	Items []voucher.Voucher `json:"items"`
	Count int               `json:"count"`
	Total money.Money       `json:"total"`
}

// Dashboard is what a signed-in user lands on.
type Dashboard struct {
	User     user.User       `json:"user"`
	Years    []string        `json:"years"`
	MinYear  int             `json:"minYear"`
	MaxYear  int             `json:"maxYear"`
	Year     string          `json:"year"`
	Month    string          `json:"month"`
	Months   [12]string      `json:"months"`
	Vouchers VoucherList     `json:"vouchers"`
	Summary  voucher.Summary `json:"summary"`
}

type VoucherService struct {
	store VoucherStore
	now   func() time.Time
	log   *slog.Logger
}

func NewVoucherService(store VoucherStore, log *slog.Logger) *VoucherService {
	if log == nil {
		log = slog.Default()
	}
	return &VoucherService{store: store, now: time.Now, log: log}
}

// filterFor resolves the listing filter for actor. Employees always get their
// own id as owner; asking for anyone else is denied by the policy.
func filterFor(actor policy.Actor, q ListQuery) (voucher.ListFilter, error) {
	owner := q.UserID
	if owner == "" && actor.Role != user.RoleAdmin {
		owner = actor.UserID
	}

	if err := policy.Authorize(actor, policy.ListVouch, policy.Target{OwnerID: owner}); err != nil {
		return voucher.ListFilter{}, err
	}

	var f voucher.ListFilter
	if owner != "" {
		f.UserID = &owner
	}
	if q.Year != "" {
		if !voucher.IsYear(q.Year) {
			return voucher.ListFilter{}, domain.Invalid("year", "must be a 4-digit year")
		}
		f.Year = &q.Year
	}
	if q.Month != "" {
		if !voucher.IsMonth(q.Month) {
			return voucher.ListFilter{}, domain.Invalid("month", "must be a month name")
		}
		f.Month = &q.Month
	}
	return f, nil
}

// List returns the matching vouchers newest first, plus their exact total.
func (s *VoucherService) List(ctx context.Context, actor policy.Actor, q ListQuery) (VoucherList, error) {
	f, err := filterFor(actor, q)
	if err != nil {
		return VoucherList{}, err
	}

	items, err := s.store.ListVouchers(ctx, f)
	if err != nil {
		return VoucherList{}, err
	}

	return VoucherList{Items: items, Count: len(items), Total: voucher.SumValues(items)}, nil
}

func (s *VoucherService) Summary(ctx context.Context, actor policy.Actor, q ListQuery) (voucher.Summary, error) {
	f, err := filterFor(actor, q)
	if err != nil {
		return voucher.Summary{}, err
	}

	items, err := s.store.ListVouchers(ctx, f)
	if err != nil {
		return voucher.Summary{}, err
	}

	return voucher.Summarize(items), nil
}

func (s *VoucherService) Get(ctx context.Context, actor policy.Actor, id int64) (voucher.Voucher, error) {
	v, err := s.store.GetVoucherByID(ctx, id)
	if err != nil {
		return voucher.Voucher{}, err
	}

	if err := policy.Authorize(actor, policy.ReadVouch, policy.Target{OwnerID: v.UserID}); err != nil {
		return voucher.Voucher{}, err
	}
	return v, nil
}

func (s *VoucherService) Create(ctx context.Context, actor policy.Actor, in voucher.Input) (voucher.Voucher, error) {
	if err := policy.Authorize(actor, policy.CreateVouch, policy.Target{OwnerID: in.UserID}); err != nil {
		return voucher.Voucher{}, err
	}

	fields, err := in.Validate()
	if err != nil {
		return voucher.Voucher{}, err
	}

	v, err := s.store.CreateVoucher(ctx, voucher.New(fields))
	if err != nil {
		return voucher.Voucher{}, err
	}

	s.log.InfoContext(ctx, "voucher created", "voucher_id", v.ID, "owner", v.UserID, "by", actor.UserID)
	return v, nil
}

// Update replaces every field of voucher id.
func (s *VoucherService) Update(ctx context.Context, actor policy.Actor, id int64, in voucher.Input) (voucher.Voucher, error) {
	if err := policy.Authorize(actor, policy.UpdateVouch, policy.Target{OwnerID: in.UserID}); err != nil {
		return voucher.Voucher{}, err
	}

	fields, err := in.Validate()
	if err != nil {
		return voucher.Voucher{}, err
	}

	return s.store.UpdateVoucher(ctx, id, fields)
}

// ToggleStatus flips open <-> settled.
func (s *VoucherService) ToggleStatus(ctx context.Context, actor policy.Actor, id int64) (voucher.Voucher, error) {
	if err := policy.Authorize(actor, policy.ToggleVouch, policy.Target{}); err != nil {
		return voucher.Voucher{}, err
	}

	return s.store.ToggleVoucherStatus(ctx, id)
}

func (s *VoucherService) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	if err := policy.Authorize(actor, policy.DeleteVouch, policy.Target{}); err != nil {
		return err
	}

	if err := s.store.DeleteVoucher(ctx, id); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "voucher deleted", "voucher_id", id, "by", actor.UserID)
	return nil
}

// Years lists the distinct voucher years newest first, or just the current
// year when there are no vouchers yet.
func (s *VoucherService) Years(ctx context.Context, actor policy.Actor) ([]string, error) {
	if err := policy.Authorize(actor, policy.ListYears, policy.Target{}); err != nil {
		return nil, err
	}

	years, err := s.store.ListYears(ctx)
	if err != nil {
		return nil, err
	}
	if len(years) == 0 {
		return []string{strconv.Itoa(s.now().Year())}, nil
	}
	return years, nil
}

// Dashboard opens on voucher.DefaultPeriod. Admins see every voucher of the
// period, employees their own.
func (s *VoucherService) Dashboard(ctx context.Context, u user.User) (Dashboard, error) {
	actor := policy.ActorOf(u)
	now := s.now()

	if err := policy.Authorize(actor, policy.ListYears, policy.Target{}); err != nil {
		return Dashboard{}, err
	}
	years, err := s.store.ListYears(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	year, month := voucher.DefaultPeriod(years, now)
	minYear, maxYear := voucher.YearRange(years, now)

	list, err := s.List(ctx, actor, ListQuery{Year: year, Month: month})
	if err != nil {
		return Dashboard{}, err
	}

	if len(years) == 0 {
		years = []string{year}
	}

	return Dashboard{
		User:     u.Public(),
		Years:    years,
		MinYear:  minYear,
		MaxYear:  maxYear,
		Year:     year,
		Month:    month,
		Months:   voucher.Months,
		Vouchers: list,
		Summary:  voucher.Summarize(list.Items),
	}, nil
}
