package voucher

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/valehub/internal/domain"
	"github.com/geocoder89/valehub/internal/money"
)

type Status string

const (
	StatusOpen    Status = "open"
	StatusSettled Status = "settled"
)

func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusSettled
}

// Toggled flips open <-> settled.
func (s Status) Toggled() Status {
	if s == StatusOpen {
		return StatusSettled
	}
	return StatusOpen
}

// Months are the labels vouchers are filed under, January first.
var Months = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

func IsMonth(s string) bool {
	for _, m := range Months {
		if m == s {
			return true
		}
	}
	return false
}

// MonthName returns the label for a time.Month.
func MonthName(m time.Month) string {
	return Months[int(m)-1]
}

// IsYear reports whether s is a 4-digit year.
func IsYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil && s[0] != '-' && s[0] != '+'
}

type Voucher struct {
	ID        int64       `json:"id"`
	UserID    string      `json:"userId"`
	Month     string      `json:"month"`
	Year      string      `json:"year"`
	Product   string      `json:"product"`
	Date      Date        `json:"date"`
	Value     money.Money `json:"value"`
	Status    Status      `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// with pointers if optional, it will be nil
type ListFilter struct {
	UserID *string
	Year   *string
	Month  *string
}

func (f ListFilter) Matches(v Voucher) bool {
	if f.UserID != nil && v.UserID != *f.UserID {
		return false
	}
	if f.Year != nil && v.Year != *f.Year {
		return false
	}
	if f.Month != nil && v.Month != *f.Month {
		return false
	}
	return true
}

var (
	ErrNotFound      = fmt.Errorf("voucher %w", domain.ErrNotFound)
	ErrOwnerNotFound = &domain.ValidationError{Field: "userId", Message: "user does not exist"}
)

// Input is the full create/update payload.
type Input struct {
	UserID  string      `json:"userId" binding:"required"`
	Month   string      `json:"month" binding:"required,month"`
	Year    string      `json:"year" binding:"required,len=4,numeric"`
	Product string      `json:"product" binding:"required,max=120"`
	Date    string      `json:"date" binding:"required,datetime=2006-01-02"`
	Value   money.Money `json:"value" binding:"required,gt=0"`
	Status  Status      `json:"status" binding:"required,oneof=open settled"`
}

// Fields is a validated Input ready to be stored.
type Fields struct {
	UserID  string
	Month   string
	Year    string
	Product string
	Date    Date
	Value   money.Money
	Status  Status
}

func (in Input) Validate() (Fields, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return Fields{}, domain.Invalid("userId", "is required")
	}
	if !IsMonth(in.Month) {
		return Fields{}, domain.Invalid("month", "must be a month name")
	}
	if !IsYear(in.Year) {
		return Fields{}, domain.Invalid("year", "must be a 4-digit year")
	}
	if strings.TrimSpace(in.Product) == "" {
		return Fields{}, domain.Invalid("product", "is required")
	}
	d, err := ParseDate(in.Date)
	if err != nil {
		return Fields{}, domain.Invalid("date", "must be a date formatted as YYYY-MM-DD")
	}
	if !in.Value.IsPositive() {
		return Fields{}, domain.Invalid("value", "must be greater than zero")
	}
	if !in.Status.Valid() {
		return Fields{}, domain.Invalid("status", "must be one of open, settled")
	}

	return Fields{
		UserID:  strings.TrimSpace(in.UserID),
		Month:   in.Month,
		Year:    in.Year,
		Product: strings.TrimSpace(in.Product),
		Date:    d,
		Value:   in.Value,
		Status:  in.Status,
	}, nil
}

// Apply copies the fields onto v.
func (f Fields) Apply(v *Voucher) {
	v.UserID = f.UserID
	v.Month = f.Month
	v.Year = f.Year
	v.Product = f.Product
	v.Date = f.Date
	v.Value = f.Value
	v.Status = f.Status
}

// New builds a voucher without an id; the store assigns it.
func New(f Fields) Voucher {
	now := time.Now().UTC()
	v := Voucher{CreatedAt: now, UpdatedAt: now}
	f.Apply(&v)
	return v
}
