package voucher

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/geocoder89/valehub/internal/money"
)

// SortByDateDesc orders newest first. The sort is stable, so vouchers that
// share a date keep their insertion order.
func SortByDateDesc(vs []Voucher) {
	sort.SliceStable(vs, func(i, j int) bool {
		return vs[i].Date.After(vs[j].Date.Time)
	})
}

func SumValues(vs []Voucher) money.Money {
	values := make([]money.Money, len(vs))
	for i, v := range vs {
		values[i] = v.Value
	}
	return money.Sum(values...)
}

type StatusTotal struct {
	Count int         `json:"count"`
	Total money.Money `json:"total"`
}

// Summary is the month/year overview shown next to a listing.
type Summary struct {
	Count   int         `json:"count"`
	Total   money.Money `json:"total"`
	Open    StatusTotal `json:"open"`
	Settled StatusTotal `json:"settled"`
}

func Summarize(vs []Voucher) Summary {
	var s Summary
	for _, v := range vs {
		s.Count++
		s.Total += v.Value
		switch v.Status {
		case StatusOpen:
			s.Open.Count++
			s.Open.Total += v.Value
		case StatusSettled:
			s.Settled.Count++
			s.Settled.Total += v.Value
		}
	}
	return s
}

// SortYearsDesc sorts distinct year labels newest first.
func SortYearsDesc(years []string) {
	sort.Slice(years, func(i, j int) bool {
		a, _ := strconv.Atoi(years[i])
		b, _ := strconv.Atoi(years[j])
		return a > b
	})
}

// DefaultPeriod picks the year/month a dashboard opens on: the newest year
// with vouchers, on the current month when that year is the current one and on
// January otherwise. With no vouchers it is the current month.
// years must already be sorted newest first.
func DefaultPeriod(years []string, now time.Time) (year, month string) {
	current := strconv.Itoa(now.Year())
	if len(years) == 0 || years[0] == current {
		return current, MonthName(now.Month())
	}
	return years[0], Months[0]
}

// YearRange is the span a year picker offers: the oldest to newest year with
// vouchers, or five years either side of now when there are none.
func YearRange(years []string, now time.Time) (lo, hi int) {
	if len(years) == 0 {
		return now.Year() - 5, now.Year() + 5
	}
	lo, hi = math.MaxInt, math.MinInt
	for _, y := range years {
		n, err := strconv.Atoi(y)
		if err != nil {
			continue
		}
		if n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
	}
	if lo > hi {
		return now.Year() - 5, now.Year() + 5
	}
	return lo, hi
}
