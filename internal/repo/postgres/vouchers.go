package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/valehub/internal/domain/voucher"
	"github.com/geocoder89/valehub/internal/money"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const voucherColumns = `id, user_id, month, year, product, date, value_cents, status, created_at, updated_at`

func scanVoucher(row rowScanner) (voucher.Voucher, error) {
	var (
		v     voucher.Voucher
		date  time.Time
		cents int64
	)
	err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.Month,
		&v.Year,
		&v.Product,
		&date,
		&cents,
		&v.Status,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return voucher.Voucher{}, err
	}

	v.Date = voucher.NewDate(date.Year(), date.Month(), date.Day())
	v.Value = money.FromCents(cents)
	return v, nil
}

func mapVoucherWriteErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return voucher.ErrNotFound
	}
	if code, _ := pgCode(err); code == pgForeignKeyViolation {
		return voucher.ErrOwnerNotFound
	}
	return err
}

func (s *Store) CreateVoucher(ctx context.Context, v voucher.Voucher) (created voucher.Voucher, err error) {
	err = s.observe("vouchers.create", func() error {
		created, err = scanVoucher(s.pool.QueryRow(ctx, `
			INSERT INTO vouchers (user_id, month, year, product, date, value_cents, status, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			RETURNING `+voucherColumns,
			v.UserID, v.Month, v.Year, v.Product, v.Date.Time, v.Value.Cents(), v.Status, v.CreatedAt, v.UpdatedAt,
		))
		return err
	})

	if err != nil {
		return voucher.Voucher{}, mapVoucherWriteErr(err)
	}
	return created, nil
}

func (s *Store) GetVoucherByID(ctx context.Context, id int64) (v voucher.Voucher, err error) {
	err = s.observe("vouchers.get_by_id", func() error {
		v, err = scanVoucher(s.pool.QueryRow(ctx,
			`SELECT `+voucherColumns+` FROM vouchers WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return voucher.Voucher{}, voucher.ErrNotFound
		}
		return voucher.Voucher{}, err
	}
	return v, nil
}

func (s *Store) ListVouchers(ctx context.Context, f voucher.ListFilter) (out []voucher.Voucher, err error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers`

	var conds []string
	var args []any
	argsPosition := 1

	if f.UserID != nil {
		conds = append(conds, fmt.Sprintf("user_id = $%d", argsPosition))
		args = append(args, *f.UserID)
		argsPosition++
	}
	if f.Year != nil {
		conds = append(conds, fmt.Sprintf("year = $%d", argsPosition))
		args = append(args, *f.Year)
		argsPosition++
	}
	if f.Month != nil {
		conds = append(conds, fmt.Sprintf("month = $%d", argsPosition))
		args = append(args, *f.Month)
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// ids grow with insertion, so id ASC keeps same-day vouchers in insertion order
	query += " ORDER BY date DESC, id ASC"

	var rows pgx.Rows
	err = s.observe("vouchers.list", func() error {
		rows, err = s.pool.Query(ctx, query, args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out = make([]voucher.Voucher, 0)
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}

	return out, rows.Err()
}

func (s *Store) UpdateVoucher(ctx context.Context, id int64, f voucher.Fields) (v voucher.Voucher, err error) {
	err = s.observe("vouchers.update", func() error {
		v, err = scanVoucher(s.pool.QueryRow(ctx, `
			UPDATE vouchers
			SET user_id = $2,
				month = $3,
				year = $4,
				product = $5,
				date = $6,
				value_cents = $7,
				status = $8,
				updated_at = NOW()
			WHERE id = $1
			RETURNING `+voucherColumns,
			id, f.UserID, f.Month, f.Year, f.Product, f.Date.Time, f.Value.Cents(), f.Status,
		))
		return err
	})

	if err != nil {
		return voucher.Voucher{}, mapVoucherWriteErr(err)
	}
	return v, nil
}

func (s *Store) ToggleVoucherStatus(ctx context.Context, id int64) (v voucher.Voucher, err error) {
	err = s.observe("vouchers.toggle_status", func() error {
		v, err = scanVoucher(s.pool.QueryRow(ctx, `
			UPDATE vouchers
			SET status = CASE WHEN status = 'open' THEN 'settled' ELSE 'open' END,
				updated_at = NOW()
			WHERE id = $1
			RETURNING `+voucherColumns,
			id,
		))
		return err
	})

	if err != nil {
		return voucher.Voucher{}, mapVoucherWriteErr(err)
	}
	return v, nil
}

func (s *Store) DeleteVoucher(ctx context.Context, id int64) error {
	var tag pgconn.CommandTag

	err := s.observe("vouchers.delete", func() error {
		var e error
		tag, e = s.pool.Exec(ctx, `DELETE FROM vouchers WHERE id = $1`, id)
		return e
	})
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return voucher.ErrNotFound
	}
	return nil
}

func (s *Store) ListYears(ctx context.Context) (years []string, err error) {
	var rows pgx.Rows

	err = s.observe("vouchers.list_years", func() error {
		rows, err = s.pool.Query(ctx, `
			SELECT DISTINCT year FROM vouchers
			WHERE year ~ '^[0-9]{4}$'
			ORDER BY year DESC`)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	years = make([]string, 0)
	for rows.Next() {
		var y string
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}

	return years, rows.Err()
}
