package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/craftwork/handwerk/pkg/models"
)

func (r *SQLiteRepo) CreateCustomerProfile(ctx context.Context, p *models.CustomerProfile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}

	_, err := r.conn.Exec(ctx, `INSERT INTO customer_profiles (account_id, phone_number, address, updated) VALUES (?, ?, ?, ?)`,
		p.AccountID, p.PhoneNumber, p.Address, now())
	if isUniqueViolation(err) {
		return fmt.Errorf("customer profile for account %d: %w", p.AccountID, models.ErrConflict)
	}
	return err
}

func (r *SQLiteRepo) GetCustomerProfile(ctx context.Context, accountID int64) (*models.CustomerProfile, error) {
	row := r.conn.QueryRow(ctx, `SELECT account_id, phone_number, address, updated FROM customer_profiles WHERE account_id = ?`, accountID)
	var p models.CustomerProfile
	if err := row.Scan(&p.AccountID, &p.PhoneNumber, &p.Address, &p.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &p, nil
}

func (r *SQLiteRepo) UpdateCustomerProfile(ctx context.Context, p *models.CustomerProfile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE customer_profiles SET phone_number = ?, address = ?, updated = ? WHERE account_id = ?`,
		p.PhoneNumber, p.Address, now(), p.AccountID)
	return err
}

func (r *SQLiteRepo) CreateCraftsmanProfile(ctx context.Context, p *models.CraftsmanProfile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}

	_, err := r.conn.Exec(ctx, `INSERT INTO craftsman_profiles (account_id, company_name, trade, service_area_zip, is_verified, updated) VALUES (?, ?, ?, ?, ?, ?)`,
		p.AccountID, p.CompanyName, p.Trade, p.ServiceAreaZip, boolToInt(p.IsVerified), now())
	if isUniqueViolation(err) {
		return fmt.Errorf("craftsman profile for account %d: %w", p.AccountID, models.ErrConflict)
	}
	return err
}

func (r *SQLiteRepo) GetCraftsmanProfile(ctx context.Context, accountID int64) (*models.CraftsmanProfile, error) {
	row := r.conn.QueryRow(ctx, `SELECT account_id, company_name, trade, service_area_zip, is_verified, updated FROM craftsman_profiles WHERE account_id = ?`, accountID)
	return scanCraftsmanProfile(row.Scan)
}

func (r *SQLiteRepo) UpdateCraftsmanProfile(ctx context.Context, p *models.CraftsmanProfile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}

	// verification flag is owned by the admin, not the profile owner
	_, err := r.conn.Exec(ctx, `UPDATE craftsman_profiles SET company_name = ?, trade = ?, service_area_zip = ?, updated = ? WHERE account_id = ?`,
		p.CompanyName, p.Trade, p.ServiceAreaZip, now(), p.AccountID)
	return err
}

func (r *SQLiteRepo) SetCraftsmanVerified(ctx context.Context, accountID int64, verified bool) error {
	res, err := r.conn.Exec(ctx, `UPDATE craftsman_profiles SET is_verified = ?, updated = ? WHERE account_id = ?`,
		boolToInt(verified), now(), accountID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("craftsman profile %d: %w", accountID, models.ErrNotFound)
	}
	return nil
}

// FindMatches keeps the legacy semantics: trade equality is
// case-insensitive and the zip match is a literal substring search over
// the comma-separated service_area_zip field, not a parsed set lookup.
func (r *SQLiteRepo) FindMatches(ctx context.Context, trade, zip string) ([]models.CraftsmanProfile, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT account_id, company_name, trade, service_area_zip, is_verified, updated FROM craftsman_profiles WHERE LOWER(trade) = LOWER(?) AND service_area_zip LIKE '%' || ? || '%'`, trade, zip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CraftsmanProfile
	for rows.Next() {
		p, err := scanCraftsmanProfile(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanCraftsmanProfile(scan func(dest ...any) error) (*models.CraftsmanProfile, error) {
	var p models.CraftsmanProfile
	var verified int
	if err := scan(&p.AccountID, &p.CompanyName, &p.Trade, &p.ServiceAreaZip, &verified, &p.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	p.IsVerified = verified != 0
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
