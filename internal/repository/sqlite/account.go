package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/craftwork/handwerk/pkg/models"
)

func (r *SQLiteRepo) CreateAccount(ctx context.Context, a *models.Account) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("account is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO accounts (email, role, first_name, last_name, password_hash, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.Email, string(a.Role), a.FirstName, a.LastName, a.PasswordHash, ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("account %q: %w", a.Email, models.ErrConflict)
		}
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.scanAccount(r.conn.QueryRow(ctx, `SELECT id, email, role, first_name, last_name, password_hash, created, updated FROM accounts WHERE id = ?`, id))
}

func (r *SQLiteRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.scanAccount(r.conn.QueryRow(ctx, `SELECT id, email, role, first_name, last_name, password_hash, created, updated FROM accounts WHERE email = ?`, email))
}

func (r *SQLiteRepo) scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	var role string
	var pw sql.NullString
	if err := row.Scan(&a.ID, &a.Email, &role, &a.FirstName, &a.LastName, &pw, &a.Created, &a.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	a.Role = models.Role(role)
	if pw.Valid {
		a.PasswordHash = pw.String
	}

	return &a, nil
}

func (r *SQLiteRepo) UpdateAccount(ctx context.Context, a *models.Account) error {
	if a == nil {
		return fmt.Errorf("account is nil")
	}

	_, err := r.conn.Exec(ctx, `UPDATE accounts SET email = ?, first_name = ?, last_name = ?, password_hash = ?, updated = ? WHERE id = ?`,
		a.Email, a.FirstName, a.LastName, a.PasswordHash, now(), a.ID)
	return err
}

func (r *SQLiteRepo) DeleteAccount(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	return err
}

// isUniqueViolation reports whether err is a sqlite unique constraint
// failure. modernc.org/sqlite has no exported error codes on the driver
// error type that survive the database/sql boundary, so match the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
