package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/craftwork/handwerk/pkg/models"
)

const offerColumns = `id, craftsman_id, title, description, trade, zip_code, status, created, updated`

func (r *SQLiteRepo) CreateOffer(ctx context.Context, o *models.Offer) (int64, error) {
	if o == nil {
		return 0, fmt.Errorf("offer is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO offers (craftsman_id, title, description, trade, zip_code, status, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.CraftsmanID, o.Title, o.Description, o.Trade, o.ZipCode, string(models.OfferOpen), ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetOffer(ctx context.Context, id int64) (*models.Offer, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = ?`, id)
	return scanOffer(row.Scan)
}

// ListOffersFor applies the role visibility scope (an access rule, not a
// caller-controlled filter): customers see the open marketplace, craftsmen
// see their own offers in any status, everyone else sees nothing.
func (r *SQLiteRepo) ListOffersFor(ctx context.Context, accountID int64, role models.Role) ([]models.Offer, error) {
	var (
		query string
		args  []any
	)
	switch role {
	case models.RoleCustomer:
		query = `SELECT ` + offerColumns + ` FROM offers WHERE status = ? ORDER BY created DESC`
		args = []any{string(models.OfferOpen)}
	case models.RoleCraftsman:
		query = `SELECT ` + offerColumns + ` FROM offers WHERE craftsman_id = ? ORDER BY created DESC`
		args = []any{accountID}
	default:
		return []models.Offer{}, nil
	}

	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Offer
	for rows.Next() {
		o, err := scanOffer(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateOffer(ctx context.Context, o *models.Offer) error {
	if o == nil {
		return fmt.Errorf("offer is nil")
	}

	// status never changes here; it only moves through the acceptance
	// workflow and CompleteOffer
	_, err := r.conn.Exec(ctx, `UPDATE offers SET title = ?, description = ?, trade = ?, zip_code = ?, updated = ? WHERE id = ?`,
		o.Title, o.Description, o.Trade, o.ZipCode, now(), o.ID)
	return err
}

func (r *SQLiteRepo) DeleteOffer(ctx context.Context, id int64) error {
	// inquiries and review go with it via ON DELETE CASCADE
	_, err := r.conn.Exec(ctx, `DELETE FROM offers WHERE id = ?`, id)
	return err
}

// CompleteOffer transitions the offer from IN_PROGRESS to COMPLETED.
// Only the owning craftsman may complete, and only from IN_PROGRESS;
// calling it twice yields ErrInvalidState the second time.
func (r *SQLiteRepo) CompleteOffer(ctx context.Context, offerID, callerID int64) (*models.Offer, error) {
	offer, err := r.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, fmt.Errorf("offer %d: %w", offerID, models.ErrNotFound)
	}
	if offer.CraftsmanID != callerID {
		return nil, fmt.Errorf("offer %d does not belong to account %d: %w", offerID, callerID, models.ErrForbidden)
	}
	if !offer.Status.CanTransitionTo(models.OfferCompleted) {
		return nil, fmt.Errorf("offer %d is %s: %w", offerID, offer.Status, models.ErrInvalidState)
	}

	// guarded update: the WHERE status clause makes the transition atomic
	// against a concurrent state change
	res, err := r.conn.Exec(ctx, `UPDATE offers SET status = ?, updated = ? WHERE id = ? AND status = ?`,
		string(models.OfferCompleted), now(), offerID, string(models.OfferInProgress))
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("offer %d left %s concurrently: %w", offerID, models.OfferInProgress, models.ErrInvalidState)
	}

	return r.GetOffer(ctx, offerID)
}

func (r *SQLiteRepo) CountOffers(ctx context.Context, craftsmanID int64, status models.OfferStatus) (int64, error) {
	query := `SELECT COUNT(1) FROM offers WHERE craftsman_id = ?`
	args := []any{craftsmanID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}

	var count int64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SQLiteRepo) CountOpenOffersByTrade(ctx context.Context, trade string) (int64, error) {
	var count int64
	err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM offers WHERE status = ? AND LOWER(trade) = LOWER(?)`,
		string(models.OfferOpen), trade).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func scanOffer(scan func(dest ...any) error) (*models.Offer, error) {
	var o models.Offer
	var status string
	if err := scan(&o.ID, &o.CraftsmanID, &o.Title, &o.Description, &o.Trade, &o.ZipCode, &status, &o.Created, &o.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	o.Status = models.OfferStatus(status)
	return &o, nil
}
