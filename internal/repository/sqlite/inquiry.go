package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/craftwork/handwerk/pkg/models"
)

const inquiryColumns = `id, offer_id, customer_id, status, cover_letter, created`

// CreateInquiry creates a SUBMITTED inquiry against an OPEN offer.
// Preconditions, checked in order: the offer must exist, must still be
// OPEN, and the customer must not already have an inquiry for it.
func (r *SQLiteRepo) CreateInquiry(ctx context.Context, offerID, customerID int64, coverLetter string) (*models.Inquiry, error) {
	offer, err := r.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, fmt.Errorf("offer %d: %w", offerID, models.ErrNotFound)
	}
	if offer.Status != models.OfferOpen {
		return nil, fmt.Errorf("offer %d is %s, no new inquiries: %w", offerID, offer.Status, models.ErrInvalidState)
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO inquiries (offer_id, customer_id, status, cover_letter, created) VALUES (?, ?, ?, ?, ?)`,
		offerID, customerID, string(models.InquirySubmitted), coverLetter, now())
	if err != nil {
		// UNIQUE(offer_id, customer_id)
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("inquiry for offer %d by customer %d: %w", offerID, customerID, models.ErrConflict)
		}
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetInquiry(ctx, id)
}

func (r *SQLiteRepo) GetInquiry(ctx context.Context, id int64) (*models.Inquiry, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE id = ?`, id)
	return scanInquiry(row.Scan)
}

func (r *SQLiteRepo) ListInquiriesByOffer(ctx context.Context, offerID int64) ([]models.Inquiry, error) {
	return r.listInquiries(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE offer_id = ? ORDER BY created DESC`, offerID)
}

// ListInquiriesFor scopes by role: customers see the inquiries they
// submitted, craftsmen see inquiries against their offers.
func (r *SQLiteRepo) ListInquiriesFor(ctx context.Context, accountID int64, role models.Role) ([]models.Inquiry, error) {
	switch role {
	case models.RoleCustomer:
		return r.listInquiries(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE customer_id = ? ORDER BY created DESC`, accountID)
	case models.RoleCraftsman:
		return r.listInquiries(ctx, `SELECT i.id, i.offer_id, i.customer_id, i.status, i.cover_letter, i.created FROM inquiries i JOIN offers o ON i.offer_id = o.id WHERE o.craftsman_id = ? ORDER BY i.created DESC`, accountID)
	default:
		return []models.Inquiry{}, nil
	}
}

// AcceptInquiry is the acceptance workflow. Preconditions in order, each a
// distinct failure: the inquiry must exist, the caller must own the
// inquiry's offer, and the offer must still be OPEN. The effect is one
// transaction: accept this inquiry, advance the offer to IN_PROGRESS and
// reject every sibling inquiry. The guarded offer update is the
// serialization point; when two acceptances race on the same offer,
// exactly one commits and the other observes ErrInvalidState.
func (r *SQLiteRepo) AcceptInquiry(ctx context.Context, inquiryID, callerID int64) (*models.Inquiry, error) {
	inquiry, err := r.GetInquiry(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if inquiry == nil {
		return nil, fmt.Errorf("inquiry %d: %w", inquiryID, models.ErrNotFound)
	}

	offer, err := r.GetOffer(ctx, inquiry.OfferID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, fmt.Errorf("offer %d: %w", inquiry.OfferID, models.ErrNotFound)
	}
	if offer.CraftsmanID != callerID {
		return nil, fmt.Errorf("offer %d does not belong to account %d: %w", offer.ID, callerID, models.ErrForbidden)
	}
	if offer.Status != models.OfferOpen {
		return nil, fmt.Errorf("offer %d no longer open: %w", offer.ID, models.ErrInvalidState)
	}

	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	// guarded transition OPEN -> IN_PROGRESS; zero rows affected means a
	// concurrent acceptance won the race
	res, err := tx.ExecContext(ctx, `UPDATE offers SET status = ?, updated = ? WHERE id = ? AND status = ?`,
		string(models.OfferInProgress), now(), offer.ID, string(models.OfferOpen))
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if n == 0 {
		_ = tx.Rollback()
		return nil, fmt.Errorf("offer %d no longer open: %w", offer.ID, models.ErrInvalidState)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE inquiries SET status = ? WHERE id = ?`,
		string(models.InquiryAccepted), inquiryID); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE inquiries SET status = ? WHERE offer_id = ? AND id != ?`,
		string(models.InquiryRejected), offer.ID, inquiryID); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetInquiry(ctx, inquiryID)
}

func (r *SQLiteRepo) CountSubmittedByCraftsman(ctx context.Context, craftsmanID int64) (int64, error) {
	var count int64
	err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM inquiries i JOIN offers o ON i.offer_id = o.id WHERE o.craftsman_id = ? AND i.status = ?`,
		craftsmanID, string(models.InquirySubmitted)).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SQLiteRepo) CountInquiries(ctx context.Context, customerID int64, status models.InquiryStatus) (int64, error) {
	query := `SELECT COUNT(1) FROM inquiries WHERE customer_id = ?`
	args := []any{customerID}
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

func (r *SQLiteRepo) listInquiries(ctx context.Context, query string, args ...any) ([]models.Inquiry, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Inquiry
	for rows.Next() {
		i, err := scanInquiry(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *i)
	}
	return out, rows.Err()
}

func scanInquiry(scan func(dest ...any) error) (*models.Inquiry, error) {
	var i models.Inquiry
	var status string
	if err := scan(&i.ID, &i.OfferID, &i.CustomerID, &status, &i.CoverLetter, &i.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	i.Status = models.InquiryStatus(status)
	return &i, nil
}
