package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/craftwork/handwerk/pkg/models"
)

// CreateReview attaches the single review an offer may carry. Preconditions
// in order: the offer must exist, must be COMPLETED, must not already be
// reviewed, and the rating must be within [1,5].
func (r *SQLiteRepo) CreateReview(ctx context.Context, offerID int64, rating int, comment string) (*models.Review, error) {
	offer, err := r.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, fmt.Errorf("offer %d: %w", offerID, models.ErrNotFound)
	}
	if offer.Status != models.OfferCompleted {
		return nil, fmt.Errorf("offer %d is %s, only completed offers can be reviewed: %w", offerID, offer.Status, models.ErrInvalidState)
	}

	existing, err := r.GetReviewByOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("review for offer %d: %w", offerID, models.ErrConflict)
	}

	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating %d out of range [1,5]: %w", rating, models.ErrValidation)
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO reviews (offer_id, rating, comment, created) VALUES (?, ?, ?, ?)`,
		offerID, rating, comment, now())
	if err != nil {
		// reviews.offer_id is UNIQUE
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("review for offer %d: %w", offerID, models.ErrConflict)
		}
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	row := r.conn.QueryRow(ctx, `SELECT id, offer_id, rating, comment, created FROM reviews WHERE id = ?`, id)
	return scanReview(row.Scan)
}

func (r *SQLiteRepo) GetReviewByOffer(ctx context.Context, offerID int64) (*models.Review, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, offer_id, rating, comment, created FROM reviews WHERE offer_id = ?`, offerID)
	return scanReview(row.Scan)
}

func (r *SQLiteRepo) ListReviewsByCraftsman(ctx context.Context, craftsmanID int64) ([]models.Review, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT r.id, r.offer_id, r.rating, r.comment, r.created FROM reviews r JOIN offers o ON r.offer_id = o.id WHERE o.craftsman_id = ? ORDER BY r.created DESC`, craftsmanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Review
	for rows.Next() {
		rv, err := scanReview(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *rv)
	}
	return out, rows.Err()
}

// RatingSummary computes the arithmetic mean over all reviews of the
// craftsman's offers, rounded to 2 decimal places. Average is nil when
// there are no reviews. Computed on read; fine at this scale.
func (r *SQLiteRepo) RatingSummary(ctx context.Context, craftsmanID int64) (*models.RatingSummary, error) {
	row := r.conn.QueryRow(ctx, `SELECT COUNT(r.id), AVG(r.rating) FROM reviews r JOIN offers o ON r.offer_id = o.id WHERE o.craftsman_id = ?`, craftsmanID)

	var count int64
	var avg sql.NullFloat64
	if err := row.Scan(&count, &avg); err != nil {
		return nil, err
	}

	summary := &models.RatingSummary{Count: count}
	if count > 0 && avg.Valid {
		rounded := math.Round(avg.Float64*100) / 100
		summary.Average = &rounded
	}
	return summary, nil
}

func scanReview(scan func(dest ...any) error) (*models.Review, error) {
	var rv models.Review
	if err := scan(&rv.ID, &rv.OfferID, &rv.Rating, &rv.Comment, &rv.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &rv, nil
}
