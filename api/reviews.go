package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/craftwork/handwerk/internal/notify"
	"github.com/craftwork/handwerk/pkg/models"
	"github.com/craftwork/handwerk/pkg/repository"
)

type ReviewsHandler struct {
	reviewRepo repository.ReviewRepo
	emitter    *notify.Emitter
}

func NewReviewsHandler(rr repository.ReviewRepo, em *notify.Emitter) *ReviewsHandler {
	return &ReviewsHandler{reviewRepo: rr, emitter: em}
}

type createReviewRequest struct {
	OfferID int64  `json:"offer_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CreateReview attaches the single review a COMPLETED offer may carry.
// Any authenticated account may submit it; the offer preconditions are
// what gate the operation.
func (h *ReviewsHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	_, _, ok := caller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validateBody(r.Context(), "review_create", body); err != nil {
		writeError(w, err)
		return
	}
	var req createReviewRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.OfferID <= 0 {
		http.Error(w, "offer_id is required", http.StatusBadRequest)
		return
	}

	review, err := h.reviewRepo.CreateReview(r.Context(), req.OfferID, req.Rating, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.emitter.Emit(r.Context(), notify.EventReviewCreated, notify.Event{OfferID: review.OfferID, ReviewID: review.ID}); err != nil {
		logger.Warn("enqueue review_created event", "err", err)
	}

	writeJSON(w, review, http.StatusCreated)
}

// ListCraftsmanReviews is a public listing of all reviews attached to a
// craftsman's offers.
func (h *ReviewsHandler) ListCraftsmanReviews(w http.ResponseWriter, r *http.Request) {
	craftsmanID, done := pathID(w, r, "id")
	if done {
		return
	}

	reviews, err := h.reviewRepo.ListReviewsByCraftsman(r.Context(), craftsmanID)
	if err != nil {
		writeError(w, err)
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	writeJSON(w, reviews, http.StatusOK)
}

// RatingSummary returns {average, count} over all reviews of the
// craftsman's offers; average is null with zero reviews.
func (h *ReviewsHandler) RatingSummary(w http.ResponseWriter, r *http.Request) {
	craftsmanID, done := pathID(w, r, "id")
	if done {
		return
	}

	summary, err := h.reviewRepo.RatingSummary(r.Context(), craftsmanID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, summary, http.StatusOK)
}
