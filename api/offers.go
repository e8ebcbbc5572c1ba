package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/craftwork/handwerk/internal/notify"
	"github.com/craftwork/handwerk/internal/policy"
	"github.com/craftwork/handwerk/pkg/models"
	"github.com/craftwork/handwerk/pkg/repository"
	"github.com/gorilla/mux"
)

type OffersHandler struct {
	offerRepo   repository.OfferRepo
	inquiryRepo repository.InquiryRepo
	profileRepo repository.ProfileRepo
	emitter     *notify.Emitter
}

func NewOffersHandler(or repository.OfferRepo, ir repository.InquiryRepo, pr repository.ProfileRepo, em *notify.Emitter) *OffersHandler {
	return &OffersHandler{offerRepo: or, inquiryRepo: ir, profileRepo: pr, emitter: em}
}

type offerRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Trade       string `json:"trade"`
	ZipCode     string `json:"zip_code"`
}

// CreateOffer creates an OPEN offer owned by the calling craftsman.
func (h *OffersHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	callerID, role, ok := caller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !policy.Allowed(role, policy.ActionCreateOffer) {
		writeError(w, fmt.Errorf("role %s cannot create offers: %w", role, models.ErrForbidden))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validateBody(r.Context(), "offer_create", body); err != nil {
		writeError(w, err)
		return
	}
	var req offerRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	offer := &models.Offer{
		CraftsmanID: callerID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Trade:       strings.TrimSpace(req.Trade),
		ZipCode:     strings.TrimSpace(req.ZipCode),
	}
	id, err := h.offerRepo.CreateOffer(r.Context(), offer)
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := h.offerRepo.GetOffer(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, created, http.StatusCreated)
}

// ListOffers returns the role-scoped view: customers get the open
// marketplace, craftsmen their own offers.
func (h *OffersHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	callerID, role, ok := caller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	offers, err := h.offerRepo.ListOffersFor(r.Context(), callerID, role)
	if err != nil {
		writeError(w, err)
		return
	}
	if offers == nil {
		offers = []models.Offer{}
	}
	writeJSON(w, offers, http.StatusOK)
}

func (h *OffersHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	offer, done := h.loadOffer(w, r)
	if done {
		return
	}
	writeJSON(w, offer, http.StatusOK)
}

// UpdateOffer is permitted only to the owning craftsman.
func (h *OffersHandler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := caller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	offer, done := h.loadOffer(w, r)
	if done {
		return
	}
	if offer.CraftsmanID != callerID {
		writeError(w, fmt.Errorf("offer %d does not belong to account %d: %w", offer.ID, callerID, models.ErrForbidden))
		return
	}

	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Title != "" {
		offer.Title = req.Title
	}
	if req.Description != "" {
		offer.Description = req.Description
	}
	if req.Trade != "" {
		offer.Trade = req.Trade
	}
	if req.ZipCode != "" {
		offer.ZipCode = req.ZipCode
	}

	if err := h.offerRepo.UpdateOffer(r.Context(), offer); err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.offerRepo.GetOffer(r.Context(), offer.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, updated, http.StatusOK)
}

// DeleteOffer is permitted only to the owning craftsman; inquiries and the
// review cascade with it.
func (h *OffersHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := caller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	offer, done := h.loadOffer(w, r)
	if done {
		return
	}
	if offer.CraftsmanID != callerID {
		writeError(w, fmt.Errorf("offer %d does not belong to account %d: %w", offer.ID, callerID, models.ErrForbidden))
		return
	}

	if err := h.offerRepo.DeleteOffer(r.Context(), offer.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompleteOffer advances IN_PROGRESS -> COMPLETED for the owning craftsman.
func (h *OffersHandler) CompleteOffer(w http.ResponseWriter, r *http.Request) {
	callerID, role, ok := caller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !policy.Allowed(role, policy.ActionCompleteOffer) {
		writeError(w, fmt.Errorf("role %s cannot complete offers: %w", role, models.ErrForbidden))
		return
	}
	offerID, done := pathID(w, r, "id")
	if done {
		return
	}

	offer, err := h.offerRepo.CompleteOffer(r.Context(), offerID, callerID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.emitter.Emit(r.Context(), notify.EventOfferCompleted, notify.Event{OfferID: offer.ID}); err != nil {
		logger.Warn("enqueue offer_completed event", "err", err)
	}

	writeJSON(w, offer, http.StatusOK)
}

// Matches returns the craftsman profiles matching the offer's trade and
// zip code. Read-only, owner-scoped like the rest of the offer detail.
func (h *OffersHandler) Matches(w http.ResponseWriter, r *http.Request) {
	_, role, ok := caller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !policy.Allowed(role, policy.ActionMatchOffer) {
		writeError(w, fmt.Errorf("role %s cannot query matches: %w", role, models.ErrForbidden))
		return
	}
	offer, done := h.loadOffer(w, r)
	if done {
		return
	}

	matches, err := h.profileRepo.FindMatches(r.Context(), offer.Trade, offer.ZipCode)
	if err != nil {
		writeError(w, err)
		return
	}
	if matches == nil {
		matches = []models.CraftsmanProfile{}
	}
	writeJSON(w, matches, http.StatusOK)
}

// ListOfferInquiries lists all inquiries of one offer for its owner.
func (h *OffersHandler) ListOfferInquiries(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := caller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	offer, done := h.loadOffer(w, r)
	if done {
		return
	}
	if offer.CraftsmanID != callerID {
		writeError(w, fmt.Errorf("offer %d does not belong to account %d: %w", offer.ID, callerID, models.ErrForbidden))
		return
	}

	inquiries, err := h.inquiryRepo.ListInquiriesByOffer(r.Context(), offer.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if inquiries == nil {
		inquiries = []models.Inquiry{}
	}
	writeJSON(w, inquiries, http.StatusOK)
}

// loadOffer fetches the offer named in the path; on failure the response
// is already written and done is true.
func (h *OffersHandler) loadOffer(w http.ResponseWriter, r *http.Request) (*models.Offer, bool) {
	id, done := pathID(w, r, "id")
	if done {
		return nil, true
	}
	offer, err := h.offerRepo.GetOffer(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, true
	}
	if offer == nil {
		writeError(w, fmt.Errorf("offer %d: %w", id, models.ErrNotFound))
		return nil, true
	}
	return offer, false
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, true
	}
	return id, false
}
