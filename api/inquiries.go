package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/craftwork/handwerk/internal/notify"
	"github.com/craftwork/handwerk/internal/policy"
	"github.com/craftwork/handwerk/pkg/models"
	"github.com/craftwork/handwerk/pkg/repository"
)

type InquiriesHandler struct {
	inquiryRepo repository.InquiryRepo
	emitter     *notify.Emitter
}

func NewInquiriesHandler(ir repository.InquiryRepo, em *notify.Emitter) *InquiriesHandler {
	return &InquiriesHandler{inquiryRepo: ir, emitter: em}
}

type createInquiryRequest struct {
	OfferID     int64  `json:"offer_id"`
	CoverLetter string `json:"cover_letter"`
}

// CreateInquiry submits a customer's inquiry against an OPEN offer.
func (h *InquiriesHandler) CreateInquiry(w http.ResponseWriter, r *http.Request) {
	callerID, role, ok := caller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !policy.Allowed(role, policy.ActionCreateInquiry) {
		writeError(w, fmt.Errorf("role %s cannot create inquiries: %w", role, models.ErrForbidden))
		return
	}

	var req createInquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.OfferID <= 0 {
		http.Error(w, "offer_id is required", http.StatusBadRequest)
		return
	}

	inquiry, err := h.inquiryRepo.CreateInquiry(r.Context(), req.OfferID, callerID, req.CoverLetter)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.emitter.Emit(r.Context(), notify.EventInquiryCreated, notify.Event{InquiryID: inquiry.ID, OfferID: inquiry.OfferID}); err != nil {
		logger.Warn("enqueue inquiry_created event", "err", err)
	}

	writeJSON(w, inquiry, http.StatusCreated)
}

// ListInquiries returns the caller's scope: customers their own inquiries,
// craftsmen the inquiries against their offers.
func (h *InquiriesHandler) ListInquiries(w http.ResponseWriter, r *http.Request) {
	callerID, role, ok := caller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	inquiries, err := h.inquiryRepo.ListInquiriesFor(r.Context(), callerID, role)
	if err != nil {
		writeError(w, err)
		return
	}
	if inquiries == nil {
		inquiries = []models.Inquiry{}
	}
	writeJSON(w, inquiries, http.StatusOK)
}

// AcceptInquiry triggers the acceptance workflow. The winning inquiry is
// returned; siblings were rejected and the offer advanced in the same
// transaction. Notification events for the accepted and rejected
// customers are enqueued after commit.
func (h *InquiriesHandler) AcceptInquiry(w http.ResponseWriter, r *http.Request) {
	callerID, role, ok := caller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !policy.Allowed(role, policy.ActionAcceptInquiry) {
		writeError(w, fmt.Errorf("role %s cannot accept inquiries: %w", role, models.ErrForbidden))
		return
	}
	inquiryID, done := pathID(w, r, "id")
	if done {
		return
	}

	inquiry, err := h.inquiryRepo.AcceptInquiry(r.Context(), inquiryID, callerID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.emitter.Emit(r.Context(), notify.EventInquiryAccepted, notify.Event{InquiryID: inquiry.ID, OfferID: inquiry.OfferID}); err != nil {
		logger.Warn("enqueue inquiry_accepted event", "err", err)
	}
	siblings, err := h.inquiryRepo.ListInquiriesByOffer(r.Context(), inquiry.OfferID)
	if err == nil {
		for _, sib := range siblings {
			if sib.ID == inquiry.ID || sib.Status != models.InquiryRejected {
				continue
			}
			if err := h.emitter.Emit(r.Context(), notify.EventInquiryRejected, notify.Event{InquiryID: sib.ID, OfferID: sib.OfferID}); err != nil {
				logger.Warn("enqueue inquiry_rejected event", "err", err)
			}
		}
	}

	writeJSON(w, inquiry, http.StatusOK)
}
