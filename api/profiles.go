package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/craftwork/handwerk/internal/policy"
	"github.com/craftwork/handwerk/pkg/models"
	"github.com/craftwork/handwerk/pkg/repository"
)

type ProfilesHandler struct {
	accountRepo repository.AccountRepo
	profileRepo repository.ProfileRepo
	offerRepo   repository.OfferRepo
	inquiryRepo repository.InquiryRepo
}

func NewProfilesHandler(ar repository.AccountRepo, pr repository.ProfileRepo, or repository.OfferRepo, ir repository.InquiryRepo) *ProfilesHandler {
	return &ProfilesHandler{accountRepo: ar, profileRepo: pr, offerRepo: or, inquiryRepo: ir}
}

// Me returns the calling account.
func (h *ProfilesHandler) Me(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := caller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	account, err := h.accountRepo.GetByID(r.Context(), callerID)
	if err != nil {
		writeError(w, err)
		return
	}
	if account == nil {
		writeError(w, fmt.Errorf("account %d: %w", callerID, models.ErrNotFound))
		return
	}
	writeJSON(w, account, http.StatusOK)
}

// GetProfile returns the caller's role-specific profile extension.
func (h *ProfilesHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	callerID, role, ok := caller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch role {
	case models.RoleCustomer:
		p, err := h.profileRepo.GetCustomerProfile(r.Context(), callerID)
		if err != nil {
			writeError(w, err)
			return
		}
		if p == nil {
			writeError(w, fmt.Errorf("customer profile %d: %w", callerID, models.ErrNotFound))
			return
		}
		writeJSON(w, p, http.StatusOK)
	case models.RoleCraftsman:
		p, err := h.profileRepo.GetCraftsmanProfile(r.Context(), callerID)
		if err != nil {
			writeError(w, err)
			return
		}
		if p == nil {
			writeError(w, fmt.Errorf("craftsman profile %d: %w", callerID, models.ErrNotFound))
			return
		}
		writeJSON(w, p, http.StatusOK)
	default:
		writeError(w, fmt.Errorf("role %s has no profile extension: %w", role, models.ErrNotFound))
	}
}

type customerProfileRequest struct {
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

type craftsmanProfileRequest struct {
	CompanyName    string `json:"company_name"`
	Trade          string `json:"trade"`
	ServiceAreaZip string `json:"service_area_zip"`
}

// UpdateProfile updates the caller's own profile extension. The craftsman
// verification flag is not writable here, it belongs to the admin.
func (h *ProfilesHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	callerID, role, ok := caller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch role {
	case models.RoleCustomer:
		var req customerProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		p := &models.CustomerProfile{AccountID: callerID, PhoneNumber: req.PhoneNumber, Address: req.Address}
		if err := h.profileRepo.UpdateCustomerProfile(r.Context(), p); err != nil {
			writeError(w, err)
			return
		}
		updated, err := h.profileRepo.GetCustomerProfile(r.Context(), callerID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, updated, http.StatusOK)
	case models.RoleCraftsman:
		var req craftsmanProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		p := &models.CraftsmanProfile{AccountID: callerID, CompanyName: req.CompanyName, Trade: req.Trade, ServiceAreaZip: req.ServiceAreaZip}
		if err := h.profileRepo.UpdateCraftsmanProfile(r.Context(), p); err != nil {
			writeError(w, err)
			return
		}
		updated, err := h.profileRepo.GetCraftsmanProfile(r.Context(), callerID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, updated, http.StatusOK)
	default:
		writeError(w, fmt.Errorf("role %s has no profile extension: %w", role, models.ErrForbidden))
	}
}

type verifyRequest struct {
	Verified bool `json:"verified"`
}

// VerifyCraftsman sets the admin-owned verification flag on a craftsman
// profile.
func (h *ProfilesHandler) VerifyCraftsman(w http.ResponseWriter, r *http.Request) {
	_, role, ok := caller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !policy.Allowed(role, policy.ActionVerifyCraftsman) {
		writeError(w, fmt.Errorf("role %s cannot verify craftsmen: %w", role, models.ErrForbidden))
		return
	}
	craftsmanID, done := pathID(w, r, "id")
	if done {
		return
	}

	req := verifyRequest{Verified: true}
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
	}

	if err := h.profileRepo.SetCraftsmanVerified(r.Context(), craftsmanID, req.Verified); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.profileRepo.GetCraftsmanProfile(r.Context(), craftsmanID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, p, http.StatusOK)
}

// Dashboard returns per-role summary counts.
func (h *ProfilesHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	callerID, role, ok := caller(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx := r.Context()
	data := map[string]any{"account_id": callerID, "role": role}

	switch role {
	case models.RoleCraftsman:
		total, err := h.offerRepo.CountOffers(ctx, callerID, "")
		if err != nil {
			writeError(w, err)
			return
		}
		open, err := h.offerRepo.CountOffers(ctx, callerID, models.OfferOpen)
		if err != nil {
			writeError(w, err)
			return
		}
		inProgress, err := h.offerRepo.CountOffers(ctx, callerID, models.OfferInProgress)
		if err != nil {
			writeError(w, err)
			return
		}
		completed, err := h.offerRepo.CountOffers(ctx, callerID, models.OfferCompleted)
		if err != nil {
			writeError(w, err)
			return
		}
		newInquiries, err := h.inquiryRepo.CountSubmittedByCraftsman(ctx, callerID)
		if err != nil {
			writeError(w, err)
			return
		}
		data["craftsman_dashboard"] = map[string]int64{
			"total_offers":       total,
			"open_offers":        open,
			"in_progress_offers": inProgress,
			"completed_offers":   completed,
			"new_inquiries":      newInquiries,
		}
	case models.RoleCustomer:
		total, err := h.inquiryRepo.CountInquiries(ctx, callerID, "")
		if err != nil {
			writeError(w, err)
			return
		}
		accepted, err := h.inquiryRepo.CountInquiries(ctx, callerID, models.InquiryAccepted)
		if err != nil {
			writeError(w, err)
			return
		}
		data["customer_dashboard"] = map[string]int64{
			"total_inquiries":    total,
			"accepted_inquiries": accepted,
		}
	}

	writeJSON(w, data, http.StatusOK)
}
