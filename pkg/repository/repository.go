package repository

import (
	"context"

	"github.com/craftwork/handwerk/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

type AccountRepo interface {
	CreateAccount(ctx context.Context, a *models.Account) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdateAccount(ctx context.Context, a *models.Account) error
	DeleteAccount(ctx context.Context, id int64) error
}

type ProfileRepo interface {
	CreateCustomerProfile(ctx context.Context, p *models.CustomerProfile) error
	GetCustomerProfile(ctx context.Context, accountID int64) (*models.CustomerProfile, error)
	UpdateCustomerProfile(ctx context.Context, p *models.CustomerProfile) error

	CreateCraftsmanProfile(ctx context.Context, p *models.CraftsmanProfile) error
	GetCraftsmanProfile(ctx context.Context, accountID int64) (*models.CraftsmanProfile, error)
	UpdateCraftsmanProfile(ctx context.Context, p *models.CraftsmanProfile) error
	SetCraftsmanVerified(ctx context.Context, accountID int64, verified bool) error

	// FindMatches returns every craftsman profile whose trade equals the
	// given trade case-insensitively and whose service_area_zip contains
	// zip as a substring. Ordering is unspecified; empty result is valid.
	FindMatches(ctx context.Context, trade, zip string) ([]models.CraftsmanProfile, error)
}

type OfferRepo interface {
	CreateOffer(ctx context.Context, o *models.Offer) (int64, error)
	GetOffer(ctx context.Context, id int64) (*models.Offer, error)
	// ListOffersFor applies the role visibility scope: customers see the
	// open marketplace, craftsmen see their own offers, everyone else
	// sees nothing.
	ListOffersFor(ctx context.Context, accountID int64, role models.Role) ([]models.Offer, error)
	UpdateOffer(ctx context.Context, o *models.Offer) error
	DeleteOffer(ctx context.Context, id int64) error
	// CompleteOffer transitions the offer from IN_PROGRESS to COMPLETED.
	CompleteOffer(ctx context.Context, offerID, callerID int64) (*models.Offer, error)
	CountOffers(ctx context.Context, craftsmanID int64, status models.OfferStatus) (int64, error)
	CountOpenOffersByTrade(ctx context.Context, trade string) (int64, error)
}

type InquiryRepo interface {
	CreateInquiry(ctx context.Context, offerID, customerID int64, coverLetter string) (*models.Inquiry, error)
	GetInquiry(ctx context.Context, id int64) (*models.Inquiry, error)
	ListInquiriesByOffer(ctx context.Context, offerID int64) ([]models.Inquiry, error)
	ListInquiriesFor(ctx context.Context, accountID int64, role models.Role) ([]models.Inquiry, error)
	// AcceptInquiry runs the acceptance workflow as one transaction:
	// accept the inquiry, advance the offer to IN_PROGRESS and reject all
	// sibling inquiries, all-or-nothing.
	AcceptInquiry(ctx context.Context, inquiryID, callerID int64) (*models.Inquiry, error)
	CountSubmittedByCraftsman(ctx context.Context, craftsmanID int64) (int64, error)
	CountInquiries(ctx context.Context, customerID int64, status models.InquiryStatus) (int64, error)
}

type ReviewRepo interface {
	CreateReview(ctx context.Context, offerID int64, rating int, comment string) (*models.Review, error)
	GetReviewByOffer(ctx context.Context, offerID int64) (*models.Review, error)
	ListReviewsByCraftsman(ctx context.Context, craftsmanID int64) ([]models.Review, error)
	RatingSummary(ctx context.Context, craftsmanID int64) (*models.RatingSummary, error)
}

type NotificationRepo interface {
	CreateNotification(ctx context.Context, n *models.Notification) (int64, error)
	ListNotifications(ctx context.Context, accountID int64, unreadOnly bool) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, accountID int64) error
	MarkAllNotificationsRead(ctx context.Context, accountID int64) error
}
