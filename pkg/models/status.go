package models

// Role determines which profile extension an account carries and which
// operations are permitted.
type Role string

const (
	RoleCustomer  Role = "CUSTOMER"
	RoleCraftsman Role = "CRAFTSMAN"
	RoleAdmin     Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleCraftsman, RoleAdmin:
		return true
	}
	return false
}

// OfferStatus is a strictly forward-moving state machine:
// OPEN -> IN_PROGRESS -> COMPLETED. No regression, no skipping.
type OfferStatus string

const (
	OfferOpen       OfferStatus = "OPEN"
	OfferInProgress OfferStatus = "IN_PROGRESS"
	OfferCompleted  OfferStatus = "COMPLETED"
)

func (s OfferStatus) Valid() bool {
	switch s {
	case OfferOpen, OfferInProgress, OfferCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal successor of s. Every
// offer status mutation goes through this check so illegal transitions
// are rejected in one place.
func (s OfferStatus) CanTransitionTo(next OfferStatus) bool {
	switch s {
	case OfferOpen:
		return next == OfferInProgress
	case OfferInProgress:
		return next == OfferCompleted
	}
	return false
}

type InquiryStatus string

const (
	InquirySubmitted InquiryStatus = "SUBMITTED"
	InquiryAccepted  InquiryStatus = "ACCEPTED"
	InquiryRejected  InquiryStatus = "REJECTED"
)

func (s InquiryStatus) Valid() bool {
	switch s {
	case InquirySubmitted, InquiryAccepted, InquiryRejected:
		return true
	}
	return false
}
