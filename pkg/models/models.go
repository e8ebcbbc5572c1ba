package models

type Account struct {
	ID           int64  `json:"id" db:"id"`
	Email        string `json:"email" db:"email" validate:"required,email"`
	Role         Role   `json:"role" db:"role"`
	FirstName    string `json:"first_name,omitempty" db:"first_name"`
	LastName     string `json:"last_name,omitempty" db:"last_name"`
	PasswordHash string `json:"-" db:"password_hash"`
	Created      int64  `json:"created" db:"created"`
	Updated      int64  `json:"updated" db:"updated"`
}

type CustomerProfile struct {
	AccountID   int64  `json:"account_id" db:"account_id"`
	PhoneNumber string `json:"phone_number,omitempty" db:"phone_number"`
	Address     string `json:"address,omitempty" db:"address"`
	Updated     int64  `json:"updated" db:"updated"`
}

type CraftsmanProfile struct {
	AccountID      int64  `json:"account_id" db:"account_id"`
	CompanyName    string `json:"company_name,omitempty" db:"company_name"`
	Trade          string `json:"trade" db:"trade"`
	ServiceAreaZip string `json:"service_area_zip" db:"service_area_zip"`
	IsVerified     bool   `json:"is_verified" db:"is_verified"`
	Updated        int64  `json:"updated" db:"updated"`
}

type Offer struct {
	ID          int64       `json:"id" db:"id"`
	CraftsmanID int64       `json:"craftsman_id" db:"craftsman_id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description,omitempty" db:"description"`
	Trade       string      `json:"trade" db:"trade"`
	ZipCode     string      `json:"zip_code" db:"zip_code"`
	Status      OfferStatus `json:"status" db:"status"`
	Created     int64       `json:"created" db:"created"`
	Updated     int64       `json:"updated" db:"updated"`
}

type Inquiry struct {
	ID          int64         `json:"id" db:"id"`
	OfferID     int64         `json:"offer_id" db:"offer_id"`
	CustomerID  int64         `json:"customer_id" db:"customer_id"`
	Status      InquiryStatus `json:"status" db:"status"`
	CoverLetter string        `json:"cover_letter,omitempty" db:"cover_letter"`
	Created     int64         `json:"created" db:"created"`
}

type Review struct {
	ID      int64  `json:"id" db:"id"`
	OfferID int64  `json:"offer_id" db:"offer_id"`
	Rating  int    `json:"rating" db:"rating"`
	Comment string `json:"comment,omitempty" db:"comment"`
	Created int64  `json:"created" db:"created"`
}

// RatingSummary aggregates all reviews attached to a craftsman's offers.
// Average is nil when the craftsman has no reviews yet.
type RatingSummary struct {
	Average *float64 `json:"average"`
	Count   int64    `json:"count"`
}

type Notification struct {
	ID        int64  `json:"id" db:"id"`
	AccountID int64  `json:"account_id" db:"account_id"`
	Kind      string `json:"kind" db:"kind"`
	Title     string `json:"title" db:"title"`
	Message   string `json:"message,omitempty" db:"message"`
	IsRead    bool   `json:"is_read" db:"is_read"`
	OfferID   *int64 `json:"offer_id,omitempty" db:"offer_id"`
	InquiryID *int64 `json:"inquiry_id,omitempty" db:"inquiry_id"`
	ReviewID  *int64 `json:"review_id,omitempty" db:"review_id"`
	Created   int64  `json:"created" db:"created"`
}
