// Package policy centralizes the role-to-permission mapping so role checks
// are not repeated inline per handler.
package policy

import "github.com/craftwork/handwerk/pkg/models"

// Action names an operation a caller may or may not perform. Ownership and
// state preconditions are still enforced by the repositories; the policy
// table only answers "may this role attempt this at all".
type Action string

const (
	ActionCreateOffer     Action = "offer.create"
	ActionListOffers      Action = "offer.list"
	ActionCompleteOffer   Action = "offer.complete"
	ActionMatchOffer      Action = "offer.matches"
	ActionCreateInquiry   Action = "inquiry.create"
	ActionAcceptInquiry   Action = "inquiry.accept"
	ActionCreateReview    Action = "review.create"
	ActionVerifyCraftsman Action = "craftsman.verify"
)

var allowed = map[models.Role]map[Action]bool{
	models.RoleCustomer: {
		ActionListOffers:    true,
		ActionCreateInquiry: true,
		ActionCreateReview:  true,
	},
	models.RoleCraftsman: {
		ActionCreateOffer:   true,
		ActionListOffers:    true,
		ActionCompleteOffer: true,
		ActionMatchOffer:    true,
		ActionAcceptInquiry: true,
		ActionCreateReview:  true,
	},
	models.RoleAdmin: {
		ActionVerifyCraftsman: true,
		ActionCreateReview:    true,
	},
}

// Allowed reports whether the role may attempt the action.
func Allowed(role models.Role, action Action) bool {
	return allowed[role][action]
}
