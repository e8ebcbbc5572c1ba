package policy_test

import (
	"testing"

	"github.com/craftwork/handwerk/internal/policy"
	"github.com/craftwork/handwerk/pkg/models"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		role   models.Role
		action policy.Action
		want   bool
	}{
		{models.RoleCustomer, policy.ActionListOffers, true},
		{models.RoleCustomer, policy.ActionCreateInquiry, true},
		{models.RoleCustomer, policy.ActionCreateReview, true},
		{models.RoleCustomer, policy.ActionCreateOffer, false},
		{models.RoleCustomer, policy.ActionAcceptInquiry, false},
		{models.RoleCustomer, policy.ActionCompleteOffer, false},
		{models.RoleCustomer, policy.ActionVerifyCraftsman, false},

		{models.RoleCraftsman, policy.ActionCreateOffer, true},
		{models.RoleCraftsman, policy.ActionListOffers, true},
		{models.RoleCraftsman, policy.ActionCompleteOffer, true},
		{models.RoleCraftsman, policy.ActionMatchOffer, true},
		{models.RoleCraftsman, policy.ActionAcceptInquiry, true},
		{models.RoleCraftsman, policy.ActionCreateInquiry, false},
		{models.RoleCraftsman, policy.ActionVerifyCraftsman, false},

		{models.RoleAdmin, policy.ActionVerifyCraftsman, true},
		{models.RoleAdmin, policy.ActionCreateOffer, false},
		{models.RoleAdmin, policy.ActionAcceptInquiry, false},

		// unknown roles get nothing
		{models.Role("superuser"), policy.ActionListOffers, false},
		{models.Role(""), policy.ActionCreateReview, false},
	}

	for _, tc := range tests {
		if got := policy.Allowed(tc.role, tc.action); got != tc.want {
			t.Fatalf("Allowed(%s, %s) = %v, want %v", tc.role, tc.action, got, tc.want)
		}
	}
}
