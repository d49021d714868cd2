// Package access holds the association-scoped authorization checks that
// run before tenant mutations.
package access

import (
	"context"
	"fmt"

	"github.com/iliyamo/konbase/internal/model"
	"github.com/iliyamo/konbase/internal/repository"
)

// MemberLookup is the one DataAccess method the guard needs.
type MemberLookup interface {
	GetAssociationMember(ctx context.Context, associationID, profileID string) (*model.AssociationMember, error)
}

// RequireAssociationMember returns the caller's role in the association,
// or repository.ErrForbidden when the caller is not a member.  Profile ids
// equal user ids, so userID is used for the lookup directly.  Exactly one
// read is issued per call; nothing is cached.
func RequireAssociationMember(ctx context.Context, lookup MemberLookup, userID, associationID string) (model.Role, error) {
	m, err := lookup.GetAssociationMember(ctx, associationID, userID)
	if err != nil {
		return "", err
	}
	if m == nil {
		return "", fmt.Errorf("%w: not a member of association %s", repository.ErrForbidden, associationID)
	}
	return m.Role, nil
}

// HasRoleOrAbove reports whether role ranks at or above required.
// Unknown roles never qualify.
func HasRoleOrAbove(role, required model.Role) bool {
	r, q := role.Rank(), required.Rank()
	return r >= 0 && q >= 0 && r >= q
}

// RequireRole combines both checks: the caller must be a member with at
// least the required role.
func RequireRole(ctx context.Context, lookup MemberLookup, userID, associationID string, required model.Role) (model.Role, error) {
	role, err := RequireAssociationMember(ctx, lookup, userID, associationID)
	if err != nil {
		return "", err
	}
	if !HasRoleOrAbove(role, required) {
		return role, fmt.Errorf("%w: role %s is below %s", repository.ErrForbidden, role, required)
	}
	return role, nil
}
