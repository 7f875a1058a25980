package authority

import (
	"context"

	"lattice/domain"

	"github.com/fundwit/go-commons/types"
)

// IsElevated reports whether the user sees scope-wide data (true) or
// only self-scoped data (false). A user is elevated at a scope when it
// holds the super permission, when its membership rank there is manager
// or above, or when it is the owner of the containing organization even
// absent a membership row. Every read-side collaborator (analytics,
// search) decides through this predicate and never re-implements rank
// comparison.
func IsElevated(ctx context.Context, actor Actor, kind ScopeKind, scopeId types.ID) (bool, error) {
	if actor.UserID == 0 {
		return false, nil
	}
	if actor.Perms.HasRole(SystemAdminPermissionID) {
		return true, nil
	}

	heldRole, err := FindMembershipRoleFunc(ctx, kind, actor.UserID, scopeId)
	if err != nil {
		return false, err
	}
	if heldRole != "" && RankAtLeast(heldRole, domain.RoleManager) {
		return true, nil
	}

	owner, err := FindContainingOrgOwnerFunc(ctx, kind, scopeId)
	if err != nil {
		return false, err
	}
	return owner != 0 && owner == actor.UserID, nil
}
