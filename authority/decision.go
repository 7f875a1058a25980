package authority

import (
	"context"

	"lattice/bizerror"
	"lattice/domain"

	"github.com/fundwit/go-commons/types"
)

type DenyReason string

const (
	DenyUnauthenticated   DenyReason = "unauthenticated"
	DenyScopeNotSpecified DenyReason = "scope_not_specified"
	DenyScopeIdMissing    DenyReason = "scope_id_missing"
	DenyNotFound          DenyReason = "not_found"
	DenyNotAMember        DenyReason = "not_a_member"
	DenyInsufficientRole  DenyReason = "insufficient_role"
)

// Verdict is the outcome of one authorization decision. It is never
// persisted and is recomputed on every request.
type Verdict struct {
	Allowed bool
	Reason  DenyReason
}

func Allow() Verdict {
	return Verdict{Allowed: true}
}

func Deny(reason DenyReason) Verdict {
	return Verdict{Allowed: false, Reason: reason}
}

// AsError maps a deny verdict onto the business error the request layer
// responds with. Allow verdicts map to nil.
func (v Verdict) AsError() error {
	if v.Allowed {
		return nil
	}
	switch v.Reason {
	case DenyUnauthenticated:
		return bizerror.ErrUnauthenticated
	case DenyScopeNotSpecified:
		return bizerror.ErrScopeNotSpecified
	case DenyScopeIdMissing:
		return bizerror.ErrScopeIdMissing
	case DenyNotFound:
		return bizerror.ErrNotFound
	case DenyNotAMember:
		return bizerror.ErrNotAMember
	case DenyInsufficientRole:
		return bizerror.ErrInsufficientRole
	}
	return bizerror.ErrForbidden
}

// Actor is the authenticated principal a decision is computed for.
// A zero UserID means the request carries no authenticated user.
type Actor struct {
	UserID types.ID
	Perms  Permissions
}

// Decide evaluates one operation policy against one request. It is a
// pure function of (actor, policy, params, committed membership state):
// no verdict is cached across requests. The returned error reports
// resolver infrastructure failures only; every authorization outcome is
// expressed in the verdict.
func Decide(ctx context.Context, actor Actor, policy OperationPolicy, params *ParamBag) (Verdict, error) {
	if actor.UserID == 0 {
		return Deny(DenyUnauthenticated), nil
	}
	if actor.Perms.HasRole(SystemAdminPermissionID) {
		return Allow(), nil
	}
	if len(policy.RequiredRoles) == 0 {
		return Allow(), nil
	}

	descriptor := ScopeDescriptor{}
	if policy.Scope != nil {
		descriptor = *policy.Scope
	} else {
		inferred, ok := InferScope(params)
		if !ok {
			return Deny(DenyScopeNotSpecified), nil
		}
		descriptor = inferred
	}

	rawLocator := params.Get(descriptor.LocatorParam)
	if rawLocator == "" {
		return Deny(DenyScopeIdMissing), nil
	}

	var scopeId types.ID
	var visibility string
	if descriptor.Kind == ScopeProject && descriptor.LocatorParam == "slug" {
		project, err := FindProjectBySlugFunc(ctx, rawLocator)
		if err != nil {
			return Verdict{}, err
		}
		if project == nil {
			return Deny(DenyNotFound), nil
		}
		scopeId = project.ID
		visibility = project.Visibility
	} else {
		id, err := types.ParseID(rawLocator)
		if err != nil {
			// organization scope degrades malformed ids to "no membership"
			// instead of surfacing a parse error; other scopes report the
			// locator as unresolvable
			if descriptor.Kind == ScopeOrganization {
				return Deny(DenyNotAMember), nil
			}
			return Deny(DenyNotFound), nil
		}
		scopeId = id

		if descriptor.Kind == ScopeProject {
			project, err := FindProjectByIDFunc(ctx, scopeId)
			if err != nil {
				return Verdict{}, err
			}
			if project != nil {
				visibility = project.Visibility
			}
		}
	}

	if descriptor.Kind == ScopeProject && visibility == domain.ProjectVisibilityPublic {
		return Allow(), nil
	}

	heldRole, err := FindMembershipRoleFunc(ctx, descriptor.Kind, actor.UserID, scopeId)
	if err != nil {
		return Verdict{}, err
	}
	if heldRole == "" {
		return Deny(DenyNotAMember), nil
	}

	for _, required := range policy.RequiredRoles {
		if RankAtLeast(heldRole, required) {
			return Allow(), nil
		}
	}
	return Deny(DenyInsufficientRole), nil
}
