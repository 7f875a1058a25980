package authority

import (
	"context"
	"errors"

	"lattice/domain"
	"lattice/persistence"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// Resolver seams. Production uses the gorm-backed implementations below;
// tests swap in fakes and restore with ResolverFuncsReset.
var (
	FindMembershipRoleFunc     = findMembershipRole
	FindProjectBySlugFunc      = findProjectBySlug
	FindProjectByIDFunc        = findProjectByID
	FindContainingOrgOwnerFunc = findContainingOrganizationOwner
)

func ResolverFuncsReset() {
	FindMembershipRoleFunc = findMembershipRole
	FindProjectBySlugFunc = findProjectBySlug
	FindProjectByIDFunc = findProjectByID
	FindContainingOrgOwnerFunc = findContainingOrganizationOwner
}

// ProjectLite is the slug/id resolution result the decision procedure
// needs: just enough to identify the project and apply the public
// visibility short-circuit.
type ProjectLite struct {
	ID         types.ID
	Visibility string
}

// findMembershipRole returns the user's role at the given scope, or ""
// when no membership row exists.
func findMembershipRole(ctx context.Context, kind ScopeKind, userId, scopeId types.ID) (string, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)

	var role []string
	var err error
	switch kind {
	case ScopeOrganization:
		err = db.Model(&domain.OrganizationMember{}).Where(&domain.OrganizationMember{OrgId: scopeId, MemberId: userId}).
			Pluck("role", &role).Error
	case ScopeWorkspace:
		err = db.Model(&domain.WorkspaceMember{}).Where(&domain.WorkspaceMember{WorkspaceId: scopeId, MemberId: userId}).
			Pluck("role", &role).Error
	case ScopeProject:
		err = db.Model(&domain.ProjectMember{}).Where(&domain.ProjectMember{ProjectId: scopeId, MemberId: userId}).
			Pluck("role", &role).Error
	default:
		return "", errors.New("unknown scope kind '" + string(kind) + "'")
	}
	if err != nil {
		return "", err
	}
	if len(role) == 0 {
		return "", nil
	}
	return role[0], nil
}

func findProjectBySlug(ctx context.Context, slug string) (*ProjectLite, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	project := domain.Project{}
	if err := db.Where(&domain.Project{Slug: slug}).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ProjectLite{ID: project.ID, Visibility: project.Visibility}, nil
}

func findProjectByID(ctx context.Context, id types.ID) (*ProjectLite, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	project := domain.Project{}
	if err := db.Where(&domain.Project{ID: id}).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ProjectLite{ID: project.ID, Visibility: project.Visibility}, nil
}

// findContainingOrganizationOwner walks up the containment hierarchy to
// the owning organization and returns its owner account id, or 0 when
// the scope entity does not exist.
func findContainingOrganizationOwner(ctx context.Context, kind ScopeKind, scopeId types.ID) (types.ID, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)

	orgId := scopeId
	switch kind {
	case ScopeOrganization:
		// scopeId is already the organization
	case ScopeWorkspace:
		workspace := domain.Workspace{}
		if err := db.Where(&domain.Workspace{ID: scopeId}).First(&workspace).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, nil
			}
			return 0, err
		}
		orgId = workspace.OrgId
	case ScopeProject:
		project := domain.Project{}
		if err := db.Where(&domain.Project{ID: scopeId}).First(&project).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, nil
			}
			return 0, err
		}
		workspace := domain.Workspace{}
		if err := db.Where(&domain.Workspace{ID: project.WorkspaceId}).First(&workspace).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, nil
			}
			return 0, err
		}
		orgId = workspace.OrgId
	default:
		return 0, errors.New("unknown scope kind '" + string(kind) + "'")
	}

	org := domain.Organization{}
	if err := db.Where(&domain.Organization{ID: orgId}).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return org.Owner, nil
}
