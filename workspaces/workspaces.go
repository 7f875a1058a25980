package workspaces

import (
	"context"
	"errors"
	"time"

	"lattice/bizerror"
	"lattice/domain"
	"lattice/event"
	"lattice/idgen"
	"lattice/persistence"
	"lattice/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryWorkspaceNamesFunc = QueryWorkspaceNames
)

// CreateWorkspace creates the workspace under its organization and
// grants the creator the owner role in the same transaction.
func CreateWorkspace(c *domain.WorkspaceCreating, sec *session.Session) (*domain.Workspace, error) {
	now := time.Now()
	w := domain.Workspace{ID: idgen.NextID(idWorker), OrgId: c.OrgID, Name: c.Name, CreateTime: now, Creator: sec.Identity.ID}
	r := domain.WorkspaceMember{WorkspaceId: w.ID, MemberId: sec.Identity.ID, Role: domain.RoleOwner, CreateTime: now}
	err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		organization := domain.Organization{ID: c.OrgID}
		if err := tx.Model(&domain.Organization{}).Where(&organization).First(&organization).Error; err != nil {
			return err
		}
		if err := tx.Create(&w).Error; err != nil {
			return err
		}
		if err := tx.Create(&r).Error; err != nil {
			return err
		}
		return event.CreateEvent("WORKSPACE", w.ID, w.Name, event.EventCategoryCreated, nil, &sec.Identity, tx)
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// QueryWorkspaces lists the workspaces of one organization.
func QueryWorkspaces(orgId types.ID, sec *session.Session) (*[]domain.Workspace, error) {
	var workspaces []domain.Workspace
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if err := db.Where(&domain.Workspace{OrgId: orgId}).Find(&workspaces).Error; err != nil {
		return nil, err
	}
	return &workspaces, nil
}

func UpdateWorkspace(id types.ID, d *domain.WorkspaceUpdating, sec *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		var workspace domain.Workspace
		if err := tx.Where(domain.Workspace{ID: id}).First(&workspace).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Workspace{ID: id}).Where(domain.Workspace{ID: id}).
			Update(domain.Workspace{Name: d.Name}).Error
	})
}

func QueryWorkspaceNames(ctx context.Context, ids []types.ID) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	var records []domain.Workspace
	if err := db.Model(&domain.Workspace{}).Where("id IN (?)", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.Name
	}
	return result, nil
}

// CreateWorkspaceMember grants a role in the workspace, updating the
// role when a membership row already exists.
func CreateWorkspaceMember(d *domain.WorkspaceMemberCreation, sec *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		if !sec.Perms.HasSystemPerm() && sec.Identity.ID == d.MemberId {
			return bizerror.ErrMemberSelfGrant
		}

		workspace := domain.Workspace{ID: d.WorkspaceID}
		if err := tx.Model(&domain.Workspace{}).Where(&workspace).First(&workspace).Error; err != nil {
			return err
		}

		record := domain.WorkspaceMember{WorkspaceId: d.WorkspaceID, MemberId: d.MemberId, Role: d.Role, CreateTime: time.Now()}
		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		return event.CreateEvent("WORKSPACE", d.WorkspaceID, workspace.Name, event.EventCategoryMemberGranted,
			[]event.UpdatedProperty{{PropertyName: "Role", NewValue: d.Role, NewValueDesc: d.MemberId.String()}}, &sec.Identity, tx)
	})
}

// DeleteWorkspaceMember removes the membership row. The last owner of a
// workspace can not be removed.
func DeleteWorkspaceMember(d *domain.WorkspaceMemberDeletion, sec *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		record := domain.WorkspaceMember{}
		if err := tx.Where("workspace_id = ? AND member_id = ?", d.WorkspaceID, d.MemberID).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if record.Role == domain.RoleOwner {
			var otherOwnerCount int
			if err := tx.Model(&domain.WorkspaceMember{}).
				Where("workspace_id = ? AND member_id != ? AND role = ?", d.WorkspaceID, d.MemberID, domain.RoleOwner).
				Count(&otherOwnerCount).Error; err != nil {
				return err
			}
			if otherOwnerCount == 0 {
				return bizerror.ErrLastOwnerDelete
			}
		}

		if err := tx.Where("workspace_id = ? AND member_id = ?", d.WorkspaceID, d.MemberID).
			Delete(&domain.WorkspaceMember{}).Error; err != nil {
			return err
		}
		return event.CreateEvent("WORKSPACE", d.WorkspaceID, "", event.EventCategoryMemberRevoked,
			[]event.UpdatedProperty{{PropertyName: "Role", OldValue: record.Role, OldValueDesc: d.MemberID.String()}}, &sec.Identity, tx)
	})
}
