package orgs

import (
	"errors"
	"time"

	"lattice/bizerror"
	"lattice/domain"
	"lattice/event"
	"lattice/persistence"
	"lattice/session"

	"github.com/jinzhu/gorm"
)

// CreateOrganizationMember grants a role in the organization, updating
// the role when a membership row already exists. Non system
// administrators can not change their own role.
func CreateOrganizationMember(d *domain.OrganizationMemberCreation, sec *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		if !sec.Perms.HasSystemPerm() && sec.Identity.ID == d.MemberId {
			return bizerror.ErrMemberSelfGrant
		}

		organization := domain.Organization{ID: d.OrgID}
		if err := tx.Model(&domain.Organization{}).Where(&organization).First(&organization).Error; err != nil {
			return err
		}

		record := domain.OrganizationMember{OrgId: d.OrgID, MemberId: d.MemberId, Role: d.Role, CreateTime: time.Now()}
		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		return event.CreateEvent("ORGANIZATION", d.OrgID, organization.Name, event.EventCategoryMemberGranted,
			[]event.UpdatedProperty{{PropertyName: "Role", NewValue: d.Role, NewValueDesc: d.MemberId.String()}}, &sec.Identity, tx)
	})
}

func QueryOrganizationMembers(d *domain.OrganizationMemberQuery, sec *session.Session) (*[]domain.OrganizationMember, error) {
	dbQuery := persistence.ActiveDataSourceManager.GormDB(sec.Context).Model(&domain.OrganizationMember{})

	if d.OrgID != nil {
		dbQuery = dbQuery.Where("org_id = ?", d.OrgID)
	}
	if d.MemberID != nil {
		dbQuery = dbQuery.Where("member_id = ?", d.MemberID)
	}

	var result []domain.OrganizationMember
	if err := dbQuery.Find(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteOrganizationMember removes the membership row. The last owner of
// an organization can not be removed.
func DeleteOrganizationMember(d *domain.OrganizationMemberDeletion, sec *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		record := domain.OrganizationMember{}
		if err := tx.Where("org_id = ? AND member_id = ?", d.OrgID, d.MemberID).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if record.Role == domain.RoleOwner {
			var otherOwnerCount int
			if err := tx.Model(&domain.OrganizationMember{}).
				Where("org_id = ? AND member_id != ? AND role = ?", d.OrgID, d.MemberID, domain.RoleOwner).
				Count(&otherOwnerCount).Error; err != nil {
				return err
			}
			if otherOwnerCount == 0 {
				return bizerror.ErrLastOwnerDelete
			}
		}

		if err := tx.Where("org_id = ? AND member_id = ?", d.OrgID, d.MemberID).
			Delete(&domain.OrganizationMember{}).Error; err != nil {
			return err
		}
		return event.CreateEvent("ORGANIZATION", d.OrgID, "", event.EventCategoryMemberRevoked,
			[]event.UpdatedProperty{{PropertyName: "Role", OldValue: record.Role, OldValueDesc: d.MemberID.String()}}, &sec.Identity, tx)
	})
}
