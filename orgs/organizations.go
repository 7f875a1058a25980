package orgs

import (
	"context"
	"time"

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

	QueryOrganizationNamesFunc = QueryOrganizationNames
)

// CreateOrganization creates the organization and grants the creator the
// owner role in the same transaction.
func CreateOrganization(c *domain.OrganizationCreating, sec *session.Session) (*domain.Organization, error) {
	now := time.Now()
	o := domain.Organization{ID: idgen.NextID(idWorker), Name: c.Name, Owner: sec.Identity.ID, CreateTime: now, Creator: sec.Identity.ID}
	r := domain.OrganizationMember{OrgId: o.ID, MemberId: sec.Identity.ID, Role: domain.RoleOwner, CreateTime: now}
	err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&o).Error; err != nil {
			return err
		}
		if err := tx.Create(&r).Error; err != nil {
			return err
		}
		return event.CreateEvent("ORGANIZATION", o.ID, o.Name, event.EventCategoryCreated, nil, &sec.Identity, tx)
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// QueryOrganizations lists the organizations the user is a member of;
// holders of a system permission see all organizations.
func QueryOrganizations(sec *session.Session) (*[]domain.Organization, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)

	var organizations []domain.Organization
	query := db.Model(&domain.Organization{})
	if !sec.Perms.HasSystemPerm() {
		query = query.Where("id IN (SELECT org_id FROM organization_members WHERE member_id = ?)", sec.Identity.ID)
	}
	if err := query.Find(&organizations).Error; err != nil {
		return nil, err
	}
	return &organizations, nil
}

func UpdateOrganization(id types.ID, d *domain.OrganizationUpdating, sec *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		var organization domain.Organization
		if err := tx.Where(domain.Organization{ID: id}).First(&organization).Error; err != nil {
			return err
		}

		if err := tx.Model(&domain.Organization{ID: id}).Where(domain.Organization{ID: id}).
			Update(domain.Organization{Name: d.Name}).Error; err != nil {
			return err
		}
		return event.CreateEvent("ORGANIZATION", id, d.Name, event.EventCategoryPropertyUpdated,
			[]event.UpdatedProperty{{PropertyName: "Name", OldValue: organization.Name, NewValue: d.Name}}, &sec.Identity, tx)
	})
}

func QueryOrganizationNames(ctx context.Context, ids []types.ID) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	var records []domain.Organization
	if err := db.Model(&domain.Organization{}).Where("id IN (?)", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.Name
	}
	return result, nil
}
