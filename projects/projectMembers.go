package projects

import (
	"errors"
	"time"

	"lattice/account"
	"lattice/bizerror"
	"lattice/domain"
	"lattice/event"
	"lattice/persistence"
	"lattice/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	QueryAccountNamesFunc    = account.QueryAccountNames
	DetailProjectMembersFunc = DetailProjectMembers
)

// CreateProjectMember grants a role in the project, updating the role
// when a membership row already exists. Non system administrators can
// not change their own role.
func CreateProjectMember(d *domain.ProjectMemberCreation, sec *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		if !sec.Perms.HasSystemPerm() && sec.Identity.ID == d.MemberId {
			return bizerror.ErrMemberSelfGrant
		}

		project := domain.Project{ID: d.ProjectID}
		if err := tx.Model(&domain.Project{}).Where(&project).First(&project).Error; err != nil {
			return err
		}

		user := account.User{ID: d.MemberId}
		if err := tx.Model(&account.User{}).Where(&user).First(&user).Error; err != nil {
			return err
		}

		record := domain.ProjectMember{ProjectId: d.ProjectID, MemberId: d.MemberId, Role: d.Role, CreateTime: time.Now()}
		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		return event.CreateEvent("PROJECT", d.ProjectID, project.Name, event.EventCategoryMemberGranted,
			[]event.UpdatedProperty{{PropertyName: "Role", NewValue: d.Role, NewValueDesc: d.MemberId.String()}}, &sec.Identity, tx)
	})
}

func QueryProjectMemberDetails(d *domain.ProjectMemberQuery, sec *session.Session) (*[]domain.ProjectMemberDetail, error) {
	dbQuery := persistence.ActiveDataSourceManager.GormDB(sec.Context).Model(&domain.ProjectMember{})

	if d.ProjectID != nil {
		dbQuery = dbQuery.Where("project_id = ?", d.ProjectID)
	}
	if d.MemberID != nil {
		dbQuery = dbQuery.Where("member_id = ?", d.MemberID)
	}

	var result []domain.ProjectMember
	if err := dbQuery.Find(&result).Error; err != nil {
		return nil, err
	}

	return DetailProjectMembersFunc(&result, sec)
}

func DetailProjectMembers(pms *[]domain.ProjectMember, sec *session.Session) (*[]domain.ProjectMemberDetail, error) {
	if pms == nil {
		return &[]domain.ProjectMemberDetail{}, nil
	}

	var projectIds []types.ID
	var memberIds []types.ID
	for _, pm := range *pms {
		projectIds = append(projectIds, pm.ProjectId)
		memberIds = append(memberIds, pm.MemberId)
	}

	projectIdNameMap, err := QueryProjectNamesFunc(sec.Context, projectIds)
	if err != nil {
		return nil, err
	}
	memberIdNameMap, err := QueryAccountNamesFunc(sec.Context, memberIds)
	if err != nil {
		return nil, err
	}

	details := []domain.ProjectMemberDetail{}
	for _, pm := range *pms {
		detail := domain.ProjectMemberDetail{ProjectMember: pm, ProjectName: "Unknown", MemberName: "Unknown"}
		if projectName, found := projectIdNameMap[pm.ProjectId]; found {
			detail.ProjectName = projectName
		}
		if accountName, found := memberIdNameMap[pm.MemberId]; found {
			detail.MemberName = accountName
		}
		details = append(details, detail)
	}

	return &details, nil
}

// DeleteProjectMember removes the membership row. The last owner of a
// project can not be removed.
func DeleteProjectMember(d *domain.ProjectMemberDeletion, sec *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		record := domain.ProjectMember{}
		if err := tx.Where("project_id = ? AND member_id = ?", d.ProjectID, d.MemberID).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if record.Role == domain.RoleOwner {
			var otherOwnerCount int
			if err := tx.Model(&domain.ProjectMember{}).
				Where("project_id = ? AND member_id != ? AND role = ?", d.ProjectID, d.MemberID, domain.RoleOwner).
				Count(&otherOwnerCount).Error; err != nil {
				return err
			}
			if otherOwnerCount == 0 {
				return bizerror.ErrLastOwnerDelete
			}
		}

		if err := tx.Where("project_id = ? AND member_id = ?", d.ProjectID, d.MemberID).
			Delete(&domain.ProjectMember{}).Error; err != nil {
			return err
		}
		return event.CreateEvent("PROJECT", d.ProjectID, "", event.EventCategoryMemberRevoked,
			[]event.UpdatedProperty{{PropertyName: "Role", OldValue: record.Role, OldValueDesc: d.MemberID.String()}}, &sec.Identity, tx)
	})
}
