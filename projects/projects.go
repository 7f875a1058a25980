package projects

import (
	"context"
	"errors"
	"fmt"
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

	QueryProjectNamesFunc = QueryProjectNames
)

// CreateProject creates the project under its workspace and grants the
// creator the owner role in the same transaction. The slug is unique
// across all projects.
func CreateProject(c *domain.ProjectCreating, sec *session.Session) (*domain.Project, error) {
	visibility := c.Visibility
	if visibility == "" {
		visibility = domain.ProjectVisibilityPrivate
	}

	now := time.Now()
	p := domain.Project{ID: idgen.NextID(idWorker), WorkspaceId: c.WorkspaceID, Name: c.Name, Slug: c.Slug,
		Visibility: visibility, NextTaskNum: 1, CreateTime: now, Creator: sec.Identity.ID}
	r := domain.ProjectMember{ProjectId: p.ID, MemberId: sec.Identity.ID, Role: domain.RoleOwner, CreateTime: now}
	err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		workspace := domain.Workspace{ID: c.WorkspaceID}
		if err := tx.Model(&domain.Workspace{}).Where(&workspace).First(&workspace).Error; err != nil {
			return err
		}

		var slugCount int
		if err := tx.Model(&domain.Project{}).Where("slug = ?", c.Slug).Count(&slugCount).Error; err != nil {
			return err
		}
		if slugCount > 0 {
			return bizerror.ErrSlugAlreadyExists
		}

		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		if err := tx.Create(&r).Error; err != nil {
			return err
		}
		return event.CreateEvent("PROJECT", p.ID, p.Name, event.EventCategoryCreated, nil, &sec.Identity, tx)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// QueryProjects lists the projects of one workspace.
func QueryProjects(workspaceId types.ID, sec *session.Session) (*[]domain.Project, error) {
	var projects []domain.Project
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if err := db.Where(&domain.Project{WorkspaceId: workspaceId}).Find(&projects).Error; err != nil {
		return nil, err
	}
	return &projects, nil
}

// DetailProject loads one project by id, or by slug when the request
// carries one.
func DetailProject(id types.ID, slug string, sec *session.Session) (*domain.Project, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	project := domain.Project{}

	query := db.Where(&domain.Project{ID: id})
	if slug != "" {
		query = db.Where(&domain.Project{Slug: slug})
	}
	if err := query.First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

func UpdateProject(id types.ID, d *domain.ProjectUpdating, sec *session.Session) error {
	return persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		var project domain.Project
		if err := tx.Where(domain.Project{ID: id}).First(&project).Error; err != nil {
			return err
		}

		updating := domain.Project{Name: d.Name, Visibility: d.Visibility}
		if err := tx.Model(&domain.Project{ID: id}).Where(domain.Project{ID: id}).Update(updating).Error; err != nil {
			return err
		}
		return event.CreateEvent("PROJECT", id, d.Name, event.EventCategoryPropertyUpdated,
			[]event.UpdatedProperty{{PropertyName: "Name", OldValue: project.Name, NewValue: d.Name}}, &sec.Identity, tx)
	})
}

// NextTaskIdentifier consumes the project's task number sequence and
// returns the next task identifier, like "myproj-12".
func NextTaskIdentifier(projectId types.ID, tx *gorm.DB) (string, error) {
	project := domain.Project{}
	if err := tx.Where(&domain.Project{ID: projectId}).First(&project).Error; err != nil {
		return "", err
	}

	nextTaskID := fmt.Sprintf("%s-%d", project.Slug, project.NextTaskNum)
	db := tx.Model(&domain.Project{}).Where(&domain.Project{ID: projectId, NextTaskNum: project.NextTaskNum}).
		Update("next_task_num", project.NextTaskNum+1)
	if db.Error != nil {
		return "", db.Error
	}
	if db.RowsAffected != 1 {
		return "", errors.New("concurrent modification")
	}
	return nextTaskID, nil
}

func QueryProjectNames(ctx context.Context, ids []types.ID) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	var records []domain.Project
	if err := db.Model(&domain.Project{}).Where("id IN (?)", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.Name
	}
	return result, nil
}
