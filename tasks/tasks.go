package tasks

import (
	"errors"
	"time"

	"lattice/authority"
	"lattice/bizerror"
	"lattice/domain"
	"lattice/event"
	"lattice/idgen"
	"lattice/indices"
	"lattice/persistence"
	"lattice/projects"
	"lattice/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	IsElevatedFunc = authority.IsElevated
	IndexTasksFunc = indices.IndexTasks
)

// CreateTask creates a task in the project with the next identifier of
// the project's task sequence. The creator becomes the reporter.
func CreateTask(c *domain.TaskCreation, sec *session.Session) (*domain.Task, error) {
	task := domain.Task{ID: idgen.NextID(idWorker), ProjectId: c.ProjectID, Name: c.Name,
		State: domain.TaskStatePending, AssigneeId: c.AssigneeID, ReporterId: sec.Identity.ID, CreateTime: time.Now()}
	err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		identifier, err := projects.NextTaskIdentifier(c.ProjectID, tx)
		if err != nil {
			return err
		}
		task.Identifier = identifier
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		return event.CreateEvent("TASK", task.ID, task.Name, event.EventCategoryCreated, nil, &sec.Identity, tx)
	})
	if err != nil {
		return nil, err
	}

	// index errors never fail the write path
	if err := IndexTasksFunc([]domain.Task{task}, sec); err != nil {
		logrus.Warnf("failed to index task %d: %v", task.ID, err)
	}
	return &task, nil
}

// QueryTasks lists the project's tasks. Callers without elevated access
// at the project see only tasks assigned to or reported by themselves.
func QueryTasks(q *domain.TaskQuery, sec *session.Session) (*[]domain.Task, error) {
	elevated, err := IsElevatedFunc(sec.Context, sec.Actor(), authority.ScopeProject, q.ProjectID)
	if err != nil {
		return nil, err
	}

	dbQuery := persistence.ActiveDataSourceManager.GormDB(sec.Context).Model(&domain.Task{}).
		Where("project_id = ?", q.ProjectID)
	if !elevated {
		dbQuery = dbQuery.Where("assignee_id = ? OR reporter_id = ?", sec.Identity.ID, sec.Identity.ID)
	}
	if q.Name != "" {
		dbQuery = dbQuery.Where("name LIKE ?", "%"+q.Name+"%")
	}
	if len(q.States) > 0 {
		dbQuery = dbQuery.Where("state IN (?)", q.States)
	}

	var result []domain.Task
	if err := dbQuery.Order("create_time ASC").Find(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func UpdateTask(id types.ID, projectId types.ID, d *domain.TaskUpdating, sec *session.Session) (*domain.Task, error) {
	task := domain.Task{}
	err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND project_id = ?", id, projectId).First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}

		changes := map[string]interface{}{"name": d.Name, "assignee_id": d.AssigneeID}
		if d.State != "" {
			changes["state"] = d.State
		}
		if err := tx.Model(&domain.Task{}).Where("id = ?", id).Update(changes).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&task).Error
	})
	if err != nil {
		return nil, err
	}

	if err := IndexTasksFunc([]domain.Task{task}, sec); err != nil {
		logrus.Warnf("failed to index task %d: %v", task.ID, err)
	}
	return &task, nil
}

func DeleteTask(id types.ID, projectId types.ID, sec *session.Session) error {
	err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		task := domain.Task{}
		if err := tx.Where("id = ? AND project_id = ?", id, projectId).First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&domain.Task{}).Error; err != nil {
			return err
		}
		return event.CreateEvent("TASK", id, task.Name, event.EventCategoryDeleted, nil, &sec.Identity, tx)
	})
	if err != nil {
		return err
	}

	if err := indices.DeleteTaskDocumentFunc(id, sec); err != nil {
		logrus.Warnf("failed to remove task %d from index: %v", id, err)
	}
	return nil
}

// LoadTasksPage pages over all tasks for index synchronization.
func LoadTasksPage(ctx *session.Session, page, pageSize int) ([]domain.Task, error) {
	var tasks []domain.Task
	db := persistence.ActiveDataSourceManager.GormDB(ctx.Context)
	if err := db.Model(&domain.Task{}).Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
