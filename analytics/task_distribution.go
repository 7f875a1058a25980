package analytics

import (
	"lattice/authority"
	"lattice/domain"
	"lattice/persistence"
	"lattice/session"

	"github.com/fundwit/go-commons/types"
)

var (
	TaskDistributionFunc = TaskDistribution
	IsElevatedFunc       = authority.IsElevated
)

type TaskDistributionQuery struct {
	ProjectID types.ID `form:"projectId" binding:"required"`
}

type StateCount struct {
	State string `json:"state"`
	Count int    `json:"count"`
}

type AssigneeCount struct {
	AssigneeId types.ID `json:"assigneeId"`
	Count      int      `json:"count"`
}

type TaskDistributionChart struct {
	ProjectID  types.ID        `json:"projectId"`
	ByState    []StateCount    `json:"byState"`
	ByAssignee []AssigneeCount `json:"byAssignee"`
}

// TaskDistribution aggregates the project's tasks by state and by
// assignee. Callers without elevated access only count tasks assigned
// to or reported by themselves.
func TaskDistribution(q TaskDistributionQuery, s *session.Session) (*TaskDistributionChart, error) {
	elevated, err := IsElevatedFunc(s.Context, s.Actor(), authority.ScopeProject, q.ProjectID)
	if err != nil {
		return nil, err
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	query := db.Model(&domain.Task{}).Where("project_id = ?", q.ProjectID)
	if !elevated {
		query = query.Where("assignee_id = ? OR reporter_id = ?", s.Identity.ID, s.Identity.ID)
	}

	chart := TaskDistributionChart{ProjectID: q.ProjectID, ByState: []StateCount{}, ByAssignee: []AssigneeCount{}}
	if err := query.Select("state, count(*) as count").Group("state").
		Scan(&chart.ByState).Error; err != nil {
		return nil, err
	}
	if err := query.Select("assignee_id, count(*) as count").Group("assignee_id").
		Scan(&chart.ByAssignee).Error; err != nil {
		return nil, err
	}
	return &chart, nil
}
