package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"lattice/authority"
	"lattice/client/es"
	"lattice/domain"
	"lattice/indices"
	"lattice/session"
)

var (
	SearchTasksFunc = SearchTasks
	IsElevatedFunc  = authority.IsElevated
)

// SearchTasks queries the task index within a single project. Callers
// without elevated access only see tasks assigned to or reported by them.
func SearchTasks(q domain.TaskQuery, s *session.Session) ([]domain.Task, error) {
	filters := make([]es.H, 0, 4)
	filters = append(filters, es.H{"term": es.H{"projectId": q.ProjectID}})

	if q.Name != "" {
		filters = append(filters, es.H{"match": es.H{"name": es.H{"query": q.Name, "operator": "AND"}}})
	}
	if len(q.States) > 0 {
		filters = append(filters, es.H{"terms": es.H{"state": q.States}})
	}

	elevated, err := IsElevatedFunc(s.Context, s.Actor(), authority.ScopeProject, q.ProjectID)
	if err != nil {
		return nil, err
	}
	if !elevated {
		uid := s.Identity.ID
		filters = append(filters, es.H{"bool": es.H{
			"should": []es.H{
				{"term": es.H{"assigneeId": uid}},
				{"term": es.H{"reporterId": uid}},
			},
			"minimum_should_match": 1,
		}})
	}

	sorts := make([]es.H, 0, 1)
	sorts = append(sorts, es.H{"createTime": es.H{"order": "asc"}})

	root := es.H{"bool": es.H{"filter": filters}}
	r, err := es.SearchFunc(indices.TaskIndexName, es.H{"size": 10000, "query": root, "sort": sorts}, s)
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		task := domain.Task{}
		if err := json.NewDecoder(strings.NewReader(string(hit.Source))).Decode(&task); err != nil {
			return nil, fmt.Errorf(string(hit.Source))
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
