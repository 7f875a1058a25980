package indices

import (
	"fmt"

	"lattice/client/es"
	"lattice/domain"
	"lattice/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	TaskIndexName = "tasks"

	IndexTasksFunc         = IndexTasks
	DeleteTaskDocumentFunc = DeleteTaskDocument
)

type TaskDocument struct {
	domain.Task
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func IndexTasks(tasks []domain.Task, s *session.Session) error {
	docs := make([]TaskDocument, 0, len(tasks))
	for _, task := range tasks {
		docs = append(docs, TaskDocument{Task: task})
	}

	if err := saveTaskDocuments(docs, s); err != nil {
		return err
	}
	return nil
}

func saveTaskDocuments(taskDocs []TaskDocument, s *session.Session) BatchActionError {
	errs := BatchActionError{}

	for _, doc := range taskDocs {
		if err := es.IndexFunc(TaskIndexName, doc.ID, doc, s); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index task %d %s %s\n", doc.ID, doc.Identifier, err)
		} else {
			logrus.Infof("index task %d %s successfully\n", doc.ID, doc.Identifier)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func DeleteTaskDocument(id types.ID, s *session.Session) error {
	return es.DeleteDocumentByIdFunc(TaskIndexName, id, s)
}
