package indices

import (
	"context"
	"fmt"
	"sync"

	"lattice/account"
	"lattice/authority"
	"lattice/bizerror"
	"lattice/domain"
	"lattice/session"

	"github.com/sirupsen/logrus"
)

var (
	indexRobot = &session.Session{
		Identity: session.Identity{ID: 10, Name: "index-robot"},
		Perms:    authority.Permissions{authority.SystemAdminPermissionID},
		Context:  context.Background(),
	}

	lock    sync.Mutex
	running bool

	// LoadTasksPageFunc is assigned at bootstrap to avoid an import loop
	// with the tasks package.
	LoadTasksPageFunc func(s *session.Session, page, pageSize int) ([]domain.Task, error)

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

var SyncBatchSize = 500

// ScheduleNewSyncRun starts a full index synchronization in background.
// At most one run is active at a time.
func ScheduleNewSyncRun(sec *session.Session) (bool, error) {
	if !sec.Perms.HasRole(account.SystemAdminPermission.ID) {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		IndicesFullSyncFunc()
	}()
	waitRunning.Wait()
	return true, nil
}

func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	page := 1
	for {
		tasks, err := LoadTasksPageFunc(indexRobot, page, SyncBatchSize)
		if err != nil {
			logrus.Warnf("indices fully sync: error on retrieve tasks(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
			page++
			continue
		}

		if len(tasks) == 0 {
			logrus.Infof("indices fully sync: there are no more tasks to index")
			return nil // loop exit
		}

		if err := IndexTasksFunc(tasks, indexRobot); err != nil {
			logrus.Warnf("indices fully sync: error on index tasks(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
		}
		page++
	}
}
