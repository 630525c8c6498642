package indices

import (
	"assetflow/account"
	"assetflow/bizerror"
	"assetflow/domain/approval"
	"assetflow/session"
	"assetflow/tenant"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun

	SyncBatchSize = 500

	// a data source whose pages keep failing to load is abandoned after
	// this many consecutive failures
	SyncMaxLoadFailures = 3
)

// ScheduleNewSyncRun starts a full sync in the background. At most one
// run is active at a time, a second request is answered with false.
func ScheduleNewSyncRun(s *session.Session) (bool, error) {
	if !s.Perms.HasRole(account.SystemAdminPermission.ID) {
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

// IndicesFullSync re-indexes every workflow of every registered data
// source, the shared one included.
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

	for _, ds := range tenant.ActiveRegistry.DataSources() {
		page := 1
		loadFailures := 0
		for {
			snapshots, err := approval.LoadWorkflowsFunc(ds, page, SyncBatchSize)
			if err != nil {
				logrus.Warnf("indices full sync: error on load workflows (page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
				loadFailures++
				if loadFailures >= SyncMaxLoadFailures {
					logrus.Warnf("indices full sync: abandon data source after %d consecutive load failures", loadFailures)
					break
				}
				page++
				continue
			}
			loadFailures = 0

			if len(snapshots) == 0 {
				break
			}

			if err := IndexWorkflows(snapshots); err != nil {
				logrus.Warnf("indices full sync: error on index workflows (page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
			}
			page++
		}
	}
	logrus.Infof("indices full sync: there are no more workflows to index")
	return nil
}
