package indices

import (
	"context"
	"sync"

	"greenroom/authority"
	"greenroom/bizerror"
	"greenroom/domain"
	"greenroom/persistence"
	"greenroom/session"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	lock    sync.Mutex
	running bool

	// at most 50 index writes per second during a full resync
	syncLimiter = rate.NewLimiter(50, 1)

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

// ScheduleNewSyncRun starts a full resync in the background. Only admins may
// trigger it and only one run is active at a time.
func ScheduleNewSyncRun(ds *persistence.DataSourceManager, sec *session.Context) (bool, error) {
	if sec == nil {
		return false, bizerror.ErrUnauthenticated
	}
	if !sec.HasRole(authority.RoleAdmin) {
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
		IndicesFullSyncFunc(ds)
	}()
	waitRunning.Wait()
	return true, nil
}

func IndicesFullSync(ds *persistence.DataSourceManager) {
	db := ds.GormDB()

	var programs []domain.Program
	if err := db.Find(&programs).Error; err != nil {
		logrus.Errorf("full sync: load programs failed: %v", err)
		return
	}
	for _, r := range programs {
		indexThrottled(&EntityDocument{EntityType: domain.EntityTypeProgram, EntityID: r.ID, Desc: r.Name,
			CurrentState: r.CurrentState, OwnerID: r.CreatorID, LastChange: r.CreateTime})
	}

	var episodes []domain.Episode
	if err := db.Find(&episodes).Error; err != nil {
		logrus.Errorf("full sync: load episodes failed: %v", err)
		return
	}
	for _, r := range episodes {
		indexThrottled(&EntityDocument{EntityType: domain.EntityTypeEpisode, EntityID: r.ID, Desc: r.Title,
			CurrentState: r.CurrentState, OwnerID: r.CreatorID, LastChange: r.CreateTime})
	}

	var submissions []domain.MusicSubmission
	if err := db.Find(&submissions).Error; err != nil {
		logrus.Errorf("full sync: load music submissions failed: %v", err)
		return
	}
	for _, r := range submissions {
		indexThrottled(&EntityDocument{EntityType: domain.EntityTypeMusicSubmission, EntityID: r.ID, Desc: r.Title,
			CurrentState: r.CurrentState, OwnerID: r.CreatorID, LastChange: r.CreateTime})
	}
}

func indexThrottled(doc *EntityDocument) {
	if err := syncLimiter.Wait(context.Background()); err != nil {
		logrus.Warnf("full sync: limiter interrupted: %v", err)
		return
	}
	if err := IndexEntityDocFunc(doc); err != nil {
		logrus.Warnf("full sync: index %s %d failed: %v", doc.EntityType, doc.EntityID, err)
	}
}
