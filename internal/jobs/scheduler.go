package jobs

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/verdantops/ecodesk/internal/store"
)

// StartScheduler starts the background maintenance scheduler and returns it
// so the caller can stop it on shutdown.
func StartScheduler(st *store.Store) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	startSessionPurgeJob(s, st)

	log.Println("Starting background job scheduler...")
	s.StartAsync()
	return s
}

func startSessionPurgeJob(s *gocron.Scheduler, st *store.Store) {
	jobId := "session-purge"
	log.Printf("Scheduling job: '%s' to run hourly.", jobId)

	_, err := s.Every(1).Hour().Do(func() {
		runSessionPurge(st)
	})
	if err != nil {
		log.Printf("Error scheduling '%s' job: %v", jobId, err)
	}
}

// runSessionPurge removes expired session rows. Generation jobs are not
// handled here; the registry evicts those itself when new jobs arrive.
func runSessionPurge(st *store.Store) {
	purged, err := st.DeleteExpiredSessions()
	if err != nil {
		log.Printf("Session purge failed: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("Session purge removed %d expired sessions.", purged)
	}
}
