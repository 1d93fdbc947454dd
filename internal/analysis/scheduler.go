package analysis

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartScheduler runs a periodic pass that rebuilds stale analysis reports
// in the background, so a user who mutates events and then leaves the app
// open still gets a fresh highlight set pushed over the socket. The caller
// owns the returned scheduler and must Shutdown it on exit.
func StartScheduler(svc *Service, interval time.Duration) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(svc.RefreshStale),
	)
	if err != nil {
		return nil, fmt.Errorf("register analysis job: %w", err)
	}

	s.Start()
	return s, nil
}
