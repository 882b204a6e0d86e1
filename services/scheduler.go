// services/scheduler.go
package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ff-tournament-system/models"
	"ff-tournament-system/utils"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler runs the service's periodic housekeeping.
type Scheduler struct {
	sched gocron.Scheduler

	TmpDir           string
	SweepInterval    time.Duration
	SnapshotInterval time.Duration

	Leaderboard *LeaderboardService
	Publish     PublishFunc
}

func NewScheduler(tmpDir string, sweepEvery, snapshotEvery time.Duration, leaderboard *LeaderboardService, publish PublishFunc) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		sched:            sched,
		TmpDir:           tmpDir,
		SweepInterval:    sweepEvery,
		SnapshotInterval: snapshotEvery,
		Leaderboard:      leaderboard,
		Publish:          publish,
	}, nil
}

// Start registers the jobs and starts the scheduler. The snapshot job only
// runs when an interval and a publisher are configured.
func (s *Scheduler) Start() error {
	if s.SweepInterval > 0 {
		_, err := s.sched.NewJob(
			gocron.DurationJob(s.SweepInterval),
			gocron.NewTask(s.SweepUploads),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return err
		}
	}

	if s.SnapshotInterval > 0 && s.Publish != nil {
		_, err := s.sched.NewJob(
			gocron.DurationJob(s.SnapshotInterval),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				defer cancel()
				if _, err := s.PublishLeaderboardSnapshot(ctx); err != nil {
					log.Printf("[SCHEDULER] leaderboard snapshot failed: %v", err)
				}
			}),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return err
		}
	}

	s.sched.Start()
	log.Printf("[SCHEDULER] started (sweep every %s, snapshot every %s)", s.SweepInterval, s.SnapshotInterval)
	return nil
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}

// SweepUploads removes staged uploads older than one sweep interval.
func (s *Scheduler) SweepUploads() {
	removed, err := utils.SweepStaged(s.TmpDir, s.SweepInterval, time.Now())
	if err != nil {
		log.Printf("[SCHEDULER] upload sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("[SCHEDULER] swept %d stale uploads", removed)
	}
}

// LeaderboardSnapshot is the JSON document published by the snapshot job.
type LeaderboardSnapshot struct {
	GeneratedAt time.Time                 `json:"generatedAt"`
	Squads      []models.SquadLeaderboard `json:"squads"`
}

// PublishLeaderboardSnapshot uploads the current leaderboard as JSON and
// returns its URL.
func (s *Scheduler) PublishLeaderboardSnapshot(ctx context.Context) (string, error) {
	rows, err := s.Leaderboard.List(ctx)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	data, err := json.Marshal(LeaderboardSnapshot{GeneratedAt: now, Squads: rows})
	if err != nil {
		return "", err
	}
	url, err := s.Publish(ctx, utils.ObjectKey("snapshots", "leaderboard", "json", now), "application/json", data)
	if err != nil {
		return "", err
	}
	log.Printf("✅ [SCHEDULER] leaderboard snapshot published: %s", url)
	return url, nil
}
