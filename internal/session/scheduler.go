package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/models"
)

// DefaultRefreshThreshold is how far ahead of expiry a proactive refresh is
// attempted.
const DefaultRefreshThreshold = 5 * time.Minute

// refreshDelay computes how long to wait before refreshing the given
// session. Zero or negative means the refresh is already due.
func refreshDelay(sess *models.Session, now time.Time, threshold time.Duration) time.Duration {
	return sess.ExpiresIn(now) - threshold
}

// Scheduler arms a one-shot timer that fires shortly before token expiry.
// At most one timer is armed at any time; arming always cancels the
// previous timer first.
type Scheduler struct {
	mu        sync.Mutex
	timer     *time.Timer
	threshold time.Duration
	fire      func()
	logger    logging.Logger
}

// NewScheduler builds a scheduler that calls fire when a refresh becomes
// due. fire runs on the timer goroutine and must not block indefinitely.
func NewScheduler(threshold time.Duration, fire func(), logger logging.Logger) *Scheduler {
	return &Scheduler{threshold: threshold, fire: fire, logger: logger}
}

// Arm schedules a refresh for sess. If the session is already within the
// threshold of expiry, the refresh fires immediately instead of arming a
// timer.
func (s *Scheduler) Arm(sess *models.Session) {
	s.armAfter(refreshDelay(sess, time.Now(), s.threshold))
}

func (s *Scheduler) armAfter(delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disarmLocked()

	if delay <= 0 {
		s.logger.Debug(context.Background(), "session within refresh threshold, refreshing now")
		go s.fire()
		return
	}

	s.logger.Debug(context.Background(), "refresh timer armed", "in", delay.String())
	s.timer = time.AfterFunc(delay, s.fire)
}

// Disarm cancels any armed timer. An in-flight fire callback is not
// interrupted.
func (s *Scheduler) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disarmLocked()
}

func (s *Scheduler) disarmLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Armed reports whether a timer is currently pending.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}
