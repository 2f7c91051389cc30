// Package loop runs the fixed-rate frame loop.
package loop

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/derky/internal/logger"
)

// FrameInterval is the minimum time between two frames (about 30 FPS).
const FrameInterval = 33_333_333 * time.Nanosecond

// Throttle gates frames to a fixed minimum interval. Calls that arrive
// early are dropped, not queued.
type Throttle struct {
	interval time.Duration
	last     time.Time
}

// NewThrottle creates a throttle whose first frame is due one interval
// after start.
func NewThrottle(interval time.Duration, start time.Time) *Throttle {
	return &Throttle{interval: interval, last: start}
}

// Ready reports whether a frame may run at now, and the time since the
// previous one.
func (t *Throttle) Ready(now time.Time) (time.Duration, bool) {
	delta := now.Sub(t.last)
	if delta < t.interval {
		return 0, false
	}
	t.last = now
	return delta, true
}

// Remaining returns how long until the next frame is due.
func (t *Throttle) Remaining(now time.Time) time.Duration {
	return max(t.interval-now.Sub(t.last), 0)
}

// Framer renders one frame.
type Framer interface {
	Frame(delta time.Duration)
}

// Poller pumps window events. Update returns true when the user asked to
// quit.
type Poller interface {
	Update() bool
}

// Loop drives a Framer from a Poller at the throttle's rate.
type Loop struct {
	Throttle *Throttle
	Frame    Framer
	Events   Poller

	// Update, if set, runs before every frame with the same delta.
	Update func(delta time.Duration) error

	// Luminance, if set, is reported in the per-second statistics.
	Luminance func() float32

	frames    int
	busy      time.Duration
	lastDelta time.Duration
	statsAt   time.Time
	log       *zap.Logger
}

// New creates a loop starting at start.
func New(frame Framer, events Poller, start time.Time) *Loop {
	return &Loop{
		Throttle: NewThrottle(FrameInterval, start),
		Frame:    frame,
		Events:   events,
		statsAt:  start,
		log:      logger.Named("loop"),
	}
}

// Step runs one frame if the throttle allows it and reports whether it
// did.
func (l *Loop) Step(now time.Time) (bool, error) {
	delta, ok := l.Throttle.Ready(now)
	if !ok {
		return false, nil
	}

	begin := time.Now()
	if l.Update != nil {
		if err := l.Update(delta); err != nil {
			return false, err
		}
	}
	l.Frame.Frame(delta)

	l.frames++
	l.busy += time.Since(begin)
	l.lastDelta = delta
	return true, nil
}

// Run polls events and steps until the Poller reports a quit.
func (l *Loop) Run() error {
	l.log.Info("starting frame loop", zap.Duration("interval", l.Throttle.interval))

	for {
		if l.Events.Update() {
			l.log.Info("quit requested")
			return nil
		}

		now := time.Now()
		if _, err := l.Step(now); err != nil {
			return err
		}
		l.report(now)

		if wait := l.Throttle.Remaining(time.Now()); wait > time.Millisecond {
			time.Sleep(wait - time.Millisecond)
		}
	}
}

// report logs frame statistics once per second.
func (l *Loop) report(now time.Time) {
	if now.Sub(l.statsAt) < time.Second {
		return
	}

	fields := []zap.Field{
		zap.Int("fps", l.frames),
		zap.Duration("delta", l.lastDelta),
	}
	if l.frames > 0 {
		fields = append(fields, zap.Duration("process", l.busy/time.Duration(l.frames)))
	}
	if l.Luminance != nil {
		fields = append(fields, zap.Float32("luminance", l.Luminance()))
	}
	l.log.Info("frame stats", fields...)

	l.frames, l.busy = 0, 0
	l.statsAt = now
}
