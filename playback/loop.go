package playback

import "time"

// FrameLoop is the per-frame callback source the clock runs while the
// transport is playing. At most one loop instance is ever active: Start always
// cancels the previous instance first, and Stop is idempotent.
type FrameLoop interface {
	Start()
	Stop()
	Active() bool
}

// TickerLoop drives frames from a time.Ticker for headless use. The owner
// selects on C; it is nil while stopped, so such a select case blocks.
// A TickerLoop belongs to the goroutine that selects on it.
type TickerLoop struct {
	interval time.Duration
	ticker   *time.Ticker
	starts   int
}

func NewTickerLoop(fps int) *TickerLoop {
	if fps <= 0 {
		fps = 60
	}
	return &TickerLoop{interval: time.Second / time.Duration(fps)}
}

func (l *TickerLoop) Start() {
	l.Stop()
	l.ticker = time.NewTicker(l.interval)
	l.starts++
}

func (l *TickerLoop) Stop() {
	if l.ticker == nil {
		return
	}
	l.ticker.Stop()
	l.ticker = nil
}

func (l *TickerLoop) Active() bool {
	return l.ticker != nil
}

func (l *TickerLoop) C() <-chan time.Time {
	if l.ticker == nil {
		return nil
	}
	return l.ticker.C
}

// Starts counts how many loop instances have been started.
func (l *TickerLoop) Starts() int {
	return l.starts
}

// ManualLoop is a FrameLoop for hosts that already own a frame callback, such
// as an ebiten Update. It only records whether the clock wants frames.
type ManualLoop struct {
	active bool
	starts int
	stops  int
}

func (l *ManualLoop) Start() {
	l.Stop()
	l.active = true
	l.starts++
}

func (l *ManualLoop) Stop() {
	if !l.active {
		return
	}
	l.active = false
	l.stops++
}

func (l *ManualLoop) Active() bool {
	return l.active
}

func (l *ManualLoop) Starts() int {
	return l.starts
}

func (l *ManualLoop) Stops() int {
	return l.stops
}
