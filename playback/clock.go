package playback

import (
	"errors"
	"math"

	"github.com/rs/zerolog/log"
)

const (
	// SeekTolerance is how close the transport must report to a seek target
	// before its position is trusted again.
	SeekTolerance = 0.25
	// SeekSettleFrames bounds how long a seek target is held against a
	// transport that never catches up.
	SeekSettleFrames = 30
)

// State is the playback clock state.
type State string

const (
	StateIdle    State = "idle"
	StateLoaded  State = "loaded"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
	StateEnded   State = "ended"
	StateStalled State = "stalled"
	StateErrored State = "errored"
)

// Hooks are optional callbacks into the owner of the clock.
type Hooks struct {
	OnStateChange func(from, to State)
	OnLoaded      func(duration float64)
	OnEnded       func()
}

// Clock mirrors a Transport. It never runs its own timer: while playing, each
// Tick copies the transport's real position into CurrentTime. IsPlaying only
// turns true on the transport's own playing event.
//
// A Clock is not safe for concurrent use; the owner calls every method from a
// single goroutine, including HandleEvent for events read from the transport.
type Clock struct {
	transport Transport
	loop      FrameLoop
	hooks     Hooks

	state   State
	current float64
	total   float64
	err     error

	playRequested bool

	seekPending bool
	seekTarget  float64
	seekFrames  int
}

func NewClock(tr Transport, loop FrameLoop, hooks Hooks) *Clock {
	if loop == nil {
		loop = &ManualLoop{}
	}
	return &Clock{
		transport: tr,
		loop:      loop,
		hooks:     hooks,
		state:     StateIdle,
	}
}

func (c *Clock) State() State {
	return c.state
}

func (c *Clock) IsPlaying() bool {
	return c.state == StatePlaying
}

func (c *Clock) CurrentTime() float64 {
	return c.current
}

func (c *Clock) TotalDuration() float64 {
	return c.total
}

// Err returns the last playback or load failure, cleared by a successful
// load or play.
func (c *Clock) Err() error {
	return c.err
}

func (c *Clock) Loop() FrameLoop {
	return c.loop
}

// Load asks the transport for new media. The clock reaches Loaded when the
// transport reports it.
func (c *Clock) Load(src string, volume float64) error {
	c.loop.Stop()
	c.playRequested = false
	c.seekPending = false
	c.current = 0
	c.err = nil
	c.setState(StateIdle)

	if err := c.transport.Load(src, volume); err != nil {
		c.fail(err)
		return err
	}
	return nil
}

// Play requests playback. A transport that refuses leaves the clock Paused.
func (c *Clock) Play() error {
	switch c.state {
	case StateIdle, StateErrored:
		return ErrNotLoaded
	case StatePlaying:
		return nil
	}
	if err := c.transport.Play(); err != nil {
		c.reject(err)
		return err
	}
	c.playRequested = true
	return nil
}

// Pause requests a pause; the frame loop stops on the transport's paused event.
func (c *Clock) Pause() error {
	requested := c.playRequested
	c.playRequested = false
	switch c.state {
	case StatePlaying, StateStalled:
	case StateLoaded, StatePaused:
		if !requested {
			return nil
		}
	default:
		return nil
	}
	if err := c.transport.Pause(); err != nil {
		c.fail(err)
		return err
	}
	return nil
}

// SeekTo moves the playhead to t clamped into [0, TotalDuration].
// CurrentTime changes before SeekTo returns.
func (c *Clock) SeekTo(t float64) error {
	if c.state == StateIdle || c.state == StateErrored {
		return ErrNotLoaded
	}
	t = c.clamp(t)
	if err := c.transport.Seek(t); err != nil {
		log.Warn().Str("component", "clock").Err(err).Float64("target", t).Msg("seek rejected")
		return err
	}
	c.current = t
	c.seekPending = true
	c.seekTarget = t
	c.seekFrames = SeekSettleFrames
	return nil
}

// Rewind pauses and returns to the start.
func (c *Clock) Rewind() error {
	return errors.Join(c.Pause(), c.SeekTo(0))
}

func (c *Clock) TogglePlay() error {
	if c.IsPlaying() {
		return c.Pause()
	}
	return c.Play()
}

// Tick is the per-frame update. It does nothing unless the transport has
// reported playing.
func (c *Clock) Tick() {
	if c.state != StatePlaying {
		return
	}
	pos := c.transport.Position()
	if math.IsNaN(pos) || pos < 0 {
		pos = 0
	}

	if c.seekPending {
		c.seekFrames--
		if math.Abs(pos-c.seekTarget) > SeekTolerance && c.seekFrames > 0 {
			return
		}
		c.seekPending = false
	}

	if c.total > 0 && pos >= c.total {
		c.finish()
		return
	}
	c.current = pos
}

// HandleEvent applies one transport event. Events must be passed in arrival order.
func (c *Clock) HandleEvent(ev Event) {
	switch ev.Kind {
	case EventLoaded:
		c.loop.Stop()
		c.total = ev.Duration
		if c.total <= 0 {
			c.total = c.transport.Duration()
		}
		c.current = 0
		c.err = nil
		c.playRequested = false
		c.seekPending = false
		c.setState(StateLoaded)
		if c.hooks.OnLoaded != nil {
			c.hooks.OnLoaded(c.total)
		}

	case EventPlaying:
		if c.state == StateIdle || c.state == StateErrored {
			return
		}
		c.playRequested = false
		c.err = nil
		c.setState(StatePlaying)
		c.loop.Start()

	case EventPaused:
		c.playRequested = false
		if c.state != StatePlaying && c.state != StateStalled {
			return
		}
		c.loop.Stop()
		if !c.seekPending {
			c.current = c.clamp(c.transport.Position())
		}
		c.setState(StatePaused)

	case EventEnded:
		if c.state == StatePlaying || c.state == StateStalled {
			c.finish()
		}

	case EventStalled:
		if c.state != StatePlaying {
			return
		}
		c.loop.Stop()
		c.setState(StateStalled)

	case EventSeeked:
		// A seeked event for an earlier target must not release the hold.
		if c.seekPending && math.Abs(ev.Position-c.seekTarget) <= SeekTolerance {
			c.seekPending = false
		}

	case EventError:
		err := ev.Err
		if err == nil {
			err = errors.New("playback: transport error")
		}
		if c.playRequested && (c.state == StateLoaded || c.state == StatePaused) {
			c.reject(err)
			return
		}
		c.fail(err)
	}
}

// Close stops frames and releases the transport.
func (c *Clock) Close() error {
	c.loop.Stop()
	return c.transport.Close()
}

func (c *Clock) finish() {
	c.loop.Stop()
	c.setState(StateEnded)
	c.playRequested = false
	c.seekPending = false
	if err := c.transport.Pause(); err != nil {
		log.Warn().Str("component", "clock").Err(err).Msg("pause at end failed")
	}
	if err := c.transport.Seek(0); err != nil {
		log.Warn().Str("component", "clock").Err(err).Msg("rewind at end failed")
	}
	c.current = 0
	c.setState(StatePaused)
	if c.hooks.OnEnded != nil {
		c.hooks.OnEnded()
	}
}

func (c *Clock) reject(err error) {
	log.Warn().Str("component", "clock").Err(err).Msg("playback rejected")
	c.err = err
	c.playRequested = false
	c.loop.Stop()
	c.setState(StatePaused)
}

func (c *Clock) fail(err error) {
	log.Error().Str("component", "clock").Err(err).Msg("transport failed")
	c.err = err
	c.playRequested = false
	c.seekPending = false
	c.loop.Stop()
	c.setState(StateErrored)
}

func (c *Clock) clamp(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if c.total > 0 && t > c.total {
		return c.total
	}
	return t
}

func (c *Clock) setState(s State) {
	if c.state == s {
		return
	}
	from := c.state
	c.state = s
	if c.hooks.OnStateChange != nil {
		c.hooks.OnStateChange(from, s)
	}
}
