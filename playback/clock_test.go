package playback_test

import (
	"errors"
	"testing"

	"github.com/milk9111/listeningjourney/playback"
	"github.com/milk9111/listeningjourney/playback/fake"
)

type rig struct {
	tr      *fake.Transport
	loop    *playback.ManualLoop
	clock   *playback.Clock
	ended   int
	changes []playback.State
}

func newRig(t *testing.T, duration float64) *rig {
	t.Helper()
	r := &rig{tr: fake.New(duration), loop: &playback.ManualLoop{}}
	r.clock = playback.NewClock(r.tr, r.loop, playback.Hooks{
		OnStateChange: func(_, to playback.State) { r.changes = append(r.changes, to) },
		OnEnded:       func() { r.ended++ },
	})
	if err := r.clock.Load("song.wav", 1); err != nil {
		t.Fatalf("load: %v", err)
	}
	r.deliver()
	if got := r.clock.State(); got != playback.StateLoaded {
		t.Fatalf("state after load = %s, want loaded", got)
	}
	return r
}

func (r *rig) deliver() {
	r.tr.Deliver(r.clock)
}

func (r *rig) play(t *testing.T) {
	t.Helper()
	if err := r.clock.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	r.deliver()
	if !r.clock.IsPlaying() {
		t.Fatalf("expected playing, state %s", r.clock.State())
	}
}

func (r *rig) step(dt float64) {
	r.tr.Advance(dt)
	r.clock.Tick()
}

func TestClockLoadReportsDuration(t *testing.T) {
	r := newRig(t, 30)
	if got := r.clock.TotalDuration(); got != 30 {
		t.Fatalf("TotalDuration = %v, want 30", got)
	}
	if r.clock.CurrentTime() != 0 || r.clock.IsPlaying() {
		t.Fatalf("fresh clock should be stopped at 0")
	}
}

func TestClockFollowsTransportPosition(t *testing.T) {
	r := newRig(t, 30)
	r.play(t)

	r.step(1.5)
	r.step(2)
	if got := r.clock.CurrentTime(); got != 3.5 {
		t.Fatalf("CurrentTime = %v, want 3.5", got)
	}
}

func TestClockEndResetsToStart(t *testing.T) {
	cases := []struct {
		name string
		end  func(r *rig)
	}{
		{"position reaches total", func(r *rig) { r.step(40) }},
		{"ended event", func(r *rig) { r.tr.End(); r.deliver() }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(t, 30)
			r.play(t)
			r.step(12)

			tc.end(r)
			r.deliver()

			if r.clock.IsPlaying() {
				t.Fatalf("still playing after end")
			}
			if got := r.clock.CurrentTime(); got != 0 {
				t.Fatalf("CurrentTime = %v, want 0", got)
			}
			if got := r.tr.Position(); got != 0 {
				t.Fatalf("transport position = %v, want 0", got)
			}
			if r.ended != 1 {
				t.Fatalf("OnEnded called %d times, want 1", r.ended)
			}
			if r.loop.Active() {
				t.Fatalf("frame loop still active")
			}
		})
	}
}

func TestClockPlayRejectedRevertsToPaused(t *testing.T) {
	r := newRig(t, 30)
	blocked := errors.New("autoplay blocked")
	r.tr.RejectPlay = blocked

	if err := r.clock.Play(); !errors.Is(err, blocked) {
		t.Fatalf("Play err = %v, want %v", err, blocked)
	}
	r.deliver()

	if r.clock.IsPlaying() {
		t.Fatalf("playing after rejection")
	}
	if got := r.clock.State(); got != playback.StatePaused {
		t.Fatalf("state = %s, want paused", got)
	}
	if !errors.Is(r.clock.Err(), blocked) {
		t.Fatalf("Err = %v, want %v", r.clock.Err(), blocked)
	}
	if r.loop.Starts() != 0 {
		t.Fatalf("frame loop started %d times", r.loop.Starts())
	}

	// a later attempt succeeds and clears the error
	r.play(t)
	if r.clock.Err() != nil {
		t.Fatalf("Err not cleared: %v", r.clock.Err())
	}
}

func TestClockWaitsForPlayingEvent(t *testing.T) {
	r := newRig(t, 30)
	r.tr.DeferPlaying = true

	if err := r.clock.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	r.deliver()
	if r.clock.IsPlaying() {
		t.Fatalf("playing before transport confirmed")
	}

	r.step(2)
	if got := r.clock.CurrentTime(); got != 0 {
		t.Fatalf("CurrentTime moved to %v before playing event", got)
	}

	r.tr.ConfirmPlaying()
	r.deliver()
	if !r.clock.IsPlaying() {
		t.Fatalf("not playing after playing event")
	}
	r.clock.Tick()
	if got := r.clock.CurrentTime(); got != 2 {
		t.Fatalf("CurrentTime = %v, want 2", got)
	}
}

func TestClockPauseBeforeConfirmation(t *testing.T) {
	r := newRig(t, 30)
	r.tr.DeferPlaying = true

	if err := r.clock.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	if err := r.clock.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	r.tr.ConfirmPlaying()
	r.deliver()

	if r.clock.IsPlaying() {
		t.Fatalf("late playing event overrode pause")
	}
}

func TestClockStallFreezesTime(t *testing.T) {
	r := newRig(t, 30)
	r.play(t)
	r.step(5)

	r.tr.Stall()
	r.deliver()
	if got := r.clock.State(); got != playback.StateStalled {
		t.Fatalf("state = %s, want stalled", got)
	}
	if r.loop.Active() {
		t.Fatalf("frame loop active while stalled")
	}

	r.step(3)
	if got := r.clock.CurrentTime(); got != 5 {
		t.Fatalf("CurrentTime = %v during stall, want 5", got)
	}

	r.tr.Recover()
	r.deliver()
	if !r.clock.IsPlaying() {
		t.Fatalf("not playing after recovery")
	}
	r.step(1)
	if got := r.clock.CurrentTime(); got != 6 {
		t.Fatalf("CurrentTime = %v, want 6", got)
	}
}

func TestClockSeekHoldsAgainstLaggingTransport(t *testing.T) {
	r := newRig(t, 30)
	r.play(t)
	r.step(5)
	r.tr.LagSeeks = true

	if err := r.clock.SeekTo(20); err != nil {
		t.Fatalf("seek: %v", err)
	}
	if got := r.clock.CurrentTime(); got != 20 {
		t.Fatalf("CurrentTime = %v right after seek, want 20", got)
	}

	for i := 0; i < 5; i++ {
		r.clock.Tick()
		if got := r.clock.CurrentTime(); got != 20 {
			t.Fatalf("tick %d rolled back to %v", i, got)
		}
	}

	r.tr.ApplySeek()
	r.deliver()
	r.step(0.5)
	if got := r.clock.CurrentTime(); got != 20.5 {
		t.Fatalf("CurrentTime = %v, want 20.5", got)
	}
}

func TestClockScrubbingUnderLaggedSeeks(t *testing.T) {
	seek := func(to float64) func(t *testing.T, r *rig) {
		return func(t *testing.T, r *rig) {
			if err := r.clock.SeekTo(to); err != nil {
				t.Fatalf("seek %v: %v", to, err)
			}
		}
	}
	// apply lands the oldest held seek without handing its event to the clock.
	apply := func(t *testing.T, r *rig) {
		if !r.tr.ApplySeek() {
			t.Fatalf("no seek held")
		}
	}
	deliver := func(_ *testing.T, r *rig) { r.deliver() }
	land := func(t *testing.T, r *rig) {
		apply(t, r)
		r.deliver()
	}
	tick := func(_ *testing.T, r *rig) { r.clock.Tick() }

	type step struct {
		do   func(t *testing.T, r *rig)
		want float64
	}
	cases := []struct {
		name  string
		steps []step
		state playback.State
	}{
		{
			name: "stale seeked from an earlier target",
			steps: []step{
				{seek(10), 10},
				{apply, 10},
				{seek(20), 20},
				{deliver, 20},
				{tick, 20},
				{tick, 20},
				{land, 20},
				{func(_ *testing.T, r *rig) { r.step(0.5) }, 20.5},
			},
			state: playback.StatePlaying,
		},
		{
			name: "several seeks in flight",
			steps: []step{
				{seek(8), 8},
				{seek(14), 14},
				{seek(22), 22},
				{land, 22},
				{tick, 22},
				{land, 22},
				{tick, 22},
				{land, 22},
				{tick, 22},
				{func(_ *testing.T, r *rig) { r.step(1) }, 23},
			},
			state: playback.StatePlaying,
		},
		{
			name: "paused after a lagged seek",
			steps: []step{
				{seek(18), 18},
				{func(t *testing.T, r *rig) {
					if err := r.clock.Pause(); err != nil {
						t.Fatalf("pause: %v", err)
					}
					r.deliver()
				}, 18},
				{land, 18},
			},
			state: playback.StatePaused,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(t, 30)
			r.play(t)
			r.step(5)
			r.tr.LagSeeks = true

			for i, st := range tc.steps {
				st.do(t, r)
				if got := r.clock.CurrentTime(); got != st.want {
					t.Fatalf("step %d: CurrentTime = %v, want %v", i, got, st.want)
				}
			}
			if got := r.clock.State(); got != tc.state {
				t.Fatalf("state = %s, want %s", got, tc.state)
			}
			if n := r.tr.PendingSeeks(); n != 0 {
				t.Fatalf("%d seeks still held by the transport", n)
			}
		})
	}
}

func TestClockSeekGivesUpAfterSettleFrames(t *testing.T) {
	r := newRig(t, 30)
	r.play(t)
	r.step(5)
	r.tr.LagSeeks = true

	if err := r.clock.SeekTo(20); err != nil {
		t.Fatalf("seek: %v", err)
	}
	for i := 0; i < playback.SeekSettleFrames-1; i++ {
		r.clock.Tick()
	}
	if got := r.clock.CurrentTime(); got != 20 {
		t.Fatalf("CurrentTime = %v before settle limit, want 20", got)
	}
	r.clock.Tick()
	if got := r.clock.CurrentTime(); got != 5 {
		t.Fatalf("CurrentTime = %v after settle limit, want transport's 5", got)
	}
}

func TestClockSeekClamps(t *testing.T) {
	cases := []struct {
		name   string
		target float64
		want   float64
	}{
		{"negative", -4, 0},
		{"inside", 12.5, 12.5},
		{"past end", 99, 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(t, 30)
			if err := r.clock.SeekTo(tc.target); err != nil {
				t.Fatalf("seek: %v", err)
			}
			if got := r.clock.CurrentTime(); got != tc.want {
				t.Fatalf("CurrentTime = %v, want %v", got, tc.want)
			}
			if got := r.tr.Position(); got != tc.want {
				t.Fatalf("transport position = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestClockSeekRequiresMedia(t *testing.T) {
	c := playback.NewClock(fake.New(30), nil, playback.Hooks{})
	if err := c.SeekTo(3); !errors.Is(err, playback.ErrNotLoaded) {
		t.Fatalf("SeekTo err = %v, want ErrNotLoaded", err)
	}
	if err := c.Play(); !errors.Is(err, playback.ErrNotLoaded) {
		t.Fatalf("Play err = %v, want ErrNotLoaded", err)
	}
}

func TestClockPauseSyncsPosition(t *testing.T) {
	r := newRig(t, 30)
	r.play(t)
	r.step(4)
	r.tr.Advance(0.25)

	if err := r.clock.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	r.deliver()
	if got := r.clock.State(); got != playback.StatePaused {
		t.Fatalf("state = %s, want paused", got)
	}
	if got := r.clock.CurrentTime(); got != 4.25 {
		t.Fatalf("CurrentTime = %v, want 4.25", got)
	}
}

func TestClockRewind(t *testing.T) {
	r := newRig(t, 30)
	r.play(t)
	r.step(9)

	if err := r.clock.Rewind(); err != nil {
		t.Fatalf("rewind: %v", err)
	}
	r.deliver()
	if r.clock.IsPlaying() {
		t.Fatalf("playing after rewind")
	}
	if got := r.clock.CurrentTime(); got != 0 {
		t.Fatalf("CurrentTime = %v, want 0", got)
	}
}

func TestClockTransportErrorWhilePlaying(t *testing.T) {
	r := newRig(t, 30)
	r.play(t)
	decode := errors.New("decode failed")

	r.tr.Fail(decode)
	r.deliver()

	if got := r.clock.State(); got != playback.StateErrored {
		t.Fatalf("state = %s, want errored", got)
	}
	if !errors.Is(r.clock.Err(), decode) {
		t.Fatalf("Err = %v", r.clock.Err())
	}
	if err := r.clock.Play(); !errors.Is(err, playback.ErrNotLoaded) {
		t.Fatalf("Play after failure = %v, want ErrNotLoaded", err)
	}
}

func TestClockErrorDuringPlayRequestIsRejection(t *testing.T) {
	r := newRig(t, 30)
	r.tr.DeferPlaying = true
	if err := r.clock.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}

	r.tr.Fail(errors.New("not allowed"))
	r.deliver()

	if got := r.clock.State(); got != playback.StatePaused {
		t.Fatalf("state = %s, want paused", got)
	}
}

func TestClockLoadFailure(t *testing.T) {
	tr := fake.New(30)
	tr.FailLoad = errors.New("no such file")
	c := playback.NewClock(tr, nil, playback.Hooks{})

	if err := c.Load("missing.wav", 1); err == nil {
		t.Fatalf("expected load error")
	}
	tr.Deliver(c)
	if got := c.State(); got != playback.StateErrored {
		t.Fatalf("state = %s, want errored", got)
	}
}

func TestClockSingleFrameLoop(t *testing.T) {
	r := newRig(t, 30)
	r.play(t)

	// duplicate playing events must not stack loops
	r.clock.HandleEvent(playback.Event{Kind: playback.EventPlaying})
	r.clock.HandleEvent(playback.Event{Kind: playback.EventPlaying})

	if live := r.loop.Starts() - r.loop.Stops(); live != 1 {
		t.Fatalf("%d live frame loops, want 1", live)
	}

	r.tr.Stall()
	r.deliver()
	r.tr.Recover()
	r.deliver()
	if live := r.loop.Starts() - r.loop.Stops(); live != 1 {
		t.Fatalf("%d live frame loops after recovery, want 1", live)
	}
}

func TestClockStateChanges(t *testing.T) {
	r := newRig(t, 30)
	r.play(t)
	r.step(31)
	r.deliver()

	want := []playback.State{
		playback.StateLoaded,
		playback.StatePlaying,
		playback.StateEnded,
		playback.StatePaused,
	}
	if len(r.changes) != len(want) {
		t.Fatalf("changes = %v, want %v", r.changes, want)
	}
	for i := range want {
		if r.changes[i] != want[i] {
			t.Fatalf("changes = %v, want %v", r.changes, want)
		}
	}
}

func TestTickerLoopRestart(t *testing.T) {
	l := playback.NewTickerLoop(60)
	if l.C() != nil {
		t.Fatalf("stopped loop has a channel")
	}
	l.Start()
	first := l.C()
	l.Start()
	if l.C() == nil || l.C() == first {
		t.Fatalf("restart should replace the ticker")
	}
	if l.Starts() != 2 {
		t.Fatalf("Starts = %d, want 2", l.Starts())
	}
	l.Stop()
	l.Stop()
	if l.Active() || l.C() != nil {
		t.Fatalf("loop still active after Stop")
	}
}
