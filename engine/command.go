package engine

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// ErrStopped is returned for commands posted to a world that is no longer
// running.
var ErrStopped = errors.New("engine: world stopped")

// Command is a named mutation applied on the world's goroutine.
type Command struct {
	Name  string
	Apply func(w *World) error
	// Edit marks commands that change the session, so publishers can
	// refetch the document.
	Edit bool

	done chan error
}

// Post queues cmd without waiting for it to run.
func (w *World) Post(ctx context.Context, cmd Command) error {
	select {
	case <-w.stopped:
		return ErrStopped
	default:
	}
	select {
	case w.commands <- cmd:
		return nil
	case <-w.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Exec queues cmd and waits for its result.
func (w *World) Exec(ctx context.Context, cmd Command) error {
	cmd.done = make(chan error, 1)
	if err := w.Post(ctx, cmd); err != nil {
		return err
	}
	select {
	case err := <-cmd.done:
		return err
	case <-w.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Query runs fn on the world's goroutine and returns its result.
func Query[T any](ctx context.Context, w *World, name string, fn func(w *World) (T, error)) (T, error) {
	var out T
	err := w.Exec(ctx, Command{Name: name, Apply: func(w *World) error {
		var err error
		out, err = fn(w)
		return err
	}})
	return out, err
}

// Stop marks the world as no longer accepting commands.
func (w *World) Stop() {
	w.stopOnce.Do(func() { close(w.stopped) })
}

func (w *World) drainCommands() {
	for {
		select {
		case cmd := <-w.commands:
			w.apply(cmd)
		default:
			return
		}
	}
}

func (w *World) apply(cmd Command) {
	var err error
	if cmd.Apply != nil {
		err = cmd.Apply(w)
	}
	if err != nil {
		log.Debug().Str("component", "engine").Str("command", cmd.Name).Err(err).Msg("command failed")
		w.events.Push(Notice{Type: NoticeCommandFailed, Message: err.Error(), Data: cmd.Name})
	} else if cmd.Edit {
		w.events.Push(Notice{Type: NoticeEdited, Data: cmd.Name})
	}
	if cmd.done != nil {
		cmd.done <- err
	}
}
