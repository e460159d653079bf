// Package tui hosts a bound transition in a terminal. The bubbletea program
// doubles as the host event loop: controller frames and completions are
// dispatched onto it and run inside Update.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Host queues work for the bubbletea event loop.
type Host struct {
	queue     chan func()
	done      chan struct{}
	closeOnce sync.Once
}

// NewHost returns a host with a small dispatch buffer.
func NewHost() *Host {
	return &Host{
		queue: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// Dispatch queues fn to run on the event loop. It drops fn once the host is
// closed so drivers never block on a program that has exited.
func (h *Host) Dispatch(fn func()) {
	select {
	case h.queue <- fn:
	case <-h.done:
	}
}

// Close stops accepting work.
func (h *Host) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

type dispatchMsg func()

// next waits for the next queued function.
func (h *Host) next() tea.Cmd {
	return func() tea.Msg {
		select {
		case fn := <-h.queue:
			return dispatchMsg(fn)
		case <-h.done:
			return nil
		}
	}
}
