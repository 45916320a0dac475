// Package clipboard writes generated passwords to a clipboard and reports the
// outcome as a deferred result.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	sysclip "github.com/atotto/clipboard"
)

var (
	// ErrUnavailable is reported when no clipboard can accept the write.
	ErrUnavailable = errors.New("clipboard unavailable")
	// ErrUnknownKind is returned by New for an unrecognized clipboard name.
	ErrUnknownKind = errors.New("unknown clipboard kind")
)

// Writer puts plain UTF-8 text on a clipboard.
type Writer interface {
	WriteText(ctx context.Context, text string) error
}

// Result is the outcome of one copy.
type Result struct {
	Text string
	Err  error
}

// OK reports whether the copy succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Copy writes text to w in the background. The returned channel yields exactly
// one Result and is then closed.
func Copy(ctx context.Context, w Writer, text string) <-chan Result {
	ch := make(chan Result, 1)

	go func() {
		defer close(ch)
		if err := ctx.Err(); err != nil {
			ch <- Result{Text: text, Err: err}
			return
		}
		ch <- Result{Text: text, Err: w.WriteText(ctx, text)}
	}()

	return ch
}

// New returns the Writer for a configured kind: "system", "memory" or "none".
func New(kind string) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "system":
		return System{}, nil
	case "memory":
		return NewMemory(), nil
	case "none", "off":
		return Unavailable{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// System is the host clipboard (xclip/xsel/wl-copy, pbcopy, or the Windows API).
type System struct{}

// WriteText implements Writer.
func (System) WriteText(ctx context.Context, text string) error {
	if sysclip.Unsupported {
		return ErrUnavailable
	}

	// The helper binaries may hang when no display is attached.
	done := make(chan error, 1)
	go func() { done <- sysclip.WriteAll(text) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Memory is an in-process clipboard.
type Memory struct {
	mu     sync.Mutex
	text   string
	writes int
}

// NewMemory creates an empty Memory clipboard.
func NewMemory() *Memory {
	return &Memory{}
}

// WriteText implements Writer.
func (m *Memory) WriteText(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.text = text
	m.writes++
	return nil
}

// Text returns the last written text.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Writes returns how many times WriteText was called.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Unavailable is a clipboard that always refuses access.
type Unavailable struct{}

// WriteText implements Writer.
func (Unavailable) WriteText(context.Context, string) error {
	return ErrUnavailable
}
