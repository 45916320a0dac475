// Package session keeps one password generator's config and its current
// password consistent: every config change regenerates the password exactly
// once, and nothing else does.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/getpassword/getpassword-go/internal/clipboard"
	"github.com/getpassword/getpassword-go/internal/crypto"
)

// PasswordGenerator produces a password for a config.
type PasswordGenerator interface {
	Generate(opts crypto.GeneratorOptions) (string, error)
}

// State is a read-only snapshot for display binding.
type State struct {
	Options    crypto.GeneratorOptions `json:"options"`
	Password   string                  `json:"password"`
	Selected   bool                    `json:"selected"`
	Generation uint64                  `json:"generation"`
}

// Session holds a GenerationConfig and the password derived from it.
type Session struct {
	mu         sync.Mutex
	gen        PasswordGenerator
	clip       clipboard.Writer
	config     configHolder
	password   string
	selected   bool
	generation uint64

	subs    map[int]func(State)
	nextSub int
}

// Option customizes a Session.
type Option func(*Session)

// WithGenerator replaces the crypto/rand backed generator.
func WithGenerator(g PasswordGenerator) Option {
	return func(s *Session) { s.gen = g }
}

// WithClipboard sets the clipboard used by CopyCurrent. Without it copies fail
// with clipboard.ErrUnavailable.
func WithClipboard(w clipboard.Writer) Option {
	return func(s *Session) { s.clip = w }
}

// New creates a Session with the given initial config (clamped) and generates
// the first password.
func New(initial crypto.GeneratorOptions, opts ...Option) (*Session, error) {
	s := &Session{
		gen:  crypto.NewGenerator(nil),
		clip: clipboard.Unavailable{},
		subs: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.config = configHolder{opts: initial.Normalize(), onChange: s.regenerate}
	if err := s.regenerate(s.config.opts); err != nil {
		return nil, err
	}
	return s, nil
}

// regenerate replaces the password. The caller holds s.mu.
func (s *Session) regenerate(opts crypto.GeneratorOptions) error {
	password, err := s.gen.Generate(opts)
	if err != nil {
		return fmt.Errorf("regenerate password: %w", err)
	}

	s.password = password
	s.selected = false
	s.generation++
	return nil
}

// Configure replaces the whole config as a single change.
func (s *Session) Configure(opts crypto.GeneratorOptions) error {
	return s.mutate(func(o *crypto.GeneratorOptions) { *o = opts })
}

// SetLength changes the length; values outside the allowed range are clamped.
func (s *Session) SetLength(n int) error {
	return s.mutate(func(o *crypto.GeneratorOptions) { o.Length = n })
}

// SetNumbers toggles digits in the alphabet.
func (s *Session) SetNumbers(on bool) error {
	return s.mutate(func(o *crypto.GeneratorOptions) { o.Numbers = on })
}

// SetSymbols toggles symbols in the alphabet.
func (s *Session) SetSymbols(on bool) error {
	return s.mutate(func(o *crypto.GeneratorOptions) { o.Symbols = on })
}

func (s *Session) mutate(fn func(*crypto.GeneratorOptions)) error {
	s.mu.Lock()
	changed, err := s.config.update(fn)
	st, subs := s.snapshotLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if changed {
		notify(subs, st)
	}
	return nil
}

// Regenerate draws a new password for the unchanged config.
func (s *Session) Regenerate() error {
	s.mu.Lock()
	err := s.regenerate(s.config.opts)
	st, subs := s.snapshotLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	notify(subs, st)
	return nil
}

// CopyCurrent marks the password as selected and writes it to the clipboard.
// The returned channel yields one result; a failed copy leaves the password
// untouched.
func (s *Session) CopyCurrent(ctx context.Context) <-chan clipboard.Result {
	s.mu.Lock()
	password := s.password
	wasSelected := s.selected
	s.selected = true
	st, subs := s.snapshotLocked()
	s.mu.Unlock()

	if !wasSelected {
		notify(subs, st)
	}
	return clipboard.Copy(ctx, s.clip, password)
}

// Password returns the current password.
func (s *Session) Password() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.password
}

// Config returns the current config.
func (s *Session) Config() crypto.GeneratorOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.opts
}

// State returns a snapshot of config, password and selection.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Subscribe registers fn to receive a snapshot after every regeneration or
// selection change. fn runs outside the session lock and must not block.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Subscribers returns the number of registered observers.
func (s *Session) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Session) stateLocked() State {
	return State{
		Options:    s.config.opts,
		Password:   s.password,
		Selected:   s.selected,
		Generation: s.generation,
	}
}

func (s *Session) snapshotLocked() (State, []func(State)) {
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return s.stateLocked(), subs
}

func notify(subs []func(State), st State) {
	for _, fn := range subs {
		fn(st)
	}
}
