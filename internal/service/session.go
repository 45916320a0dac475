package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/getpassword/getpassword-go/internal/clipboard"
	"github.com/getpassword/getpassword-go/internal/crypto"
	"github.com/getpassword/getpassword-go/internal/model"
	"github.com/getpassword/getpassword-go/internal/session"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session IDs.
	ErrSessionNotFound = errors.New("session not found")
)

// SessionConfig configures a SessionService.
type SessionConfig struct {
	Secret      string
	IdleTTL     time.Duration
	TokenExpiry time.Duration
	Defaults    crypto.GeneratorOptions
	Clipboard   clipboard.Writer
	Generator   session.PasswordGenerator
}

type sessionEntry struct {
	sess     *session.Session
	lastSeen time.Time
}

// SessionService keeps one generator session per client.
type SessionService struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	cfg      SessionConfig
	now      func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(cfg SessionConfig) *SessionService {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.TokenExpiry <= 0 {
		cfg.TokenExpiry = 24 * time.Hour
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = clipboard.Unavailable{}
	}
	cfg.Defaults = cfg.Defaults.Normalize()

	return &SessionService{
		sessions: make(map[string]*sessionEntry),
		cfg:      cfg,
		now:      time.Now,
	}
}

// Create starts a session with the configured defaults and returns its token.
func (s *SessionService) Create() (model.SessionResponse, error) {
	opts := []session.Option{session.WithClipboard(s.cfg.Clipboard)}
	if s.cfg.Generator != nil {
		opts = append(opts, session.WithGenerator(s.cfg.Generator))
	}

	sess, err := session.New(s.cfg.Defaults, opts...)
	if err != nil {
		return model.SessionResponse{}, err
	}

	id := uuid.NewString()
	token, err := crypto.GenerateToken(id, s.cfg.Secret, s.cfg.TokenExpiry)
	if err != nil {
		return model.SessionResponse{}, err
	}

	s.mu.Lock()
	s.sessions[id] = &sessionEntry{sess: sess, lastSeen: s.now()}
	s.mu.Unlock()

	st := sess.State()
	slog.Info("session created", "session_id", id, "fingerprint", crypto.Fingerprint(st.Password))

	return model.SessionResponse{Token: token, State: st}, nil
}

// Get returns the live session and marks it as recently used.
func (s *SessionService) Get(id string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastSeen = s.now()
	return e.sess, nil
}

// State returns the current state of a session.
func (s *SessionService) State(id string) (session.State, error) {
	sess, err := s.Get(id)
	if err != nil {
		return session.State{}, err
	}
	return sess.State(), nil
}

// UpdateOptions applies the fields present in req as one config change.
func (s *SessionService) UpdateOptions(id string, req model.OptionsRequest) (session.State, error) {
	sess, err := s.Get(id)
	if err != nil {
		return session.State{}, err
	}

	next := sess.Config()
	if req.Length != nil {
		next.Length = *req.Length
	}
	if req.Numbers != nil {
		next.Numbers = *req.Numbers
	}
	if req.Symbols != nil {
		next.Symbols = *req.Symbols
	}

	if err := sess.Configure(next); err != nil {
		return session.State{}, err
	}

	st := sess.State()
	slog.Debug("session options updated",
		"session_id", id,
		"length", st.Options.Length,
		"numbers", st.Options.Numbers,
		"symbols", st.Options.Symbols,
		"generation", st.Generation,
		"fingerprint", crypto.Fingerprint(st.Password),
	)
	return st, nil
}

// Regenerate draws a new password for a session without changing its config.
func (s *SessionService) Regenerate(id string) (session.State, error) {
	sess, err := s.Get(id)
	if err != nil {
		return session.State{}, err
	}
	if err := sess.Regenerate(); err != nil {
		return session.State{}, err
	}
	return sess.State(), nil
}

// Copy writes the session's password to the clipboard and waits for the outcome.
// A refused clipboard is reported in the response, not as an error.
func (s *SessionService) Copy(ctx context.Context, id string) (model.CopyResponse, error) {
	sess, err := s.Get(id)
	if err != nil {
		return model.CopyResponse{}, err
	}

	var res clipboard.Result
	select {
	case res = <-sess.CopyCurrent(ctx):
	case <-ctx.Done():
		res = clipboard.Result{Err: ctx.Err()}
	}

	resp := model.CopyResponse{Copied: res.OK(), Selected: sess.State().Selected}
	if !res.OK() {
		slog.Warn("clipboard write failed", "session_id", id, "error", res.Err)
		resp.Error = res.Err.Error()
	}
	return resp, nil
}

// Subscribe forwards every state change of a session to fn.
func (s *SessionService) Subscribe(id string, fn func(session.State)) (func(), error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return sess.Subscribe(fn), nil
}

// Len returns the number of live sessions.
func (s *SessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run removes idle sessions every interval until ctx is done. Sessions with
// live subscribers are never idle.
func (s *SessionService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.expire(); n > 0 {
				slog.Info("expired idle sessions", "count", n)
			}
		}
	}
}

func (s *SessionService) expire() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.sessions {
		if e.sess.Subscribers() > 0 {
			// an open event stream counts as activity
			e.lastSeen = now
			continue
		}
		if now.Sub(e.lastSeen) > s.cfg.IdleTTL {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
