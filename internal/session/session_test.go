package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/getpassword/getpassword-go/internal/clipboard"
	"github.com/getpassword/getpassword-go/internal/crypto"
)

// recordingGenerator wraps the real generator and records every config it sees.
type recordingGenerator struct {
	mu    sync.Mutex
	calls []crypto.GeneratorOptions
	fail  error
}

func (g *recordingGenerator) Generate(opts crypto.GeneratorOptions) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return "", g.fail
	}
	g.calls = append(g.calls, opts)
	return crypto.Generate(opts)
}

func (g *recordingGenerator) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func (g *recordingGenerator) last() crypto.GeneratorOptions {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[len(g.calls)-1]
}

func newTestSession(t *testing.T, initial crypto.GeneratorOptions) (*Session, *recordingGenerator, *clipboard.Memory) {
	t.Helper()
	gen := &recordingGenerator{}
	mem := clipboard.NewMemory()
	s, err := New(initial, WithGenerator(gen), WithClipboard(mem))
	require.NoError(t, err)
	return s, gen, mem
}

func awaitCopy(t *testing.T, ch <-chan clipboard.Result) clipboard.Result {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for copy result")
		return clipboard.Result{}
	}
}

func TestNewGeneratesOnce(t *testing.T) {
	s, gen, _ := newTestSession(t, crypto.DefaultOptions())

	require.Equal(t, 1, gen.count())
	st := s.State()
	require.Equal(t, uint64(1), st.Generation)
	require.Len(t, st.Password, crypto.DefaultLength)
	require.False(t, st.Selected)
}

func TestNewClampsInitialConfig(t *testing.T) {
	s, _, _ := newTestSession(t, crypto.GeneratorOptions{Length: 500})

	require.Equal(t, crypto.MaxLength, s.Config().Length)
	require.Len(t, s.Password(), crypto.MaxLength)
}

func TestEachSetterRegeneratesExactlyOnce(t *testing.T) {
	s, gen, _ := newTestSession(t, crypto.DefaultOptions())

	steps := []struct {
		name string
		do   func() error
	}{
		{"length", func() error { return s.SetLength(12) }},
		{"numbers on", func() error { return s.SetNumbers(true) }},
		{"symbols on", func() error { return s.SetSymbols(true) }},
		{"numbers off", func() error { return s.SetNumbers(false) }},
	}

	for i, step := range steps {
		require.NoError(t, step.do(), step.name)
		require.Equal(t, i+2, gen.count(), step.name)
		require.Equal(t, uint64(i+2), s.State().Generation, step.name)
	}
}

func TestRegenerationSeesUpdatedConfig(t *testing.T) {
	s, gen, _ := newTestSession(t, crypto.DefaultOptions())

	require.NoError(t, s.SetLength(8))
	require.Equal(t, 8, gen.last().Length)

	require.NoError(t, s.SetSymbols(true))
	require.Equal(t, crypto.GeneratorOptions{Length: 8, Symbols: true}, gen.last())

	require.Len(t, s.Password(), 8)
}

func TestConfigureIsOneChange(t *testing.T) {
	s, gen, _ := newTestSession(t, crypto.DefaultOptions())

	require.NoError(t, s.Configure(crypto.GeneratorOptions{Length: 40, Numbers: true, Symbols: true}))

	require.Equal(t, 2, gen.count())
	require.Equal(t, crypto.GeneratorOptions{Length: 40, Numbers: true, Symbols: true}, s.Config())
}

func TestUnchangedConfigDoesNotRegenerate(t *testing.T) {
	s, gen, _ := newTestSession(t, crypto.GeneratorOptions{Length: crypto.MaxLength})
	before := s.Password()

	require.NoError(t, s.SetLength(crypto.MaxLength))
	require.NoError(t, s.SetLength(crypto.MaxLength+10)) // clamps to the same value
	require.NoError(t, s.SetNumbers(false))
	require.NoError(t, s.Configure(s.Config()))

	require.Equal(t, 1, gen.count())
	require.Equal(t, before, s.Password())
}

func TestOptionChangeKeepsLength(t *testing.T) {
	s, _, _ := newTestSession(t, crypto.GeneratorOptions{Length: 17})

	require.NoError(t, s.SetNumbers(true))
	require.Equal(t, 17, s.Config().Length)
	require.Len(t, s.Password(), 17)

	require.NoError(t, s.SetSymbols(true))
	require.Equal(t, 17, s.Config().Length)
	require.Len(t, s.Password(), 17)
}

func TestLengthChangeKeepsFlags(t *testing.T) {
	s, _, _ := newTestSession(t, crypto.GeneratorOptions{Length: 10, Numbers: true})

	require.NoError(t, s.SetLength(30))
	require.Equal(t, crypto.GeneratorOptions{Length: 30, Numbers: true}, s.Config())
}

func TestSetLengthClamps(t *testing.T) {
	s, _, _ := newTestSession(t, crypto.DefaultOptions())

	require.NoError(t, s.SetLength(1))
	require.Equal(t, crypto.MinLength, s.Config().Length)
	require.Len(t, s.Password(), crypto.MinLength)

	require.NoError(t, s.SetLength(99))
	require.Equal(t, crypto.MaxLength, s.Config().Length)
	require.Len(t, s.Password(), crypto.MaxLength)
}

func TestPasswordMatchesConfigAlphabet(t *testing.T) {
	s, _, _ := newTestSession(t, crypto.GeneratorOptions{Length: crypto.MaxLength})

	for i := 0; i < 200; i++ {
		require.NoError(t, s.Regenerate())
		require.False(t, strings.ContainsAny(s.Password(), "0123456789"+crypto.SymbolChars))
	}
}

func TestCopyDoesNotRegenerate(t *testing.T) {
	s, gen, mem := newTestSession(t, crypto.DefaultOptions())
	password := s.Password()

	res := awaitCopy(t, s.CopyCurrent(context.Background()))

	require.True(t, res.OK())
	require.Equal(t, password, res.Text)
	require.Equal(t, password, mem.Text())
	require.Equal(t, 1, gen.count())
	require.Equal(t, password, s.Password())
	require.True(t, s.State().Selected)
}

func TestCopyFailureKeepsPassword(t *testing.T) {
	s, err := New(crypto.DefaultOptions(), WithClipboard(clipboard.Unavailable{}))
	require.NoError(t, err)
	password := s.Password()

	res := awaitCopy(t, s.CopyCurrent(context.Background()))

	require.False(t, res.OK())
	require.ErrorIs(t, res.Err, clipboard.ErrUnavailable)
	require.Equal(t, password, s.Password())
}

func TestDefaultClipboardUnavailable(t *testing.T) {
	s, err := New(crypto.DefaultOptions())
	require.NoError(t, err)

	res := awaitCopy(t, s.CopyCurrent(context.Background()))
	require.ErrorIs(t, res.Err, clipboard.ErrUnavailable)
}

func TestRegenerationClearsSelection(t *testing.T) {
	s, _, _ := newTestSession(t, crypto.DefaultOptions())

	awaitCopy(t, s.CopyCurrent(context.Background()))
	require.True(t, s.State().Selected)

	require.NoError(t, s.SetNumbers(true))
	require.False(t, s.State().Selected)
}

func TestFailedRegenerationRollsBack(t *testing.T) {
	s, gen, _ := newTestSession(t, crypto.GeneratorOptions{Length: 10})
	before := s.State()

	errBroken := errors.New("entropy source broken")
	gen.fail = errBroken

	err := s.SetLength(20)
	require.ErrorIs(t, err, errBroken)
	require.Equal(t, before, s.State())

	require.ErrorIs(t, s.Regenerate(), errBroken)
	require.Equal(t, before, s.State())
}

func TestNewFailsWhenGeneratorFails(t *testing.T) {
	errBroken := errors.New("entropy source broken")
	_, err := New(crypto.DefaultOptions(), WithGenerator(&recordingGenerator{fail: errBroken}))
	require.ErrorIs(t, err, errBroken)
}

func TestSubscribe(t *testing.T) {
	s, _, _ := newTestSession(t, crypto.DefaultOptions())

	var got []State
	unsubscribe := s.Subscribe(func(st State) { got = append(got, st) })
	require.Equal(t, 1, s.Subscribers())

	require.NoError(t, s.SetLength(9))
	require.NoError(t, s.SetLength(9))
	awaitCopy(t, s.CopyCurrent(context.Background()))
	awaitCopy(t, s.CopyCurrent(context.Background()))

	require.Len(t, got, 2)
	require.Equal(t, 9, got[0].Options.Length)
	require.False(t, got[0].Selected)
	require.True(t, got[1].Selected)
	require.Equal(t, got[0].Generation, got[1].Generation)

	unsubscribe()
	unsubscribe()
	require.Zero(t, s.Subscribers())
	require.NoError(t, s.Regenerate())
	require.Len(t, got, 2)
}

func TestConcurrentMutations(t *testing.T) {
	s, gen, _ := newTestSession(t, crypto.DefaultOptions())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = s.SetLength(crypto.MinLength + n)
			_ = s.Regenerate()
		}(i)
	}
	wg.Wait()

	st := s.State()
	require.Equal(t, uint64(gen.count()), st.Generation)
	require.Len(t, st.Password, st.Options.Length)
}
