// Package shell is an interactive terminal front end for a generator session.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/getpassword/getpassword-go/internal/crypto"
	"github.com/getpassword/getpassword-go/internal/session"
)

var errUsage = errors.New("usage")

// Shell reads commands, applies them to a session and renders every change.
type Shell struct {
	sess *session.Session
	out  io.Writer
}

// New creates a Shell writing to out.
func New(sess *session.Session, out io.Writer) *Shell {
	return &Shell{sess: sess, out: out}
}

// Run renders the current state, then processes commands from in until EOF,
// "quit" or ctx is done.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	unsubscribe := s.sess.Subscribe(s.Render)
	defer unsubscribe()

	fmt.Fprintln(s.out, "GetPassword interactive mode (type 'help' for commands, 'quit' to exit)")
	s.Render(s.sess.State())

	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	lines, readErr := readLines(readCtx, in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(s.out, "getpassword> ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(s.out)
				return <-readErr
			}
			line = strings.TrimSpace(l)
		}

		if line == "" {
			continue
		}
		if done := s.Handle(ctx, line); done {
			return nil
		}
	}
}

// readLines scans in on its own goroutine so a blocked read never holds up
// cancellation. The error channel receives the scan error once lines is closed.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
		close(lines)
	}()

	return lines, errc
}

// Handle executes one command line. It returns true when the user quits.
func (s *Shell) Handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	var err error
	switch cmd {
	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Bye!")
		return true
	case "help", "h", "?":
		s.printHelp()
	case "show", "ls":
		s.Render(s.sess.State())
	case "length", "len", "l":
		err = s.setLength(args)
	case "numbers", "digits", "n":
		err = s.toggle(args, s.sess.Config().Numbers, s.sess.SetNumbers)
	case "symbols", "s":
		err = s.toggle(args, s.sess.Config().Symbols, s.sess.SetSymbols)
	case "regen", "new", "r":
		err = s.sess.Regenerate()
	case "copy", "c":
		s.copy(ctx)
	default:
		fmt.Fprintf(s.out, "Unknown command %q. Type 'help' for available commands.\n", cmd)
	}

	if errors.Is(err, errUsage) {
		fmt.Fprintf(s.out, "Usage: %s\n", usage[cmd])
	} else if err != nil {
		fmt.Fprintln(s.out, "Error:", err)
	}
	return false
}

var usage = map[string]string{
	"length":  fmt.Sprintf("length <%d-%d>", crypto.MinLength, crypto.MaxLength),
	"len":     fmt.Sprintf("len <%d-%d>", crypto.MinLength, crypto.MaxLength),
	"l":       fmt.Sprintf("l <%d-%d>", crypto.MinLength, crypto.MaxLength),
	"numbers": "numbers [on|off]",
	"digits":  "digits [on|off]",
	"n":       "n [on|off]",
	"symbols": "symbols [on|off]",
	"s":       "s [on|off]",
}

func (s *Shell) setLength(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return errUsage
	}
	return s.sess.SetLength(n)
}

// toggle flips the flag without an argument, like clicking a checkbox.
func (s *Shell) toggle(args []string, current bool, set func(bool) error) error {
	switch len(args) {
	case 0:
		return set(!current)
	case 1:
		on, ok := ParseOnOff(args[0])
		if !ok {
			return errUsage
		}
		return set(on)
	default:
		return errUsage
	}
}

func (s *Shell) copy(ctx context.Context) {
	res := <-s.sess.CopyCurrent(ctx)
	if !res.OK() {
		fmt.Fprintln(s.out, "Copy failed:", res.Err)
		return
	}
	fmt.Fprintln(s.out, "Copied to clipboard.")
}

// Render prints a state as a table.
func (s *Shell) Render(st session.State) {
	password := st.Password
	if st.Selected {
		password = "[" + password + "]"
	}

	t := table.NewWriter()
	t.SetOutputMirror(s.out)
	t.SetStyle(table.StyleLight)
	t.SetTitle("GetPassword")
	t.AppendRows([]table.Row{
		{"Password", password},
		{"Length", st.Options.Length},
		{"Numbers", onOff(st.Options.Numbers)},
		{"Symbols", onOff(st.Options.Symbols)},
	})
	t.Render()
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, "Commands:")
	fmt.Fprintf(s.out, "  length <n>        Set the length (%d-%d)\n", crypto.MinLength, crypto.MaxLength)
	fmt.Fprintln(s.out, "  numbers [on|off]  Include digits (no argument toggles)")
	fmt.Fprintln(s.out, "  symbols [on|off]  Include symbols (no argument toggles)")
	fmt.Fprintln(s.out, "  regen             Draw a new password")
	fmt.Fprintln(s.out, "  copy              Copy the password to the clipboard")
	fmt.Fprintln(s.out, "  show              Show the current password")
	fmt.Fprintln(s.out, "  help              Show this help")
	fmt.Fprintln(s.out, "  quit              Exit")
}

// ParseOnOff accepts on/off, yes/no, y/n, true/false and 1/0, case-insensitively.
func ParseOnOff(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "yes", "y", "true", "1":
		return true, true
	case "off", "no", "n", "false", "0":
		return false, true
	}
	return false, false
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
