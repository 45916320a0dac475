package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/getpassword/getpassword-go/internal/clipboard"
	"github.com/getpassword/getpassword-go/internal/config"
	"github.com/getpassword/getpassword-go/internal/crypto"
	"github.com/getpassword/getpassword-go/internal/session"
	"github.com/getpassword/getpassword-go/internal/shell"
)

// Flags holds the parsed command line.
type Flags struct {
	Options   crypto.GeneratorOptions
	Once      bool
	Copy      bool
	Clipboard string
}

// ParseFlags registers and parses flags on fs, using defaults for anything
// not given.
func ParseFlags(fs *flag.FlagSet, args []string, defaults config.Config) (Flags, error) {
	f := Flags{Options: defaults.Defaults}

	fs.IntVar(&f.Options.Length, "length", f.Options.Length, "Password length")
	fs.IntVar(&f.Options.Length, "l", f.Options.Length, "Password length (shorthand)")

	fs.BoolVar(&f.Options.Numbers, "numbers", f.Options.Numbers, "Include digits (0-9)")
	fs.BoolVar(&f.Options.Numbers, "n", f.Options.Numbers, "Include digits (shorthand)")

	fs.BoolVar(&f.Options.Symbols, "symbols", f.Options.Symbols, "Include symbols "+crypto.SymbolChars)
	fs.BoolVar(&f.Options.Symbols, "s", f.Options.Symbols, "Include symbols (shorthand)")

	fs.BoolVar(&f.Once, "once", false, "Print one password and exit")
	fs.BoolVar(&f.Copy, "copy", false, "With -once, also copy the password to the clipboard")
	fs.StringVar(&f.Clipboard, "clipboard", defaults.Clipboard, "Clipboard: system, memory or none")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}
	f.Options = f.Options.Normalize()
	return f, nil
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("getpassword", flag.ContinueOnError)
	fs.SetOutput(out)

	f, err := ParseFlags(fs, args, config.Load())
	if err != nil {
		return err
	}

	clip, err := clipboard.New(f.Clipboard)
	if err != nil {
		return err
	}

	sess, err := session.New(f.Options, session.WithClipboard(clip))
	if err != nil {
		return err
	}

	if f.Once {
		fmt.Fprintln(out, sess.Password())
		if f.Copy {
			if res := <-sess.CopyCurrent(ctx); !res.OK() {
				return fmt.Errorf("copy failed: %w", res.Err)
			}
		}
		return nil
	}

	return shell.New(sess, out).Run(ctx, in)
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil && err != flag.ErrHelp && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
