package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"strings"
	"testing"

	"github.com/getpassword/getpassword-go/internal/config"
	"github.com/getpassword/getpassword-go/internal/crypto"
)

func TestParseFlagsDefaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f, err := ParseFlags(fs, nil, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Options != crypto.DefaultOptions() {
		t.Errorf("expected %+v, got %+v", crypto.DefaultOptions(), f.Options)
	}
	if f.Once || f.Copy {
		t.Error("expected interactive mode by default")
	}
	if f.Clipboard != "system" {
		t.Errorf("expected system clipboard, got %q", f.Clipboard)
	}
}

func TestParseFlagsShorthand(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f, err := ParseFlags(fs, []string{"-l", "8", "-n", "-s", "-once"}, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := crypto.GeneratorOptions{Length: 8, Numbers: true, Symbols: true}
	if f.Options != want {
		t.Errorf("expected %+v, got %+v", want, f.Options)
	}
	if !f.Once {
		t.Error("expected -once to be set")
	}
}

func TestParseFlagsClampsLength(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f, err := ParseFlags(fs, []string{"-length", "2"}, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Options.Length != crypto.MinLength {
		t.Errorf("expected length %d, got %d", crypto.MinLength, f.Options.Length)
	}
}

func TestParseFlagsInvalid(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, err := ParseFlags(fs, []string{"-length", "many"}, config.Default()); err == nil {
		t.Error("expected error for non-numeric length")
	}
}

func TestRunOnce(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	var out bytes.Buffer
	err := run(context.Background(), []string{"-once", "-length", "8", "-numbers", "-clipboard", "memory"}, strings.NewReader(""), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	password := strings.TrimSpace(out.String())
	if len(password) != 8 {
		t.Fatalf("expected 8 characters, got %q", password)
	}
	if strings.ContainsAny(password, crypto.SymbolChars) {
		t.Errorf("unexpected symbol in %q", password)
	}
}

func TestRunOnceCopyFailure(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	var out bytes.Buffer
	err := run(context.Background(), []string{"-once", "-copy", "-clipboard", "none"}, strings.NewReader(""), &out)
	if err == nil || !strings.Contains(err.Error(), "copy failed") {
		t.Fatalf("expected copy failure, got %v", err)
	}
}

func TestRunInteractive(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	var out bytes.Buffer
	err := run(context.Background(), []string{"-clipboard", "memory"}, strings.NewReader("length 6\ncopy\nquit\n"), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Copied to clipboard.") {
		t.Errorf("expected copy confirmation, got:\n%s", out.String())
	}
}

func TestRunUnknownClipboard(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	err := run(context.Background(), []string{"-once", "-clipboard", "carrier-pigeon"}, strings.NewReader(""), io.Discard)
	if err == nil {
		t.Fatal("expected error for unknown clipboard kind")
	}
}
