package cmd

import (
	"errors"
	"strings"
	"testing"

	mdwlog "github.com/msto63/cellbot/foundation/core/log"
	"github.com/msto63/cellbot/foundation/rcl"
)

func TestCompileDiagnostic(t *testing.T) {
	engine := rcl.NewEngine(rcl.Config{Logger: mdwlog.Discard()})
	_, err := engine.Compile("VAR x = 1\n\nROTATE UP")
	if err == nil {
		t.Fatal("Expected syntax error")
	}

	got := compileDiagnostic("prog.rcl", err)
	if !strings.HasPrefix(got, "prog.rcl:3:") {
		t.Errorf("Expected position prefix, got %q", got)
	}
	if !strings.HasSuffix(got, "[RCL_SYNTAX]") {
		t.Errorf("Expected code suffix, got %q", got)
	}

	plain := compileDiagnostic("prog.rcl", errors.New("boom"))
	if !strings.HasPrefix(plain, "prog.rcl: boom") {
		t.Errorf("Expected plain diagnostic, got %q", plain)
	}
}

func TestShortIDAndTruncate(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"long id", shortID("0123456789abcdef"), "01234567"},
		{"short id", shortID("abc"), "abc"},
		{"fits", truncate("maze.json", 20), "maze.json"},
		{"cut", truncate("a-very-long-maze-name.json", 8), "a-very-~"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestCommandTree(t *testing.T) {
	want := []string{"run", "check", "tokens", "ast", "maze", "history", "serve", "remote", "version"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected subcommand %q", name)
		}
	}
}
