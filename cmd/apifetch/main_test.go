package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/loykin/apifetch/internal/request"
)

type recordingExit struct {
	code int
}

func (r *recordingExit) Exit(code int) { r.code = code }

func (r *recordingExit) LogFatalError(err error, msg string, keyvals ...any) {
	r.Exit(ExitCode(err))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New("plain"), 1},
		{&request.Error{Kind: request.KindInvalidURL}, 2},
		{&request.Error{Kind: request.KindEncoding}, 2},
		{&request.Error{Kind: request.KindTransport}, 3},
		{&request.Error{Kind: request.KindCancelled}, 3},
		{&request.Error{Kind: request.KindDecode}, 4},
		{&request.Error{Kind: request.KindEmptyBody}, 4},
		{&request.Error{Kind: request.KindUnexpectedStatus}, 4},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Fatalf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}

	orig := exitHandler
	defer func() { exitHandler = orig }()
	rec := &recordingExit{}
	exitHandler = rec
	exitHandler.LogFatalError(&request.Error{Kind: request.KindTransport}, "boom")
	if rec.code != 3 {
		t.Fatalf("expected exit code 3, got %d", rec.code)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "test.env")
	if err := os.WriteFile(p, []byte("APIFETCH_DOTENV_PROBE=loaded\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("APIFETCH_DOTENV_PROBE") })

	if err := loadEnvFile(p); err != nil {
		t.Fatalf("loadEnvFile: %v", err)
	}
	if got := os.Getenv("APIFETCH_DOTENV_PROBE"); got != "loaded" {
		t.Fatalf("expected variable from env file, got %q", got)
	}
	if err := loadEnvFile(filepath.Join(dir, "missing.env")); err == nil {
		t.Fatalf("expected error for explicit missing file")
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	want := map[string]bool{"endpoints": false, "fetch": false, "batch": false, "search": false, "wait": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("subcommand %s not registered", name)
		}
	}
}
