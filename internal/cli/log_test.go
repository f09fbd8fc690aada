package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func TestNewLogger_Timestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, LogInfo).Info("fetched members", "count", 3)

	line := buf.String()
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(line) {
		t.Errorf("line should start with an HH:MM:SS.ms stamp: %q", line)
	}
	for _, want := range []string{"INFO", "fetched members", "count=3"} {
		if !strings.Contains(line, want) {
			t.Errorf("line missing %q: %q", want, line)
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("tick budget", "max", 300)
	if buf.Len() != 0 {
		t.Fatalf("debug logged at info level: %q", buf.String())
	}

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("tick budget", "max", 300)
	if !strings.Contains(buf.String(), "tick budget") {
		t.Errorf("debug suppressed after --verbose: %q", buf.String())
	}
}

func TestProgress_Done(t *testing.T) {
	elapsed := regexp.MustCompile(`\(\d+(\.\d+)?m?s\)`)

	for _, msg := range []string{"Settled layout", "Rendered svg", "Fetched 4 members"} {
		t.Run(msg, func(t *testing.T) {
			var buf bytes.Buffer
			newProgress(newLogger(&buf, LogInfo)).done(msg)

			out := buf.String()
			if !strings.Contains(out, msg+" (") {
				t.Errorf("output missing %q: %q", msg, out)
			}
			if !elapsed.MatchString(out) {
				t.Errorf("output missing elapsed time: %q", out)
			}
		})
	}

	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.WarnLevel)).done("Settled layout")
	if buf.Len() != 0 {
		t.Errorf("progress should log at info level, got %q at warn", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if got := loggerFromContext(context.Background()); got != log.Default() {
		t.Error("bare context should fall back to log.Default()")
	}

	l := newLogger(&bytes.Buffer{}, LogInfo)
	if got := loggerFromContext(withLogger(context.Background(), l)); got != l {
		t.Error("attached logger not returned")
	}
}

func TestRootCommand_AttachesLogger(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	root := c.RootCommand()

	var seen *log.Logger
	root.AddCommand(&cobra.Command{
		Use: "whoami",
		RunE: func(cmd *cobra.Command, args []string) error {
			seen = loggerFromContext(cmd.Context())
			seen.Info("ready")
			return nil
		},
	})
	root.SetArgs([]string{"whoami"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}

	if seen != c.Logger {
		t.Error("subcommands should see the CLI logger in their context")
	}
	if !strings.Contains(buf.String(), "ready") {
		t.Errorf("log went elsewhere: %q", buf.String())
	}
}
