package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"wifihal/internal/config"
)

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		if diff := cmp.Diff(c.want, splitCSV(c.in)); diff != "" {
			t.Fatalf("%q (-want +got):\n%s", c.in, diff)
		}
	}
}

func TestMergeConfig_FlagsWin(t *testing.T) {
	opts := &options{}
	cmd := newRootCmdWith(opts)
	if err := cmd.ParseFlags([]string{"--addr", ":9000", "--start-retries", "5"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	off := false
	mergeConfig(cmd, opts, config.Config{
		Addr:         ":7000",
		Device:       "dual",
		StartRetries: 2,
		AutoStart:    &off,
		CORSOrigins:  []string{"http://a", "http://b"},
		MaxBodyBytes: 2048,
	})
	if opts.addr != ":9000" {
		t.Fatalf("addr=%q, flag should win", opts.addr)
	}
	if opts.startRetries != 5 {
		t.Fatalf("startRetries=%d, flag should win", opts.startRetries)
	}
	if opts.device != "dual" {
		t.Fatalf("device=%q, want file value", opts.device)
	}
	if opts.autoStart {
		t.Fatalf("auto start should come from the file")
	}
	if opts.corsOrigins != "http://a,http://b" {
		t.Fatalf("corsOrigins=%q", opts.corsOrigins)
	}
	if opts.maxBodyBytes != 2048 {
		t.Fatalf("maxBodyBytes=%d", opts.maxBodyBytes)
	}
}

func TestMergeConfig_EmptyFileKeepsDefaults(t *testing.T) {
	opts := &options{}
	cmd := newRootCmdWith(opts)
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	mergeConfig(cmd, opts, config.Config{})
	if !opts.autoStart || opts.logLevel != "info" {
		t.Fatalf("defaults lost: %+v", opts)
	}
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("DEBUG", "json")
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	if l.GetLevel() != zerolog.DebugLevel {
		t.Fatalf("level=%v", l.GetLevel())
	}
	if _, err := newLogger("loud", "json"); err == nil {
		t.Fatalf("expected error for bad level")
	}
	if _, err := newLogger("info", "xml"); err == nil {
		t.Fatalf("expected error for bad format")
	}
}

func TestRootRejectsMissingConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", t.TempDir() + "/missing.yaml"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
