package cmd

import (
	"testing"

	"github.com/winmirror/winmirror/internal/config"
)

func TestRunCommand_Flags(t *testing.T) {
	flags := runCmd.Flags()

	tests := []struct {
		name     string
		flagType string
	}{
		{"debounce-ms", "int"},
		{"settle-ms", "int"},
		{"poll-ms", "int"},
		{"key-strategy", "string"},
	}

	for _, tt := range tests {
		f := flags.Lookup(tt.name)
		if f == nil {
			t.Errorf("expected flag %q not found", tt.name)
			continue
		}
		if f.Value.Type() != tt.flagType {
			t.Errorf("flag %q: expected type %q, got %q", tt.name, tt.flagType, f.Value.Type())
		}
	}
}

func TestApplyRunOverrides(t *testing.T) {
	orig := cfg
	defer func() { cfg = orig }()
	cfg = config.Default()

	if err := runCmd.Flags().Set("debounce-ms", "250"); err != nil {
		t.Fatal(err)
	}
	if err := runCmd.Flags().Set("key-strategy", "post"); err != nil {
		t.Fatal(err)
	}
	defer runCmd.Flags().Set("debounce-ms", "0")
	defer runCmd.Flags().Set("key-strategy", "")

	applyRunOverrides(runCmd)

	if cfg.DebounceMs != 250 {
		t.Errorf("debounce override: got %d", cfg.DebounceMs)
	}
	if cfg.KeyStrategy != config.KeyStrategyPost {
		t.Errorf("key-strategy override: got %q", cfg.KeyStrategy)
	}
	if cfg.SettleMs != config.Default().SettleMs {
		t.Error("unset flags must not clobber config values")
	}
}
