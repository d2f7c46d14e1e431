package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

// fakeBinder wraps a pflag.FlagSet to satisfy the flagBinder interface.
type fakeBinder struct {
	fs *pflag.FlagSet
}

func (f *fakeBinder) Flags() *pflag.FlagSet { return f.fs }

func newFlagBinder(defaults Config) *fakeBinder {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)
	return &fakeBinder{fs: fs}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Paths.NetworkPath != "network.json" {
		t.Errorf("NetworkPath = %q; want %q", cfg.Paths.NetworkPath, "network.json")
	}
	if cfg.Paths.OpLibrary != "libraries/op" {
		t.Errorf("OpLibrary = %q; want %q", cfg.Paths.OpLibrary, "libraries/op")
	}
	if cfg.Paths.DataLibrary != "libraries/data" {
		t.Errorf("DataLibrary = %q; want %q", cfg.Paths.DataLibrary, "libraries/data")
	}
	if cfg.Paths.OutputDir != "out" {
		t.Errorf("OutputDir = %q; want %q", cfg.Paths.OutputDir, "out")
	}
	if cfg.Pipeline.StrictTaskCount {
		t.Error("StrictTaskCount = true; want false by default")
	}
	if cfg.Pipeline.SeparatorLines != 5 {
		t.Errorf("SeparatorLines = %d; want 5", cfg.Pipeline.SeparatorLines)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "info")
	}
}

func TestLoadDefaultsOnly(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	defer func() { _ = os.Chdir(wd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	defaults := DefaultConfig()
	binder := newFlagBinder(defaults)
	cfg, err := Load(LoadOptions{Cmd: binder, Defaults: defaults})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != defaults {
		t.Errorf("Load() = %+v; want defaults %+v", cfg, defaults)
	}
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "exctool.yaml")
	content := "paths:\n  network_path: custom-network.json\n  output_dir: custom-out\npipeline:\n  strict_task_count: true\nlog_level: debug\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	defaults := DefaultConfig()
	binder := newFlagBinder(defaults)
	cfg, err := Load(LoadOptions{Cmd: binder, Defaults: defaults, ConfigFile: cfgPath})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.NetworkPath != "custom-network.json" {
		t.Errorf("NetworkPath = %q; want custom-network.json", cfg.Paths.NetworkPath)
	}
	if cfg.Paths.OutputDir != "custom-out" {
		t.Errorf("OutputDir = %q; want custom-out", cfg.Paths.OutputDir)
	}
	if !cfg.Pipeline.StrictTaskCount {
		t.Error("StrictTaskCount = false; want true from config file")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q; want debug", cfg.LogLevel)
	}
	if cfg.Paths.OpLibrary != defaults.Paths.OpLibrary {
		t.Errorf("OpLibrary = %q; want unchanged default %q", cfg.Paths.OpLibrary, defaults.Paths.OpLibrary)
	}
}

func TestLoadFlagOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "exctool.yaml")
	if err := os.WriteFile(cfgPath, []byte("paths:\n  network_path: from-file.json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)
	if err := fs.Set("paths-network", "from-flag.json"); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{Cmd: &fakeBinder{fs: fs}, Defaults: defaults, ConfigFile: cfgPath})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.NetworkPath != "from-flag.json" {
		t.Errorf("NetworkPath = %q; want from-flag.json (flag must win over file)", cfg.Paths.NetworkPath)
	}
}

func TestLoadMissingConfigFileIsError(t *testing.T) {
	defaults := DefaultConfig()
	binder := newFlagBinder(defaults)
	_, err := Load(LoadOptions{Cmd: binder, Defaults: defaults, ConfigFile: "/nonexistent/exctool.yaml"})
	if err == nil {
		t.Fatal("expected error for explicit missing config file")
	}
}

func TestLoadWithoutCmdBinder(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	defer func() { _ = os.Chdir(wd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.NetworkPath != "network.json" {
		t.Errorf("NetworkPath = %q; want network.json", cfg.Paths.NetworkPath)
	}
}

func TestRegisterFlagsCoversAllFields(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	for _, name := range []string{
		"paths-network", "paths-op-library", "paths-data-library", "paths-output-dir",
		"strict-task-count", "input-seed", "separator-lines", "log-level",
	} {
		if fs.Lookup(name) == nil {
			t.Errorf("flag %q not registered", name)
		}
	}
}
