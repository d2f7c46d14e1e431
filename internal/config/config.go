// Package config loads exctool's configuration: network/library/output
// paths, pipeline knobs, and the log level, from defaults, an optional
// config file and CLI flags, in that precedence order via viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the fully resolved configuration for one exctool invocation.
type Config struct {
	Paths    PathsConfig    `mapstructure:"paths"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	LogLevel string         `mapstructure:"log_level"`
}

// PathsConfig names the network description, the two library directories,
// and the directory the pipeline writes its five streams and two sidecars
// into.
type PathsConfig struct {
	NetworkPath string `mapstructure:"network_path"`
	OpLibrary   string `mapstructure:"op_library"`
	DataLibrary string `mapstructure:"data_library"`
	OutputDir   string `mapstructure:"output_dir"`
}

// PipelineConfig controls the lowering pipeline's tunable behaviour: the
// strict/lenient handling of a sub-task count mismatch (spec.md §9 open
// question), the seed for stage3's layer-1 random input generator, and the
// separator width between task bodies (spec-fixed at 5, but configurable
// for tests exercising the boundary-recovery algorithms at other widths).
type PipelineConfig struct {
	StrictTaskCount bool  `mapstructure:"strict_task_count"`
	InputSeed       int64 `mapstructure:"input_seed"`
	SeparatorLines  int   `mapstructure:"separator_lines"`
}

// LoadOptions configures Load.
type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

// DefaultConfig returns exctool's baseline configuration before any config
// file or flags are applied.
func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			NetworkPath: "network.json",
			OpLibrary:   "libraries/op",
			DataLibrary: "libraries/data",
			OutputDir:   "out",
		},
		Pipeline: PipelineConfig{
			StrictTaskCount: false,
			InputSeed:       0,
			SeparatorLines:  5,
		},
		LogLevel: "info",
	}
}

// RegisterFlags binds fs to every field of Config, using defaults for the
// flags' default values.
func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("paths-network", defaults.Paths.NetworkPath, "Path to the layered network description JSON")
	fs.String("paths-op-library", defaults.Paths.OpLibrary, "Path to the operator-instruction library directory")
	fs.String("paths-data-library", defaults.Paths.DataLibrary, "Path to the per-operator data library directory")
	fs.String("paths-output-dir", defaults.Paths.OutputDir, "Directory to write pipeline streams and sidecars into")
	fs.Bool("strict-task-count", defaults.Pipeline.StrictTaskCount, "Fail instead of warn when the stream's sub-task count differs from what the network declares")
	fs.Int64("input-seed", defaults.Pipeline.InputSeed, "Seed for layer-1 random input generation (0 = non-reproducible)")
	fs.Int("separator-lines", defaults.Pipeline.SeparatorLines, "Sentinel run length between task/data blocks (spec default 5)")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

// Load resolves a Config from defaults, an optional config file, and flags
// bound to opts.Cmd, in viper's usual precedence order (flags override
// config file override defaults).
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("EXCTOOL")
	replacer := strings.NewReplacer("-", "_", ".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("exctool")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.network_path", c.Paths.NetworkPath)
	v.SetDefault("paths.op_library", c.Paths.OpLibrary)
	v.SetDefault("paths.data_library", c.Paths.DataLibrary)
	v.SetDefault("paths.output_dir", c.Paths.OutputDir)
	v.SetDefault("pipeline.strict_task_count", c.Pipeline.StrictTaskCount)
	v.SetDefault("pipeline.input_seed", c.Pipeline.InputSeed)
	v.SetDefault("pipeline.separator_lines", c.Pipeline.SeparatorLines)
	v.SetDefault("log_level", c.LogLevel)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("paths.network_path", "paths-network")
	v.RegisterAlias("paths.op_library", "paths-op-library")
	v.RegisterAlias("paths.data_library", "paths-data-library")
	v.RegisterAlias("paths.output_dir", "paths-output-dir")
	v.RegisterAlias("pipeline.strict_task_count", "strict-task-count")
	v.RegisterAlias("pipeline.input_seed", "input-seed")
	v.RegisterAlias("pipeline.separator_lines", "separator-lines")
	v.RegisterAlias("log_level", "log-level")
}
