package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/huangsam/bootup/internal/bundle"
	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/internal/fault"
	"github.com/huangsam/bootup/internal/iocache"
	"github.com/huangsam/bootup/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	rootCtx = context.Background()

	// cfg is the validated configuration every command runs with.
	cfg = &contract.Config{}

	// input is what viper resolved from flags, env and the config file.
	input   = &contract.ConfigRawInput{}
	profile = &contract.ProfileConfig{}

	cacheManager  contract.CacheManager
	faultReporter contract.FaultReporter = fault.Nop{}
	closeFaults                          = func() error { return nil }
)

// startProfiling begins a CPU profile at <prefix>.cpu.prof.
func startProfiling() error {
	if !profile.Enabled {
		return nil
	}
	cpuPath, memPath := profile.Prefix+".cpu.prof", profile.Prefix+".mem.prof"

	f, err := os.Create(cpuPath)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("could not start CPU profiling: %w", err)
	}
	_, err = fmt.Fprintf(os.Stderr, "Profiling to %s and %s\n", cpuPath, memPath)
	return err
}

// stopProfiling ends the CPU profile and snapshots the heap at <prefix>.mem.prof.
func stopProfiling() error {
	if !profile.Enabled {
		return nil
	}
	pprof.StopCPUProfile()

	f, err := os.Create(profile.Prefix + ".mem.prof")
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}
	_, err = fmt.Fprintf(os.Stderr, "Profiles written. Inspect with: go tool pprof %s.cpu.prof\n", profile.Prefix)
	return err
}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "bootup",
	Short: "Measure how much main-thread time page scripts cost during bootup.",
	Long: `Bootup audits recorded page-load traces and attributes main-thread CPU time to the
scripts that caused it. Scripts above a noise threshold are ranked, their scripting and
parse/compile time is summed into a bootup time, and the total is scored on a log-normal curve.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// configDefaults are the values used when neither a flag, the environment
// nor the config file sets a key.
var configDefaults = map[string]any{
	"p10":                schema.DefaultP10,
	"median":             schema.DefaultMedian,
	"threshold-ms":       schema.DefaultThresholdMs,
	"pass":               schema.DefaultPass,
	"self-eval-url":      schema.DefaultSelfEvalURL,
	"limit":              contract.DefaultResultLimit,
	"workers":            contract.DefaultWorkers,
	"precision":          contract.DefaultPrecision,
	"output":             schema.TextOut,
	"cache-backend":      schema.SQLiteBackend,
	"cache-db-connect":   "",
	"history-backend":    "",
	"history-db-connect": "",
	"color":              "yes",
	"emoji":              "no",
}

// initConfig wires BOOTUP_* environment variables and the defaults into viper.
// BOOTUP_THRESHOLD_MS maps to --threshold-ms and so on.
func initConfig() {
	setConfigPaths()
	viper.SetEnvPrefix("BOOTUP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	for key, value := range configDefaults {
		viper.SetDefault(key, value)
	}
}

// setConfigPaths points viper at --config or at .bootup.yaml in the usual places.
func setConfigPaths() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".bootup") // Name of config file (without extension)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
}

// loadConfigFile reads the config file. A missing file is not an error.
func loadConfigFile() error {
	setConfigPaths()
	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// sharedSetup resolves the configuration of an audit-style command and opens
// everything it needs: profiling, the stores and the fault reporter.
// Positional args are expanded into bundle paths.
func sharedSetup(_ context.Context, _ *cobra.Command, args []string) error {
	if err := contract.ProcessProfilingConfig(profile, viper.GetString("profile")); err != nil {
		return fmt.Errorf("failed to process profiling config: %w", err)
	}
	if err := startProfiling(); err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}

	if err := resolveConfig(args); err != nil {
		return err
	}

	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return openFaultReporter()
}

// resolveConfig merges file, env and flags into input and validates it into cfg.
func resolveConfig(args []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// Viper knows nothing about positional args
	input.BundleArgs = args
	if len(args) > 0 {
		paths, err := bundle.Expand(args)
		if err != nil {
			return err
		}
		cfg.Bundles = paths
	}
	return contract.ProcessAndValidate(cfg, input)
}

// openFaultReporter routes faults to the fault log and to the history store.
func openFaultReporter() error {
	var history contract.HistoryStore
	if cacheManager != nil {
		history = cacheManager.GetHistoryStore()
	}
	reporter, closeFn, err := fault.NewReporter(cfg.FaultLog, history)
	if err != nil {
		return fmt.Errorf("failed to open fault log: %w", err)
	}
	faultReporter, closeFaults = reporter, closeFn
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetCacheManager sets the global cache manager.
func SetCacheManager(mgr contract.CacheManager) {
	cacheManager = mgr
}

// StopProfiling stops profiling if enabled.
func StopProfiling() error {
	return stopProfiling()
}

// CloseFaultLog flushes and closes the fault log, if one was opened.
func CloseFaultLog() error {
	return closeFaults()
}
