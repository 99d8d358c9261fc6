package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configFile string
	plantPath  string
	preset     string
	fs         float64
	gainDB     float64
	inverted   bool
	gainFile   string
	verbose    bool

	// sweep
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	// margin
	marginLow  float64
	marginHigh float64
	marginTol  float64
	// output
	reportPath string
	plotPath   string
	jsonOutput bool
	gainValue  float64
	samples    int
	fromFile   bool

	logger = zap.NewNop()
)

// main registers the howlsim commands and exits with status 1 when a
// command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "howlsim",
		Short:         "closed-loop stability of a howling suppression gain",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (yaml)")
	pf.StringVar(&plantPath, "plant", "", "plant CSV with labelled A, B, C, D blocks")
	pf.StringVar(&preset, "preset", "", "built-in plant (see 'howlsim presets')")
	pf.Float64Var(&fs, "fs", 44100, "sampling rate in Hz")
	pf.Float64Var(&gainDB, "gain-db", 0, "feedback gain magnitude in dB")
	pf.BoolVar(&inverted, "invert", false, "use the negative gain -10^(dB/20)")
	pf.StringVar(&gainFile, "gain-file", "", "gain CSV used by 'gain' and 'tune'")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "closed-loop spectrum and verdict for one gain",
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "print a JSON report")
	analyzeCmd.Flags().BoolVar(&fromFile, "from-gain-file", false, "start from the gain stored in the gain file")
	analyzeCmd.Flags().StringVarP(&reportPath, "output", "o", "", "also write the JSON report to this file")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "evaluate stability over a dB range",
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&sweepMin, "min-db", -36, "lowest gain in dB")
	sweepCmd.Flags().Float64Var(&sweepMax, "max-db", 36, "highest gain in dB")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 145, "number of gains")

	marginCmd := &cobra.Command{
		Use:   "margin",
		Short: "bisect for the largest stable gain",
		RunE:  runMargin,
	}
	marginCmd.Flags().Float64Var(&marginLow, "low-db", -36, "stable lower bound in dB")
	marginCmd.Flags().Float64Var(&marginHigh, "high-db", 36, "unstable upper bound in dB")
	marginCmd.Flags().Float64Var(&marginTol, "tol", 0.01, "bracket width in dB at which to stop")

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "write the s-plane eigenvalue plot (svg, png, pdf)",
		RunE:  runPlot,
	}
	plotCmd.Flags().StringVarP(&plotPath, "output", "o", "output/spectrum.svg", "output file")

	responseCmd := &cobra.Command{
		Use:   "response",
		Short: "impulse response of the discrete closed loop",
		RunE:  runResponse,
	}
	responseCmd.Flags().IntVar(&samples, "samples", 2048, "number of samples")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "interactive gain slider",
		RunE:  runTune,
	}
	tuneCmd.Flags().BoolVar(&fromFile, "from-gain-file", false, "start from the gain stored in the gain file")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in plants",
		RunE:  listPresets,
	}

	gainCmd := &cobra.Command{
		Use:   "gain",
		Short: "saved feedback gain",
	}
	gainSaveCmd := &cobra.Command{
		Use:   "save",
		Short: "store the gain given by --gain-db/--invert or --value",
		RunE:  saveGain,
	}
	gainSaveCmd.Flags().Float64Var(&gainValue, "value", 0, "signed linear gain (overrides --gain-db)")
	gainShowCmd := &cobra.Command{
		Use:   "show",
		Short: "print the stored gain",
		RunE:  showGain,
	}
	gainCmd.AddCommand(gainSaveCmd, gainShowCmd)

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration file",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(analyzeCmd, sweepCmd, marginCmd, plotCmd, responseCmd, tuneCmd, presetsCmd, gainCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initLogger() error {
	cfg := zap.NewProductionConfig()
	level := zapcore.InfoLevel
	if configFile != "" || os.Getenv("HOWLSIM_LOG_LEVEL") != "" {
		if settings, err := loadConfig(); err == nil {
			if l, err := zapcore.ParseLevel(settings.LogLevel); err == nil {
				level = l
			}
		}
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = l
	return nil
}
