package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/howlsim/internal/analysis"
	"github.com/san-kum/howlsim/internal/closedloop"
	"github.com/san-kum/howlsim/internal/config"
	"github.com/san-kum/howlsim/internal/export"
	"github.com/san-kum/howlsim/internal/gain"
	"github.com/san-kum/howlsim/internal/plantio"
	"github.com/san-kum/howlsim/internal/response"
	"github.com/san-kum/howlsim/internal/statespace"
	"github.com/san-kum/howlsim/internal/storage"
	"github.com/san-kum/howlsim/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// settings loads the config and applies the flags the user set explicitly.
func settings(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("plant") {
		cfg.Plant, cfg.Preset = plantPath, ""
	}
	if flags.Changed("preset") {
		cfg.Preset, cfg.Plant = preset, ""
	}
	if flags.Changed("fs") {
		cfg.SamplingRate = fs
	}
	if flags.Changed("gain-db") {
		cfg.GainDB = gainDB
	}
	if flags.Changed("invert") {
		cfg.Inverted = inverted
	}
	if flags.Changed("gain-file") {
		cfg.GainFile = gainFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadPlant returns the configured plant and a name for reports.
func loadPlant(cfg *config.Config) (*statespace.Plant, string, error) {
	switch {
	case cfg.Plant != "":
		p, err := plantio.Load(cfg.Plant)
		if err != nil {
			return nil, "", fmt.Errorf("load plant %s: %w", cfg.Plant, err)
		}
		return p, cfg.Plant, nil
	case cfg.Preset != "":
		p, err := config.GetPreset(cfg.Preset)
		if err != nil {
			return nil, "", err
		}
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", cfg.Preset, config.ListPresets())
		}
		return p, "preset:" + cfg.Preset, nil
	}
	return nil, "", errors.New("no plant given: use --plant or --preset")
}

func modelOptions(cfg *config.Config) []closedloop.Option {
	return []closedloop.Option{
		closedloop.WithEpsilon(cfg.Numerics.Epsilon),
		closedloop.WithBranchTolerance(cfg.Numerics.BranchTolerance),
	}
}

// initialGain is the signed gain from --gain-db/--invert, or the stored
// gain when useFile is set.
func initialGain(cfg *config.Config, useFile bool) (float64, error) {
	if !useFile {
		return gain.Invert(cfg.Inverted, gain.FromDecibels(cfg.GainDB)), nil
	}
	g, err := storage.NewGainStore(cfg.GainFile).LoadGain()
	if err != nil {
		return 0, fmt.Errorf("load gain from %s: %w", cfg.GainFile, err)
	}
	return g, nil
}

func newController(cfg *config.Config, plant *statespace.Plant) (*gain.Controller, error) {
	g, err := initialGain(cfg, fromFile)
	if err != nil {
		return nil, err
	}
	m, err := closedloop.NewFromPlant(plant, g, cfg.SamplingRate, modelOptions(cfg)...)
	if err != nil {
		return nil, err
	}
	return gain.NewController(m, gain.WithLogger(logger)), nil
}

// setup is the common prologue of the commands that need a closed loop.
func setup(cmd *cobra.Command) (*config.Config, *statespace.Plant, string, error) {
	cfg, err := settings(cmd)
	if err != nil {
		return nil, nil, "", err
	}
	plant, name, err := loadPlant(cfg)
	if err != nil {
		return nil, nil, "", err
	}
	if !plant.IsSISO() {
		return nil, nil, "", fmt.Errorf("%w: plant has %d inputs and %d outputs", closedloop.ErrNotSISO, plant.Inputs(), plant.Outputs())
	}
	logger.Debug("plant loaded", zap.String("plant", name), zap.Int("order", plant.Order()))
	return cfg, plant, name, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, plant, name, err := setup(cmd)
	if err != nil {
		return err
	}
	ctrl, err := newController(cfg, plant)
	if err != nil {
		return err
	}
	snap := ctrl.Snapshot()
	report := storage.NewReport(name, cfg.SamplingRate, snap)

	if reportPath != "" {
		if err := storage.ExportJSON(reportPath, report); err != nil {
			return err
		}
		logger.Info("report written", zap.String("path", reportPath))
	}
	if jsonOutput {
		return storage.WriteJSON(os.Stdout, report)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "plant\t%s (order %d)\n", name, plant.Order())
	fmt.Fprintf(w, "sampling rate\t%g Hz\n", cfg.SamplingRate)
	fmt.Fprintf(w, "gain\t%.6g (%.2f dB)\n", snap.Gain, gain.ToDecibels(snap.Gain))
	fmt.Fprintf(w, "status\t%s\n", snap.Verdict.Status)
	fmt.Fprintf(w, "max real part\t%.6g\n", snap.Verdict.MaxRealPart)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "RE\tIM\tFREQ [Hz]\t")
	for _, ev := range snap.Eigenvalues {
		mark := ""
		if !(real(ev) < 0) {
			mark = "*"
		}
		fmt.Fprintf(w, "%.6g\t%.6g\t%.2f\t%s\n", real(ev), imag(ev), imag(ev)/(2*math.Pi), mark)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	for _, warn := range snap.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", warn)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, plant, _, err := setup(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("min-db") {
		cfg.Sweep.MinDB = sweepMin
	}
	if flags.Changed("max-db") {
		cfg.Sweep.MaxDB = sweepMax
	}
	if flags.Changed("steps") {
		cfg.Sweep.Steps = sweepSteps
	}

	points, err := analysis.Sweep(context.Background(), plant, analysis.SweepConfig{
		MinDB:        cfg.Sweep.MinDB,
		MaxDB:        cfg.Sweep.MaxDB,
		Steps:        cfg.Sweep.Steps,
		Inverted:     cfg.Inverted,
		SamplingRate: cfg.SamplingRate,
		Options:      modelOptions(cfg),
		Workers:      cfg.Sweep.Workers,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	var curve []float64
	for _, p := range points {
		if p.Err == nil {
			curve = append(curve, p.MaxRealPart)
		}
	}
	if len(curve) > 1 {
		graph := asciigraph.Plot(curve,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("max Re(λ), %g..%g dB", cfg.Sweep.MinDB, cfg.Sweep.MaxDB)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GAIN [dB]\tGAIN\tSTATUS\tMAX RE\tOFFENDING\t")
	for _, p := range points {
		if p.Err != nil {
			fmt.Fprintf(w, "%.2f\t%.6g\terror\t-\t-\t%v\n", p.GainDB, p.Gain, p.Err)
			continue
		}
		fmt.Fprintf(w, "%.2f\t%.6g\t%s\t%.4g\t%d\t\n", p.GainDB, p.Gain, p.Status, p.MaxRealPart, p.Offending)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	for _, p := range analysis.Transitions(points) {
		fmt.Printf("\nverdict changes to %s at %.2f dB (g = %.6g)", p.Status, p.GainDB, p.Gain)
	}
	fmt.Println()
	return nil
}

func runMargin(cmd *cobra.Command, args []string) error {
	cfg, plant, _, err := setup(cmd)
	if err != nil {
		return err
	}
	m, err := analysis.FindMargin(context.Background(), plant, analysis.MarginConfig{
		LowDB:        marginLow,
		HighDB:       marginHigh,
		Inverted:     cfg.Inverted,
		Tolerance:    marginTol,
		SamplingRate: cfg.SamplingRate,
		Options:      modelOptions(cfg),
	})
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "critical gain\t%.6g (%.3f dB)\n", m.CriticalGain, m.CriticalDB)
	fmt.Fprintf(w, "boundary\t(%.3f, %.3f] dB\n", m.CriticalDB, m.UnstableDB)
	fmt.Fprintf(w, "headroom from current\t%.3f dB\n", m.CriticalDB-cfg.GainDB)
	fmt.Fprintf(w, "iterations\t%d\n", m.Iterations)
	return w.Flush()
}

func runPlot(cmd *cobra.Command, args []string) error {
	cfg, plant, _, err := setup(cmd)
	if err != nil {
		return err
	}
	ctrl, err := newController(cfg, plant)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(plotPath), 0755); err != nil {
		return err
	}
	if err := export.SaveSpectrum(plotPath, ctrl.Snapshot(), export.DefaultPlotConfig()); err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", plotPath)
	return nil
}

func runResponse(cmd *cobra.Command, args []string) error {
	cfg, plant, _, err := setup(cmd)
	if err != nil {
		return err
	}
	g := gain.Invert(cfg.Inverted, gain.FromDecibels(cfg.GainDB))
	sim, err := response.New(plant, g, cfg.Numerics.Epsilon)
	if err != nil {
		return err
	}
	sim.AddMetric(response.NewPeak())
	sim.AddMetric(response.NewEnergy())
	sim.AddMetric(response.NewGrowth(samples / 2))

	res, err := sim.Run(cmd.Context(), response.Config{Samples: samples})
	if err != nil {
		return err
	}
	if len(res.Output) > 1 {
		graph := asciigraph.Plot(res.Output,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("impulse response, g = %.6g", g)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "duration\t%.2f ms (%d samples)\n", 1e3*float64(len(res.Output))/cfg.SamplingRate, len(res.Output))
	for _, name := range []string{"peak", "energy", "growth"} {
		fmt.Fprintf(w, "%s\t%.6g\n", name, res.Metrics[name])
	}
	if res.Diverged {
		fmt.Fprintf(w, "diverged\tat sample %d (%.2f ms)\n", res.DivergedAt, 1e3*float64(res.DivergedAt)/cfg.SamplingRate)
	}
	return w.Flush()
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, plant, _, err := setup(cmd)
	if err != nil {
		return err
	}
	// The UI owns the terminal; keep log lines off the screen.
	logger = zap.NewNop()
	ctrl, err := newController(cfg, plant)
	if err != nil {
		return err
	}
	tc := viz.DefaultTunerConfig()
	tc.Slider = cfg.Slider
	tc.Saver = storage.NewGainStore(cfg.GainFile)
	return viz.RunTuner(ctrl, tc)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tORDER\tD\t")
	for _, name := range config.ListPresets() {
		p, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%g\t\n", name, p.Order(), p.D().At(0, 0))
	}
	return w.Flush()
}

func saveGain(cmd *cobra.Command, args []string) error {
	cfg, err := settings(cmd)
	if err != nil {
		return err
	}
	g := gain.Invert(cfg.Inverted, gain.FromDecibels(cfg.GainDB))
	if cmd.Flags().Changed("value") {
		g = gainValue
	}
	store := storage.NewGainStore(cfg.GainFile)
	if err := store.SaveGain(g); err != nil {
		return err
	}
	fmt.Printf("saved: %s = %.6g to %s\n", storage.DefaultGainType, g, store.Path())
	return nil
}

func showGain(cmd *cobra.Command, args []string) error {
	cfg, err := settings(cmd)
	if err != nil {
		return err
	}
	rec, err := storage.NewGainStore(cfg.GainFile).Load(storage.DefaultGainType)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "type\t%s\n", rec.GainType)
	fmt.Fprintf(w, "domain\t%s\n", rec.Domain)
	fmt.Fprintf(w, "values\t%s\n", storage.FormatValues(rec.Values))
	if len(rec.Values) == 1 {
		fmt.Fprintf(w, "magnitude\t%.2f dB\n", gain.ToDecibels(rec.Values[0]))
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "howlsim.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", path)
	return nil
}
