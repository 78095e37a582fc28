package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/eostab/internal/config"
	"github.com/san-kum/eostab/internal/experiment"
	"github.com/san-kum/eostab/internal/sim"
	"github.com/san-kum/eostab/internal/storage"
	"github.com/san-kum/eostab/internal/viz"
	"github.com/spf13/cobra"
)

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep [s]")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration [s]")
	f.BoolVar(&adaptive, "adaptive", false, "adaptive stepping (rk45)")
	f.Float64Var(&tolerance, "tol", config.DefaultTolerance, "adaptive error tolerance")
	f.BoolVar(&strict, "strict", false, "stop on the first inadmissible decode")
	f.BoolVar(&closureTemperature, "closure-temperature", false, "evaluate sources at the model closure temperature")
	f.Float64Var(&density, "rho", config.DefaultDensity, "initial density [kg/m³]")
	f.Float64Var(&initialTemperature, "temperature", config.DefaultTemperature, "initial temperature [K]")
	f.Float64SliceVar(&progress, "cpv", nil, "initial progress variables")
	f.StringToStringVar(&composition, "composition", nil, "initial mass fractions by species")
}

// runConfig layers preset, config file and explicitly set flags, in that
// order.
func runConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		model := filepath.Base(modelDir)
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		cfg = p
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.ModelDir = modelDir
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("adaptive") {
		cfg.Adaptive = adaptive
	}
	if flags.Changed("tol") {
		cfg.Tolerance = tolerance
	}
	if flags.Changed("strict") {
		cfg.Strict = strict
	}
	if flags.Changed("closure-temperature") {
		cfg.ClosureTemperature = closureTemperature
	}
	if flags.Changed("rho") {
		cfg.Initial.Density = density
	}
	if flags.Changed("temperature") {
		cfg.Initial.Temperature = initialTemperature
	}
	if flags.Changed("composition") {
		comp, err := parseComposition(composition)
		if err != nil {
			return nil, err
		}
		cfg.Initial.Composition = comp
		cfg.Initial.Progress = nil
	}
	if flags.Changed("cpv") {
		cfg.Initial.Progress = append([]float64(nil), progress...)
	}
	return cfg, nil
}

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func react(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(*cfg, newLogger())
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, stop := interruptible()
	defer stop()

	fmt.Printf("running %s reactor (%s, dt=%g s, duration=%g s)...\n", exp.Model().Name(), cfg.Integrator, cfg.Dt, cfg.Duration)
	start := time.Now()
	result, runErr := exp.Run(ctx)
	elapsed := time.Since(start)
	if result == nil {
		return runErr
	}

	meta := storage.RunMetadata{
		Model:              exp.Model().Name(),
		ModelDir:           cfg.ModelDir,
		Dt:                 cfg.Dt,
		Duration:           cfg.Duration,
		Adaptive:           cfg.Adaptive,
		Integrator:         cfg.Integrator,
		Strict:             cfg.Strict,
		ClosureTemperature: cfg.ClosureTemperature,
		Density:            cfg.Initial.Density,
		Temperature:        cfg.Initial.Temperature,
		Labels:             exp.Reactor().Layout().ComponentLabels(),
	}
	if runErr != nil {
		meta.Error = runErr.Error()
	}
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	if err := printMetrics(result.Metrics); err != nil {
		return err
	}
	return runErr
}

func printMetrics(m map[string]float64) error {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%.9g\n", name, m[name])
	}
	return w.Flush()
}

func sweep(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig(cmd)
	if err != nil {
		return err
	}
	if len(temperatures) == 0 {
		return fmt.Errorf("--temperatures is empty")
	}

	exp := experiment.New(*cfg, newLogger())
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, stop := interruptible()
	defer stop()

	fmt.Printf("sweeping %d initial temperatures on %d workers...\n", len(temperatures), workers)
	results, errs := exp.Sweep(ctx, temperatures, workers)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "T0\tPEAK_T\tFINAL_T\tHEAT_RELEASED\tCLAMPED\tSTATUS")
	var series [][]float64
	for i, T0 := range temperatures {
		status := passStyle.Render("ok")
		if errs[i] != nil {
			status = failStyle.Render(errs[i].Error())
		}
		r := results[i]
		if r == nil {
			fmt.Fprintf(w, "%g\t-\t-\t-\t-\t%s\n", T0, status)
			continue
		}
		m := r.Metrics
		fmt.Fprintf(w, "%g\t%.6g\t%.6g\t%.6g\t%g\t%s\n", T0,
			m["peak_temperature"], m["final_temperature"], m["heat_released"], m["clamped_decodes"], status)

		if trace := temperatureTrace(exp, r); len(trace) > 1 {
			series = append(series, trace)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(series) > 0 {
		fmt.Println()
		fmt.Println(asciigraph.PlotMany(series,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("temperature [K] vs step"),
		))
	}
	return nil
}

// temperatureTrace recovers T(t) from stored states, skipping states the
// model cannot decode.
func temperatureTrace(exp *experiment.Experiment, r *sim.Result) []float64 {
	rc := exp.Reactor()
	out := make([]float64, 0, len(r.States))
	for _, x := range r.States {
		if T, err := rc.Temperature(x); err == nil {
			out = append(out, T)
		}
	}
	return out
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := interruptible()
	defer stop()

	fmt.Printf("comparing integrators (dt=%g s, duration=%g s, T0=%g K)\n\n", cfg.Dt, cfg.Duration, cfg.Initial.Temperature)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSTEPS\tFINAL_T\tPEAK_T\tDENSITY_DRIFT\tTIME_MS")

	for _, name := range args {
		c := *cfg
		c.Integrator = name
		if name != "rk45" {
			c.Adaptive = false
		}

		exp := experiment.New(c, newLogger())
		if err := exp.Setup(); err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		start := time.Now()
		result, err := exp.Run(ctx)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		m := result.Metrics
		fmt.Fprintf(w, "%s\t%d\t%.6g\t%.6g\t%.2e\t%.2f\n", name, result.StepsTaken,
			m["final_temperature"], m["peak_temperature"], m["density_drift"], float64(elapsed.Microseconds())/1000)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	models := config.ListModels()
	if len(args) > 0 {
		models = args
	}
	for _, model := range models {
		presets := config.ListPresets(model)
		if len(presets) == 0 {
			fmt.Printf("no presets for model: %s\n", model)
			continue
		}
		fmt.Printf("presets for %s:\n", model)
		for _, p := range presets {
			c := config.GetPreset(model, p)
			fmt.Printf("  %-10s %s, T0=%g K, rho=%g kg/m³, %g s\n", p, c.Integrator, c.Initial.Temperature, c.Initial.Density, c.Duration)
		}
	}
	return nil
}

func explore(cmd *cobra.Command, args []string) error {
	dir := ""
	if cmd.Flags().Changed("model") {
		dir = modelDir
	}
	log := newLogger()
	// the terminal belongs to the program while it runs
	log.SetOutput(io.Discard)

	app := viz.NewApp(dir, log)
	_, err := tea.NewProgram(*app, tea.WithAltScreen()).Run()
	return err
}
