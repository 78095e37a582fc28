package main

import (
	"fmt"
	"os"

	"github.com/san-kum/eostab/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var (
	dataDir   string
	modelDir  string
	modelsDir string
	verbose   bool

	// reactor runs
	configFile         string
	preset             string
	integrator         string
	dt                 float64
	duration           float64
	adaptive           bool
	tolerance          float64
	strict             bool
	closureTemperature bool
	density            float64
	initialTemperature float64
	temperature        float64
	progress           []float64
	composition        map[string]string

	// property evaluation
	backend  string
	energy   float64
	velocity float64

	// sweeps
	temperatures []float64
	workers      int

	// plots
	columns []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "eostab",
		Short:         "equation-of-state backends for reacting flow",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".eostab", "data directory")
	rootCmd.PersistentFlags().StringVar(&modelDir, "model", config.DefaultModelDir, "model directory")
	rootCmd.PersistentFlags().StringVar(&modelsDir, "models", "models", "directory holding model directories")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	infoCmd := &cobra.Command{
		Use:   "info [model_dir]",
		Short: "describe a tabulated model",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showInfo,
	}

	encodeCmd := &cobra.Command{
		Use:   "encode",
		Short: "map reference mass fractions to progress variables",
		Args:  cobra.NoArgs,
		RunE:  encode,
	}
	encodeCmd.Flags().StringToStringVar(&composition, "composition", nil, "mass fractions by species, e.g. H2=0.02,O2=0.18")

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "map progress variables to reference mass fractions",
		Args:  cobra.NoArgs,
		RunE:  decode,
	}
	decodeCmd.Flags().Float64SliceVar(&progress, "cpv", nil, "progress variables")

	propsCmd := &cobra.Command{
		Use:   "props [property...]",
		Short: "evaluate thermodynamic properties",
		Long: "Evaluate properties of a quiescent or moving state with either backend.\n" +
			"With --temperature and no --energy the energy is taken from the temperature.",
		RunE: props,
	}
	propsCmd.Flags().StringVar(&backend, "backend", "tabulated", "backend (tabulated, kinetics)")
	propsCmd.Flags().Float64Var(&density, "rho", config.DefaultDensity, "density [kg/m³]")
	propsCmd.Flags().Float64Var(&energy, "energy", 1.2e5, "specific sensible internal energy [J/kg]")
	propsCmd.Flags().Float64Var(&velocity, "velocity", 0, "velocity [m/s]")
	propsCmd.Flags().Float64Var(&temperature, "temperature", 0, "known temperature [K]")
	propsCmd.Flags().Float64SliceVar(&progress, "cpv", nil, "progress variables (tabulated)")
	propsCmd.Flags().StringToStringVar(&composition, "composition", nil, "mass fractions by species (kinetics)")

	sourceCmd := &cobra.Command{
		Use:   "source",
		Short: "evaluate the chemistry source closure",
		Args:  cobra.NoArgs,
		RunE:  source,
	}
	sourceCmd.Flags().Float64Var(&density, "rho", config.DefaultDensity, "density [kg/m³]")
	sourceCmd.Flags().Float64Var(&temperature, "temperature", 0, "source temperature [K] (default: model closure temperature)")
	sourceCmd.Flags().Float64SliceVar(&progress, "cpv", nil, "progress variables")

	checkCmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "compare the reduced backend with its test targets",
		Long:  "Check one model directory, or every model under a root (default --models).",
		Args:  cobra.MaximumNArgs(1),
		RunE:  check,
	}

	reactCmd := &cobra.Command{
		Use:   "react",
		Short: "integrate a constant-volume reactor",
		Args:  cobra.NoArgs,
		RunE:  react,
	}
	addRunFlags(reactCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run the reactor over initial temperatures",
		Args:  cobra.NoArgs,
		RunE:  sweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&temperatures, "temperatures", []float64{1200, 1400, 1600, 1800}, "initial temperatures [K]")
	sweepCmd.Flags().IntVar(&workers, "workers", 4, "parallel runs")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators on the same reactor",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addRunFlags(compareCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&columns, "columns", nil, "state columns to plot (default: all)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "pick a preset and watch it react",
		Args:  cobra.NoArgs,
		RunE:  explore,
	}

	rootCmd.AddCommand(infoCmd, encodeCmd, decodeCmd, propsCmd, sourceCmd, checkCmd,
		reactCmd, sweepCmd, compareCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd,
		presetsCmd, exploreCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// parseComposition reads species=value pairs.
func parseComposition(raw map[string]string) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for name, s := range raw {
		v, err := cast.ToFloat64E(s)
		if err != nil {
			return nil, fmt.Errorf("composition %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// vector orders a composition by species, rejecting unknown names.
func vector(comp map[string]float64, species []string) ([]float64, error) {
	index := make(map[string]int, len(species))
	for i, s := range species {
		index[s] = i
	}
	y := make([]float64, len(species))
	for name, v := range comp {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("unknown species %q (have %v)", name, species)
		}
		y[i] = v
	}
	return y, nil
}
