package main

import (
	"fmt"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/eostab/internal/reactor"
	"github.com/san-kum/eostab/internal/sim"
	"github.com/san-kum/eostab/internal/storage"
	"github.com/san-kum/eostab/internal/tabulated"
	"github.com/spf13/cobra"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT\tINTEG\tT0\tSTEPS\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%gs\t%gs\t%s\t%gK\t%d\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Temperature,
			run.StepsTaken,
			status,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n", len(states))
	if meta.Error != "" {
		fmt.Println(warnStyle.Render("stopped early: " + meta.Error))
	}
	fmt.Println()

	if T, err := storedTemperatures(meta, states); err == nil && len(T) > 1 {
		plot(T, "temperature [K]")
	}

	for i := range states[0] {
		label := fmt.Sprintf("x%d", i)
		if i < len(meta.Labels) {
			label = meta.Labels[i]
		}
		if len(columns) > 0 && !slices.Contains(columns, label) {
			continue
		}
		data := make([]float64, len(states))
		for k := range states {
			if i < len(states[k]) {
				data[k] = states[k][i]
			}
		}
		plot(data, label)
	}

	return nil
}

func plot(data []float64, caption string) {
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	fmt.Println()
}

// storedTemperatures reloads the run's model to recover temperatures.
func storedTemperatures(meta *storage.RunMetadata, states [][]float64) ([]float64, error) {
	model, err := tabulated.Load(meta.ModelDir, tabulated.WithLogger(newLogger()))
	if err != nil {
		return nil, err
	}
	rc, err := reactor.New(model)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(states))
	for _, x := range states {
		T, err := rc.Temperature(sim.State(x))
		if err != nil {
			return nil, err
		}
		out = append(out, T)
	}
	return out, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportCSV(args[0], os.Stdout)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(args[0], os.Stdout)
}
