package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/eostab/internal/consistency"
	"github.com/san-kum/eostab/internal/eos"
	"github.com/san-kum/eostab/internal/experiment"
	"github.com/san-kum/eostab/internal/fields"
	"github.com/san-kum/eostab/internal/kinetics"
	"github.com/san-kum/eostab/internal/reactor"
	"github.com/san-kum/eostab/internal/tabulated"
	"github.com/spf13/cobra"
)

var (
	passStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func loadModel(args []string) (*tabulated.Backend, error) {
	dir := modelDir
	if len(args) > 0 {
		dir = args[0]
	}
	return tabulated.Load(dir, tabulated.WithLogger(newLogger()))
}

func showInfo(cmd *cobra.Command, args []string) error {
	b, err := loadModel(args)
	if err != nil {
		return err
	}
	meta := b.Metadata()
	detailed := b.Detailed()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "model:\t%s\n", b.Name())
	fmt.Fprintf(w, "dir:\t%s\n", b.Dir())
	fmt.Fprintf(w, "version:\t%s\n", meta.Version)
	fmt.Fprintf(w, "mechanism:\t%s (%d species)\n", meta.Mechanism, len(detailed.Species()))
	if meta.Regressor != "" {
		fmt.Fprintf(w, "regressor:\t%s (not used)\n", meta.Regressor)
	}
	fmt.Fprintf(w, "closure temperature:\t%g K\n", b.ClosureTemperature())
	fmt.Fprintf(w, "reference species:\t%s\n", strings.Join(b.ReferenceSpecies(), " "))
	fmt.Fprintf(w, "progress variables:\t%s\n", strings.Join(b.ExtraVariables(), " "))
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nencode weights:")
	cpvs := b.ExtraVariables()
	weights := b.Manifold().Weights()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "\t%s\t\n", strings.Join(cpvs, "\t"))
	for i, s := range b.ReferenceSpecies() {
		fmt.Fprintf(w, "%s\t", s)
		for j := range cpvs {
			fmt.Fprintf(w, "%.6g\t", weights.At(i, j))
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func encode(cmd *cobra.Command, args []string) error {
	if len(composition) == 0 {
		return fmt.Errorf("--composition is required")
	}
	b, err := loadModel(nil)
	if err != nil {
		return err
	}
	comp, err := parseComposition(composition)
	if err != nil {
		return err
	}
	y, err := vector(comp, b.ReferenceSpecies())
	if err != nil {
		return err
	}

	c := make([]float64, len(b.ExtraVariables()))
	if err := b.ComputeProgressVariables(y, c); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CPV\tVALUE")
	for i, name := range b.ExtraVariables() {
		fmt.Fprintf(w, "%s\t%.12g\n", name, c[i])
	}
	return w.Flush()
}

func decode(cmd *cobra.Command, args []string) error {
	b, err := loadModel(nil)
	if err != nil {
		return err
	}
	y := make([]float64, len(b.ReferenceSpecies()))
	decodeErr := b.ComputeMassFractions(progress, y)

	var de *tabulated.DecodeError
	if decodeErr != nil && !errors.As(decodeErr, &de) {
		return decodeErr
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPECIES\tY")
	for i, name := range b.ReferenceSpecies() {
		fmt.Fprintf(w, "%s\t%.12g\n", name, y[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if de != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("outside the admissible window (raw sum %.9g); values above are clamped", de.Sum)))
		return decodeErr
	}
	return nil
}

func props(cmd *cobra.Command, args []string) error {
	ps := eos.Properties()
	if len(args) > 0 {
		ps = ps[:0]
		for _, a := range args {
			p, err := eos.ParseProperty(a)
			if err != nil {
				return err
			}
			ps = append(ps, p)
		}
	}

	log := newLogger()
	reg := experiment.NewRegistry()
	knownT := cmd.Flags().Changed("temperature")
	fromT := knownT && !cmd.Flags().Changed("energy")

	var (
		b      eos.EOS
		layout *fields.Layout
		state  []float64
		err    error
	)
	switch backend {
	case "tabulated":
		if b, err = reg.GetBackend(backend, modelDir, log); err != nil {
			return err
		}
		layout, state, err = tabulatedState(b.(*tabulated.Backend), fromT)
	case "kinetics":
		meta, merr := tabulated.ReadMetadata(filepath.Join(modelDir, tabulated.MetadataFile))
		if merr != nil {
			return merr
		}
		if b, err = reg.GetBackend(backend, filepath.Join(modelDir, meta.Mechanism), log); err != nil {
			return err
		}
		layout, state, err = kineticsState(b.(*kinetics.Backend), fromT)
	default:
		return fmt.Errorf("unknown backend: %s (available: %v)", backend, reg.ListBackends())
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROPERTY\tVALUE")
	for _, p := range ps {
		ev, err := eos.GetFunction(b, p, layout, knownT)
		if err != nil {
			return err
		}
		var v float64
		if knownT {
			v, err = ev.EvalAt(state, temperature)
		} else {
			v, err = ev.Eval(state)
		}
		if err != nil {
			fmt.Fprintf(w, "%v\t%s\n", p, failStyle.Render(err.Error()))
			continue
		}
		fmt.Fprintf(w, "%v\t%.9g\n", p, v)
	}
	return w.Flush()
}

// tabulatedState packs [ρ, ρE, ρu, ρC...] in the reactor layout.
func tabulatedState(b *tabulated.Backend, fromTemperature bool) (*fields.Layout, []float64, error) {
	rc, err := reactor.New(b)
	if err != nil {
		return nil, nil, err
	}
	if fromTemperature {
		x, err := rc.InitialState(progress, density, temperature)
		if err != nil {
			return nil, nil, err
		}
		x[fields.RhoE] += 0.5 * density * velocity * velocity
		x[fields.RhoU] = density * velocity
		return rc.Layout(), x, nil
	}
	if err := eos.CheckLength("--cpv", progress, len(b.ExtraVariables())); err != nil {
		return nil, nil, err
	}
	x := []float64{density, density * (energy + 0.5*velocity*velocity), density * velocity}
	for _, c := range progress {
		x = append(x, density*c)
	}
	return rc.Layout(), x, nil
}

// kineticsState packs [ρ, ρE, ρu, ρY...] over the mechanism species.
func kineticsState(b *kinetics.Backend, fromTemperature bool) (*fields.Layout, []float64, error) {
	if len(composition) == 0 {
		return nil, nil, fmt.Errorf("--composition is required for the kinetics backend")
	}
	comp, err := parseComposition(composition)
	if err != nil {
		return nil, nil, err
	}
	y, err := vector(comp, b.Species())
	if err != nil {
		return nil, nil, err
	}

	layout, err := fields.NewLayout(
		fields.Field{Name: fields.Euler, Components: 3, ComponentNames: []string{"rho", "rhoE", "rhoU"}, Offset: 0},
		fields.Field{Name: fields.DensityMassFractions, Components: len(y), ComponentNames: b.Species(), Offset: 3},
	)
	if err != nil {
		return nil, nil, err
	}

	e := energy
	if fromTemperature {
		e = b.SensibleEnergy(y, temperature)
	}
	x := []float64{density, density * (e + 0.5*velocity*velocity), density * velocity}
	for _, v := range y {
		x = append(x, density*v)
	}
	return layout, x, nil
}

func source(cmd *cobra.Command, args []string) error {
	b, err := loadModel(nil)
	if err != nil {
		return err
	}
	cpvs := b.ExtraVariables()
	if err := eos.CheckLength("--cpv", progress, len(cpvs)); err != nil {
		return err
	}

	rhoC := make([]float64, len(progress))
	for i, c := range progress {
		rhoC[i] = density * c
	}
	out := make([]float64, len(cpvs))

	T := b.ClosureTemperature()
	if cmd.Flags().Changed("temperature") {
		T = temperature
	}
	q, err := b.ChemistrySourceAt(density, rhoC, T, out)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "temperature\t%g K\n", T)
	fmt.Fprintf(w, "energy source\t%.9g W/m³\n", q)
	for i, name := range cpvs {
		fmt.Fprintf(w, "d(rho %s)/dt\t%.9g kg/m³/s\n", name, out[i])
	}
	return w.Flush()
}

func check(cmd *cobra.Command, args []string) error {
	root := modelsDir
	if len(args) > 0 {
		root = args[0]
	}

	var models []consistency.Model
	if st, err := os.Stat(filepath.Join(root, consistency.TargetsFile)); err == nil && !st.IsDir() {
		models = []consistency.Model{{Name: filepath.Base(root), Dir: root, Targets: filepath.Join(root, consistency.TargetsFile)}}
	} else {
		if models, err = consistency.DiscoverModels(root); err != nil {
			return err
		}
	}

	h := consistency.New(consistency.WithLogger(newLogger()))
	failed := 0
	for _, m := range models {
		r, err := h.CheckModel(m)
		if err != nil {
			failed++
			fmt.Printf("%s %s: %v\n", failStyle.Render("ERROR"), m.Name, err)
			continue
		}
		if r.OK() {
			fmt.Printf("%s %s (%d targets, %d checks)\n", passStyle.Render("PASS"), r.Model, r.Targets, r.Checks)
			continue
		}
		failed++
		fmt.Printf("%s %s (%d of %d checks failed)\n", failStyle.Render("FAIL"), r.Model, len(r.Findings), r.Checks)
		for _, f := range r.Findings {
			fmt.Printf("  %s\n", f)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d models failed", failed, len(models))
	}
	return nil
}
