package main

import (
	"fmt"
	"os"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/Ali-7800/SophT-Simulator/internal/cases"
	"github.com/Ali-7800/SophT-Simulator/internal/config"
	"github.com/Ali-7800/SophT-Simulator/internal/diagnostics"
	"github.com/Ali-7800/SophT-Simulator/internal/grid"
	"github.com/Ali-7800/SophT-Simulator/internal/tui"
)

var (
	configFile string
	preset     string
	caseName   string
	precision  string
	stiffness  float64
	damping    float64
	threads    int
	duration   float64
	outFile    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sopht",
		Short: "immersed boundary flow-body coupling lab",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a coupling case",
		RunE:  runCase,
	}
	addCaseFlags(runCmd)
	runCmd.Flags().StringVar(&outFile, "out", "drag_vs_time.csv", "drag series output file")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a coupling case with a live terminal view",
		RunE:  runLive,
	}
	addCaseFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list case presets",
		Run: func(cmd *cobra.Command, args []string) {
			names := config.ListPresets()
			sort.Strings(names)
			for _, name := range names {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, presetsCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addCaseFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&caseName, "case", "", "case name (sphere3d, disk2d, rod2d)")
	cmd.Flags().StringVar(&precision, "precision", "", "single or double")
	cmd.Flags().Float64Var(&stiffness, "stiffness", 0, "virtual boundary stiffness (negative)")
	cmd.Flags().Float64Var(&damping, "damping", 0, "virtual boundary damping (negative)")
	cmd.Flags().IntVar(&threads, "threads", 0, "worker count for transfer loops")
	cmd.Flags().Float64Var(&duration, "time", 0, "duration in body timescales")
}

func buildConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", preset)
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if caseName != "" {
		cfg.Case = caseName
	}
	if precision != "" {
		cfg.Precision = precision
	}
	if stiffness != 0 {
		cfg.Stiffness = stiffness
	}
	if damping != 0 {
		cfg.Damping = damping
	}
	if threads != 0 {
		cfg.NumThreads = threads
	}
	if duration != 0 {
		cfg.Duration = duration
	}
	return cfg, cfg.Validate()
}

func runCase(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if cfg.Precision == "single" {
		return runLoop[float32](cfg)
	}
	return runLoop[float64](cfg)
}

func runLoop[T grid.Real](cfg *config.Config) error {
	c, err := cases.Build[T](cfg)
	if err != nil {
		return err
	}
	fmt.Printf("case %s: %d markers, dt=%.2e, end time %.3f\n",
		c.Name, c.NumMarkers(), c.Dt(), c.EndTime)

	samples := make([]diagnostics.DragSample, 0, 64)
	sampleInterval := c.EndTime / 40
	nextSample := 0.0
	for !c.Done() {
		if c.Time() >= nextSample {
			nextSample += sampleInterval
			drag := c.Drag()
			samples = append(samples, diagnostics.DragSample{Time: c.Time(), Coefficient: drag})
			fmt.Printf("time: %.3f (%4.1f%%), drag coeff: %.4f\n",
				c.Time(), c.Time()/c.EndTime*100, drag)
		}
		if err := c.Step(); err != nil {
			return err
		}
	}
	samples = append(samples, diagnostics.DragSample{Time: c.Time(), Coefficient: c.Drag()})

	if outFile != "" {
		if err := diagnostics.WriteDragSeries(outFile, samples); err != nil {
			return err
		}
		fmt.Printf("drag series written to %s\n", outFile)
	}

	series := make([]float64, len(samples))
	for i, s := range samples {
		series[i] = s.Coefficient
	}
	fmt.Println(asciigraph.Plot(series,
		asciigraph.Height(12),
		asciigraph.Width(70),
		asciigraph.Caption("drag coefficient vs time"),
	))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	// The live monitor runs double precision regardless of config.
	c, err := cases.Build[float64](cfg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(tui.NewModel(c)).Run()
	return err
}
