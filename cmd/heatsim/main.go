package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/heatsim/internal/automation"
	"github.com/san-kum/heatsim/internal/config"
	"github.com/san-kum/heatsim/internal/export"
	"github.com/san-kum/heatsim/internal/heat"
	"github.com/san-kum/heatsim/internal/material"
	"github.com/san-kum/heatsim/internal/metrics"
	"github.com/san-kum/heatsim/internal/sim"
	"github.com/san-kum/heatsim/internal/storage"
	"github.com/san-kum/heatsim/internal/viz"
)

var (
	dataDir     string
	verbose     bool
	configFile  string
	preset      string
	gridSize    int
	timeStep    float64
	initialTemp float64
	materialID  string
	steps       int
	workers     int
	sourceSpecs []string
	save        bool
	plot        bool
	asJSON      bool
	svgPath     string
	compareWith []string
	interval    time.Duration
	livePower   float64
	liveTemp    float64
	sweepParam  string
	sweepFrom   float64
	sweepTo     float64
	sweepN      int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "heatsim",
		Short:        "2D heat diffusion simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".heatsim", "snapshot directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log simulation lifecycle to stderr")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation headlessly and print a summary",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().BoolVar(&save, "save", false, "save the final grid as a snapshot")
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot max/mean/min temperature history")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write the max temperature history as SVG")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with a live terminal heatmap",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().DurationVar(&interval, "interval", viz.DefaultInterval, "time between steps")
	liveCmd.Flags().Float64Var(&livePower, "power", config.DefaultSourcePower, "power of sources placed with the cursor (W)")
	liveCmd.Flags().Float64Var(&liveTemp, "source-temp", config.DefaultSourceTemperature, "temperature of sources placed with the cursor (K)")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "run the same layout on several materials side by side",
		Args:  cobra.NoArgs,
		RunE:  compareMaterials,
	}
	addSimFlags(compareCmd)
	compareCmd.Flags().StringSliceVar(&compareWith, "materials", []string{"copper", "silicon", "graphene", "air"}, "materials to compare")

	materialsCmd := &cobra.Command{
		Use:   "materials",
		Short: "list built-in materials",
		Args:  cobra.NoArgs,
		RunE:  listMaterials,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMATERIAL\tGRID\tSTEPS\tSOURCES")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", name, p.Material, p.GridSize, p.Steps, len(p.HeatSources()))
			}
			return w.Flush()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved snapshots",
		Args:  cobra.NoArgs,
		RunE:  listSnapshots,
	}

	showCmd := &cobra.Command{
		Use:   "show [snapshot_id]",
		Short: "print a saved snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  showSnapshot,
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "export the snapshot as JSON")
	showCmd.Flags().StringVar(&svgPath, "svg", "", "write the snapshot grid as SVG")

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a config file from defaults or a preset",
		Args:  cobra.ExactArgs(1),
		RunE:  writeConfig,
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "start from a preset")

	scriptCmd := &cobra.Command{
		Use:   "script [scenario.yaml]",
		Short: "replay a scripted scenario and print a checkpoint per action",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one simulation per value of a parameter",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", automation.ParamTimeStep, "parameter to sweep (time_step, initial_temperature, source_power)")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.05, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 0.25, "last value")
	sweepCmd.Flags().IntVar(&sweepN, "n", 5, "number of values")

	rootCmd.AddCommand(runCmd, liveCmd, compareCmd, materialsCmd, presetsCmd, listCmd, showCmd, initCmd, scriptCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&gridSize, "size", config.DefaultGridSize, "grid size (cells per side)")
	cmd.Flags().Float64Var(&timeStep, "dt", config.DefaultTimeStep, "time step (s)")
	cmd.Flags().Float64Var(&initialTemp, "temp", config.DefaultInitialTemperature, "initial temperature (K)")
	cmd.Flags().StringVar(&materialID, "material", string(config.DefaultMaterial), "material")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().IntVar(&workers, "workers", 0, "goroutines per step (0 = GOMAXPROCS)")
	cmd.Flags().StringArrayVar(&sourceSpecs, "source", nil, "heat source x,y,power[,temperature] (repeatable)")
}

func setupLogger(enabled bool) *log.Logger {
	if !enabled {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "heatsim: ", log.LstdFlags|log.Lshortfile)
}

// loadConfig layers defaults, then a config file or preset, then any flags
// the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	switch {
	case configFile != "" && preset != "":
		return nil, fmt.Errorf("--config and --preset are mutually exclusive")
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case preset != "":
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	flags := cmd.Flags()
	if flags.Changed("size") {
		cfg.GridSize = gridSize
	}
	if flags.Changed("dt") {
		cfg.TimeStep = timeStep
	}
	if flags.Changed("temp") {
		cfg.InitialTemperature = initialTemp
	}
	if flags.Changed("material") {
		cfg.Material = material.ID(materialID)
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	for _, raw := range sourceSpecs {
		sc, err := config.ParseSource(raw)
		if err != nil {
			return nil, err
		}
		cfg.Sources = append(cfg.Sources, sc)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSimulation(cfg *config.Config, logger *log.Logger) (*sim.Simulation, error) {
	return sim.New(cfg.Heat(), cfg.HeatSources(), sim.WithLogger(logger), sim.WithWorkers(cfg.Workers))
}

func observers(cfg *config.Config) []sim.Observer {
	obs := []sim.Observer{
		metrics.NewPeakTemperature(),
		metrics.NewMeanTemperature(),
		metrics.NewHeatedCells(cfg.InitialTemperature + 1),
	}
	h := cfg.Heat()
	if props, err := material.Default().Resolve(h.Material, h.Custom); err == nil {
		obs = append(obs, metrics.NewHeatContent(props.HeatCapacity(), cfg.InitialTemperature))
	}
	return obs
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(verbose)

	s, err := newSimulation(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	result, err := s.Run(ctx, cfg.Steps, observers(cfg)...)
	if err != nil && result == nil {
		return err
	}
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stopped after %d steps: %v\n", result.StepsTaken, err)
	}

	last := len(result.Times) - 1
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "material:\t%s\n", material.Name(cfg.Material))
	fmt.Fprintf(w, "grid:\t%d x %d\n", cfg.GridSize, cfg.GridSize)
	fmt.Fprintf(w, "sources:\t%d\n", len(s.Sources()))
	fmt.Fprintf(w, "steps:\t%d (%.2fs simulated, %v wall)\n", result.StepsTaken, s.Time(), elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "max temperature:\t%.4f K\n", result.Max[last])
	fmt.Fprintf(w, "mean temperature:\t%.4f K\n", result.Mean[last])
	fmt.Fprintf(w, "min temperature:\t%.4f K\n", result.Min[last])
	keys := make([]string, 0, len(result.Metrics))
	for k := range result.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s:\t%.6g\n", k, result.Metrics[k])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if plot {
		fmt.Println()
		fmt.Println(viz.PlotHistory(result, 70, 12))
	}

	if svgPath != "" {
		if err := os.WriteFile(svgPath, []byte(export.SeriesToSVG(result.Times, result.Max, 640, 320, "#ff5f00")), 0644); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", svgPath)
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		meta := storage.NewMetadata(s.Config(), s.Sources(), result.StepsTaken, s.Time(), result.Metrics)
		id, err := st.Save(meta, s.Grid())
		if err != nil {
			return err
		}
		fmt.Printf("\nsaved snapshot: %s\n", id)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := newSimulation(cfg, setupLogger(verbose))
	if err != nil {
		return err
	}
	return viz.Run(s, interval, livePower, liveTemp)
}

func compareMaterials(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	configs := make([]heat.Config, 0, len(compareWith))
	for _, id := range compareWith {
		c := cfg.Heat()
		c.Material = material.ID(id)
		configs = append(configs, c)
	}

	ctx, cancel := signalContext()
	defer cancel()

	ens := sim.NewEnsemble(configs, cfg.HeatSources(), sim.WithLogger(setupLogger(verbose)), sim.WithWorkers(1))
	results, err := ens.Run(ctx, cfg.Steps, func() []sim.Observer {
		return []sim.Observer{metrics.NewHeatedCells(cfg.InitialTemperature + 1)}
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MATERIAL\tALPHA (m²/s)\tMAX (K)\tMEAN (K)\tMIN (K)\tHEATED CELLS")
	for i, res := range results {
		props, _ := material.Default().Lookup(configs[i].Material)
		last := len(res.Times) - 1
		fmt.Fprintf(w, "%s\t%.3e\t%.4f\t%.4f\t%.4f\t%.0f\n",
			material.Name(configs[i].Material), props.Diffusivity(),
			res.Max[last], res.Mean[last], res.Min[last], res.Metrics["heated_cells"])
	}
	return w.Flush()
}

func listMaterials(cmd *cobra.Command, args []string) error {
	reg := material.Default()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tK (W/m·K)\tRHO (kg/m³)\tC (J/kg·K)\tALPHA (m²/s)")
	for _, id := range reg.IDs() {
		p, _ := reg.Lookup(id)
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\t%.3e\n", id, material.Name(id), p.K, p.Rho, p.C, p.Diffusivity())
	}
	fmt.Fprintf(w, "%s\t%s\t-\t-\t-\t(from custom_material)\n", material.Custom, material.Name(material.Custom))
	return w.Flush()
}

func listSnapshots(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no snapshots found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMATERIAL\tGRID\tSTEPS\tTIMESTAMP")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", run.ID, run.Material, run.GridSize, run.Steps, run.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func showSnapshot(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	g, err := st.LoadGrid(args[0])
	if err != nil {
		return err
	}

	if asJSON {
		return storage.ExportJSON(os.Stdout, *meta, g)
	}
	if svgPath != "" {
		if err := os.WriteFile(svgPath, []byte(export.GridToSVG(g, 8)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
		return nil
	}

	fmt.Printf("%s: %s, %dx%d, %d steps (%.2fs)\n\n", meta.ID, material.Name(meta.Material), meta.GridSize, meta.GridSize, meta.Steps, meta.SimTime)
	fmt.Print(viz.Heatmap(g, viz.HeatmapOptions{MaxCells: 80}))
	hi, _ := g.Max()
	lo, _ := g.Min()
	fmt.Printf("\nmax %.4f K  min %.4f K\n", hi, lo)
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	checkpoints, runErr := automation.RunScenario(ctx, sc, setupLogger(verbose))

	if sc.Name != "" {
		fmt.Printf("%s\n", sc.Name)
	}
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tACTION\tSTEPS\tTIME (s)\tSOURCES\tMAX (K)\tMIN (K)")
	for _, cp := range checkpoints {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%d\t%.4f\t%.4f\n", cp.Action, cp.Kind, cp.Steps, cp.Time, cp.Sources, cp.Max, cp.Min)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepFrom,
		ParamMax:  sweepTo,
		NumSteps:  sweepN,
	}, setupLogger(verbose))
	if err != nil && len(results) == 0 {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMAX (K)\tMEAN (K)\tMIN (K)\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%.4g\terror: %v\t\t\n", r.ParamValue, r.Err)
			continue
		}
		fmt.Fprintf(w, "%.4g\t%.4f\t%.4f\t%.4f\n", r.ParamValue, r.Max, r.Mean, r.Min)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}
