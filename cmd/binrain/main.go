package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/san-kum/binrain/internal/automation"
	"github.com/san-kum/binrain/internal/config"
	"github.com/san-kum/binrain/internal/gui"
	"github.com/san-kum/binrain/internal/rain"
	"github.com/san-kum/binrain/internal/record"
	"github.com/san-kum/binrain/internal/storage"
	"github.com/san-kum/binrain/internal/tui"
	"github.com/san-kum/binrain/internal/viz"
	"github.com/san-kum/binrain/internal/web"
)

var (
	configFile string
	envFile    string
	dataDir    string
	preset     string
	theme      string
	seed       int64
	// Rain tuning
	glyphSize        int
	increment        float64
	resetProbability float64
	delay            time.Duration
	noHero           bool
	// Recording
	width   int
	height  int
	ticks   int
	format  string
	outFile string
	save    bool
	name    string
	// Server
	addr string
	// Sweep
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

var logger = log.New(os.Stderr, "binrain: ", log.LstdFlags)

func main() {
	rootCmd := &cobra.Command{
		Use:   "binrain",
		Short: "binary rain animator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				return godotenv.Overload(envFile)
			}
			return nil
		},
		RunE: runTUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&envFile, "env-file", "", "load environment overrides from this file")
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "recording data directory")
	pf.StringVar(&preset, "preset", "", "rain preset (see 'binrain presets')")
	pf.StringVar(&theme, "theme", "dark", "color theme: dark or light")
	pf.Int64Var(&seed, "seed", 1, "random seed")
	pf.IntVar(&glyphSize, "glyph-size", rain.DefaultGlyphSize, "glyph size in pixels")
	pf.Float64Var(&increment, "increment", rain.DefaultIncrement, "rows advanced per tick")
	pf.Float64Var(&resetProbability, "reset-probability", rain.DefaultResetProbability, "chance a column past the bottom restarts")
	pf.DurationVar(&delay, "delay", rain.DefaultDelay, "delay between ticks")
	pf.BoolVar(&noHero, "no-hero", false, "hide the greeting overlay")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "run in the terminal (bubbletea)",
		RunE:  runTUI,
	}

	termCmd := &cobra.Command{
		Use:   "term",
		Short: "run in the terminal (tcell, true color)",
		RunE:  runTerm,
	}

	windowCmd := &cobra.Command{
		Use:   "window",
		Short: "run in a desktop window",
		RunE:  runWindow,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve rendered rain over http",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "render the animation headlessly to gif, png or svg",
		RunE:  runRecord,
	}
	addRecordFlags(recordCmd)

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "play a scripted yaml scenario and record it",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file")
	scenarioCmd.Flags().BoolVar(&save, "save", false, "store the recording in the data directory")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "plot per-tick metrics of a headless run",
		RunE:  runStats,
	}
	statsCmd.Flags().IntVar(&width, "width", config.DefaultWidth, "surface width in pixels")
	statsCmd.Flags().IntVar(&height, "height", config.DefaultHeight, "surface height in pixels")
	statsCmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "ticks to simulate")

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "compare metrics across values of increment, reset_probability, initial_position or glyph_size",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value (default depends on the parameter)")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0, "last value (default depends on the parameter)")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "ticks per run")
	sweepCmd.Flags().IntVar(&width, "width", config.DefaultWidth, "surface width in pixels")
	sweepCmd.Flags().IntVar(&height, "height", config.DefaultHeight, "surface height in pixels")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored recordings",
		RunE:  listRecordings,
	}

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "show a stored recording and plot its ticks",
		Args:  cobra.ExactArgs(1),
		RunE:  showRecording,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "delete a stored recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			return st.Delete(args[0])
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list rain presets",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, p := range config.ListPresets() {
				fmt.Fprintf(w, "%s\t%s\n", p, config.Presets[p].Description)
			}
			w.Flush()
		},
	}

	rootCmd.AddCommand(tuiCmd, termCmd, windowCmd, serveCmd, recordCmd, scenarioCmd, statsCmd, sweepCmd, listCmd, showCmd, deleteCmd, presetsCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRecordFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&width, "width", config.DefaultWidth, "surface width in pixels")
	cmd.Flags().IntVar(&height, "height", config.DefaultHeight, "surface height in pixels")
	cmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "ticks to record")
	cmd.Flags().StringVar(&format, "format", config.DefaultFormat, "gif, png or svg")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default rain.<format>)")
	cmd.Flags().BoolVar(&save, "save", false, "store the recording in the data directory")
	cmd.Flags().StringVar(&name, "name", "rain", "recording name")
}

// loadConfig layers defaults, the config file, the environment, the preset
// and finally any flags set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	if preset != "" {
		p, ok := config.Presets[preset]
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		p.Apply(&cfg.Rain)
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("theme") {
		cfg.Theme = theme
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("glyph-size") {
		cfg.Rain.GlyphSize = glyphSize
	}
	if flags.Changed("increment") {
		cfg.Rain.Increment = increment
	}
	if flags.Changed("reset-probability") {
		cfg.Rain.ResetProbability = resetProbability
	}
	if flags.Changed("delay") {
		cfg.Rain.Delay = delay
	}
	if noHero {
		cfg.Hero.Enabled = false
	}
	if flags.Lookup("width") != nil && flags.Changed("width") {
		cfg.Render.Width = width
	}
	if flags.Lookup("height") != nil && flags.Changed("height") {
		cfg.Render.Height = height
	}
	if flags.Lookup("ticks") != nil && flags.Changed("ticks") {
		cfg.Render.Ticks = ticks
	}
	if flags.Lookup("format") != nil && flags.Changed("format") {
		cfg.Render.Format = format
	}
	if flags.Lookup("addr") != nil && flags.Changed("addr") {
		cfg.Server.Addr = addr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := viz.Options{Rain: cfg.ToRain(), Dark: cfg.Dark()}
	if cfg.Hero.Enabled {
		opts.Hero = &viz.Hero{Name: cfg.Hero.Name, Typing: cfg.ToTypewriter()}
	}
	return viz.Run(opts)
}

func runTerm(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := tui.Options{Rain: cfg.ToRain(), Dark: cfg.Dark(), HeroName: cfg.Hero.Name}
	if cfg.Hero.Enabled {
		tc := cfg.ToTypewriter()
		opts.Hero = &tc
	}
	ctx, cancel := signalContext()
	defer cancel()
	return tui.Run(ctx, opts)
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := gui.Options{Rain: cfg.ToRain(), Dark: cfg.Dark(), HeroName: cfg.Hero.Name}
	if cfg.Hero.Enabled {
		tc := cfg.ToTypewriter()
		opts.Hero = &tc
	}
	return gui.Run(opts)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := signalContext()
	defer cancel()
	return web.NewServer(cfg, st, logger).Run(ctx)
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	f, _ := record.ParseFormat(cfg.Render.Format)
	rec, err := record.New(cfg.ToRain(), record.Options{
		Width:   cfg.Render.Width,
		Height:  cfg.Render.Height,
		Dark:    cfg.Dark(),
		Format:  f,
		Capture: f == record.FormatGIF,
	})
	if err != nil {
		return err
	}
	if err := rec.Run(cfg.Render.Ticks); err != nil {
		return err
	}
	rec.Stop()
	return writeRecording(cmd, cfg, rec, name)
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	rec, err := automation.RunScenario(ctx, sc, cfg.ToRain(), logger)
	if err != nil {
		return err
	}
	label := sc.Name
	if label == "" {
		label = "scenario"
	}
	return writeRecording(cmd, cfg, rec, label)
}

func writeRecording(cmd *cobra.Command, cfg *config.Config, rec *record.Recorder, label string) error {
	var buf bytes.Buffer
	if err := rec.Encode(&buf); err != nil {
		return err
	}

	out := outFile
	if out == "" {
		out = "rain." + string(rec.Format())
	}
	if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
		return err
	}
	w, h := rec.Size()
	fmt.Printf("wrote %s (%dx%d, %d ticks)\n", out, w, h, rec.Ticks())

	if !save {
		return nil
	}
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	defer st.Close()

	meta := storage.NewMeta(label, rec.Animator().Config(), w, h, string(rec.Format()), rec.Animator().Theme().Name == "dark")
	meta.Metrics = rec.Metrics()
	id, err := st.Save(meta, rec.Series().Ticks, buf.Bytes())
	if err != nil {
		return err
	}
	fmt.Printf("saved recording %s\n", id)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rec, err := record.New(cfg.ToRain(), record.Options{
		Width:  cfg.Render.Width,
		Height: cfg.Render.Height,
		Dark:   cfg.Dark(),
	})
	if err != nil {
		return err
	}
	if err := rec.Run(cfg.Render.Ticks); err != nil {
		return err
	}

	series := rec.Series()
	fmt.Printf("surface: %dx%d, %d columns, %d ticks\n\n", cfg.Render.Width, cfg.Render.Height, rec.Animator().Columns(), rec.Ticks())
	fmt.Println(asciigraph.Plot(series.Depth(), asciigraph.Height(10), asciigraph.Width(70), asciigraph.Caption("mean column depth (rows)")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(series.Resets(), asciigraph.Height(5), asciigraph.Width(70), asciigraph.Caption("column resets per tick")))
	fmt.Println()
	printMetrics(rec.Metrics())
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lo, hi, err := automation.SweepRange(args[0])
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("min") {
		lo = sweepMin
	}
	if cmd.Flags().Changed("max") {
		hi = sweepMax
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		ParamName: args[0],
		ParamMin:  lo,
		ParamMax:  hi,
		NumSteps:  sweepSteps,
		Ticks:     cfg.Render.Ticks,
		Width:     cfg.Render.Width,
		Height:    cfg.Render.Height,
	}, cfg.ToRain())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tRESET_RATE\tMEAN_DEPTH\tONES_RATIO\n", args[0])
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.4f\t%.2f\t%.3f\n", r.ParamValue, r.Metrics["reset_rate"], r.Metrics["mean_depth"], r.Metrics["ones_ratio"])
	}
	return w.Flush()
}

func listRecordings(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recordings found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSIZE\tTICKS\tFORMAT\tTHEME\tSEED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%d\t%s\t%s\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Width, run.Height,
			run.Ticks,
			run.Format,
			run.Theme,
			run.Seed,
		)
	}
	return w.Flush()
}

func showRecording(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	rows, err := st.LoadTicks(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("recording: %s\n", meta.ID)
	fmt.Printf("created:   %s\n", meta.Timestamp.Format(time.RFC3339))
	fmt.Printf("surface:   %dx%d (%s, %s)\n", meta.Width, meta.Height, meta.Format, meta.Theme)
	fmt.Printf("rain:      glyph %dpx, +%.2f rows/tick, reset p=%.4f, %dms delay, seed %d\n\n",
		meta.GlyphSize, meta.Increment, meta.ResetProbability, meta.DelayMS, meta.Seed)

	if len(rows) > 1 {
		depth := make([]float64, len(rows))
		resets := make([]float64, len(rows))
		for i, r := range rows {
			depth[i] = r.MeanDepth
			resets[i] = float64(r.Resets)
		}
		fmt.Println(asciigraph.Plot(depth, asciigraph.Height(10), asciigraph.Width(70), asciigraph.Caption("mean column depth (rows)")))
		fmt.Println()
		fmt.Println(asciigraph.Plot(resets, asciigraph.Height(5), asciigraph.Width(70), asciigraph.Caption("column resets per tick")))
		fmt.Println()
	}
	printMetrics(meta.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Printf("%-12s %.4f\n", k, m[k])
	}
}
