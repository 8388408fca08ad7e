package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/stepviz/internal/automation"
	"github.com/san-kum/stepviz/internal/compute"
	"github.com/san-kum/stepviz/internal/config"
	"github.com/san-kum/stepviz/internal/engine"
	"github.com/san-kum/stepviz/internal/export"
	"github.com/san-kum/stepviz/internal/logging"
	"github.com/san-kum/stepviz/internal/render"
	"github.com/san-kum/stepviz/internal/scenario"
	"github.com/san-kum/stepviz/internal/step"
	"github.com/san-kum/stepviz/internal/stream"
	"github.com/san-kum/stepviz/internal/tui"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
	dataDir    string
	theme      string

	speed  int
	preset string
	plain  bool
	redraw bool
	plot   bool

	outFile   string
	framesDir string
	traceFile string

	size      int
	target    int
	startNode string
	sorted    bool
	capacity  int
	items     string
	nValue    int
	playAfter bool

	listen    string
	staticDir string

	sweepMin    int
	sweepMax    int
	sweepPoints int
	sweepSVG    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "stepviz",
		Short:        "step-driven algorithm animations",
		SilenceUsage: true,
		RunE:         browse,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "scenario store directory")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", config.DefaultTheme, "color theme ("+strings.Join(render.ThemeNames(), ", ")+")")

	playCmd := &cobra.Command{
		Use:   "play [file|id]",
		Short: "play a scenario file or stored scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  playScenario,
	}
	playCmd.Flags().IntVar(&speed, "speed", config.DefaultSpeedValue, "speed value within the configured bounds")
	playCmd.Flags().StringVar(&preset, "preset", "", "named speed preset")
	playCmd.Flags().BoolVar(&plain, "plain", false, "print frames instead of running the interactive player")
	playCmd.Flags().BoolVar(&redraw, "redraw", false, "with --plain, redraw each frame in place")
	playCmd.Flags().BoolVar(&plot, "plot", false, "plot numeric array values under the cells")

	renderCmd := &cobra.Command{
		Use:   "render [file|id]",
		Short: "run a scenario without delays and write the final scene as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  renderScenario,
	}
	renderCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	renderCmd.Flags().StringVar(&framesDir, "frames", "", "also write one svg per frame into this directory")
	renderCmd.Flags().StringVar(&traceFile, "trace", "", "write a json trace of the pass")

	fetchCmd := &cobra.Command{
		Use:   "fetch [algorithm]",
		Short: "request steps from the compute service and store them",
		Args:  cobra.ExactArgs(1),
		RunE:  fetchScenario,
	}
	fetchCmd.Flags().IntVar(&size, "size", 10, "generated input size")
	fetchCmd.Flags().IntVar(&target, "target", 0, "search target (default: a value from the input)")
	fetchCmd.Flags().StringVar(&startNode, "start", "", "graph start node")
	fetchCmd.Flags().BoolVar(&sorted, "sorted", false, "generate sorted input")
	fetchCmd.Flags().IntVar(&capacity, "capacity", 0, fmt.Sprintf("knapsack capacity (default %d)", compute.DefaultCapacity))
	fetchCmd.Flags().StringVar(&items, "items", "", "knapsack items as weight:value pairs, e.g. 2:3,3:4,4:5")
	fetchCmd.Flags().IntVar(&nValue, "n", 0, "n for fib_dp")
	fetchCmd.Flags().BoolVar(&playAfter, "play", false, "play the scenario once stored")

	batchCmd := &cobra.Command{
		Use:   "batch [playlist]",
		Short: "fetch and store every entry of a yaml playlist",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [algorithm]",
		Short: "measure step counts across input sizes",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().IntVar(&sweepMin, "min", 2, "smallest input size")
	sweepCmd.Flags().IntVar(&sweepMax, "max", 20, "largest input size")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 8, "number of sizes")
	sweepCmd.Flags().BoolVar(&sorted, "sorted", false, "generate sorted input")
	sweepCmd.Flags().StringVar(&sweepSVG, "svg", "", "also write the curve as svg")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored scenarios",
		RunE:  listScenarios,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream scenes to browsers over websocket",
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&listen, "listen", config.DefaultListen, "listen address")
	serveCmd.Flags().StringVar(&staticDir, "static", "", "directory of static files to serve next to /ws")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list speed presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVALUE\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%s\n", p.Name, p.Value(cfg.Speed), p.Description)
			}
			return w.Flush()
		},
	}

	algorithmsCmd := &cobra.Command{
		Use:   "algorithms",
		Short: "list algorithms the compute service can run",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ALGORITHM\tKIND\tINPUT")
			for _, name := range compute.AlgorithmNames() {
				alg := compute.Algorithms[name]
				input := alg.DType
				if input == "" {
					input = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, alg.Kind, input)
			}
			w.Flush()
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the default configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err == nil {
				return fmt.Errorf("%s already exists", args[0])
			}
			if err := config.Save(args[0], config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(playCmd, renderCmd, fetchCmd, batchCmd, sweepCmd, listCmd, serveCmd, presetsCmd, algorithmsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads --config when given and lets explicitly set flags win.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") || configFile == "" {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("data") || configFile == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("theme") || configFile == "" {
		cfg.Theme = theme
	}
	if flags.Lookup("speed") != nil && flags.Changed("speed") {
		cfg.Speed.Value = speed
	}
	if flags.Lookup("listen") != nil && flags.Changed("listen") {
		cfg.Listen = listen
	}
	if preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	slog.SetDefault(logging.New(os.Stderr, level))
	return cfg, nil
}

func playerOptions(cfg *config.Config) tui.Options {
	p := config.GetPreset(preset)
	return tui.Options{
		Theme:   render.GetTheme(cfg.Theme),
		Layout:  cfg.Layout,
		Plot:    plot,
		Logger:  slog.Default(),
		Instant: p != nil && p.Instant,
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func playScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := scenario.NewStore(cfg.DataDir).Resolve(args[0])
	if err != nil {
		return err
	}
	return play(cfg, sc)
}

func play(cfg *config.Config, sc *scenario.Scenario) error {
	spd, err := step.NewSpeed(cfg.Speed.Min, cfg.Speed.Max, cfg.Speed.Value)
	if err != nil {
		return err
	}
	clock := step.NewClock(spd)

	if !plain {
		return tui.Run(tui.NewPlayer(sc, clock, playerOptions(cfg)))
	}

	ctx, cancel := signalContext()
	defer cancel()
	res, err := tui.Plain{W: os.Stdout, Redraw: redraw, Opts: playerOptions(cfg)}.Play(ctx, sc, clock)
	if err != nil {
		return err
	}
	fmt.Printf("\n%s: %d/%d steps, %s\n", sc.Name, res.Visited, len(sc.Steps), res.Outcome)
	return nil
}

func browse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := scenario.NewStore(cfg.DataDir)
	entries, err := st.List()
	if err != nil {
		return err
	}
	spd, err := step.NewSpeed(cfg.Speed.Min, cfg.Speed.Max, cfg.Speed.Value)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []scenario.Metadata{}
	}
	return tui.Run(tui.NewBrowser(entries, st.LoadScenario, step.NewClock(spd), playerOptions(cfg)))
}

func renderScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := scenario.NewStore(cfg.DataDir).Resolve(args[0])
	if err != nil {
		return err
	}

	canvas := render.NewCanvas()
	th := render.GetTheme(cfg.Theme)
	eng := engine.New(canvas, nil, step.Instant{}, cfg.Layout, slog.Default())
	eng.RenderInitial(sc.Kind, sc.Data())

	var rec *export.Recorder
	if framesDir != "" || traceFile != "" {
		rec = export.NewRecorder(canvas, th, framesDir)
		if err := rec.Begin(sc.Name, sc.Kind, len(sc.Steps)); err != nil {
			return err
		}
		eng.AddObserver(rec.Observe)
	}
	res, err := eng.RunSteps(context.Background(), sc.Steps)
	if err != nil {
		return err
	}
	if rec != nil {
		tr, err := rec.Finish(res)
		if err != nil {
			return err
		}
		if traceFile != "" {
			if err := export.WriteTrace(traceFile, tr); err != nil {
				return err
			}
		}
		slog.Info("recorded pass", "frames", len(tr.Frames), "markers", tr.MarkerTotals())
	}

	svg := render.SVG(canvas, th)
	if outFile == "" {
		_, err = fmt.Print(svg)
		return err
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d elements)\n", outFile, canvas.Len())
	return nil
}

func fetchScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client := compute.New(cfg.Server.URL, cfg.Server.Timeout, slog.Default())

	opts := compute.FetchOptions{Size: size, Sorted: sorted, StartNode: startNode}
	flags := cmd.Flags()
	if flags.Changed("target") {
		opts.Target = &target
	}
	if flags.Changed("capacity") {
		opts.Capacity = &capacity
	}
	if items != "" {
		if opts.Items, err = compute.ParseItems(items); err != nil {
			return fmt.Errorf("--items: %w", err)
		}
	}
	if flags.Changed("n") {
		opts.N = &nValue
	}

	ctx, cancel := signalContext()
	defer cancel()
	sc, err := client.Fetch(ctx, args[0], opts)
	if err != nil {
		var se *compute.ServiceError
		if errors.As(err, &se) {
			return fmt.Errorf("compute service rejected %s: %s", args[0], se.Message)
		}
		return err
	}

	st := scenario.NewStore(cfg.DataDir)
	id, err := st.Save(sc, cfg.Server.URL)
	if err != nil {
		return err
	}
	fmt.Printf("stored %s (%d steps)\n", id, len(sc.Steps))

	if playAfter {
		return play(cfg, sc)
	}
	return nil
}

func listScenarios(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runs, err := scenario.NewStore(cfg.DataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no scenarios stored")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tKIND\tTIME\tSTEPS\tSOURCE")
	for _, m := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			m.ID,
			m.Name,
			m.Kind,
			m.Timestamp.Format("2006-01-02 15:04:05"),
			m.Steps,
			m.Source,
		)
	}
	return w.Flush()
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := scenario.NewStore(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	srv := stream.NewServer(cfg, st, slog.Default())

	httpSrv := &http.Server{Addr: cfg.Listen, Handler: srv.Handler(staticDir)}
	ctx, cancel := signalContext()
	defer cancel()
	go func() {
		<-ctx.Done()
		httpSrv.Shutdown(context.Background())
	}()

	slog.Info("listening", "addr", cfg.Listen, "store", st.Dir())
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	pl, err := automation.LoadPlaylist(args[0])
	if err != nil {
		return err
	}
	st := scenario.NewStore(cfg.DataDir)
	client := compute.New(cfg.Server.URL, cfg.Server.Timeout, slog.Default())

	ctx, cancel := signalContext()
	defer cancel()
	ids, err := automation.RunPlaylist(ctx, pl, client, st, cfg.Server.URL, os.Stdout)
	for _, id := range ids {
		fmt.Printf("stored %s\n", id)
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client := compute.New(cfg.Server.URL, cfg.Server.Timeout, slog.Default())

	ctx, cancel := signalContext()
	defer cancel()
	results, err := automation.RunSweep(ctx, &automation.SizeSweep{
		Algorithm: args[0],
		SizeMin:   sweepMin,
		SizeMax:   sweepMax,
		NumPoints: sweepPoints,
		Sorted:    sorted,
	}, client, os.Stderr)
	if err != nil {
		return err
	}

	counts := make([]float64, len(results))
	points := make([]export.Point, len(results))
	for i, r := range results {
		counts[i] = float64(r.Steps)
		points[i] = export.Point{X: float64(r.Size), Y: float64(r.Steps)}
	}
	fmt.Println(asciigraph.Plot(counts,
		asciigraph.Height(12),
		asciigraph.Caption(fmt.Sprintf("%s steps, size %d..%d", args[0], sweepMin, sweepMax)),
	))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIZE\tSTEPS")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\n", r.Size, r.Steps)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if sweepSVG != "" {
		th := render.GetTheme(cfg.Theme)
		svg := export.CurveSVG(points, args[0]+" steps by input size", 640, 360, string(th.Primary), string(th.Background))
		return os.WriteFile(sweepSVG, []byte(svg), 0644)
	}
	return nil
}
