package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/rotation.report/internal/config"
	"github.com/banshee-data/rotation.report/internal/rotation"
	"github.com/banshee-data/rotation.report/internal/version"
)

var (
	configFile    = flag.String("config", "", "Path to a JSON run configuration")
	pointsFile    = flag.String("points", "", "JSONL file of per-frame candidate points")
	imagesDir     = flag.String("images", "", "Directory of image frames to extract motion from")
	synthetic     = flag.Bool("synthetic", false, "Track a generated orbit instead of reading input")
	alpha         = flag.Float64("alpha", 0, "Smoothing weight of the new location, in (0, 1]")
	speed         = flag.Float64("speed", 0, "Smoothing weight as a percentage (0-100); sets -alpha to speed/100")
	maxDistance   = flag.Float64("max-distance", 0, "Outlier gate radius in pixels")
	pivotFlag     = flag.String("pivot", "", "Center of rotation as x,y")
	pivotFallback = flag.Bool("pivot-fallback", false, "Use the first frame's centroid as pivot when none is configured")
	pace          = flag.Bool("pace", false, "Sleep between frames to match the source frame rate")
	outDir        = flag.String("out-dir", ".", "Directory for CSV, plots and chart pages")
	csvName       = flag.String("csv", "", "CSV file name inside -out-dir (default \"speed_data - <source>.csv\")")
	noCSV         = flag.Bool("no-csv", false, "Skip the CSV export")
	plots         = flag.Bool("plots", false, "Write bearing and trajectory PNGs to -out-dir")
	htmlChart     = flag.Bool("html", false, "Write an interactive chart page to -out-dir")
	dbPath        = flag.String("db", "", "sqlite database to record the run in")
	debugListen   = flag.String("debug-listen", "", "Listen address for debug pages and the sample websocket (e.g. localhost:8081)")
	redisAddr     = flag.String("redis-addr", "", "Publish tracked frames to this redis server")
	redisChannel  = flag.String("redis-channel", "", "Redis channel for tracked frames")
	interactive   = flag.Bool("interactive", false, "Read p (pause/resume) and q (quit) from stdin")
	logLevel      = flag.String("log", "ops", "Core log streams to enable: none, ops, diag or trace")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("rotation-report"))
		return
	}

	if err := setLogLevel(*logLevel); err != nil {
		log.Fatal(err)
	}

	cfg := &config.RunConfig{}
	if *configFile != "" {
		loaded, err := config.LoadRunConfig(*configFile)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if err := applyFlagOverrides(cfg, set); err != nil {
		log.Fatal(err)
	}

	opts := analysisOptions{
		Config:       cfg,
		PointsFile:   *pointsFile,
		ImagesDir:    *imagesDir,
		Synthetic:    *synthetic,
		OutDir:       *outDir,
		CSVName:      *csvName,
		WriteCSV:     !*noCSV,
		WritePlots:   *plots,
		WriteHTML:    *htmlChart,
		DBPath:       *dbPath,
		DebugListen:  *debugListen,
		RedisAddr:    *redisAddr,
		RedisChannel: *redisChannel,
	}
	if *interactive {
		opts.Controls = os.Stdin
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := runAnalysis(ctx, opts)
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}
	state := "complete"
	if summary.Stopped {
		state = "stopped"
	}
	log.Printf("run %s %s: %d frames read, %d tracked, %d rotations",
		summary.RunID, state, summary.FramesRead, summary.FramesTracked, summary.Rotations)
}

// applyFlagOverrides copies explicitly set flags over file values.
func applyFlagOverrides(cfg *config.RunConfig, set map[string]bool) error {
	if set["alpha"] && set["speed"] {
		return fmt.Errorf("-alpha and -speed are mutually exclusive")
	}
	if set["alpha"] {
		v := *alpha
		cfg.Alpha = &v
	}
	if set["speed"] {
		cfg.SetTrackingSpeed(*speed)
	}
	if set["max-distance"] {
		v := *maxDistance
		cfg.MaxOutlierDistance = &v
	}
	if set["pivot"] {
		p, err := parsePivot(*pivotFlag)
		if err != nil {
			return err
		}
		cfg.Pivot = &config.PivotConfig{X: p.X, Y: p.Y}
	}
	if set["pivot-fallback"] {
		v := *pivotFallback
		cfg.PivotFallback = &v
	}
	if set["pace"] {
		v := *pace
		cfg.PacePlayback = &v
	}
	return cfg.Validate()
}

func setLogLevel(level string) error {
	switch level {
	case "none":
		rotation.SetLogWriters(nil, nil, nil)
	case "ops":
		rotation.SetLogWriters(os.Stderr, nil, nil)
	case "diag":
		rotation.SetLogWriters(os.Stderr, os.Stderr, nil)
	case "trace":
		rotation.SetLogWriters(os.Stderr, os.Stderr, os.Stderr)
	default:
		return fmt.Errorf("unknown -log level %q (want none, ops, diag or trace)", level)
	}
	return nil
}
