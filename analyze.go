package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/banshee-data/rotation.report/internal/charts"
	"github.com/banshee-data/rotation.report/internal/config"
	"github.com/banshee-data/rotation.report/internal/db"
	"github.com/banshee-data/rotation.report/internal/export"
	"github.com/banshee-data/rotation.report/internal/live"
	"github.com/banshee-data/rotation.report/internal/rotation"
	"github.com/banshee-data/rotation.report/internal/security"
	"github.com/banshee-data/rotation.report/internal/session"
	"github.com/banshee-data/rotation.report/internal/source"
	"tailscale.com/tsweb"
)

// analysisOptions collects everything one analyzer run needs. Exactly one of
// PointsFile, ImagesDir and Synthetic selects the frame source.
type analysisOptions struct {
	Config *config.RunConfig

	PointsFile string
	ImagesDir  string
	Synthetic  bool

	OutDir     string
	CSVName    string
	WriteCSV   bool
	WritePlots bool
	WriteHTML  bool

	DBPath       string
	DebugListen  string
	RedisAddr    string
	RedisChannel string

	// Controls, when set, is read for single-letter playback commands.
	Controls io.Reader
}

// parsePivot parses "x,y" into a point.
func parsePivot(s string) (rotation.Point2D, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return rotation.Point2D{}, fmt.Errorf("pivot must be x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return rotation.Point2D{}, fmt.Errorf("invalid pivot x %q: %w", parts[0], err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return rotation.Point2D{}, fmt.Errorf("invalid pivot y %q: %w", parts[1], err)
	}
	return rotation.Point2D{X: x, Y: y}, nil
}

// openSource returns the frame source and a label naming it.
func openSource(opts analysisOptions) (session.FrameSource, string, func() error, error) {
	chosen := 0
	for _, on := range []bool{opts.PointsFile != "", opts.ImagesDir != "", opts.Synthetic} {
		if on {
			chosen++
		}
	}
	if chosen != 1 {
		return nil, "", nil, errors.New("exactly one of -points, -images or -synthetic is required")
	}
	noop := func() error { return nil }
	cfg := opts.Config

	switch {
	case opts.PointsFile != "":
		src, err := source.OpenJSONL(opts.PointsFile)
		if err != nil {
			return nil, "", nil, err
		}
		return src, opts.PointsFile, src.Close, nil

	case opts.ImagesDir != "":
		src, err := source.OpenImageSequence(opts.ImagesDir, source.ImageSequenceConfig{
			Threshold: cfg.GetBackgroundThreshold(),
			History:   cfg.GetBackgroundHistory(),
			FrameRate: cfg.GetFrameRate(),
		})
		if err != nil {
			return nil, "", nil, err
		}
		return src, opts.ImagesDir, noop, nil

	default:
		oc := source.DefaultOrbitConfig()
		oc.FrameRate = cfg.GetFrameRate()
		if cfg.Pivot != nil {
			oc.Pivot = rotation.Point2D{X: cfg.Pivot.X, Y: cfg.Pivot.Y}
		}
		return source.NewOrbit(oc), "synthetic-orbit", noop, nil
	}
}

// runAnalysis tracks one source to completion and writes the requested
// outputs. Cancelling ctx stops the run early; outputs are still written for
// the frames processed.
func runAnalysis(ctx context.Context, opts analysisOptions) (session.Summary, error) {
	if opts.Config == nil {
		opts.Config = &config.RunConfig{}
	}
	trackCfg, err := opts.Config.TrackingConfig()
	if err != nil {
		return session.Summary{}, err
	}
	if opts.OutDir == "" {
		opts.OutDir = "."
	}

	src, label, closeSrc, err := openSource(opts)
	if err != nil {
		return session.Summary{}, err
	}
	defer closeSrc()

	pipeline, err := rotation.NewPipeline(trackCfg)
	if err != nil {
		return session.Summary{}, err
	}

	runner := session.NewRunner(src, pipeline, session.Options{
		FrameRate: opts.Config.GetFrameRate(),
		Pace:      opts.Config.GetPacePlayback(),
	})
	runID := runner.RunID()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup

	var store *db.DB
	var recorder *db.Recorder
	if opts.DBPath != "" {
		store, err = db.NewDB(opts.DBPath)
		if err != nil {
			return session.Summary{}, fmt.Errorf("failed to open database: %w", err)
		}
		defer store.Close()

		params, err := opts.Config.ParamsJSON()
		if err != nil {
			return session.Summary{}, err
		}
		if err := store.InsertRun(&db.Run{RunID: runID, Source: label, ParamsJSON: params, StartedAt: time.Now()}); err != nil {
			return session.Summary{}, err
		}
		recorder = db.NewRecorder(store, runID, 0)
		pipeline.AddObserver(recorder)
	}

	if opts.RedisAddr != "" {
		client := live.NewRedisClient(opts.RedisAddr)
		defer client.Close()
		pub := live.NewRedisPublisher(client, opts.RedisChannel, runID)
		pipeline.AddObserver(pub)
		wg.Add(1)
		go func() {
			defer wg.Done()
			pub.Run(ctx)
			published, dropped, failed := pub.Stats()
			log.Printf("redis %s: %d published, %d dropped, %d failed", pub.Channel(), published, dropped, failed)
		}()
	}

	if opts.DebugListen != "" {
		tracker := live.NewStateTracker(runID, pipeline.State())
		hub := live.NewHub(runID)
		pipeline.AddObserver(tracker)
		pipeline.AddObserver(hub)

		mux := http.NewServeMux()
		debug := tsweb.Debugger(mux)
		if store != nil {
			store.AttachAdminRoutes(debug)
		}
		live.AttachDebugRoutes(mux, debug, tracker, hub, runner)

		server := &http.Server{Addr: opts.DebugListen, Handler: mux}
		wg.Add(3)
		go func() {
			defer wg.Done()
			hub.Run(ctx)
		}()
		go func() {
			defer wg.Done()
			log.Printf("debug server listening on %s", opts.DebugListen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("debug server: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Printf("debug server shutdown error: %v", err)
			}
		}()
	}

	if opts.Controls != nil {
		go watchControls(ctx, opts.Controls, runner, cancel)
	}

	summary, runErr := runner.Run(ctx)
	// Background sinks exit on cancel; wait for them before closing the
	// store and redis client.
	cancel()
	wg.Wait()

	if recorder != nil {
		if err := recorder.Flush(); err != nil {
			log.Printf("failed to flush samples: %v", err)
		}
		if err := store.FinishRun(runID, summary.FinishedAt, summary.FramesRead, summary.Rotations, summary.Stopped); err != nil {
			log.Printf("failed to finish run: %v", err)
		}
	}
	if runErr != nil {
		return summary, runErr
	}

	if err := writeOutputs(opts, label, runID, pipeline); err != nil {
		return summary, err
	}
	return summary, nil
}

func writeOutputs(opts analysisOptions, label, runID string, pipeline *rotation.Pipeline) error {
	samples := pipeline.Samples()
	pivot, hasPivot := pipeline.State().Pivot()
	var pivotPtr *rotation.Point2D
	if hasPivot {
		pivotPtr = &pivot
	}

	if opts.WriteCSV || opts.WritePlots || opts.WriteHTML {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if opts.WriteCSV {
		path, err := export.SaveCSV(opts.OutDir, opts.CSVName, label, samples)
		if err != nil {
			return err
		}
		log.Printf("wrote %d samples to %s", len(samples), path)
	}

	prefix := security.SanitizeFilename(filepath.Base(label))
	if opts.WritePlots {
		paths, err := charts.SavePNGs(opts.OutDir, prefix, samples, pivotPtr)
		if err != nil {
			return err
		}
		log.Printf("wrote plots %s", strings.Join(paths, ", "))
	}

	if opts.WriteHTML {
		path, err := security.ResolveOutputPath(opts.OutDir, prefix+"-charts.html")
		if err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := charts.RenderHTML(f, fmt.Sprintf("%s (%s)", label, runID), samples, pivotPtr); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Printf("wrote chart page %s", path)
	}
	return nil
}

// watchControls maps "p" to pause/resume and "q" to quit.
func watchControls(ctx context.Context, r io.Reader, runner *session.Runner, quit context.CancelFunc) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "p":
			if runner.TogglePause() {
				log.Printf("paused; enter p to resume")
			} else {
				log.Printf("resumed")
			}
		case "q":
			log.Printf("quit requested")
			quit()
			return
		}
	}
}
