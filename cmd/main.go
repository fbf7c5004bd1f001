package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/google/uuid"

	"mav-playback/controller"
	"mav-playback/engine"
	"mav-playback/models"
	"mav-playback/services/ingest"
	"mav-playback/services/monitor"
	"mav-playback/services/publish"
	"mav-playback/utils"
	"mav-playback/views"
)

// engineFactory builds the tracking engine once every sequence is indexed.
type engineFactory func(cfg utils.EngineConfig, bufSizeBytes int) engine.Engine

func newGyroOdometry(cfg utils.EngineConfig, bufSizeBytes int) engine.Engine {
	return engine.NewGyroOdometry(cfg, bufSizeBytes)
}

func usage(fs *flag.FlagSet, w io.Writer) func() {
	return func() {
		fmt.Fprintf(w, "Usage: %s [flags] path_to_vocabulary path_to_settings path_to_sequence_folder_1 path_to_times_file_1 (path_to_sequence_folder_2 path_to_times_file_2 ... path_to_sequence_folder_N path_to_times_file_N) (output_prefix)\n\nFlags:\n", fs.Name())
		fs.PrintDefaults()
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr, newGyroOdometry))
}

// run executes one playback and returns the process exit status.
func run(argv []string, stderr io.Writer, newEngine engineFactory) int {
	// ── CLI flags ────────────────────────────────────────────────────
	fs := flag.NewFlagSet("mav-playback", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "optional playback.yaml (built-in defaults otherwise)")
	logFile := fs.String("log", "", "optional log file path (stdout is always included)")
	level := fs.String("level", "", "log level override: debug, info, warn, error")
	noPacing := fs.Bool("no-pacing", false, "process frames as fast as possible")
	fs.Usage = usage(fs, stderr)
	if err := fs.Parse(argv); err != nil {
		return 1
	}

	args, err := parseArgs(fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "%v\n\n", err)
		fs.Usage()
		return 1
	}

	// ── Config + logger ──────────────────────────────────────────────
	cfg, err := utils.LoadPlaybackConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	if *level != "" {
		cfg.Log.Level = *level
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}
	if *noPacing {
		cfg.Pacing.Enabled = false
	}
	lvl, err := utils.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", utils.ConfigurationError("", err))
		return 1
	}
	logger := utils.InitLogger(lvl, cfg.Log.File)
	logger.SetLevel(lvl)
	defer logger.Close()

	runID := uuid.NewString()
	metrics := controller.NewMetrics()

	utils.L().Info("═══════════════════════════════════════════════════")
	utils.L().Info("  mav-playback  ·  multi-camera inertial dataset driver")
	utils.L().Info("  run=%s  ·  GOMAXPROCS=%d  ·  PID=%d", runID, runtime.GOMAXPROCS(0), os.Getpid())
	utils.L().Info("═══════════════════════════════════════════════════")

	fail := func(stage string, err error) int {
		metrics.ObserveFailure(utils.ErrorKind(err))
		utils.L().Error("%s: [%s] %v", stage, utils.ErrorKind(err), err)
		return 1
	}

	// ── Load every sequence before touching the engine ───────────────
	seqs := make([]*ingest.Sequence, 0, len(args.Sequences))
	total := 0
	for k, sa := range args.Sequences {
		utils.L().Info("loading sequence %d: %s", k, sa.Folder)
		seq, err := ingest.LoadSequence(k, sa.Folder, sa.Timestamps, cfg.Dataset)
		if err != nil {
			return fail("load sequence", err)
		}
		seqs = append(seqs, seq)
		total += len(seq.Frames)
	}

	// ── Engine ───────────────────────────────────────────────────────
	bufSize := cfg.Output.BufferSizeKB * 1024
	eng := newEngine(cfg.Engine, bufSize)
	if err := eng.Initialize(args.Vocabulary, args.Settings, engine.MultiCameraInertial); err != nil {
		return fail("initialize engine", err)
	}

	// ── Pipeline assembly ────────────────────────────────────────────
	//
	//  sequences ──► PlaybackController ──► engine.ProcessFrame
	//                      │
	//                 FrameReport ──► sync log / monitor / mqtt
	//                      │
	//                 RunStatistics ──► ArtifactWriter (staged, renamed on commit)

	artifacts := controller.NewArtifactWriter(cfg.Output, args.Prefix)
	if err := artifacts.Begin(); err != nil {
		return fail("prepare output", err)
	}

	stats := models.NewRunStatistics(runID, total)
	playback := controller.NewPlaybackController(eng, ingest.NewImageReader(cfg.Image), nil, cfg.Pacing, stats)
	playback.SetMetrics(metrics)

	if cfg.Output.SyncLog {
		rec, err := controller.NewSyncLogRecorder(artifacts.StagedPath(views.ArtifactSyncLog), artifacts.BufferSize())
		if err != nil {
			artifacts.Abort()
			return fail("open sync log", err)
		}
		playback.AddObserver(rec)
	}
	if cfg.Monitor.Enabled {
		mon := monitor.NewServer(cfg.Monitor, runID, metrics.Registry)
		mon.Start()
		playback.AddObserver(mon)
	}
	if cfg.MQTT.Enabled {
		pub, err := publish.NewPoseMQTTPublisher(cfg.MQTT)
		if err != nil {
			utils.L().Warn("mqtt publisher disabled: %v", err)
		} else {
			playback.AddObserver(pub)
		}
	}

	// A run cannot be cancelled; an interrupt only discards staged output.
	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer func() {
		signal.Stop(sigCh)
		close(done)
	}()
	go func() {
		select {
		case sig := <-sigCh:
			utils.L().Warn("received signal: %v", sig)
			code := interruptExitCode(artifacts)
			logger.Close()
			os.Exit(code)
		case <-done:
		}
	}()

	// ── Playback ─────────────────────────────────────────────────────
	sequences := controller.NewSequenceController(playback, eng)
	if err := sequences.Run(seqs); err != nil {
		playback.CloseObservers()
		artifacts.Abort()
		return fail("playback", err)
	}

	if err := playback.CloseObservers(); err != nil {
		artifacts.Abort()
		return fail("close observers", err)
	}

	// ── Shutdown + exports ───────────────────────────────────────────
	if err := artifacts.Commit(eng, stats); err != nil {
		return fail("write artifacts", err)
	}

	utils.L().Info("── stats ─────────────────────────")
	sequences.LogStats()
	utils.L().Info("──────────────────────────────────")

	fmt.Println("\n✓ mav-playback finished. Trajectory at:", artifacts.FinalPath(views.ArtifactCameraTrajectory))
	return 0
}

// interruptExitCode discards staged output after a signal. Abort waits for
// an in-flight Commit, so a run whose artifacts made it into place exits 0.
func interruptExitCode(a *controller.ArtifactWriter) int {
	if err := a.Abort(); err != nil {
		utils.L().Error("discard staged output: %v", err)
	}
	if a.Committed() {
		utils.L().Warn("artifacts already committed, exiting cleanly")
		return 0
	}
	utils.L().Warn("staged output discarded")
	return 1
}
