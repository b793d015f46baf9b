// Command whenever is the engine's entrypoint (§6.2): loads a TOML
// configuration, builds the registries and their runtime collaborators,
// starts the tick scheduler and event listeners, and drives everything
// from the control channel on stdin until a graceful or immediate exit
// is requested. Wiring shape follows the classic "build logger, build
// collaborators, connect, run, handle signals" entrypoint, using a TOML
// config loader, cobra CLI, and tick scheduler.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/whenever-go/whenever/internal/bridge"
	"github.com/whenever-go/whenever/internal/capabilities"
	"github.com/whenever-go/whenever/internal/condition"
	"github.com/whenever-go/whenever/internal/config"
	"github.com/whenever-go/whenever/internal/dbusclient"
	"github.com/whenever-go/whenever/internal/event"
	"github.com/whenever-go/whenever/internal/executor"
	"github.com/whenever-go/whenever/internal/history"
	"github.com/whenever-go/whenever/internal/idle"
	"github.com/whenever-go/whenever/internal/input"
	"github.com/whenever-go/whenever/internal/logging"
	"github.com/whenever-go/whenever/internal/reconfig"
	"github.com/whenever-go/whenever/internal/registry"
	"github.com/whenever-go/whenever/internal/scheduler"
	"github.com/whenever-go/whenever/internal/singleton"
	"github.com/whenever-go/whenever/internal/task"
	"github.com/whenever-go/whenever/internal/wmiclient"
)

var (
	flagQuiet        bool
	flagStartPaused  bool
	flagCheckRunning bool
	flagOptions      bool
	flagLogFile      string
	flagLogLevel     string
	flagLogAppend    bool
	flagLogPlain     bool
	flagLogColor     bool
	flagLogJSON      bool

	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:     "whenever <config-file>",
	Short:   "A user-space, desktop automation engine",
	Version: version,
	Args:    cobra.ExactArgs(1),
	RunE:    run,
}

func init() {
	f := rootCmd.Flags()
	f.BoolVar(&flagQuiet, "quiet", false, "suppress startup banner")
	f.BoolVar(&flagStartPaused, "pause", false, "start paused")
	f.BoolVar(&flagCheckRunning, "check-running", false, "exit 0 if another instance is running, else 1")
	f.BoolVar(&flagOptions, "options", false, "print compiled-in optional features and exit")
	f.StringVar(&flagLogFile, "log", "", "log file path (default stderr)")
	f.StringVar(&flagLogLevel, "log-level", "warn", "trace|debug|info|warn|error")
	f.BoolVar(&flagLogAppend, "log-append", false, "append to the log file instead of truncating")
	f.BoolVar(&flagLogPlain, "log-plain", false, "plain-text log output")
	f.BoolVar(&flagLogColor, "log-color", false, "color log output")
	f.BoolVar(&flagLogJSON, "log-json", false, "JSON log output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	lockPath := configPath + ".lock"

	caps := probeCapabilities()
	if flagOptions {
		for _, line := range caps.Lines() {
			fmt.Println(line)
		}
		return nil
	}

	if flagCheckRunning {
		running, err := singleton.IsRunning(lockPath)
		if err != nil {
			return err
		}
		if running {
			return nil
		}
		os.Exit(1)
		return nil
	}

	lock, err := singleton.Acquire(lockPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "whenever: another instance is already running")
		os.Exit(1)
	}
	defer lock.Release()

	level, err := logging.ParseLevel(flagLogLevel)
	if err != nil {
		return err
	}
	mode := logging.ModePlain
	switch {
	case flagLogJSON:
		mode = logging.ModeJSON
	case flagLogColor:
		mode = logging.ModeColor
	case flagLogPlain:
		mode = logging.ModePlain
	}
	log, err := logging.New(logging.Options{Mode: mode, Level: level, File: flagLogFile, Append: flagLogAppend})
	if err != nil {
		return err
	}

	if !flagQuiet {
		log.Record(logging.WhenInit, logging.StatusStart, "start", "engine", "", "whenever starting", logging.LevelInfo)
	}

	features := config.Features{DBus: caps.DBus, WMI: caps.WMI}
	cfg, err := config.Load(configPath, features)
	if err != nil {
		log.Record(logging.WhenInit, logging.StatusErr, "load", "config", configPath, err.Error(), logging.LevelError)
		return err
	}

	tasks := registry.NewTaskRegistry()
	conditions := registry.NewConditionRegistry()
	events := registry.NewEventRegistry()
	for _, t := range cfg.Tasks {
		if err := tasks.Add(t); err != nil {
			return err
		}
	}
	for _, c := range cfg.Conditions {
		if err := conditions.Add(c); err != nil {
			return err
		}
	}
	for _, e := range cfg.Events {
		if err := events.Add(e); err != nil {
			return err
		}
	}

	br := bridge.New()
	scriptLog := log.Named("script")
	runner := &task.Runner{Log: scriptLog}
	exec := executor.New(tasks, runner)

	deps := condition.Deps{
		Idle:    condition.IdleHostSource{Source: defaultIdleSource()},
		DBus:    condition.NewDBusCallAdapter(),
		WMI:     condition.WMIQueryAdapter{},
		Command: condition.TaskCommandRunner{},
		Script:  condition.TaskScriptRunner{Log: scriptLog},
		Bridge:  br,
	}

	histPath := historyPath(configPath)
	hist, err := history.Open(histPath, 1000)
	if err != nil {
		log.Record(logging.WhenInit, logging.StatusErr, "open", "history", histPath, err.Error(), logging.LevelWarn)
	} else {
		defer hist.Close()
	}

	engine := condition.New(conditions, exec, deps, log.Named("condition"))
	if hist != nil {
		engine.History = hist
		reportRecentHistory(context.Background(), log, hist)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listeners := event.NewManager(br, log.Named("event"))
	for _, e := range cfg.Events {
		br.Bind(e.Name, e.Condition)
		listeners.Start(ctx, e)
	}

	sched := scheduler.New(conditions, engine, log.Named("scheduler"), cfg.Globals.TickInterval(), cfg.Globals.RandomizeChecksWithinTicks)
	if flagStartPaused {
		sched.Pause()
	}

	reconfigEngine := reconfig.New(tasks, conditions, events, listeners, br, log.Named("reconfig"), features)

	interp := input.New(sched, br, events, reconfigEngine, log.Named("input"))
	runner.Internal = func(ctx context.Context, line string) error {
		interp.Dispatch(line)
		return nil
	}

	sched.Start(ctx)

	exitCh := make(chan input.ExitSignal, 1)
	go func() { exitCh <- interp.Run(os.Stdin) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-exitCh:
		shutdown(log, sched, sig, sigCh)
	case <-sigCh:
		log.Record(logging.WhenEnd, logging.StatusInd, "signal", "engine", "", "signal received, shutting down gracefully", logging.LevelInfo)
		shutdown(log, sched, input.ExitGraceful, sigCh)
	}

	if !flagQuiet {
		log.Record(logging.WhenEnd, logging.StatusOK, "stop", "engine", "", "whenever stopped", logging.LevelInfo)
	}
	return nil
}

// shutdown runs the requested exit. For a graceful exit, a second
// signal arriving before it finishes escalates to an immediate exit
// (§4.1/§5: "immediate exit cancels and returns fast").
func shutdown(log *logging.Logger, sched *scheduler.Scheduler, sig input.ExitSignal, sigCh <-chan os.Signal) {
	if sig == input.ExitImmediate {
		log.Record(logging.WhenEnd, logging.StatusInd, "exit", "engine", "", "immediate shutdown", logging.LevelWarn)
		sched.ExitImmediate()
		return
	}

	log.Record(logging.WhenEnd, logging.StatusInd, "exit", "engine", "", "graceful shutdown", logging.LevelInfo)
	done := make(chan struct{})
	go func() {
		sched.ExitGraceful()
		close(done)
	}()
	select {
	case <-done:
	case <-sigCh:
		log.Record(logging.WhenEnd, logging.StatusInd, "signal", "engine", "", "second signal received, forcing immediate shutdown", logging.LevelWarn)
		sched.ExitImmediate()
		<-done
	}
}

// reportRecentHistory logs the most recent diagnostics-ring entries at
// startup, so an operator can see what happened across a restart
// without reaching for a sqlite client (§Part D: diagnostics only,
// never consulted to restore condition state).
func reportRecentHistory(ctx context.Context, log *logging.Logger, hist *history.Ring) {
	recs, err := hist.Recent(ctx, "", 5)
	if err != nil {
		log.Record(logging.WhenInit, logging.StatusErr, "recent", "history", "", err.Error(), logging.LevelWarn)
		return
	}
	for _, rec := range recs {
		msg := fmt.Sprintf("run=%s fired_at=%s outcome=%s", rec.RunID, rec.FiredAt.Format(time.RFC3339), rec.Outcome)
		log.Record(logging.WhenInit, logging.StatusInd, "recent", "condition", rec.Condition, msg, logging.LevelDebug)
	}
}

func historyPath(configPath string) string {
	dir := filepath.Dir(configPath)
	base := strings.TrimSuffix(filepath.Base(configPath), filepath.Ext(configPath))
	return filepath.Join(dir, "."+base+".history.db")
}

func defaultIdleSource() idle.Source {
	return idle.GopsutilSource{}
}

// probeCapabilities answers --options (§6.2, Part D): Script and History
// are always compiled in (gopher-lua and sqlite3 are linked
// unconditionally), while DBus and WMI are reported by actually reaching
// the respective bus/namespace, since both are optional at runtime
// depending on the host.
func probeCapabilities() capabilities.Table {
	t := capabilities.Table{Script: true, History: true}
	if c, err := dbusclient.Connect(dbusclient.BusSession); err == nil {
		c.Close()
		t.DBus = true
	}
	if _, err := wmiclient.Query("SELECT Name FROM Win32_ComputerSystem"); err == nil {
		t.WMI = true
	}
	return t
}
