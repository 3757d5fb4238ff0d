package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/tartampluch/go-lifeweeks/internal/config"
	"github.com/tartampluch/go-lifeweeks/internal/engine"
	"github.com/tartampluch/go-lifeweeks/internal/render"
	"github.com/tartampluch/go-lifeweeks/internal/server"
	"github.com/tartampluch/go-lifeweeks/internal/store"
	"github.com/tartampluch/go-lifeweeks/internal/theme"
	"github.com/tartampluch/go-lifeweeks/internal/ui"
)

// options holds the parsed command line.
type options struct {
	debug bool
	dob   string
	weeks string
	share string
	vcard string
	print bool
	pdf   string
	ics   string
}

// headless reports whether the run only writes an output and exits.
func (o options) headless() bool {
	return o.print || o.pdf != "" || o.ics != ""
}

// main is the application entry point.
// It delegates to runMain so that deferred calls (like closing the log file)
// run before the process exits.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain() int {
	var opts options
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	flag.BoolVar(&opts.debug, config.FlagDebug, false, config.FlagDescDebug)
	flag.StringVar(&opts.dob, config.FlagDOB, "", config.FlagDescDOB)
	flag.StringVar(&opts.weeks, config.FlagWeeks, "", config.FlagDescWeeks)
	flag.StringVar(&opts.share, config.FlagShare, "", config.FlagDescShare)
	flag.StringVar(&opts.vcard, config.FlagVCard, "", config.FlagDescVCard)
	flag.BoolVar(&opts.print, config.FlagPrint, false, config.FlagDescPrint)
	flag.StringVar(&opts.pdf, config.FlagPDF, "", config.FlagDescPDF)
	flag.StringVar(&opts.ics, config.FlagICS, "", config.FlagDescICS)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	// The terminal grid owns stdout, so logs go to stderr in that mode.
	console := io.Writer(os.Stdout)
	if opts.print {
		console = os.Stderr
	}
	logCloser := setupLogging(console, opts.debug)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	if err := run(ctx, opts); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run wires the dependencies, then either writes the requested outputs or
// starts the desktop UI.
func run(ctx context.Context, opts options) error {
	a := app.NewWithID(config.AppID)
	a.Preferences().SetString(config.PrefLastRun, config.Version)

	st := store.New(a.Preferences(), store.Keyring{})
	importer := &engine.Importer{Fetcher: engine.NewHTTPFetcher()}

	initial, err := applyOverrides(ctx, st.Load(), opts, importer)
	if err != nil {
		return err
	}

	if opts.headless() {
		return writeOutputs(opts, initial, engine.RealClock{})
	}

	port := a.Preferences().StringWithFallback(config.PrefServerPort, config.DefaultPort)
	srv := server.NewCalendarServer(port, engine.NewCalculator(engine.RealClock{}))

	gui := ui.NewLifeWeeksApp(a, ctx, st, srv, importer)

	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		a.Quit()
	}()

	gui.Run(initial)
	return nil
}

// applyOverrides layers the command line on top of the persisted state, from
// weakest to strongest: share link, vCard import, then -dob and -weeks.
// Nothing here is written back to the preferences.
func applyOverrides(ctx context.Context, st store.State, opts options, importer *engine.Importer) (store.State, error) {
	if opts.share != "" {
		raw := opts.share
		if i := strings.IndexByte(raw, '?'); i >= 0 {
			raw = raw[i+1:]
		}
		st = st.Apply(store.ParseQuery(raw))
	}

	if opts.vcard != "" {
		rec, err := importer.Import(ctx, opts.vcard)
		if err != nil {
			return st, err
		}
		st.DateOfBirth = engine.FormatDate(rec.DateOfBirth)
	}

	if opts.dob != "" {
		birth, err := engine.ParseDate(opts.dob)
		if err != nil {
			return st, fmt.Errorf("%s: %w", config.ErrFlagDOB, err)
		}
		st.DateOfBirth = engine.FormatDate(birth)
	}

	if opts.weeks != "" {
		weeks, ok := store.ParseWeeks(opts.weeks)
		if !ok {
			return st, errors.New(config.ErrFlagWeeks)
		}
		st.Weeks = store.ClampHorizon(weeks)
	}

	return st, nil
}

// writeOutputs renders every requested headless output.
func writeOutputs(opts options, st store.State, clock engine.Clock) error {
	now := clock.Now()
	var birth time.Time
	if st.DateOfBirth != "" {
		if d, err := engine.ParseDate(st.DateOfBirth); err == nil {
			birth = d
		}
	}
	sheet := render.Sheet{
		Title:          config.AppName,
		Birth:          birth,
		Horizon:        st.Weeks,
		Metrics:        engine.NewCalculator(clock).Compute(birth, st.Weeks, st.Milestones),
		Palette:        theme.Get(st.Theme),
		ShowMilestones: st.ShowMilestones,
	}

	if opts.print {
		if err := render.Text(os.Stdout, sheet); err != nil {
			return err
		}
	}
	if opts.pdf != "" {
		if err := writeFile(opts.pdf, func(w io.Writer) error {
			return render.PDF(w, sheet, now)
		}); err != nil {
			return err
		}
	}
	if opts.ics != "" {
		if err := writeFile(opts.ics, func(w io.Writer) error {
			data, err := engine.BuildCalendar(sheet.Birth, sheet.Metrics, now)
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}

// writeFile creates path with owner-only permissions and fills it.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrOutputFile, err)
	}
	werr := write(f)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return werr
	}
	slog.Info(config.MsgOutputWritten,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyFile, path,
	)
	return nil
}

// printVersion outputs the build information to stdout.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging installs a JSON slog logger writing to console and, when
// possible, to a log file in the user cache directory.
func setupLogging(console io.Writer, debugMode bool) io.Closer {
	writers := []io.Writer{console}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		// Truncated on every start so the file does not grow forever.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	return filepath.Join(appDir, config.LogFileName), nil
}
