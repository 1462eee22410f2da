package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/thronewatch"
	"github.com/fwojciec/thronewatch/email"
	"github.com/fwojciec/thronewatch/fs"
	"github.com/fwojciec/thronewatch/goquery"
	twhttp "github.com/fwojciec/thronewatch/http"
	"github.com/fwojciec/thronewatch/monitor"
	"github.com/fwojciec/thronewatch/rod"
	twslog "github.com/fwojciec/thronewatch/slog"
	"github.com/fwojciec/thronewatch/sqlite"
	"github.com/joho/godotenv"
)

func main() {
	// Values already in the environment take precedence over .env.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
	stop()
}

// Main represents the program.
type Main struct {
	// Database path used when neither --db nor STATE_DB is set.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	SnapshotService thronewatch.SnapshotService
	RunService      thronewatch.RunService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("thronewatch"),
		kong.Description("Watch Throne wishlists for added, removed and repriced items."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Configuration(JSON5),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'thronewatch --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	logger, closeLog, err := newLogger(cli.LogLevel, cli.LogFile, stderr)
	if err != nil {
		return err
	}
	defer closeLog()
	deps.Logger = logger
	deps.Extractor = twslog.NewLoggingExtractor(goquery.NewExtractor(), logger)

	// inspect works on files and needs no state.
	if cmd == "inspect" {
		return kongCtx.Run(deps)
	}

	dbPath := m.DBPath
	if cli.DB != "" {
		dbPath = cli.DB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set STATE_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
	}
	defer m.Close()

	m.SnapshotService = sqlite.NewSnapshotService(m.DB)
	m.RunService = sqlite.NewRunService(m.DB)
	deps.Snapshots = m.SnapshotService
	deps.Runs = m.RunService

	var flags *MonitorFlags
	switch cmd {
	case "run":
		flags = &cli.Run.MonitorFlags
	case "watch":
		flags = &cli.Watch.MonitorFlags
	}
	if flags != nil {
		runner, closeRunner, err := newRunner(flags, deps, dbPath)
		if err != nil {
			return err
		}
		defer closeRunner()
		deps.Runner = runner
	}

	return kongCtx.Run(deps)
}

// newRunner wires the page source, notifier and dumper selected by flags.
// The returned func releases the page source.
func newRunner(flags *MonitorFlags, deps *Dependencies, dbPath string) (*monitor.Runner, func() error, error) {
	fetcher, err := newFetcher(flags)
	if err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed, or set CHROME_BIN")
		return nil, nil, fmt.Errorf("failed to start browser: %w", err)
	}

	notifier, err := newNotifier(flags, deps.Stdout)
	if err != nil {
		_ = fetcher.Close()
		fmt.Fprintf(deps.Stderr, "error: %s\n", thronewatch.ErrorMessage(err))
		return nil, nil, err
	}

	attempts := max(flags.Attempts, 1)
	runner := &monitor.Runner{
		Fetcher:       twslog.NewLoggingFetcher(fetcher, deps.Logger),
		Extractor:     deps.Extractor,
		Snapshots:     deps.Snapshots,
		Runs:          deps.Runs,
		Notifier:      twslog.NewLoggingNotifier(notifier, deps.Logger),
		Logger:        deps.Logger,
		RetryDelays:   monitor.Backoff(time.Second, 30*time.Second, attempts-1),
		Concurrency:   flags.Concurrency,
		NotifyInitial: flags.NotifyInitial,
	}
	if flags.RateLimit > 0 {
		runner.RateLimiter = monitor.NewHostLimiter(flags.RateLimit)
	}
	if flags.DumpHTML {
		dir := flags.DumpDir
		if dir == "" {
			dir = filepath.Join(filepath.Dir(dbPath), "debug")
		}
		runner.Dumper = fs.NewDumper(dir)
	}

	return runner, fetcher.Close, nil
}

func newFetcher(flags *MonitorFlags) (thronewatch.Fetcher, error) {
	if flags.Browser {
		var managerOpts []rod.ManagerOption
		if flags.Proxy != "" {
			managerOpts = append(managerOpts, rod.WithProxy(flags.Proxy))
		}
		if flags.BrowserBin != "" {
			managerOpts = append(managerOpts, rod.WithBrowserBin(flags.BrowserBin))
		}
		manager, err := rod.NewBrowserManager(managerOpts...)
		if err != nil {
			return nil, err
		}
		opts := []rod.Option{rod.WithUserAgent(flags.UserAgent)}
		if flags.Timeout > 0 {
			opts = append(opts, rod.WithFetchTimeout(flags.Timeout))
		}
		return rod.NewFetcher(manager, opts...), nil
	}

	opts := []twhttp.Option{
		twhttp.WithTimeout(flags.Timeout),
		twhttp.WithUserAgent(flags.UserAgent),
	}
	if flags.Proxy != "" {
		opts = append(opts, twhttp.WithProxy(flags.Proxy))
	}
	return twhttp.NewFetcher(opts...), nil
}

// newNotifier returns an email notifier when an SMTP host is set and a
// WriterNotifier on stdout otherwise.
func newNotifier(flags *MonitorFlags, stdout io.Writer) (thronewatch.Notifier, error) {
	if flags.SMTPHost == "" {
		return &WriterNotifier{W: stdout}, nil
	}

	cfg := email.Config{
		Host:     flags.SMTPHost,
		Port:     flags.SMTPPort,
		Username: flags.SMTPUser,
		Password: flags.SMTPPass,
		From:     flags.From,
		To:       flags.To,
		UseSSL:   flags.SMTPSSL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return email.NewNotifier(cfg), nil
}

// newLogger builds a text logger at the named level, writing to path when set
// and to stderr otherwise.
func newLogger(level, path string, stderr io.Writer) (*slog.Logger, func() error, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, nil, thronewatch.Errorf(thronewatch.EINVALID, "invalid log level %q", level)
	}

	w := stderr
	closeFn := func() error { return nil }
	if path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeFn = f.Close
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), closeFn, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "thronewatch.db"
	}
	return filepath.Join(home, ".thronewatch", "thronewatch.db")
}

func (d *Dependencies) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
