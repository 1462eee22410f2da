package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/thronewatch"
	"github.com/fwojciec/thronewatch/monitor"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Snapshots thronewatch.SnapshotService
	Runs      thronewatch.RunService
	Extractor thronewatch.Extractor
	Runner    *monitor.Runner
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config   kong.ConfigFlag `short:"c" help:"Load flag values from a JSON5 file"`
	DB       string          `name:"db" env:"STATE_DB" type:"path" help:"SQLite state database path"`
	LogLevel string          `env:"LOG_LEVEL" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)"`
	LogFile  string          `env:"LOG_FILE" type:"path" help:"Append logs to this file instead of stderr"`

	Run     RunCmd     `cmd:"" help:"Check every target once"`
	Watch   WatchCmd   `cmd:"" help:"Check every target repeatedly until interrupted"`
	Show    ShowCmd    `cmd:"" help:"Print the stored snapshot for a target"`
	History HistoryCmd `cmd:"" help:"List recorded runs"`
	Inspect InspectCmd `cmd:"" help:"Extract items from a saved HTML page"`
	Reset   ResetCmd   `cmd:"" help:"Delete the stored snapshot for a target"`
}

// MonitorFlags configures fetching, notification and the runner. It is
// shared by the run and watch commands.
type MonitorFlags struct {
	Targets []string `name:"target" short:"t" env:"THRONE_TARGETS" sep:"," help:"Throne username or wishlist URL (repeatable)"`

	Browser     bool          `env:"USE_BROWSER" help:"Render pages in headless Chrome"`
	BrowserBin  string        `env:"CHROME_BIN" type:"path" help:"Chrome executable (default: found or downloaded)"`
	UserAgent   string        `env:"USER_AGENT" help:"User-Agent header for page requests"`
	Proxy       string        `env:"PROXY_URL" help:"Proxy URL for page requests"`
	Timeout     time.Duration `default:"30s" help:"Per-request timeout"`
	Attempts    int           `default:"5" help:"Fetch attempts per target"`
	RateLimit   float64       `default:"1" help:"Requests per second per host"`
	Concurrency int           `default:"4" help:"Targets processed at once"`

	DumpHTML bool   `name:"dump-html" env:"DEBUG_DUMP_HTML" default:"true" negatable:"" help:"Save pages that yield no items"`
	DumpDir  string `env:"DEBUG_DUMP_DIR" type:"path" help:"Directory for saved pages (default: next to the database)"`

	NotifyInitial bool `env:"NOTIFY_INITIAL" help:"Send a report for the first snapshot of a target"`

	SMTPHost string   `name:"smtp-host" env:"SMTP_HOST" help:"SMTP server; reports are printed when unset"`
	SMTPPort int      `name:"smtp-port" env:"SMTP_PORT" default:"587" help:"SMTP port"`
	SMTPUser string   `name:"smtp-user" env:"SMTP_USER" help:"SMTP username"`
	SMTPPass string   `name:"smtp-pass" env:"SMTP_PASS" help:"SMTP password"`
	SMTPSSL  bool     `name:"smtp-ssl" env:"SMTP_USE_SSL" help:"Use implicit TLS"`
	From     string   `name:"email-from" env:"EMAIL_FROM" help:"Sender address"`
	To       []string `name:"email-to" env:"EMAIL_TO" sep:"," help:"Recipient addresses"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	MonitorFlags `embed:""`
}

// WatchCmd is the "watch" subcommand.
type WatchCmd struct {
	MonitorFlags `embed:""`

	Interval    time.Duration `default:"10m" help:"Time between passes, randomized by 10%"`
	PollMinutes int           `env:"POLL_MINUTES" help:"Time between passes in minutes (overrides --interval)"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	Target string `arg:"" help:"Throne username or wishlist URL"`
	JSON   bool   `help:"Print the snapshot as JSON"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Target string `arg:"" optional:"" help:"Throne username or wishlist URL"`
	Status string `help:"Only show runs with this status (changed, unchanged, initial, fetch_failed, extraction_failed, failed)"`
	Limit  int    `short:"n" default:"20" help:"Maximum number of runs"`
}

// InspectCmd is the "inspect" subcommand.
type InspectCmd struct {
	File string `arg:"" type:"existingfile" help:"Saved HTML page"`
	URL  string `default:"https://throne.com/" help:"URL the page was fetched from, for resolving links"`
	JSON bool   `help:"Print the extraction as JSON"`
}

// ResetCmd is the "reset" subcommand.
type ResetCmd struct {
	Target string `arg:"" help:"Throne username or wishlist URL"`
	Force  bool   `help:"Confirm deletion"`
}
