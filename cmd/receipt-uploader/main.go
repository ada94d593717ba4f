package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/receipt-uploader/internal/api"
	"github.com/zombor/receipt-uploader/internal/pipeline"
	"github.com/zombor/receipt-uploader/internal/receipt"
	"github.com/zombor/receipt-uploader/internal/view"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// errPipelineFailed signals a failed submission that was already reported
var errPipelineFailed = errors.New("pipeline failed")

type config struct {
	apiURL   *string
	timeout  *time.Duration
	authUser *string
	authPass *string
	locale   *string
	history  *string
	verbose  *bool
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errPipelineFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	rootFlags := ff.NewFlagSet("receipt-uploader")
	cfg := config{
		apiURL:   rootFlags.StringLong("api-url", "http://localhost:5000", "Receipt API base URL"),
		timeout:  rootFlags.DurationLong("timeout", 0, "Per-request timeout (default: none)"),
		authUser: rootFlags.StringLong("auth-user", "", "Basic auth username (optional)"),
		authPass: rootFlags.StringLong("auth-pass", "", "Basic auth password (optional)"),
		locale:   rootFlags.StringLong("locale", "en-US", "Locale used to format dates"),
		history:  rootFlags.StringLong("history", "receipt-uploader.db", "Submission history database path (empty disables it)"),
		verbose:  rootFlags.BoolLong("verbose", "Log debug output"),
	}
	_ = rootFlags.StringLong("config", "", "Config file (optional)")
	_ = rootFlags.BoolLong("version", "Show version information")

	uploadFlags := ff.NewFlagSet("upload").SetParent(rootFlags)
	contentType := uploadFlags.StringLong("content-type", "", "Declared media type (default: from the file extension)")

	uploadCmd := &ff.Command{
		Name:      "upload",
		Usage:     "receipt-uploader upload [FLAGS] FILE",
		ShortHelp: "upload, validate and process a receipt PDF",
		Flags:     uploadFlags,
		Exec: func(ctx context.Context, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			return runUpload(ctx, cfg, path, *contentType, stdout, stderr)
		},
	}

	listCmd := &ff.Command{
		Name:      "list",
		Usage:     "receipt-uploader list",
		ShortHelp: "show the receipts table",
		Flags:     ff.NewFlagSet("list").SetParent(rootFlags),
		Exec: func(ctx context.Context, args []string) error {
			return runList(ctx, cfg, stdout, stderr)
		},
	}

	viewCmd := &ff.Command{
		Name:      "view",
		Usage:     "receipt-uploader view [ID]",
		ShortHelp: "print the detail page of a receipt, defaulting to the latest processed one",
		Flags:     ff.NewFlagSet("view").SetParent(rootFlags),
		Exec: func(ctx context.Context, args []string) error {
			var id string
			if len(args) > 0 {
				id = args[0]
			}
			return runView(cfg, id, stdout)
		},
	}

	historyCmd := &ff.Command{
		Name:      "history",
		Usage:     "receipt-uploader history",
		ShortHelp: "list recorded submissions",
		Flags:     ff.NewFlagSet("history").SetParent(rootFlags),
		Exec: func(ctx context.Context, args []string) error {
			return runHistory(cfg, stdout)
		},
	}

	rootCmd := &ff.Command{
		Name:        "receipt-uploader",
		Usage:       "receipt-uploader [FLAGS] <SUBCOMMAND>",
		ShortHelp:   "client for the receipt processing API",
		Flags:       rootFlags,
		Subcommands: []*ff.Command{uploadCmd, listCmd, viewCmd, historyCmd},
		Exec: func(ctx context.Context, args []string) error {
			return ff.ErrHelp
		},
	}

	err := rootCmd.Parse(args,
		ff.WithEnvVarPrefix("RECEIPT_UPLOADER"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	)
	if err == nil {
		setupLogging(stderr, *cfg.verbose)
		err = rootCmd.Run(ctx)
	}
	if errors.Is(err, ff.ErrHelp) {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Command(rootCmd.GetSelected()))
		return nil
	}
	return err
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func newClient(cfg config) (*api.Client, error) {
	return api.NewClient(*cfg.apiURL,
		api.WithTimeout(*cfg.timeout),
		api.WithBasicAuth(*cfg.authUser, *cfg.authPass),
	)
}

func openHistory(cfg config) (receipt.DB, error) {
	if *cfg.history == "" {
		return nil, nil
	}
	slog.Debug("Opening history", "path", *cfg.history)
	db, err := receipt.NewBoltDB(*cfg.history)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func runUpload(ctx context.Context, cfg config, path, contentType string, stdout, stderr io.Writer) error {
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	history, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if history != nil {
		defer history.Close()
	}

	file, err := receipt.LoadFile(path, contentType)
	if err != nil {
		return err
	}

	controller := pipeline.NewController(client, view.NewConsole(stdout), view.NewFormatter(*cfg.locale), history)
	// A failed receipts load was already reported and does not block uploads.
	_ = controller.Open(ctx)

	slog.Debug("Submitting receipt", "api", *cfg.apiURL, "path", path)
	out, err := controller.Submit(ctx, file)
	if err != nil {
		slog.Warn("Submission not recorded", "error", err)
	}
	session := controller.Session()
	slog.Debug("Submission finished", "phase", out.Phase, "file_id", session.FileID, "receipt_id", session.ReceiptID)
	if !out.OK() {
		slog.Debug("Submission failed", "phase", out.Phase, "step", out.Step, "reason", out.Reason)
		return errPipelineFailed
	}
	return nil
}

func runList(ctx context.Context, cfg config, stdout, stderr io.Writer) error {
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	controller := pipeline.NewController(client, view.NewConsole(stdout), view.NewFormatter(*cfg.locale), nil)
	if err := controller.Open(ctx); err != nil {
		return errPipelineFailed
	}
	return nil
}

func runView(cfg config, id string, stdout io.Writer) error {
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	if id != "" {
		fmt.Fprintln(stdout, client.DetailURL(receipt.ID(id)))
		return nil
	}

	history, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if history != nil {
		defer history.Close()
	}

	controller := pipeline.NewController(client, nil, view.NewFormatter(*cfg.locale), history)
	url, err := controller.ViewReceipt()
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, url)
	return nil
}

func runHistory(cfg config, stdout io.Writer) error {
	history, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if history == nil {
		return errors.New("history is disabled")
	}
	defer history.Close()

	submissions, err := history.ListSubmissions()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tFILE\tPHASE\tSTEP\tRECEIPT\tREASON")
	for _, s := range submissions {
		step := "-"
		if s.FailedStep > 0 {
			step = fmt.Sprintf("%d", s.FailedStep)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.StartedAt.Local().Format(time.DateTime), s.FileName, s.Phase, step, s.ReceiptID, s.Reason)
	}
	return tw.Flush()
}
