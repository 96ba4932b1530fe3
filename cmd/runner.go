package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bbx/internal/auth"
	"github.com/desertthunder/bbx/internal/pages"
	"github.com/desertthunder/bbx/internal/repositories"
	"github.com/desertthunder/bbx/internal/services"
	"github.com/desertthunder/bbx/internal/session"
	"github.com/desertthunder/bbx/internal/shared"
	"github.com/desertthunder/bbx/internal/shell"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	store      session.Store
	shell      *shell.Shell
	client     *services.Client
	flow       *auth.Flow
	runs       *repositories.ExportRunRepository
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      *bufio.Reader
	openURL    func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	// DB backs the session store and export history. Without it sessions live in memory.
	DB *sql.DB
	// Store overrides the session store built from DB.
	Store      session.Store
	Transport  http.RoundTripper
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	OpenURL    func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) (*Runner, error) {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	var runs *repositories.ExportRunRepository
	if opts.DB != nil {
		runs = repositories.NewExportRunRepository(opts.DB)
		if opts.Store == nil {
			opts.Store = session.NewKVStore(repositories.NewKVRepository(opts.DB), opts.Logger)
		}
	}
	if opts.Store == nil {
		opts.Store = session.NewMemoryStore()
	}

	sh := shell.New(opts.Store, opts.Logger)
	client, err := services.NewClient(services.ClientOpts{
		BaseURL:   opts.Config.API.BaseURL,
		Timeout:   opts.Config.API.Timeout(),
		Tokens:    sh,
		Logger:    opts.Logger,
		RateLimit: opts.Config.API.RateLimit,
		Transport: opts.Transport,
	})
	if err != nil {
		return nil, err
	}

	flow := auth.NewFlow(opts.Config.OAuth, client, opts.Store, sh, opts.Logger)
	flow.OnTransition(func(t auth.Transition) {
		if t.Err != nil {
			opts.Logger.Debug("auth transition", "from", t.From, "to", t.To, "error", t.Err)
			return
		}
		opts.Logger.Debug("auth transition", "from", t.From, "to", t.To)
	})

	return &Runner{
		config:     opts.Config,
		store:      opts.Store,
		shell:      sh,
		client:     client,
		flow:       flow,
		runs:       runs,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      bufio.NewReader(opts.Input),
		openURL:    opts.OpenURL,
	}, nil
}

// Start restores the persisted session into the shell and the login flow.
func (r *Runner) Start(ctx context.Context) error {
	if err := r.shell.Start(ctx); err != nil {
		return err
	}
	if sess := r.shell.Session(); sess != nil {
		r.flow.Restore(sess)
	}
	return nil
}

// SetLogger replaces the logger used by command actions.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, postsCommand, commentsCommand, categoriesCommand, usersCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Confirm asks on the terminal; anything but y/yes declines.
func (r *Runner) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %v", shared.ErrCancelled, err)
	}

	r.writePlain("%s [y/N] ", prompt)
	line, err := r.input.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// confirmer skips the prompt when the user already passed --yes.
func (r *Runner) confirmer(cmd *cli.Command) pages.Confirmer {
	if cmd.Bool("yes") {
		return pages.Always(true)
	}
	return r
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// writePage prints body inside the shell frame.
func (r *Runner) writePage(title, body string) error {
	return r.writePlain("%s", r.shell.Frame(title, body))
}

// idArg parses a positional id argument.
func idArg(cmd *cli.Command, name string) (int, error) {
	raw := strings.TrimSpace(cmd.StringArg(name))
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", shared.ErrMissingArgument, name)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive number, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return id, nil
}
