package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"tixpack/internal/cache"
	"tixpack/internal/models"
	"tixpack/internal/repositories"
	"tixpack/internal/services"
	"tixpack/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	lists  *cache.Cache
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Lists  *cache.Cache
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Lists == nil {
		opts.Lists = cache.New()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		lists:  opts.Lists,
		logger: opts.Logger,
		output: opts.Output,
	}
}

// SetLogger replaces the runner's logger, used when a TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// app bundles the services wired to one open database connection.
type app struct {
	db       *sql.DB
	colors   *services.ColorService
	serials  *services.SerialService
	packages *services.PackageService
	tickets  *services.TicketService
}

func (a *app) Close() error {
	return a.db.Close()
}

// openApp opens the configured database and wires the service graph for one
// command invocation. The caller must Close the returned app.
func (r *Runner) openApp(ctx context.Context) (*app, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	colorStore := repositories.NewColorStore(db)
	serialStore := repositories.NewSerialStore(db)
	packageStore := repositories.NewPackageStore(db)
	ticketStore := repositories.NewTicketStore(db)

	colors := services.NewColorService(colorStore, r.lists, r.logger)
	serials := services.NewSerialService(serialStore, r.lists, r.logger)
	packages := services.NewPackageService(packageStore, ticketStore, colors, serials, r.logger)
	tickets := services.NewTicketService(ticketStore, packageStore, r.logger)

	return &app{
		db:       db,
		colors:   colors,
		serials:  serials,
		packages: packages,
		tickets:  tickets,
	}, nil
}

// requireID validates a positional integer id argument.
func requireID(id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: id must be a positive integer", shared.ErrInvalidArgument)
	}
	return nil
}

// parseFilterFlag parses a --filter value strictly, rejecting unknown tabs.
func parseFilterFlag(s string) (models.PackageFilter, error) {
	filter := models.ParsePackageFilter(s)
	if filter == models.FilterAll && s != "" && s != "all" {
		return filter, fmt.Errorf("%w: unknown filter %q", shared.ErrInvalidFlag, s)
	}
	return filter, nil
}

// reportValidation prints accumulated business-rule violations line by line
// and passes any other error through unchanged.
func (r *Runner) reportValidation(err error) error {
	var verrs services.ValidationErrors
	if errors.As(err, &verrs) {
		for _, msg := range verrs {
			r.writePlain("✗ %s\n", msg)
		}
		return fmt.Errorf("%w: %d validation errors", shared.ErrInvalidInput, len(verrs))
	}
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
