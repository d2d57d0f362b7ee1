// Package cmd implements the CLI command structure for tasklist.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist/internal/config"
	"github.com/nibzard/tasklist/internal/export"
	"github.com/nibzard/tasklist/internal/logging"
	"github.com/nibzard/tasklist/internal/task"
	"github.com/nibzard/tasklist/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the tasklist CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

// app carries what every subcommand needs.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("tasklist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cfg, err := config.Load(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("loading config: %w", err)
	}

	a := &app{cfg: cfg, stdout: stdout, stderr: stderr}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return a.versionCommand()
	}

	subcommand := "tui"
	remaining := fs.Args()
	if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
		subcommand = remaining[0]
		remaining = remaining[1:]
	}

	closeLog, err := a.setupLogger(subcommand == "tui")
	if err != nil {
		return err
	}
	defer closeLog()
	for _, key := range cfg.UnknownKeys {
		a.logger.Warn("unknown config key", "key", key)
	}

	switch subcommand {
	case "tui":
		return a.tuiCommand(ctx, remaining)
	case "ls", "list":
		return a.lsCommand(remaining)
	case "add":
		return a.addCommand(remaining)
	case "toggle", "done":
		return a.toggleCommand(remaining)
	case "edit":
		return a.editCommand(remaining)
	case "rm", "delete":
		return a.rmCommand(remaining)
	case "export":
		return a.exportCommand(remaining)
	case "validate":
		return a.validateCommand(remaining)
	case "config":
		return a.configCommand(remaining)
	case "version":
		return a.versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// setupLogger picks the log destination. The TUI owns the terminal, so it
// only logs when a log file is configured.
func (a *app) setupLogger(tui bool) (func(), error) {
	opts := a.cfg.LogOptions()
	if a.cfg.LogFile != "" {
		fl, err := logging.OpenFile(a.cfg.LogFile, opts)
		if err != nil {
			return nil, err
		}
		a.logger = fl.Logger
		return func() { _ = fl.Close() }, nil
	}
	if tui {
		a.logger = logging.Discard()
	} else {
		a.logger = logging.New(a.stderr, opts)
	}
	return func() {}, nil
}

func (a *app) openStore() (*task.Store, error) {
	store, err := task.Open(a.cfg.DataFile,
		task.WithDefaultPriority(a.cfg.DefaultPriority),
		task.WithLogger(a.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("opening data file: %w", err)
	}
	a.logger.Debug("store opened", "path", store.Path(), "tasks", store.Len())
	return store, nil
}

// tuiCommand launches the TUI.
func (a *app) tuiCommand(ctx context.Context, args []string) error {
	fs := a.flagSet("tui")
	filterArg := fs.String("filter", "all", "Initial filter (all|active|completed)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	filter, err := task.ParseFilter(*filterArg)
	if err != nil {
		return err
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	return ui.Run(ctx, store, ui.WithLogger(a.logger), ui.WithFilter(filter))
}

// lsCommand lists tasks in insertion order.
func (a *app) lsCommand(args []string) error {
	fs := a.flagSet("ls")
	filterArg := fs.String("filter", "all", "Filter (all|active|completed)")
	asJSON := fs.Bool("json", false, "Print tasks as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// A bare positional filter is accepted too: tasklist ls active
	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	if len(remaining) == 1 {
		*filterArg = remaining[0]
	}
	filter, err := task.ParseFilter(*filterArg)
	if err != nil {
		return err
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	tasks := store.List(filter)

	if *asJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(a.stdout, "No tasks found.")
		return nil
	}
	return printTaskTable(a.stdout, tasks)
}

// addCommand appends a task.
func (a *app) addCommand(args []string) error {
	fs := a.flagSet("add")
	priority := fs.Int("priority", 0, "Priority 1-5 (default from config)")
	due := fs.String("due", "", "Due date (YYYY-MM-DD)")
	category := fs.String("category", "", "Category label")
	if err := fs.Parse(args); err != nil {
		return err
	}
	title := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("usage: tasklist add [options] <title>")
	}
	if isFlagSet(fs, "priority") {
		if err := task.CheckPriority(*priority); err != nil {
			return err
		}
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	t, err := store.Add(task.NewTask{
		Title:    title,
		Priority: *priority,
		DueDate:  *due,
		Category: *category,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Added %s: %s\n", t.ShortID(), t.Title)
	return nil
}

// toggleCommand flips completion of one task.
func (a *app) toggleCommand(args []string) error {
	store, t, err := a.resolveOne("toggle", args)
	if err != nil {
		return err
	}
	t, err = store.Toggle(t.ID)
	if err != nil {
		return err
	}
	state := "incomplete"
	if t.Completed {
		state = "complete"
	}
	fmt.Fprintf(a.stdout, "Marked %s %s: %s\n", t.ShortID(), state, t.Title)
	return nil
}

// editCommand applies field=value assignments to one task.
func (a *app) editCommand(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: tasklist edit <id> field=value...")
	}
	fields := make(map[string]string, len(args)-1)
	for _, arg := range args[1:] {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return fmt.Errorf("invalid assignment %q (expected field=value)", arg)
		}
		fields[strings.ToLower(strings.TrimSpace(key))] = value
	}
	patch, err := task.PatchFromFields(fields)
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return fmt.Errorf("no known fields to update (title, priority, category, due_date)")
	}

	store, t, err := a.resolveOne("edit", args[:1])
	if err != nil {
		return err
	}
	t, err = store.Update(t.ID, patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Updated %s: %s\n", t.ShortID(), t.Title)
	return nil
}

// rmCommand deletes one task.
func (a *app) rmCommand(args []string) error {
	store, t, err := a.resolveOne("rm", args)
	if err != nil {
		return err
	}
	if err := store.Delete(t.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Deleted %s: %s\n", t.ShortID(), t.Title)
	return nil
}

func (a *app) resolveOne(name string, args []string) (*task.Store, task.Task, error) {
	if len(args) != 1 {
		return nil, task.Task{}, fmt.Errorf("usage: tasklist %s <id>", name)
	}
	store, err := a.openStore()
	if err != nil {
		return nil, task.Task{}, err
	}
	t, err := store.Resolve(args[0])
	if err != nil {
		return nil, task.Task{}, err
	}
	return store, t, nil
}

// exportCommand writes the task list in a shareable format.
func (a *app) exportCommand(args []string) error {
	fs := a.flagSet("export")
	formatArg := fs.String("format", "", "Output format (json|csv|yaml|md|pdf)")
	output := fs.String("o", "", "Write to this file instead of stdout")
	filterArg := fs.String("filter", "all", "Filter (all|active|completed)")
	title := fs.String("title", "", "Document title for md and pdf")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	format := export.FormatJSON
	switch {
	case *formatArg != "":
		f, err := export.ParseFormat(*formatArg)
		if err != nil {
			return err
		}
		format = f
	case *output != "":
		if f, ok := export.FormatFromPath(*output); ok {
			format = f
		}
	}
	filter, err := task.ParseFilter(*filterArg)
	if err != nil {
		return err
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	tasks := store.List(filter)
	opts := export.Options{Title: *title}

	if *output == "" {
		return export.Write(a.stdout, tasks, format, opts)
	}
	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := export.Write(f, tasks, format, opts); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.logger.Info("exported tasks", "path", *output, "format", format, "count", len(tasks))
	fmt.Fprintf(a.stdout, "Exported %d task(s) to %s\n", len(tasks), *output)
	return nil
}

// validateCommand checks the data file against the document schema without
// modifying it.
func (a *app) validateCommand(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	path := a.cfg.DataFile
	if len(args) == 1 {
		path = args[0]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading data file: %w", err)
	}
	result := task.ValidateDocument(data)
	if result.Valid {
		fmt.Fprintf(a.stdout, "%s: valid\n", path)
		return nil
	}
	fmt.Fprintf(a.stdout, "%s: invalid\n", path)
	for _, e := range result.Errors {
		fmt.Fprintf(a.stdout, "  - %v\n", e)
	}
	return fmt.Errorf("validation failed: %d error(s)", len(result.Errors))
}

// configCommand prints the effective configuration.
func (a *app) configCommand(args []string) error {
	fs := a.flagSet("config")
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *example {
		_, err := io.WriteString(a.stdout, config.ExampleConfig())
		return err
	}
	return a.cfg.WriteSources(a.stdout)
}

// versionCommand prints version information.
func (a *app) versionCommand() error {
	fmt.Fprintf(a.stdout, "tasklist version %s\n", Version)
	return nil
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("tasklist "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// printTaskTable prints tasks as aligned columns.
func printTaskTable(w io.Writer, tasks []task.Task) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tPRI\tDUE\tCATEGORY\tTITLE")
	for _, t := range tasks {
		done := " "
		if t.Completed {
			done = "x"
		}
		fmt.Fprintf(tw, "%s\t[%s]\t%s\t%s\t%s\t%s\n",
			t.ShortID(), done, strconv.Itoa(t.Priority), orDash(t.Due()), orDash(t.Label()), t.Title)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "tasklist - a personal to-do list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasklist [options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                      Launch terminal UI (default command)")
	fmt.Fprintln(w, "  ls [filter]              List tasks (all|active|completed)")
	fmt.Fprintln(w, "  add <title...>           Add a task")
	fmt.Fprintln(w, "  toggle <id>              Flip a task between complete and incomplete")
	fmt.Fprintln(w, "  edit <id> field=value... Update title, priority, category or due_date")
	fmt.Fprintln(w, "  rm <id>                  Delete a task")
	fmt.Fprintln(w, "  export                   Write tasks as json, csv, yaml, md or pdf")
	fmt.Fprintln(w, "  validate [file]          Check a data file against the schema")
	fmt.Fprintln(w, "  config                   Show effective configuration and sources")
	fmt.Fprintln(w, "  version                  Show version information")
	fmt.Fprintln(w, "  help                     Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ids may be shortened to any unique prefix.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tui Options:")
	fmt.Fprintln(w, "  -filter string")
	fmt.Fprintln(w, "        Initial filter (all|active|completed)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -filter string")
	fmt.Fprintln(w, "        Filter (all|active|completed)")
	fmt.Fprintln(w, "  -json")
	fmt.Fprintln(w, "        Print tasks as JSON")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add Options:")
	fmt.Fprintln(w, "  -priority int")
	fmt.Fprintln(w, "        Priority 1-5 (default from config)")
	fmt.Fprintln(w, "  -due string")
	fmt.Fprintln(w, "        Due date (YYYY-MM-DD)")
	fmt.Fprintln(w, "  -category string")
	fmt.Fprintln(w, "        Category label")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export Options:")
	fmt.Fprintln(w, "  -format string")
	fmt.Fprintln(w, "        Output format (json|csv|yaml|md|pdf, default from -o or json)")
	fmt.Fprintln(w, "  -o string")
	fmt.Fprintln(w, "        Write to this file instead of stdout")
	fmt.Fprintln(w, "  -filter string")
	fmt.Fprintln(w, "        Filter (all|active|completed)")
	fmt.Fprintln(w, "  -title string")
	fmt.Fprintln(w, "        Document title for md and pdf")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config Options:")
	fmt.Fprintln(w, "  -example")
	fmt.Fprintln(w, "        Print an example config file")
}
