package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/worklog/internal/clock"
	"github.com/hpungsan/worklog/internal/errors"
	"github.com/hpungsan/worklog/internal/ops"
	"github.com/hpungsan/worklog/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(s *ops.Session) *cli.App {
	app := &cli.App{
		Name:    "worklog",
		Usage:   "Local time tracker",
		Version: Version,
		Commands: []*cli.Command{
			startCmd(s),
			fillCmd(s),
			finishCmd(s),
			tapCmd(s),
			addCmd(s),
			dupCmd(s),
			rmCmd(s),
			moveCmd(s, ops.DirectionUp),
			moveCmd(s, ops.DirectionDown),
			editCmd(s),
			listCmd(s),
			statusCmd(s),
			statsCmd(s),
			tagsCmd(s),
			renameTagCmd(s),
			suggestCmd(s),
			dateCmd(s),
			settingsCmd(s),
			exportCmd(s),
			importCmd(s),
			resetCmd(s),
			watchCmd(s),
			serveCmd(s),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

var formatFlag = &cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output format: json|table"}

func tagFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Record tag"},
		&cli.StringFlag{Name: "desc", Aliases: []string{"d"}, Usage: "Record description"},
	}
}

// optString returns the flag value only when it was given on the command line,
// so an explicit empty value clears a field.
func optString(c *cli.Context, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	v := c.String(name)
	return &v
}

func requireArg(c *cli.Context, what string) (string, error) {
	if c.NArg() == 0 {
		return "", errors.NewInvalidRequest(what + " argument is required")
	}
	return c.Args().First(), nil
}

func startCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "start",
		Usage: "Start a new record (fills a short break with an idle record)",
		Flags: append(tagFlags(),
			&cli.StringFlag{Name: "from", Usage: "Copy tag and description from this record ID"},
		),
		Action: func(c *cli.Context) error {
			output, err := ops.Start(s, ops.StartInput{
				Tag:         optString(c, "tag"),
				Description: optString(c, "desc"),
				FromID:      c.String("from"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func fillCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "fill",
		Usage: "Log the time since the last record ended as a finished record",
		Flags: tagFlags(),
		Action: func(c *cli.Context) error {
			output, err := ops.Fill(s, ops.FillInput{
				Tag:         optString(c, "tag"),
				Description: optString(c, "desc"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func finishCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "finish",
		Usage: "Finish the running record",
		Action: func(c *cli.Context) error {
			output, err := ops.Finish(s)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func tapCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "tap",
		Usage: "Finish the running record and start a new one",
		Action: func(c *cli.Context) error {
			output, err := ops.Tap(s)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func addCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Insert a 12:00-12:05 placeholder record",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Usage: "Day as YYYY-MM-DD (default: selected date)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Add(s, ops.AddInput{Date: c.String("date")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func dupCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:      "dup",
		Usage:     "Duplicate a record next to itself",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, "id")
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Duplicate(s, ops.DuplicateInput{ID: id})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func rmCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Remove a record",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, "id")
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Remove(s, ops.RemoveInput{ID: id})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func moveCmd(s *ops.Session, dir ops.Direction) *cli.Command {
	return &cli.Command{
		Name:      string(dir),
		Usage:     fmt.Sprintf("Move a record %s one row", dir),
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, "id")
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Move(s, ops.MoveInput{ID: id, Direction: dir})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func editCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Edit a record's tag, description or HH:MM start/end",
		ArgsUsage: "<id>",
		Flags: append(tagFlags(),
			&cli.StringFlag{Name: "start", Usage: "Start time, HH:MM"},
			&cli.StringFlag{Name: "end", Usage: "End time, HH:MM"},
		),
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, "id")
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Update(s, ops.UpdateInput{
				ID:          id,
				Tag:         optString(c, "tag"),
				Description: optString(c, "desc"),
				Start:       optString(c, "start"),
				End:         optString(c, "end"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func listCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List the records of a day",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Usage: "Day as YYYY-MM-DD (default: selected date)"},
			&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "List every record"},
			formatFlag,
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(s, ops.ListInput{Date: c.String("date"), All: c.Bool("all")})
			if err != nil {
				return outputError(err)
			}
			return outputFormat(c, output, renderList)
		},
	}
}

func statusCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the most recent record and whether it is running",
		Flags: []cli.Flag{formatFlag},
		Action: func(c *cli.Context) error {
			output, err := ops.Status(s)
			if err != nil {
				return outputError(err)
			}
			return outputFormat(c, output, renderStatus)
		},
	}
}

func statsCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Aggregate time per tag over day|week|month|year|all",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "range", Aliases: []string{"r"}, Usage: "day|week|month|year|all (default: last used)"},
			&cli.StringFlag{Name: "date", Usage: "Anchor day as YYYY-MM-DD (default: selected date)"},
			&cli.StringFlag{Name: "sort", Aliases: []string{"s"}, Usage: "tag|duration"},
			&cli.StringFlag{Name: "order", Aliases: []string{"o"}, Usage: "asc|desc"},
			&cli.StringFlag{Name: "toggle", Usage: "Toggle sorting on a column like a header click: tag|duration"},
			formatFlag,
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Stats(s, ops.StatsInput{
				Range:  c.String("range"),
				Date:   c.String("date"),
				Sort:   c.String("sort"),
				Order:  c.String("order"),
				Toggle: c.String("toggle"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputFormat(c, output, renderStats)
		},
	}
}

func tagsCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "tags",
		Usage: "List tags in use",
		Flags: []cli.Flag{formatFlag},
		Action: func(c *cli.Context) error {
			output, err := ops.Tags(s)
			if err != nil {
				return outputError(err)
			}
			return outputFormat(c, output, renderTags)
		},
	}
}

func renameTagCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:      "rename-tag",
		Usage:     "Rename a tag on every record",
		ArgsUsage: "<from> <to>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return outputError(errors.NewInvalidRequest("rename-tag takes exactly two arguments: <from> <to>"))
			}
			output, err := ops.RenameTag(s, ops.RenameTagInput{From: c.Args().Get(0), To: c.Args().Get(1)})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func suggestCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Suggest previously used tags or descriptions",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "field", Value: "tag", Usage: "tag|description"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultSuggestLimit, Usage: "Maximum suggestions"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Suggest(s, ops.SuggestInput{
				Field: c.String("field"),
				Query: c.Args().First(),
				Limit: c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func dateCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:      "date",
		Usage:     "Show or change the selected date",
		ArgsUsage: "[prev|next|today|YYYY-MM-DD|+N|-N]",
		Action: func(c *cli.Context) error {
			output, err := selectDate(s, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func selectDate(s *ops.Session, arg string) (*ops.DateOutput, error) {
	switch arg {
	case "":
		return ops.MoveDate(s, ops.MoveDateInput{})
	case "prev":
		return ops.MoveDate(s, ops.MoveDateInput{Delta: -1})
	case "next":
		return ops.MoveDate(s, ops.MoveDateInput{Delta: 1})
	case "today":
		return ops.Today(s)
	}
	if strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-") {
		delta, err := strconv.Atoi(arg)
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid day offset: %s", arg))
		}
		return ops.MoveDate(s, ops.MoveDateInput{Delta: delta})
	}
	return ops.SetDate(s, ops.SetDateInput{Date: arg})
}

func settingsCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change settings",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "skip-empty-days", Usage: "Date navigation skips days without records"},
			&cli.StringFlag{Name: "jira-host", Usage: "Jira base URL for linking ticket-key tags"},
		},
		Action: func(c *cli.Context) error {
			if !c.IsSet("skip-empty-days") && !c.IsSet("jira-host") {
				output, err := ops.Settings(s)
				if err != nil {
					return outputError(err)
				}
				return outputJSON(output)
			}
			input := ops.UpdateSettingsInput{JiraHost: optString(c, "jira-host")}
			if c.IsSet("skip-empty-days") {
				v := c.Bool("skip-empty-days")
				input.SkipEmptyDays = &v
			}
			output, err := ops.UpdateSettings(s, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func exportCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export every record to a JSON backup",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file (default: ~/.worklog/backups/worklog-backup-YYYY-MM-DD.json)"},
			&cli.StringFlag{Name: "label", Usage: "Suffix for the default file name"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, s, ops.ExportInput{
				Path:  c.String("path"),
				Label: c.String("label"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func importCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Replace every record with a JSON backup",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Validate the file without importing"},
		},
		Action: func(c *cli.Context) error {
			path, err := requireArg(c, "path")
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Import(c.Context, s, ops.ImportInput{Path: path, DryRun: c.Bool("dry-run")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func resetCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Discard every record",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "default", Usage: "default (example records) | empty (one placeholder)"},
			&cli.BoolFlag{Name: "settings", Usage: "Also reset settings and the stats view"},
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm discarding every record"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("yes") {
				return outputError(errors.NewInvalidRequest("reset discards every record; pass --yes to confirm"))
			}
			output, err := ops.Reset(s, ops.ResetInput{
				Mode:     ops.ResetMode(c.String("mode")),
				Settings: c.Bool("settings"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func watchCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Print the running record every minute until interrupted",
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			var failed error
			ticker := clock.New(s.Config().TickInterval(), func(now time.Time) {
				// Pick up changes made by other worklog processes.
				if err := s.Reload(); err != nil {
					failed = err
					stop()
					return
				}
				status, err := ops.Status(s)
				if err != nil {
					failed = err
					stop()
					return
				}
				fmt.Println(statusLine(now, status))
			})
			if err := ticker.Run(ctx); err != nil && err != context.Canceled {
				return outputError(err)
			}
			if failed != nil {
				return outputError(failed)
			}
			return nil
		},
	}
}

func serveCmd(s *ops.Session) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the worklog web page",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Value: 8440, Usage: "Port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(s, Version, c.String("bind"), c.Int("port"))
			if err := web.Run(c.Context, srv); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputFormat writes v as JSON or, with --format table, through render.
func outputFormat[T any](c *cli.Context, v T, render func(T) string) error {
	switch c.String("format") {
	case "", "json":
		return outputJSON(v)
	case "table":
		fmt.Println(render(v))
		return nil
	default:
		return outputError(errors.NewInvalidRequest(fmt.Sprintf("format must be one of: json, table (got %q)", c.String("format"))))
	}
}

// outputError formats error for CLI.
func outputError(err error) error {
	var wErr *errors.WorklogError
	if stderrors.As(err, &wErr) {
		msg := wErr.Message
		if err.Error() != wErr.Error() {
			msg = err.Error()
		}
		return cli.Exit(fmt.Sprintf("[%s] %s", wErr.Code, msg), 1)
	}
	return cli.Exit(err.Error(), 1)
}
