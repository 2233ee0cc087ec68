package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/armina/internal/config"
	"github.com/hpungsan/armina/internal/errors"
	"github.com/hpungsan/armina/internal/learn"
	"github.com/hpungsan/armina/internal/library"
	"github.com/hpungsan/armina/internal/ops"
	"github.com/hpungsan/armina/internal/web"
)

// maxTextBytes caps a single authoring text read from a file or stdin.
const maxTextBytes = 4 << 20

// deps are the shared dependencies of every command.
type deps struct {
	lib      *library.Library
	cfg      *config.Config
	sessions *learn.Registry
	logger   *zap.Logger
}

// newCLIApp creates the CLI application with all commands.
// d may be nil when only help or version output is needed.
func newCLIApp(d *deps) *cli.App {
	app := &cli.App{
		Name:    "armina",
		Usage:   "Study capsules: notes, flashcards and quizzes",
		Version: Version,
		Commands: []*cli.Command{
			saveCmd(d),
			showCmd(d),
			listCmd(d),
			deleteCmd(d),
			exportCmd(d),
			importCmd(d),
			resetCmd(d),
			learnCmd(d),
			serveCmd(d),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// saveCmd creates the save command.
func saveCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Create or update a capsule from authoring files (\"-\" reads stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "Capsule ID to update (omit to create)"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true, Usage: "Capsule title"},
			&cli.StringFlag{Name: "subject", Aliases: []string{"s"}, Usage: "Subject"},
			&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Usage: "Level (default from config)"},
			&cli.StringFlag{Name: "notes", Usage: "File with one note per line"},
			&cli.StringFlag{Name: "flashcards", Usage: "File with one \"front || back\" card per line"},
			&cli.StringFlag{Name: "quiz", Usage: "File with a JSON array of quiz questions"},
			&cli.BoolFlag{Name: "confirm-empty", Usage: "Save even when there is no content"},
		},
		Action: func(c *cli.Context) error {
			if err := checkStdinUse(c, "notes", "flashcards", "quiz"); err != nil {
				return outputError(err)
			}

			input := ops.SaveInput{
				ID:           c.String("id"),
				Title:        c.String("title"),
				Subject:      c.String("subject"),
				Level:        c.String("level"),
				ConfirmEmpty: c.Bool("confirm-empty"),
			}
			var err error
			if input.NotesText, err = readText(c, c.String("notes")); err != nil {
				return outputError(err)
			}
			if input.FlashcardsText, err = readText(c, c.String("flashcards")); err != nil {
				return outputError(err)
			}
			if input.QuizText, err = readText(c, c.String("quiz")); err != nil {
				return outputError(err)
			}

			output, err := ops.Save(c.Context, d.lib, d.cfg, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// showCmd creates the show command.
func showCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a capsule with its progress",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Fetch(c.Context, d.lib, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// listCmd creates the list command.
func listCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List capsules, most recently saved first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Aliases: []string{"s"}, Usage: "Filter by subject"},
			&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Usage: "Filter by level"},
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Match title, subject or description"},
			&cli.IntFlag{Name: "limit", Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, d.lib, ops.ListInput{
				Subject: c.String("subject"),
				Level:   c.String("level"),
				Query:   c.String("query"),
				Limit:   c.Int("limit"),
				Offset:  c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a capsule and its progress",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, d.lib, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the library to an armina-classroom/v1 JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.armina/exports/armina-classroom-<timestamp>-export.json)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, d.lib, d.cfg, ops.ExportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// importCmd creates the import command.
func importCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import capsules from an export file (existing IDs are overwritten)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, d.lib, d.cfg, ops.ImportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// resetCmd creates the reset command.
func resetCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Remove every capsule and all progress",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "confirm", Usage: "Required; the reset cannot be undone"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("confirm") {
				return outputError(errors.NewInvalidRequest("reset requires --confirm"))
			}
			output, err := ops.Reset(c.Context, d.lib)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// learnCmd creates the interactive learn command.
func learnCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "learn",
		Usage:     "Study a capsule in the terminal",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			session, err := learn.Start(c.Context, d.lib.Records, c.Args().First(), d.logger)
			if err != nil {
				return outputError(err)
			}
			if err := runLearn(c.Context, c.App.Reader, c.App.Writer, session); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Bind address (default from config)"},
			&cli.IntFlag{Name: "port", Usage: "Port (default from config)"},
		},
		Action: func(c *cli.Context) error {
			cfg := *d.cfg
			if c.IsSet("bind") {
				cfg.Web.Bind = c.String("bind")
			}
			if c.IsSet("port") {
				cfg.Web.Port = c.Int("port")
			}
			if err := cfg.Web.Validate(); err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}

			srv, err := web.NewServer(d.lib, d.sessions, &cfg, d.logger, Version)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv, d.logger)
		},
	}
}

// Helper functions

// outputJSON writes result to the app's writer as indented JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var aErr *errors.ArminaError
	if stderrors.As(err, &aErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", aErr.Code, aErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// checkStdinUse rejects more than one flag reading from stdin.
func checkStdinUse(c *cli.Context, flags ...string) error {
	var fromStdin []string
	for _, f := range flags {
		if c.String(f) == "-" {
			fromStdin = append(fromStdin, "--"+f)
		}
	}
	if len(fromStdin) > 1 {
		return errors.NewInvalidRequest("only one of " + strings.Join(fromStdin, ", ") + " can read stdin")
	}
	return nil
}

// readText returns the contents of path, stdin for "-", or "" when unset.
func readText(c *cli.Context, path string) (string, error) {
	switch path {
	case "":
		return "", nil
	case "-":
		return readLimited(c.App.Reader, maxTextBytes)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewFileNotFound(path)
		}
		return "", errors.NewInternal(err)
	}
	defer f.Close()
	return readLimited(f, maxTextBytes)
}

// readLimited reads all of r, failing when it holds more than limit bytes.
func readLimited(r io.Reader, limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if int64(len(data)) > limit {
		return "", errors.NewInvalidRequest(fmt.Sprintf("input exceeds %d bytes", limit))
	}
	return string(data), nil
}
