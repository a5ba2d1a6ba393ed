package cli

import (
        "context"
        "fmt"
        "log/slog"
        "strings"
        "time"

        "mondrian-cli/internal/api"
        "mondrian-cli/internal/config"
        "mondrian-cli/internal/format"
        "mondrian-cli/internal/logging"
        "mondrian-cli/internal/page"
        "mondrian-cli/internal/tui"

        "github.com/spf13/cobra"
)

// App carries the persistent flags and the per-invocation runtime (resolved
// config, logger and API client).
type App struct {
        APIURL     string
        ConfigPath string
        Format     string
        PrettyJSON bool
        LogFile    string
        Debug      bool
        Timeout    time.Duration

        cfg      config.Config
        log      *slog.Logger
        closeLog func() error
        client   *api.Client
}

func NewRootCmd() *cobra.Command {
        app := &App{}

        cmd := &cobra.Command{
                Use:          "mondrian",
                Short:        "Mondrian wiki pages from the terminal (TUI + CLI)",
                SilenceUsage: true,
                Example: strings.TrimSpace(`
  # Open the home page in the interactive TUI
  mondrian

  # Open a page by name (shortcut for: mondrian open <page>)
  mondrian /journal

  # Scriptable commands
  mondrian pages show home
  mondrian boxes add home --content "# Hello"
  mondrian boxes move home 12 --to 1
`),
                Args: cobra.NoArgs,
                RunE: func(cmd *cobra.Command, args []string) error {
                        // No subcommand => interactive TUI on the home page.
                        return runTUI(cmd, app, app.cfg.HomePage)
                },
        }

        cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
                return app.setup(cmd)
        }

        cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
                return app.teardown()
        }

        cmd.PersistentFlags().StringVar(&app.APIURL, "api", "", "Base URL of the page/box API (default from config or MONDRIAN_API_URL)")
        cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Path to config.yaml (default ~/.mondrian/config.yaml)")
        cmd.PersistentFlags().StringVar(&app.Format, "format", "", "Output format (json|yaml)")
        cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
        cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", "", "Append structured logs to this file")
        cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Log at debug level (includes every API request)")
        cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", 0, "Per-request timeout (e.g. 5s)")

        cmd.AddCommand(newOpenCmd(app))
        cmd.AddCommand(newPagesCmd(app))
        cmd.AddCommand(newBoxesCmd(app))
        cmd.AddCommand(newConfigCmd(app))
        cmd.AddCommand(newDocsCmd(app))

        return cmd
}

// setup resolves config (file, .env, environment, then changed flags), opens
// the log and builds the API client.
func (app *App) setup(cmd *cobra.Command) error {
        cfg, err := config.Load(app.ConfigPath)
        if err != nil {
                return writeErr(cmd, err)
        }
        flags := cmd.Flags()
        if flags.Changed("api") {
                cfg.APIURL = app.APIURL
        }
        if flags.Changed("format") {
                cfg.Format = app.Format
        }
        if flags.Changed("log-file") {
                cfg.LogFile = app.LogFile
        }
        if flags.Changed("debug") {
                cfg.Debug = app.Debug
        }
        if flags.Changed("timeout") {
                cfg.Timeout = app.Timeout
        }
        if err := cfg.Validate(); err != nil {
                return writeErr(cmd, err)
        }
        app.cfg = cfg

        l, closeFn, err := logging.Setup(cfg.LogFile, cfg.Debug)
        if err != nil {
                return writeErr(cmd, err)
        }
        app.log, app.closeLog = l, closeFn
        app.log.Debug("command start", "command", cmd.CommandPath(), "api", cfg.APIURL)

        client, err := api.New(cfg.APIURL, api.WithLogger(app.log), api.WithTimeout(cfg.Timeout))
        if err != nil {
                return writeErr(cmd, err)
        }
        app.client = client
        return nil
}

func (app *App) teardown() error {
        if app.closeLog == nil {
                return nil
        }
        err := app.closeLog()
        app.closeLog = nil
        return err
}

// requestContext bounds a whole command (which may issue several requests).
func (app *App) requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
        ctx := cmd.Context()
        if ctx == nil {
                ctx = context.Background()
        }
        if app.cfg.Timeout <= 0 {
                return context.WithCancel(ctx)
        }
        // Mutations issue up to two requests.
        return context.WithTimeout(ctx, 2*app.cfg.Timeout)
}

// loadSession loads name into a fresh session; a missing page is a notFound error.
func (app *App) loadSession(ctx context.Context, name string) (*page.Session, error) {
        name = strings.Trim(strings.TrimSpace(name), "/")
        if name == "" {
                return nil, fmt.Errorf("page name is required")
        }
        s := page.NewSession(app.client, name, app.log)
        if err := s.Load(ctx); err != nil {
                if ctx.Err() != nil {
                        return nil, err
                }
                return nil, errNotFound("page", name, err)
        }
        return s, nil
}

func runTUI(cmd *cobra.Command, app *App, name string) error {
        name = strings.Trim(strings.TrimSpace(name), "/")
        if name == "" {
                name = config.DefaultHomePage
        }
        s := page.NewSession(app.client, name, app.log)
        return tui.Run(cmd.Context(), s, tui.Options{
                Theme:    app.cfg.TUI.Theme,
                Markdown: app.cfg.TUI.MarkdownEnabled(),
                Timeout:  app.cfg.Timeout,
                Logger:   app.log,
        })
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
        return format.Write(cmd.OutOrStdout(), v, app.cfg.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
        fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
        return err
}
