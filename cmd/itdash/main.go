package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"itdash/internal/app"
	"itdash/internal/calendar"
	"itdash/internal/config"
	"itdash/internal/dash"
	"itdash/internal/devserver"
	"itdash/internal/model"
	"itdash/internal/session"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Taxonomy errors were already shown as a notification.
		if !dash.Recoverable(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// loadConfig reads the config file and overlays the environment.
func loadConfig(ctx context.Context) (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := config.ApplyEnv(ctx, cfg, nil); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withApp creates a DashApp for operation, runs fn with it and closes it,
// recording fn's outcome in the log.
func withApp(cmd *cobra.Command, operation, parameters string, fn func(ctx context.Context, a *app.DashApp) error) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	a, err := app.NewDashApp(ctx, cfg, operation, parameters, app.Options{})
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}

	err = fn(ctx, a)
	if closeErr := a.Close(err); err == nil {
		err = closeErr
	}
	return err
}

var rootCmd = &cobra.Command{
	Use:           "itdash",
	Short:         "IT department dashboard client",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		baseURL, _ := cmd.Flags().GetString("base-url")
		if baseURL == "" {
			baseURL = defaults["base_url"]
		}
		cfg := config.NewConfig(baseURL, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base URL: %s\n", cfg.BaseURL)
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}

		printConfig(os.Stdout, defaults["config_path"], cfg)
		return nil
	},
}

func printConfig(w io.Writer, path string, cfg *config.Config) {
	fmt.Fprintf(w, "Configuration from %s:\n\n", path)
	fmt.Fprintf(w, "Base URL:   %s\n", cfg.BaseURL)
	fmt.Fprintf(w, "Base Dir:   %s\n", cfg.BaseDir)
	fmt.Fprintf(w, "Log Dir:    %s\n", cfg.LogDir)
	fmt.Fprintf(w, "Log Level:  %s\n", cfg.LogLevel)
	fmt.Fprintf(w, "Page Size:  %d\n", cfg.PageSize)
	fmt.Fprintf(w, "Storage:    %s\n", cfg.Storage.Type)
	fmt.Fprintf(w, "Encryption: %s\n", cfg.Storage.Encryption.Type)
	for _, name := range slices.Sorted(maps.Keys(cfg.Endpoints)) {
		fmt.Fprintf(w, "Endpoint:   %s = %s\n", name, cfg.Endpoints[name])
	}
}

// login command
var loginCmd = &cobra.Command{
	Use:   "login [USERNAME]",
	Short: "Log in to the dashboard",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)

		username := ""
		if len(args) > 0 {
			username = args[0]
		} else {
			fmt.Print("Username: ")
			line, err := reader.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("reading username: %w", err)
			}
			username = strings.TrimSpace(line)
		}

		password, _ := cmd.Flags().GetString("password")
		if !cmd.Flags().Changed("password") {
			var err error
			if password, err = readPassword(reader); err != nil {
				return err
			}
		}

		return withApp(cmd, "Login", username, func(ctx context.Context, a *app.DashApp) error {
			identity, err := a.Login(ctx, username, password)
			if errors.Is(err, app.ErrAlreadyLoggedIn) {
				current, _ := a.Whoami()
				fmt.Printf("Already logged in as %s\n\n", current.Username)
				return printDashboard(ctx, a)
			}
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s (%s)\n\n", identity.Username, identity.Role)
			return printDashboard(ctx, a)
		})
	},
}

// readPassword prompts without echo on a terminal and falls back to a
// plain line read when stdin is piped.
func readPassword(reader *bufio.Reader) (string, error) {
	fmt.Print("Password: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "Logout", "", func(ctx context.Context, a *app.DashApp) error {
			if err := a.Logout(ctx); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "Whoami", "", func(ctx context.Context, a *app.DashApp) error {
			identity, err := a.Whoami()
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s), logged in %s\n",
				identity.Username, identity.Role, identity.LoggedInAt.Local().Format("2006-01-02 15:04:05"))
			return nil
		})
	},
}

// resources command
var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List the resources you can open",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "Resources", "", func(ctx context.Context, a *app.DashApp) error {
			if _, err := a.Whoami(); err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, r := range a.Resources() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.Label, permissionsFor(a, r.Name))
			}
			return w.Flush()
		})
	},
}

func permissionsFor(a *app.DashApp, name string) string {
	var actions []string
	for _, action := range []string{"create", "edit", "delete"} {
		if a.Can(action, name) {
			actions = append(actions, action)
		}
	}
	if len(actions) == 0 {
		return "read-only"
	}
	return strings.Join(actions, ",")
}

// dashboard command
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the dashboard widgets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "Dashboard", "", printDashboard)
	},
}

var dashboardMoveCmd = &cobra.Command{
	Use:   "move FROM TO",
	Short: "Move a widget to another position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[0])
		}
		to, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[1])
		}

		return withApp(cmd, "MoveWidget", strings.Join(args, " "), func(ctx context.Context, a *app.DashApp) error {
			// Positions are shown starting at 1.
			if _, err := a.MoveWidget(ctx, from-1, to-1); err != nil {
				return err
			}
			return printDashboard(ctx, a)
		})
	},
}

func printDashboard(ctx context.Context, a *app.DashApp) error {
	widgets, err := a.Dashboard(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for i, widget := range widgets {
		count := strconv.Itoa(widget.Count)
		if widget.Err != nil {
			count = "unavailable"
		}
		fmt.Fprintf(w, "%d.\t%s\t%s\n", i+1, widget.Label, count)
	}
	return w.Flush()
}

// calendar command
var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show a month of events",
	RunE: func(cmd *cobra.Command, args []string) error {
		month, _ := cmd.Flags().GetString("month")
		monday, _ := cmd.Flags().GetBool("monday")

		year, m := time.Now().Year(), time.Now().Month()
		if month != "" {
			var err error
			if year, m, err = calendar.ParseMonth(month); err != nil {
				return err
			}
		}
		weekStart := time.Sunday
		if monday {
			weekStart = time.Monday
		}

		return withApp(cmd, "Calendar", month, func(ctx context.Context, a *app.DashApp) error {
			events, err := a.Calendar(ctx, year, m)
			if err != nil {
				return err
			}
			return calendar.Render(os.Stdout, year, m, weekStart, events)
		})
	},
}

// devserver command
var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run an in-memory backend for local development",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		names := make([]string, 0, len(model.Catalog))
		for _, r := range model.Catalog {
			names = append(names, r.Name)
		}
		op := app.NewOperation("Devserver", addr, time.Now())
		srv := devserver.New(names, app.NewConsoleLogger(os.Stderr, op.RunID, slog.LevelInfo))

		fmt.Printf("Serving %d collections on %s\n", len(names), addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

// newResourceCmd builds the list/create/update/delete commands for one
// catalog resource.
func newResourceCmd(r model.Resource) *cobra.Command {
	cmd := &cobra.Command{
		Use:     r.Name,
		Short:   "Manage " + strings.ToLower(r.Label),
		GroupID: "resources",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List " + strings.ToLower(r.Label),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			page, _ := cmd.Flags().GetInt("page")

			return withApp(cmd, "List", r.Name, func(ctx context.Context, a *app.DashApp) error {
				p, err := a.List(ctx, r.Name, search, page)
				if err != nil {
					return err
				}
				if p.Total == 0 {
					fmt.Printf("No %s found.\n", strings.ToLower(r.Label))
					return nil
				}
				if err := printTable(os.Stdout, p.Header, p.Rows); err != nil {
					return err
				}
				fmt.Printf("\nPage %d of %d (%d total)\n", p.CurrentPage, p.TotalPages, p.Total)
				return nil
			})
		},
	}
	listCmd.Flags().StringP("search", "s", "", "Only show records matching this term")
	listCmd.Flags().IntP("page", "p", 1, "Page to show")

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, _ := cmd.Flags().GetStringArray("set")
			sets, err := app.ParseSets(pairs)
			if err != nil {
				return err
			}

			return withApp(cmd, "Create", r.Name, func(ctx context.Context, a *app.DashApp) error {
				row, err := a.Create(ctx, r.Name, sets)
				if err != nil {
					return err
				}
				return printRow(a, r.Name, row)
			})
		},
	}
	createCmd.Flags().StringArray("set", nil, "Set a field, as field=value (repeatable)")

	updateCmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			pairs, _ := cmd.Flags().GetStringArray("set")
			sets, err := app.ParseSets(pairs)
			if err != nil {
				return err
			}

			return withApp(cmd, "Update", r.Name+" "+args[0], func(ctx context.Context, a *app.DashApp) error {
				row, changed, err := a.Update(ctx, r.Name, id, sets)
				if err != nil {
					return err
				}
				if !changed {
					fmt.Println("No changes.")
					return nil
				}
				return printRow(a, r.Name, row)
			})
		},
	}
	updateCmd.Flags().StringArray("set", nil, "Set a field, as field=value (repeatable)")

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, "Delete", r.Name+" "+args[0], func(ctx context.Context, a *app.DashApp) error {
				return a.Delete(ctx, r.Name, id)
			})
		},
	}

	fieldsCmd := &cobra.Command{
		Use:   "fields",
		Short: "List the fields accepted by --set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, "Fields", r.Name, func(ctx context.Context, a *app.DashApp) error {
				fields, err := a.Fields(r.Name)
				if err != nil {
					return err
				}
				fmt.Println(strings.Join(fields, "\n"))
				return nil
			})
		},
	}

	cmd.AddCommand(listCmd, createCmd, updateCmd, deleteCmd, fieldsCmd)
	return cmd
}

// hideForbidden hides the resource commands the saved session may not view.
// Without a config or a session every resource command is hidden.
func hideForbidden() {
	ctx := context.Background()
	var a *app.DashApp
	if cfg, err := loadConfig(ctx); err == nil {
		a, _ = app.NewDashApp(ctx, cfg, "Help", "", app.Options{Stderr: io.Discard})
	}
	for _, c := range rootCmd.Commands() {
		if c.GroupID == "resources" {
			c.Hidden = a == nil || !a.Can(session.ActionView, c.Name())
		}
	}
	if a != nil {
		a.Close(nil)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func printRow(a *app.DashApp, name string, row []string) error {
	header, err := a.Header(name)
	if err != nil {
		return err
	}
	return printTable(os.Stdout, header, [][]string{row})
}

func printTable(out io.Writer, header []string, rows [][]string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().String("base-url", "", "Backend base URL (default "+app.DefaultBaseURL+")")
	configCmd.AddCommand(configListCmd)

	// session commands
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().String("password", "", "Password (prompted for when omitted)")
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(resourcesCmd)
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.AddCommand(dashboardMoveCmd)
	rootCmd.AddCommand(calendarCmd)
	calendarCmd.Flags().StringP("month", "m", "", "Month to show, as YYYY-MM (default current month)")
	calendarCmd.Flags().Bool("monday", false, "Start weeks on Monday")
	rootCmd.AddCommand(devserverCmd)
	devserverCmd.Flags().String("addr", ":8000", "Address to listen on")

	// one command per catalog resource
	rootCmd.AddGroup(&cobra.Group{ID: "resources", Title: "Resources:"})
	for _, r := range model.Catalog {
		rootCmd.AddCommand(newResourceCmd(r))
	}

	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd == rootCmd {
			hideForbidden()
		}
		defaultHelp(cmd, args)
	})
}
