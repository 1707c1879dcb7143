package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tombowditch/codedump/client"
	"github.com/tombowditch/codedump/internal/config"
	"github.com/tombowditch/codedump/internal/logger"
)

type globalFlags struct {
	configPath string
	envFile    string
	key        string
	secret     string
	baseURL    string
	timeout    time.Duration
	preCheck   bool
	logLevel   string
}

type app struct {
	flags  globalFlags
	logger *slog.Logger
	client *client.Client
}

// New creates the root CLI command.
func New(version string) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "codedump",
		Short:         "Share code snippets on CodeDump.io",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "YAML config file")
	pf.StringVar(&a.flags.envFile, "env-file", ".env", "dotenv file with CODEDUMP_* variables")
	pf.StringVar(&a.flags.key, "key", "", "API key (overrides "+config.EnvTokenKey+")")
	pf.StringVar(&a.flags.secret, "secret", "", "API secret (overrides "+config.EnvTokenSecret+")")
	pf.StringVar(&a.flags.baseURL, "base-url", "", "API base URL")
	pf.DurationVar(&a.flags.timeout, "timeout", 0, "request timeout")
	pf.BoolVar(&a.flags.preCheck, "precheck", false, "check access and language against the API before adding code")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newVersionCmd(version))
	root.AddCommand(newAddCmd(a))
	root.AddCommand(newListCmd(a, "languages", "List the languages accepted by the API", func(cmd *cobra.Command) (any, error) {
		return a.client.GetLanguages(cmd.Context())
	}))
	root.AddCommand(newListCmd(a, "access", "List the access levels available to you", func(cmd *cobra.Command) (any, error) {
		return a.client.GetAccess(cmd.Context())
	}))
	root.AddCommand(newListCmd(a, "dumps", "List your code dumps", func(cmd *cobra.Command) (any, error) {
		return a.client.GetMyDumps(cmd.Context())
	}))

	return root
}

// setup resolves the configuration: defaults < YAML file < environment < flags.
func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(a.flags.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return err
	}
	cfg = config.ApplyEnv(cfg)

	f := cmd.Flags()
	if f.Changed("key") {
		cfg.APIKey = a.flags.key
	}
	if f.Changed("secret") {
		cfg.APISecret = a.flags.secret
	}
	if f.Changed("base-url") {
		cfg.BaseURL = a.flags.baseURL
	}
	if f.Changed("timeout") {
		cfg.Timeout = a.flags.timeout
	}
	if f.Changed("precheck") {
		cfg.PreCheck = a.flags.preCheck
	}
	if f.Changed("log-level") {
		cfg.LogLevel = a.flags.logLevel
	}

	a.logger = logger.New(cmd.ErrOrStderr(), cfg.LogLevel)
	a.client = client.New(append(cfg.ClientOptions(), client.WithLogger(a.logger))...)
	a.logger.Debug("configuration resolved", "base_url", cfg.BaseURL, "timeout", cfg.Timeout, "precheck", cfg.PreCheck)
	return nil
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		// Skips configuration loading.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", version)
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var (
		d        client.NewDump
		file     string
		preCheck bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store a code dump and print its URL",
		Example: `  codedump add --title hello --access public --language go --code 'fmt.Println(1)'
  codedump add --title main --access private --language go --file main.go`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (d.Code == "") == (file == "") {
				return errors.New("exactly one of --code or --file is required")
			}
			opts := client.AddOptions{PreCheck: preCheck}

			var (
				url string
				err error
			)
			if file != "" {
				url, err = a.client.AddCodeFromFileWithOptions(cmd.Context(), file, d, opts)
			} else {
				url, err = a.client.AddCodeWithOptions(cmd.Context(), d, opts)
			}
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&d.Title, "title", "", "descriptive title")
	f.StringVar(&d.Description, "description", "", "short description of what the code does")
	f.StringVar(&d.Access, "access", "public", "access type: public or private")
	f.StringVar(&d.Language, "language", "", "language the code is written in")
	f.StringVar(&d.Code, "code", "", "code to store")
	f.StringVar(&file, "file", "", "file to read the code from")
	f.BoolVar(&preCheck, "check", false, "check access and language for this call only")
	return cmd
}

func newListCmd(a *app, use, short string, fetch func(cmd *cobra.Command) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := fetch(cmd)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
}
