package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minitask/client/internal/adapters/apiclient"
	"github.com/minitask/client/internal/adapters/sessionstore"
	"github.com/minitask/client/internal/application/flows"
	"github.com/minitask/client/internal/infrastructure/config"
	"github.com/minitask/client/internal/infrastructure/logger"
)

// Version is set at build time
var Version = "dev"

type rootOptions struct {
	configFile string
	apiURL     string
}

// NewRootCommand builds the minitask command tree
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "minitask",
		Short:         "MiniTask task client",
		Long:          "MiniTask lets field users log in, file tasks against a State > District > City location and manage their task list.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "task service base URL (overrides api.base_url)")

	rootCmd.AddCommand(
		newLoginCommand(opts),
		newSignupCommand(opts),
		newLogoutCommand(opts),
		newHomeCommand(opts),
		newTasksCommand(opts),
		newLocationsCommand(opts),
		NewServeCommand(opts),
		NewMigrateCommand(opts),
		NewVersionCommand(),
	)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usagef("%v", err)
	})

	return rootCmd
}

// Execute runs the command tree and prints a failure once, as user-facing
// text. It returns the process exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", userText(err))
		return 1
	}
	return 0
}

// userText prefers the flow message and falls back to the raw error for
// failures the flows do not know, such as cobra argument errors.
func userText(err error) string {
	var usage *usageError
	if errors.As(err, &usage) {
		return usage.Error()
	}
	if msg := flows.Message(err); msg != flows.MsgGeneric {
		return msg
	}
	return err.Error()
}

// usageError is a command-line mistake, shown as is.
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...interface{}) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// clientApp holds everything the client commands share.
type clientApp struct {
	cfg      *config.Config
	log      *logger.Logger
	store    *sessionstore.BoltStore
	sessions *flows.SessionManager
	api      *apiclient.Client
	shell    *flows.Shell
	in       *bufio.Reader
	out      io.Writer
}

func loadConfig(opts *rootOptions) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, nil, usagef("%v", err)
	}
	if opts.apiURL != "" {
		cfg.API.BaseURL = strings.TrimRight(opts.apiURL, "/")
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, usagef("%v", err)
	}
	return cfg, log, nil
}

func openClient(cmd *cobra.Command, opts *rootOptions) (*clientApp, error) {
	cfg, log, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	store, err := sessionstore.Open(cfg.Session.Path, cfg.Session.Bucket, cfg.Session.Key)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	sessions := flows.NewSessionManager(store, log)
	return &clientApp{
		cfg:      cfg,
		log:      log,
		store:    store,
		sessions: sessions,
		api:      apiclient.New(cfg.API.BaseURL, cfg.API.Timeout, sessions, log),
		shell:    flows.NewShell(sessions, log),
		in:       bufio.NewReader(cmd.InOrStdin()),
		out:      cmd.OutOrStdout(),
	}, nil
}

func (a *clientApp) Close() {
	_ = a.store.Close()
	_ = a.log.Close()
}

// requireSession boots the shell and fails unless the user is logged in.
func (a *clientApp) requireSession(ctx context.Context) error {
	screen, err := a.shell.Boot(ctx)
	if err != nil {
		return err
	}
	if screen != flows.ScreenHome {
		return flows.ErrAuthRequired
	}
	return nil
}

// prompt reads one line, used when a required flag was omitted.
func (a *clientApp) prompt(label string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm asks a yes/no question; anything but y or yes declines.
func (a *clientApp) confirm(title, question string) bool {
	answer, err := a.prompt(fmt.Sprintf("%s: %s [y/N]", title, question))
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print MiniTask version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "MiniTask %s\n", Version)
		},
	}
}
