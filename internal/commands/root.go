// Package commands implements the yadisk command line tool.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/ivknv/yadisk-go/client"
	"github.com/ivknv/yadisk-go/config"
	"github.com/ivknv/yadisk-go/logger"
	"github.com/ivknv/yadisk-go/observability"
)

// RootOptions holds the persistent flags shared by every command
type RootOptions struct {
	ConfigPath string
	Token      string
	LogLevel   string
	Pretty     bool

	// Environ replaces os.Environ as the configuration source; used by tests
	Environ func() []string
}

// session is the state a command runs with. It is built before the command
// runs and released after it.
type session struct {
	client    *client.Client
	telemetry observability.Provider
}

// sessionHolder owns the session of one execution
type sessionHolder struct {
	s      *session
	closed bool
}

func (h *sessionHolder) close() error {
	if h.s == nil || h.closed {
		return nil
	}
	h.closed = true
	return h.s.close()
}

type holderKey struct{}

func holderFrom(ctx context.Context) (*sessionHolder, bool) {
	h, ok := ctx.Value(holderKey{}).(*sessionHolder)
	return h, ok
}

// Execute runs root and releases the session afterwards. Cobra skips
// PersistentPostRunE when a command fails, so the session is closed here too.
func Execute(ctx context.Context, root *cobra.Command) error {
	h, ok := holderFrom(ctx)
	if !ok {
		h = &sessionHolder{}
		ctx = context.WithValue(ctx, holderKey{}, h)
	}
	err := root.ExecuteContext(ctx)
	return errors.Join(err, h.close())
}

// NewRootCommand creates the yadisk command tree
func NewRootCommand(version string, opts *RootOptions) *cobra.Command {
	if opts == nil {
		opts = &RootOptions{}
	}

	root := &cobra.Command{
		Use:   "yadisk",
		Short: "Manage files on Yandex.Disk",
		Long: `Command line client for the Yandex.Disk REST API.

Configuration is read from an optional YAML file and YADISK_* environment
variables, e.g. YADISK_AUTH_TOKEN or YADISK_RETRY_COUNT.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !needsClient(cmd) {
				return nil
			}
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			h, ok := holderFrom(cmd.Context())
			if !ok {
				h = &sessionHolder{}
				cmd.SetContext(context.WithValue(cmd.Context(), holderKey{}, h))
			}
			h.s = s
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if h, ok := holderFrom(cmd.Context()); ok {
				return h.close()
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "YAML configuration file")
	flags.StringVarP(&opts.Token, "token", "t", "", "OAuth token, overrides the configuration")
	flags.StringVar(&opts.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error, disabled)")
	flags.BoolVar(&opts.Pretty, "pretty", false, "Human readable logs")

	root.AddCommand(
		NewInfoCommand(),
		NewListCommand(),
		NewStatCommand(),
		NewMkdirCommand(),
		NewRemoveCommand(),
		NewCopyCommand(),
		NewMoveCommand(),
		NewPublishCommand(),
		NewUnpublishCommand(),
		NewUploadCommand(),
		NewDownloadCommand(),
		NewTokenCommand(),
		NewTrashCommand(),
		NewVersionCommand(version),
	)
	return root
}

// needsClient is false for cobra's help and completion commands and for
// commands annotated with skipClient
func needsClient(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[skipClient]; ok {
			return false
		}
		if c.Name() == "help" || c.Name() == "completion" {
			return false
		}
	}
	return true
}

const skipClient = "skip-client"

func openSession(opts *RootOptions) (*session, error) {
	loadOpts := []config.LoadOption{}
	if opts.ConfigPath != "" {
		loadOpts = append(loadOpts, config.WithFile(opts.ConfigPath))
	}
	if opts.Environ != nil {
		loadOpts = append(loadOpts, config.WithEnviron(opts.Environ))
	}
	cfg, err := config.Load(loadOpts...)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Pretty {
		cfg.Log.Pretty = true
	}

	log := logger.NewWithWriter(os.Stderr, cfg.Log.Level, cfg.Log.Pretty)

	telemetry, err := observability.NewProvider(cfg.Observability, log)
	if err != nil {
		return nil, err
	}

	var clientOpts []client.Option
	clientOpts = append(clientOpts, client.WithLogger(log))
	if opts.Token != "" {
		clientOpts = append(clientOpts, client.WithToken(opts.Token))
	}
	c, err := client.New(*cfg, clientOpts...)
	if err != nil {
		_ = observability.Shutdown(telemetry, 0)
		return nil, err
	}

	return &session{client: c, telemetry: telemetry}, nil
}

func (s *session) close() error {
	return errors.Join(s.client.Close(), observability.Shutdown(s.telemetry, 0))
}

// clientFrom returns the client opened for cmd
func clientFrom(cmd *cobra.Command) *client.Client {
	h, _ := holderFrom(cmd.Context())
	return h.s.client
}

// printJSON writes v to the command's output as indented JSON
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
