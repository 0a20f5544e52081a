package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivknv/yadisk-go/client"
	"github.com/ivknv/yadisk-go/model"
	"github.com/ivknv/yadisk-go/request"
)

// NewInfoCommand creates the info command
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show disk quota and account information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := clientFrom(cmd).GetDiskInfo(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, info)
		},
	}
}

// ListOptions holds options for the ls command
type ListOptions struct {
	Limit int
	Long  bool
}

// NewListCommand creates the ls command
func NewListCommand() *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List the contents of a directory",
		Example: `  # List the root directory
  yadisk ls

  # Full metadata of every item
  yadisk ls -l disk:/Photos`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) > 0 {
				path = args[0]
			}
			return runList(cmd, path, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", client.DefaultListLimit, "Items fetched per request")
	cmd.Flags().BoolVarP(&opts.Long, "long", "l", false, "Print full metadata as JSON")

	return cmd
}

func runList(cmd *cobra.Command, path string, opts *ListOptions) error {
	for item, err := range clientFrom(cmd).Listdir(cmd.Context(), path, client.WithLimit(opts.Limit)) {
		if err != nil {
			return err
		}
		if opts.Long {
			if err := printJSON(cmd, item); err != nil {
				return err
			}
			continue
		}
		name := item.Name
		if item.Type == model.TypeDir {
			name += "/"
		}
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

// NewStatCommand creates the stat command
func NewStatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>",
		Short: "Show the metadata of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := clientFrom(cmd).GetMeta(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, meta)
		},
	}
}

// NewMkdirCommand creates the mkdir command
func NewMkdirCommand() *cobra.Command {
	var parents bool

	cmd := &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := clientFrom(cmd)
			mkdir := c.Mkdir
			if parents {
				mkdir = c.Makedirs
			}
			link, err := mkdir(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), link.Path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&parents, "parents", "p", false, "Create missing parent directories")

	return cmd
}

// NewRemoveCommand creates the rm command
func NewRemoveCommand() *cobra.Command {
	var permanently, noWait bool

	cmd := &cobra.Command{
		Use:   "rm <path>",
		Short: "Remove a file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := clientFrom(cmd).Remove(cmd.Context(), args[0],
				client.WithPermanently(permanently), request.WithWait(!noWait))
			if err != nil {
				return err
			}
			return printOperation(cmd, res)
		},
	}

	cmd.Flags().BoolVar(&permanently, "permanently", false, "Skip the trash")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Do not wait for the operation to finish")

	return cmd
}

// NewCopyCommand creates the cp command
func NewCopyCommand() *cobra.Command {
	return newTransferResourceCommand("cp <src> <dst>", "Copy a file or directory", (*client.Client).Copy)
}

// NewMoveCommand creates the mv command
func NewMoveCommand() *cobra.Command {
	return newTransferResourceCommand("mv <src> <dst>", "Move a file or directory", (*client.Client).Move)
}

type transferFunc func(c *client.Client, ctx context.Context, src, dst string, opts ...request.Option) (model.AsyncLink, error)

func newTransferResourceCommand(use, short string, fn transferFunc) *cobra.Command {
	var overwrite, noWait bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := fn(clientFrom(cmd), cmd.Context(), args[0], args[1],
				client.WithOverwrite(overwrite), request.WithWait(!noWait))
			if err != nil {
				return err
			}
			return printOperation(cmd, res)
		},
	}

	cmd.Flags().BoolVarP(&overwrite, "overwrite", "f", false, "Replace an existing destination")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Do not wait for the operation to finish")

	return cmd
}

// printOperation prints the operation href of a result that did not finish
// synchronously, or nothing
func printOperation(cmd *cobra.Command, res model.AsyncLink) error {
	if op := res.PendingOperation(); op != nil {
		fmt.Fprintln(cmd.OutOrStdout(), op.Href)
	}
	return nil
}

// NewPublishCommand creates the publish command
func NewPublishCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "publish <path>",
		Short: "Make a resource public and print its public URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := clientFrom(cmd)
			if _, err := c.Publish(cmd.Context(), args[0]); err != nil {
				return err
			}
			meta, err := c.GetMeta(cmd.Context(), args[0], client.WithFields("public_url"))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), meta.PublicURL)
			return nil
		},
	}
}

// NewUnpublishCommand creates the unpublish command
func NewUnpublishCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unpublish <path>",
		Short: "Make a resource private",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := clientFrom(cmd).Unpublish(cmd.Context(), args[0])
			return err
		},
	}
}
