package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivknv/yadisk-go/client"
	"github.com/ivknv/yadisk-go/model"
	"github.com/ivknv/yadisk-go/request"
)

// NewTrashCommand creates the trash command group
func NewTrashCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Inspect and manage the trash",
	}

	cmd.AddCommand(
		newTrashListCommand(),
		newTrashRestoreCommand(),
		newTrashEmptyCommand(),
	)
	return cmd
}

func newTrashListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [path]",
		Short: "List the trash",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := model.SchemaTrash + ":/"
			if len(args) > 0 {
				path = args[0]
			}
			for item, err := range clientFrom(cmd).TrashListdir(cmd.Context(), path) {
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", item.Path, item.OriginPath)
			}
			return nil
		},
	}
}

func newTrashRestoreCommand() *cobra.Command {
	var name string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "restore <path>",
		Short: "Restore a trashed resource to its original location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := clientFrom(cmd).RestoreTrash(cmd.Context(), args[0], name, client.WithOverwrite(overwrite))
			if err != nil {
				return err
			}
			return printOperation(cmd, res)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Restore under a new name")
	cmd.Flags().BoolVarP(&overwrite, "overwrite", "f", false, "Replace an existing resource")

	return cmd
}

func newTrashEmptyCommand() *cobra.Command {
	var noWait bool

	cmd := &cobra.Command{
		Use:   "empty [path]",
		Short: "Delete a trashed resource, or everything in the trash",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			res, err := clientFrom(cmd).RemoveTrash(cmd.Context(), path, request.WithWait(!noWait))
			if err != nil {
				return err
			}
			return printOperation(cmd, res)
		},
	}

	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Do not wait for the operation to finish")

	return cmd
}
