package commands

import (
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/ivknv/yadisk-go/client"
	"github.com/ivknv/yadisk-go/transfer"
)

// NewUploadCommand creates the upload command
func NewUploadCommand() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "upload <local> <remote>",
		Short: "Upload a local file, or stdin when local is -",
		Example: `  yadisk upload report.pdf disk:/Documents/report.pdf
  tar cz . | yadisk upload - disk:/backup.tar.gz`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := transfer.FromPath(args[0])
			if args[0] == "-" {
				src = transfer.FromReader(cmd.InOrStdin())
			}
			_, err := clientFrom(cmd).Upload(cmd.Context(), src, args[1], client.WithOverwrite(overwrite))
			return err
		},
	}

	cmd.Flags().BoolVarP(&overwrite, "overwrite", "f", false, "Replace an existing file")

	return cmd
}

// NewDownloadCommand creates the download command
func NewDownloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "download <remote> [local]",
		Short: "Download a file, to stdout when local is -",
		Long: `Downloads a file. Without a local path the file is saved to the
current directory under its remote name.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			local := path.Base(args[0])
			if len(args) > 1 {
				local = args[1]
			}
			dst := transfer.ToPath(local)
			if local == "-" {
				dst = transfer.ToWriter(cmd.OutOrStdout())
			} else if info, err := os.Stat(local); err == nil && info.IsDir() {
				dst = transfer.ToPath(local + string(os.PathSeparator) + path.Base(args[0]))
			}
			_, err := clientFrom(cmd).Download(cmd.Context(), args[0], dst)
			return err
		},
	}
}
