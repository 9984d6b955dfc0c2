package cmd

import (
	"os"

	"github.com/foomo/keel/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func NewImportCommand() *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:   "import <storeId> <themeName> <archive.zip>",
		Short: "Import a theme archive into the configured storage",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			l := log.Logger()

			archive, err := os.Open(args[2])
			if err != nil {
				return errors.Wrap(err, "failed to open archive")
			}
			defer multierr.AppendInvoke(&err, multierr.Close(archive))

			info, err := archive.Stat()
			if err != nil {
				return errors.Wrap(err, "failed to stat archive")
			}

			themes, storage, err := newService(cmd.Context(), v, l)
			if err != nil {
				return err
			}
			defer multierr.AppendInvoke(&err, multierr.Close(storage))

			result, err := themes.UploadTheme(cmd.Context(), args[0], args[1], archive, info.Size())
			if err != nil {
				return err
			}
			l.Info("import done",
				zap.String("store", args[0]),
				zap.String("theme", args[1]),
				zap.Int("imported", result.Imported),
				zap.Int("skipped", result.Skipped),
			)
			return nil
		},
	}

	flags := cmd.Flags()
	addStorageFlags(flags, v)
	addThemeFlags(flags, v)

	return cmd
}
