package cmd

import (
	"os"

	"github.com/foomo/themeserver/client"
	keelhttp "github.com/foomo/keel/net/http"
	"github.com/foomo/keel/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func NewUploadCommand() *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:     "upload <endpoint> <storeId> <themeName> <archive.zip>",
		Short:   "Upload a theme archive to a running theme server",
		Example: "themeserver upload http://localhost:8080/themeserver store-1 dawn dawn.zip",
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			l := log.Logger()

			c, err := client.New(args[0], client.WithHTTPClient(
				keelhttp.NewHTTPClient(
					keelhttp.HTTPClientWithTimeout(clientTimeoutFlag(v)),
					keelhttp.HTTPClientWithTelemetry(),
				),
			))
			if err != nil {
				return err
			}

			archive, err := os.Open(args[3])
			if err != nil {
				return errors.Wrap(err, "failed to open archive")
			}
			defer multierr.AppendInvoke(&err, multierr.Close(archive))

			result, err := c.UploadTheme(cmd.Context(), args[1], args[2], archive)
			if err != nil {
				return err
			}
			l.Info("upload done",
				zap.String("store", result.StoreID),
				zap.String("theme", result.ThemeName),
				zap.Int("imported", result.Imported),
				zap.Int("skipped", result.Skipped),
				zap.Float64("runtime", result.Runtime),
			)
			return nil
		},
	}

	addClientTimeoutFlag(cmd.Flags(), v)

	return cmd
}
