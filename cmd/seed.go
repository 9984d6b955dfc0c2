package cmd

import (
	"github.com/foomo/themeserver/pkg/theme"
	"github.com/foomo/keel/log"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func NewSeedCommand() *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:   "seed <storeId> [dir]",
		Short: "Seed a store with the default theme",
		Long: "Seed a store with the default theme. Without dir the configured default theme path is\n" +
			"used and only stores without any theme are seeded. A given dir is always imported, its\n" +
			"folders become the themes of the store.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			l := log.Logger()

			// a dir given on the command line becomes the seed root and is imported as a whole
			var (
				override string
				opts     []theme.Option
			)
			if len(args) > 1 {
				override = "."
				opts = append(opts, theme.WithSeedRoot(args[1]))
			}

			themes, storage, err := newService(cmd.Context(), v, l, opts...)
			if err != nil {
				return err
			}
			defer multierr.AppendInvoke(&err, multierr.Close(storage))

			items, err := themes.CreateDefaultTheme(cmd.Context(), args[0], override)
			if err != nil {
				return err
			}
			l.Info("seed done", zap.String("store", args[0]), zap.Int("items", items))
			return nil
		},
	}

	flags := cmd.Flags()
	addStorageFlags(flags, v)
	addThemeFlags(flags, v)

	return cmd
}
