package cmd

import (
	"context"

	"github.com/foomo/themeserver/pkg/handler"
	"github.com/foomo/keel"
	"github.com/foomo/keel/healthz"
	"github.com/foomo/keel/net/http/middleware"
	"github.com/foomo/keel/service"
	"github.com/spf13/cobra"
)

func NewHTTPCommand() *cobra.Command {
	v := newViper()
	service.DefaultHTTPPProfAddr = ":6060"

	cmd := &cobra.Command{
		Use:   "http",
		Short: "Start http server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svr := keel.NewServer(
				keel.WithHTTPPrometheusService(servicePrometheusEnabledFlag(v)),
				keel.WithHTTPHealthzService(serviceHealthzEnabledFlag(v)),
				keel.WithPrometheusMeter(servicePrometheusEnabledFlag(v)),
				keel.WithGracefulPeriod(gracefulPeriodFlag(v)),
				keel.WithOTLPGRPCTracer(otelEnabledFlag(v)),
				keel.WithHTTPPProfService(servicePProfEnabledFlag(v)),
			)

			l := svr.Logger()

			themes, storage, err := newService(cmd.Context(), v, l)
			if err != nil {
				return err
			}

			storageHealthzerFn := healthz.NewHealthzerFn(storage.Ping)
			svr.AddReadinessHealthzers(storageHealthzerFn)

			svr.AddClosers(func(ctx context.Context) error {
				return storage.Close()
			})

			svr.AddServices(
				service.NewHTTP(l.Named("svc.http"), "http", addressFlag(v),
					handler.NewHTTP(l.Named("inst.handler"), themes,
						handler.WithBasePath(basePathFlag(v)),
						handler.WithMaxUploadSize(maxUploadSizeFlag(v)),
					),
					middleware.Telemetry(),
					middleware.Logger(),
					middleware.GZip(middleware.GZipWithLevel(gzipLevelFlag(v))),
					middleware.Recover(),
				),
			)

			svr.Run()
			return nil
		},
	}

	flags := cmd.Flags()
	addAddressFlag(flags, v)
	addBasePathFlag(flags, v)
	addMaxUploadSizeFlag(flags, v)
	addGracefulPeriodFlag(flags, v)
	addOtelEnabledFlag(flags, v)
	addServiceHealthzEnabledFlag(flags, v)
	addServicePrometheusEnabledFlag(flags, v)
	addServicePProfEnabledFlag(flags, v)
	addGzipLevelFlag(flags, v)
	addStorageFlags(flags, v)
	addThemeFlags(flags, v)

	return cmd
}
