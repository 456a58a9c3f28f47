package operations

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/auth"
	"github.com/Md-IrfanS/DevCamper-API/notify"
	"github.com/Md-IrfanS/DevCamper-API/rest/data"
	"github.com/Md-IrfanS/DevCamper-API/rest/route"
	"github.com/Md-IrfanS/DevCamper-API/thirdparty"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/mongodb/grip/recovery"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 30 * time.Second
)

func Service() cli.Command {
	return cli.Command{
		Name:  "service",
		Usage: "run devcamper services",
		Subcommands: []cli.Command{
			startWebService(),
		},
	}
}

func startWebService() cli.Command {
	return cli.Command{
		Name:  "web",
		Usage: "start the REST API server",
		Flags: serviceConfigFlags(),
		Before: mergeBeforeFuncs(
			requireFileExists(confFlagName),
			requireFileExists(envFileFlagName),
		),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go listenForSIGTERM(cancel)

			grip.SetName("devcamper.web")

			env, err := startEnvironment(ctx, c)
			if err != nil {
				return errors.WithStack(err)
			}
			defer closeEnvironment(env)
			defer recovery.LogStackTraceAndExit("devcamper web service")

			if err = ensureIndexes(ctx); err != nil {
				return errors.Wrap(err, "creating indexes")
			}

			if err = initTracer(ctx, env); err != nil {
				return errors.Wrap(err, "initializing tracing")
			}

			settings := env.Settings()
			handler, err := newWebHandler(env)
			if err != nil {
				return errors.Wrap(err, "building the REST API")
			}

			server := &http.Server{
				Addr:              fmt.Sprintf(":%d", settings.Api.Port),
				Handler:           handler,
				ReadHeaderTimeout: readHeaderTimeout,
			}

			grip.Notice(message.Fields{
				"message": "starting web service",
				"process": grip.Name(),
				"port":    settings.Api.Port,
				"db":      settings.Database.DB,
			})

			return errors.WithStack(serveUntilDone(ctx, server))
		},
	}
}

// newWebHandler wires the store, the geocoder and the mailer into the REST
// application. Every request is traced.
func newWebHandler(env devcamper.Environment) (http.Handler, error) {
	settings := env.Settings()

	tokens, err := auth.NewTokenManagerFromSettings(settings.Auth)
	if err != nil {
		return nil, errors.Wrap(err, "creating token manager")
	}

	var mailer notify.Mailer = notify.DisabledMailer{}
	if settings.SMTP.Configured() {
		mailer, err = notify.NewSenderMailer(env)
		if err != nil {
			return nil, errors.Wrap(err, "creating mailer")
		}
	} else {
		grip.Warning("no smtp server is configured, password reset emails are disabled")
	}

	geocoder := thirdparty.NewMapQuestGeocoder(settings.Geocoder)
	env.RegisterCloser("geocoder", func(context.Context) error {
		geocoder.Close()
		return nil
	})

	sc := &data.DBConnector{
		Env:      env,
		Geocoder: geocoder,
		Mailer:   mailer,
	}

	handler, err := route.NewApp(route.HandlerOptsFromSettings(settings, sc, tokens)).Handler()
	if err != nil {
		return nil, errors.Wrap(err, "building the REST API handler")
	}
	return otelhttp.NewHandler(handler, tracerServiceName, otelhttp.WithSpanNameFormatter(spanName)), nil
}

func spanName(_ string, r *http.Request) string {
	return r.Method + " " + r.URL.Path
}

// serveUntilDone runs the server until the context is canceled, then gives
// in-flight requests a bounded time to finish.
func serveUntilDone(ctx context.Context, server *http.Server) error {
	serveErr := make(chan error, 1)
	go func() {
		defer recovery.LogStackTraceAndContinue("web server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serving")
	case <-ctx.Done():
	}

	grip.Info("shutting down web service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return errors.Wrap(server.Shutdown(shutdownCtx), "shutting down web server")
}

func listenForSIGTERM(cancel context.CancelFunc) {
	defer recovery.LogStackTraceAndExit("graceful shutdown signal handler")
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan
	grip.Info("received shutdown signal")
	cancel()
}
