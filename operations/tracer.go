package operations

import (
	"context"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
)

const tracerServiceName = "devcamper-api"

// initTracer sends request spans to the configured collector. With tracing
// disabled the global no-op provider stays in place.
func initTracer(ctx context.Context, env devcamper.Environment) error {
	conf := env.Settings().Tracer
	if !conf.Enabled {
		return nil
	}

	exp, err := otlptrace.New(ctx, otlptracegrpc.NewClient(
		otlptracegrpc.WithEndpoint(conf.CollectorEndpoint),
		otlptracegrpc.WithInsecure(),
	))
	if err != nil {
		return errors.Wrap(err, "initializing otel exporter")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(tracerServiceName))),
	)
	tp.RegisterSpanProcessor(utility.NewAttributeSpanProcessor())
	otel.SetTracerProvider(tp)
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		grip.Error(errors.Wrap(err, "otel error"))
	}))

	env.RegisterCloser("tracer", func(ctx context.Context) error {
		catcher := grip.NewBasicCatcher()
		catcher.Add(tp.Shutdown(ctx))
		catcher.Add(exp.Shutdown(ctx))
		return catcher.Resolve()
	})
	return nil
}
