package localization

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pitabwire/culture"
)

// WithRequestCulture starts the execution context of an incoming request. The
// request begins from the defaults; when one of languages resolves it becomes
// both the current culture and the current UI culture.
func WithRequestCulture(ctx context.Context, cultures *culture.Manager, languages []string) context.Context {
	ctx = cultures.Defaults().Spawn(ctx)
	state := culture.FromContext(ctx)

	if len(languages) > 0 {
		c, err := cultures.ResolveAny(languages...)
		if err != nil {
			cultures.Log(ctx).WithError(err).WithField("languages", languages).
				Debug("no requested language resolved, keeping default cultures")
		} else {
			state.SetCurrent(c)
			state.SetCurrentUI(c)
		}
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("culture.name", state.Current().Name()),
		attribute.String("culture.ui", state.CurrentUI().Name()),
	)

	return ctx
}
