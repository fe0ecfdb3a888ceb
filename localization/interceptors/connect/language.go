package connect

import (
	"context"

	"connectrpc.com/connect"

	"github.com/pitabwire/culture"
	"github.com/pitabwire/culture/localization"
)

// LanguageInterceptor implements connect.Interceptor, giving every handled call its own culture state.
type LanguageInterceptor struct {
	cultures *culture.Manager
}

// NewLanguageInterceptor creates a language interceptor resolving cultures with cultures.
func NewLanguageInterceptor(cultures *culture.Manager) (*LanguageInterceptor, error) {
	return &LanguageInterceptor{cultures: cultures}, nil
}

func (l *LanguageInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient {
			return next(ctx, req)
		}

		languages := localization.ExtractLanguageFromHTTPHeader(req.Header())
		return next(localization.WithRequestCulture(ctx, l.cultures, languages), req)
	}
}

// WrapStreamingClient is a pass-through, the interceptor only acts on handlers.
func (l *LanguageInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (l *LanguageInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		languages := localization.ExtractLanguageFromHTTPHeader(conn.RequestHeader())
		return next(localization.WithRequestCulture(ctx, l.cultures, languages), conn)
	}
}
