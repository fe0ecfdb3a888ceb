package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/pitabwire/culture"
	"github.com/pitabwire/culture/localization"
)

// LanguageUnaryInterceptor gives every call its own culture state, set from the accept-language metadata.
func LanguageUnaryInterceptor(cultures *culture.Manager) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any,
		_ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		l := localization.ExtractLanguageFromGrpcRequest(ctx)
		ctx = localization.WithRequestCulture(ctx, cultures, l)

		return handler(ctx, req)
	}
}

// LanguageStreamInterceptor gives every stream its own culture state, set from the accept-language metadata.
func LanguageStreamInterceptor(cultures *culture.Manager) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx := ss.Context()
		l := localization.ExtractLanguageFromGrpcRequest(ctx)
		ctx = localization.WithRequestCulture(ctx, cultures, l)

		return handler(srv, &serverStreamWrapper{ctx, ss})
	}
}

// serverStreamWrapper hands the culture aware context to stream handlers.
type serverStreamWrapper struct {
	ctx context.Context
	grpc.ServerStream
}

func (s *serverStreamWrapper) Context() context.Context {
	return s.ctx
}
