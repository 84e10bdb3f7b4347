package grpcserver

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/fubl84/peakly-sub001/internal/metrics"
)

// LoggingUnary returns a unary server interceptor for structured logging.
func LoggingUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		code := status.Code(err)

		var remote string
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			remote = p.Addr.String()
		}

		// metadata only, request bodies carry user data
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("dur", time.Since(start)),
			zap.String("peer", remote),
		}
		if id, ok := UserIDFromCtx(ctx); ok {
			fields = append(fields, zap.String("user_id", id.String()))
		}
		switch code {
		case codes.OK, codes.NotFound, codes.InvalidArgument, codes.FailedPrecondition, codes.AlreadyExists, codes.Unauthenticated:
			log.Info("grpc", fields...)
		default:
			log.Warn("grpc", append(fields, zap.Error(err))...)
		}
		return resp, err
	}
}

// RecoverUnary returns a unary server interceptor that recovers from panics.
func RecoverUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("method", info.FullMethod),
				)
				err = status.Error(codes.Internal, "internal")
			}
		}()
		return next(ctx, req)
	}
}

// MetricsUnary reports method, status code and latency of every call to sink.
func MetricsUnary(sink metrics.Sink) grpc.UnaryServerInterceptor {
	if sink == nil {
		sink = metrics.Nop{}
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		sink.Observe(info.FullMethod, status.Code(err).String(), time.Since(start))
		return resp, err
	}
}

// PublicMethods are callable without a bearer token.
var PublicMethods = []string{
	FullMethod(MethodConvertToGrams),
	FullMethod(MethodResolveAssignments),
	"/grpc.health.v1.Health/",
	"/grpc.reflection.",
}

func isPublic(method string) bool {
	for _, p := range PublicMethods {
		if method == p || (strings.HasSuffix(p, "/") || strings.HasSuffix(p, ".")) && strings.HasPrefix(method, p) {
			return true
		}
	}
	return false
}

// AuthUnary verifies the bearer token of non-public methods and stores the
// caller id in the context.
func (s *Server) AuthUnary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if isPublic(info.FullMethod) {
			return next(ctx, req)
		}
		id, err := s.userIDFromCtx(ctx)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "no auth")
		}
		return next(WithUserID(ctx, id), req)
	}
}
