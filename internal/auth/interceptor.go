package auth

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-stockcount-service/internal/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// ContextInterceptor moves the caller identity from metadata into the
// context and logs every call.
func ContextInterceptor(log logger.ZapLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		u := FromIncoming(ctx)
		ctx = WithUser(ctx, u)

		start := time.Now()
		resp, err := handler(ctx, req)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("company_id", u.CompanyID),
			zap.String("user_id", u.UserID),
			zap.Duration("took", time.Since(start)),
		}
		if err != nil {
			log.Warn("gRPC call failed", append(fields, zap.String("code", status.Code(err).String()), zap.Error(err))...)
		} else {
			log.Debug("gRPC call", fields...)
		}
		return resp, err
	}
}

type identifiedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *identifiedStream) Context() context.Context { return s.ctx }

// StreamContextInterceptor is ContextInterceptor for streaming calls.
func StreamContextInterceptor(log logger.ZapLogger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		u := FromIncoming(ss.Context())
		ctx := WithUser(ss.Context(), u)

		start := time.Now()
		err := handler(srv, &identifiedStream{ServerStream: ss, ctx: ctx})

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("company_id", u.CompanyID),
			zap.String("user_id", u.UserID),
			zap.Duration("took", time.Since(start)),
		}
		if err != nil {
			log.Warn("gRPC stream failed", append(fields, zap.String("code", status.Code(err).String()), zap.Error(err))...)
		} else {
			log.Debug("gRPC stream closed", fields...)
		}
		return err
	}
}
