package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/fekuna/omnipos-stockcount-service/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestFromIncoming(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
		HeaderCompanyID, "acme",
		HeaderUserID, " ana ",
		HeaderLanguage, "es-AR",
	))

	u := FromIncoming(ctx)
	assert.Equal(t, UserContext{CompanyID: "acme", UserID: "ana", Language: "es-AR"}, u)
	assert.Equal(t, "acme", GetCompanyID(ctx))
	assert.Equal(t, "", GetCompanyID(context.Background()))
}

func TestContextInterceptor(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	intercept := ContextInterceptor(logger.New(zap.New(core)))

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(HeaderCompanyID, "acme", HeaderUserID, "ben"))
	info := &grpc.UnaryServerInfo{FullMethod: "/stockcount.v1.CountService/SubmitCount"}

	var seen UserContext
	_, err := intercept(ctx, nil, info, func(ctx context.Context, _ any) (any, error) {
		seen = UserContext{CompanyID: GetCompanyID(ctx), UserID: GetUserID(ctx), Language: GetLanguage(ctx)}
		return nil, errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, UserContext{CompanyID: "acme", UserID: "ben"}, seen)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "acme", entry.ContextMap()["company_id"])
}

type incomingStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *incomingStream) Context() context.Context { return s.ctx }

func TestStreamContextInterceptor(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	intercept := StreamContextInterceptor(logger.New(zap.New(core)))

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(HeaderCompanyID, "acme", HeaderUserID, "ana"))
	info := &grpc.StreamServerInfo{FullMethod: "/stockcount.v1.CountService/WatchCycle", IsServerStream: true}

	var stored any
	err := intercept(nil, &incomingStream{ctx: ctx}, info, func(_ any, ss grpc.ServerStream) error {
		stored = ss.Context().Value(companyIDKey)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "acme", stored)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.DebugLevel, logs.All()[0].Level)
}
