package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
)

type ctxKey string

const (
	companyIDKey ctxKey = "company_id"
	userIDKey    ctxKey = "user_id"
	languageKey  ctxKey = "language"
)

const (
	HeaderCompanyID = "x-company-id"
	HeaderUserID    = "x-user-id"
	HeaderLanguage  = "accept-language"
)

type UserContext struct {
	CompanyID string
	UserID    string
	Language  string
}

func firstValue(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if val := md.Get(key); len(val) > 0 {
		return strings.TrimSpace(val[0])
	}
	return ""
}

// FromIncoming reads the caller identity from gRPC metadata.
func FromIncoming(ctx context.Context) UserContext {
	return UserContext{
		CompanyID: firstValue(ctx, HeaderCompanyID),
		UserID:    firstValue(ctx, HeaderUserID),
		Language:  firstValue(ctx, HeaderLanguage),
	}
}

func WithUser(ctx context.Context, u UserContext) context.Context {
	ctx = context.WithValue(ctx, companyIDKey, u.CompanyID)
	ctx = context.WithValue(ctx, userIDKey, u.UserID)
	return context.WithValue(ctx, languageKey, u.Language)
}

// GetCompanyID prefers the value stored by the interceptor and falls back
// to metadata.
func GetCompanyID(ctx context.Context) string {
	if val, ok := ctx.Value(companyIDKey).(string); ok && val != "" {
		return val
	}
	return firstValue(ctx, HeaderCompanyID)
}

func GetUserID(ctx context.Context) string {
	if val, ok := ctx.Value(userIDKey).(string); ok && val != "" {
		return val
	}
	return firstValue(ctx, HeaderUserID)
}

func GetLanguage(ctx context.Context) string {
	if val, ok := ctx.Value(languageKey).(string); ok && val != "" {
		return val
	}
	return firstValue(ctx, HeaderLanguage)
}
