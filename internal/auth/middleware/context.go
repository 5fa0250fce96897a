package auth

import "context"

type ctxKey string

const (
	ctxKeySub     ctxKey = "sub"
	ctxKeySession ctxKey = "session"
)

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySub, sub)
}

func SubjectFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeySub); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithSessionID records the cookie session that authenticated the request.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeySession, id)
}

func SessionIDFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeySession); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
