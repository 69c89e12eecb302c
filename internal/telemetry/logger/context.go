package logger

import "context"

type fieldsKey struct{}

// fields is the request-scoped logging context. Each With* call copies it,
// so a context shared between goroutines is never mutated.
type fields struct {
	requestID string
	attrs     []any
}

func fieldsFrom(ctx context.Context) fields {
	f, _ := ctx.Value(fieldsKey{}).(fields)
	return f
}

// WithRequestID records the request ID for RequestIDFromContext and L.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	f := fieldsFrom(ctx)
	f.requestID = requestID
	return context.WithValue(ctx, fieldsKey{}, f)
}

// RequestIDFromContext returns the request ID, or "" if none was recorded.
func RequestIDFromContext(ctx context.Context) string {
	return fieldsFrom(ctx).requestID
}

// WithAttrs adds key/value pairs that L attaches to every entry logged
// for the request, such as the matched location.
func WithAttrs(ctx context.Context, args ...any) context.Context {
	if len(args) == 0 {
		return ctx
	}
	f := fieldsFrom(ctx)
	f.attrs = append(f.attrs[:len(f.attrs):len(f.attrs)], args...)
	return context.WithValue(ctx, fieldsKey{}, f)
}

// L returns the default logger carrying the request ID and any attributes
// stored in ctx.
func L(ctx context.Context) Logger {
	l := Default()
	f := fieldsFrom(ctx)
	if f.requestID != "" {
		l = l.With("request_id", f.requestID)
	}
	if len(f.attrs) > 0 {
		l = l.With(f.attrs...)
	}
	return l.WithContext(ctx)
}
