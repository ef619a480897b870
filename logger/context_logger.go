package logger

import (
	"context"
	"log/slog"
)

// ContextKey is the type for context keys used in logging
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"

	// Business keys, prefixed like OpenTelemetry attributes.
	KeyspaceKey       ContextKey = "permanode.keyspace"
	MessageIDKey      ContextKey = "permanode.message.id"
	MilestoneIndexKey ContextKey = "permanode.milestone.index"
	FeedURLKey        ContextKey = "permanode.feed.url"
	ComponentKey      ContextKey = "permanode.component"
)

var contextKeys = []ContextKey{
	RequestIDKey,
	KeyspaceKey,
	MessageIDKey,
	MilestoneIndexKey,
	FeedURLKey,
	ComponentKey,
}

// ContextAttrs returns an attribute for every logging key present in ctx.
func ContextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	for _, key := range contextKeys {
		if v := ctx.Value(key); v != nil {
			attrs = append(attrs, slog.Any(string(key), v))
		}
	}
	return attrs
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func WithKeyspace(ctx context.Context, keyspace string) context.Context {
	return context.WithValue(ctx, KeyspaceKey, keyspace)
}

func WithMessageID(ctx context.Context, messageID string) context.Context {
	return context.WithValue(ctx, MessageIDKey, messageID)
}

func WithMilestoneIndex(ctx context.Context, index uint32) context.Context {
	return context.WithValue(ctx, MilestoneIndexKey, index)
}

func WithFeedURL(ctx context.Context, url string) context.Context {
	return context.WithValue(ctx, FeedURLKey, url)
}

func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, ComponentKey, component)
}
