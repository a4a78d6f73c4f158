package logger

import (
	"context"
	log "log/slog"
)

// TraceIDKey 定义 Context 中的 Key
const TraceIDKey = "trace_id"

// UserIDKey 鉴权中间件写入 Context 的当前用户 ID
const UserIDKey = "user_id"

// ContextHandler 包装器，用于从 ctx 中提取 trace_id 和 user_id
type ContextHandler struct {
	log.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r log.Record) error {
	if ctx != nil {
		if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
			r.AddAttrs(log.String("trace_id", traceID))
		}
		if userID, ok := ctx.Value(UserIDKey).(uint64); ok && userID > 0 {
			r.AddAttrs(log.Uint64("user_id", userID))
		}
	}
	return h.Handler.Handle(ctx, r)
}
