package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type logSlotKey struct{}

// logSlot lets inner middleware report the caller back to RequestLogger
type logSlot struct {
	userID string
}

func recordUser(ctx context.Context, userID string) {
	if slot, ok := ctx.Value(logSlotKey{}).(*logSlot); ok {
		slot.userID = userID
	}
}

// RequestLogger logs every request with its status and duration
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		slot := &logSlot{}

		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), logSlotKey{}, slot)))

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", chimw.GetReqID(r.Context()),
		}
		if slot.userID != "" {
			attrs = append(attrs, "user_id", slot.userID)
		}

		switch {
		case ww.Status() >= http.StatusInternalServerError:
			slog.Error("Request failed", attrs...)
		case ww.Status() >= http.StatusBadRequest:
			slog.Warn("Request rejected", attrs...)
		default:
			slog.Info("Request completed", attrs...)
		}
	})
}
