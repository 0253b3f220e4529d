package errors

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// RequestIDHeader carries the request ID on both requests and responses.
const RequestIDHeader = "X-Request-ID"

// ErrorHandler recovers panics from next and answers with the generic 500 body.
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					requestID := w.Header().Get(RequestIDHeader)
					logger.Error("panic recovered",
						zap.Any("error", rec),
						zap.ByteString("stacktrace", debug.Stack()),
						zap.String("request_id", requestID),
					)

					WriteError(w, NewInternalError(requestID, fmt.Errorf("panic: %v", rec)))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// LogError logs err with its context. RelayErrors are logged with their type,
// status code and wrapped cause.
func LogError(logger *zap.Logger, err error, requestID string) {
	var relayErr *RelayError
	if As(err, &relayErr) {
		fields := []zap.Field{
			zap.String("error_type", string(relayErr.Type)),
			zap.Int("code", relayErr.Code),
			zap.String("request_id", requestID),
		}
		if cause := relayErr.Unwrap(); cause != nil {
			fields = append(fields, zap.Error(cause))
		}
		logger.Error("request error", fields...)
		return
	}
	logger.Error("unexpected error",
		zap.Error(err),
		zap.String("request_id", requestID),
	)
}
