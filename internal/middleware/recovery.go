package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/iyunix/go-aichat/internal/envelope"
)

func RecoverPanic(logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic while serving request",
						"panic", err,
						"path", r.URL.Path,
						"stack", string(debug.Stack()))

					w.Header().Set("Connection", "close")
					envelope.Write(w, envelope.Fail[struct{}](http.StatusInternalServerError, "something went wrong on our end"))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
