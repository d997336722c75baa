package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/iyunix/go-aichat/internal/envelope"
)

// Logger is the key/value logger used by all handlers.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

const maxBodyBytes = 1 << 20

// writeJSON sends a success envelope.
func writeJSON[T any](w http.ResponseWriter, data T, message string) {
	envelope.Write(w, envelope.OK(data, message))
}

// writeError sends the envelope for a service error.
func writeError(w http.ResponseWriter, err error) {
	envelope.Write(w, envelope.FromError[struct{}](err))
}

func writeFail(w http.ResponseWriter, status int, message string) {
	envelope.Write(w, envelope.Fail[struct{}](status, message))
}

// decodeJSON reads a JSON body into v, answering 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeOK sends a success envelope with no data.
func writeOK(w http.ResponseWriter, message string) {
	envelope.Write(w, envelope.Empty(message))
}
