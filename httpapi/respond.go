package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/shipq/catalogapi/httperror"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// RespondJSON writes a JSON response with the given status code.
// If data is a nil slice, it writes an empty JSON array instead of null.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		rv := reflect.ValueOf(data)
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			_, _ = w.Write([]byte("[]\n"))
			return
		}
	}

	_ = json.NewEncoder(w).Encode(data)
}

// RespondError translates err, logs it against the request path and writes
// the {"detail": ...} body.
func RespondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	he := httperror.Translate(err)

	logger.Info("request failed",
		"path", r.URL.Path,
		"status", he.Code(),
		"detail", he.Message(),
	)

	respondHTTPError(w, he)
}

// respondHTTPError writes he without logging.
func respondHTTPError(w http.ResponseWriter, he *httperror.Error) {
	RespondJSON(w, he.Code(), ErrorResponse{Detail: he.Message()})
}
