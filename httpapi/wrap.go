package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shipq/catalogapi/httperror"
)

// wrapReq adapts func(context.Context, Req) (Resp, error) to an http.Handler.
// It binds the request, calls the handler, and writes the response.
func wrapReq[Req, Resp any](logger *slog.Logger, handler func(context.Context, Req) (Resp, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Req
		if err := Bind(r, &req); err != nil {
			RespondError(w, r, logger, httperror.BadRequest(err.Error()))
			return
		}

		resp, err := handler(r.Context(), req)
		if err != nil {
			RespondError(w, r, logger, err)
			return
		}

		RespondJSON(w, http.StatusOK, resp)
	})
}

// wrap adapts func(context.Context) (Resp, error) to an http.Handler.
func wrap[Resp any](logger *slog.Logger, handler func(context.Context) (Resp, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp, err := handler(r.Context())
		if err != nil {
			RespondError(w, r, logger, err)
			return
		}

		RespondJSON(w, http.StatusOK, resp)
	})
}
