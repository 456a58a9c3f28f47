package route

import (
	"context"
	"net/http"

	"github.com/Md-IrfanS/DevCamper-API/db"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

const serverErrorMessage = "server error"

// SuccessResponse is the body of every successful response.
type SuccessResponse struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// FailureResponse is the body of every failed response. Message is meant
// for the client and never holds internal error detail.
type FailureResponse struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

// listDetails holds a list that is returned whole rather than paginated.
type listDetails struct {
	Count int `json:"count"`
	Data  any `json:"data"`
}

func makeSuccess(status int, msg string, details any) gimlet.Responder {
	resp := gimlet.NewJSONResponse(SuccessResponse{
		StatusCode: status,
		Success:    true,
		Message:    msg,
		Details:    details,
	})
	if err := resp.SetStatus(status); err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrapf(err, "setting status code %d", status))
	}
	return resp
}

func makeFailure(ctx context.Context, err error) gimlet.Responder {
	status, msg := classifyError(err)
	fields := message.Fields{
		"message": "request failed",
		"status":  status,
		"request": gimlet.GetRequestID(ctx),
	}
	if status >= http.StatusInternalServerError {
		grip.Error(message.WrapError(err, fields))
	} else {
		grip.Debug(message.WrapError(err, fields))
	}

	resp := gimlet.NewJSONResponse(newFailure(status, msg))
	if err := resp.SetStatus(status); err != nil {
		return gimlet.MakeJSONInternalErrorResponder(errors.Wrapf(err, "setting status code %d", status))
	}
	return resp
}

func newFailure(status int, msg string) FailureResponse {
	return FailureResponse{
		StatusCode: status,
		Success:    false,
		Message:    msg,
		Error:      http.StatusText(status),
	}
}

// writeFailure is used by middleware, which answers before any route
// handler runs.
func writeFailure(rw http.ResponseWriter, status int, msg string) {
	gimlet.WriteJSONResponse(rw, status, newFailure(status, msg))
}

// classifyError picks the status and client message for an error. Error
// responses keep their own, duplicate keys are conflicts and everything else
// is hidden behind a server error.
func classifyError(err error) (int, string) {
	var resp gimlet.ErrorResponse
	if errors.As(err, &resp) && resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, resp.Message
	}
	var respPtr *gimlet.ErrorResponse
	if errors.As(err, &respPtr) && respPtr != nil && respPtr.StatusCode >= http.StatusBadRequest {
		return respPtr.StatusCode, respPtr.Message
	}
	if db.IsDuplicateKey(err) {
		return http.StatusConflict, "duplicate field value entered"
	}
	return http.StatusInternalServerError, serverErrorMessage
}

func badRequest(err error) error {
	return gimlet.ErrorResponse{StatusCode: http.StatusBadRequest, Message: err.Error()}
}

func readJSON(r *http.Request, out any) error {
	if err := gimlet.GetJSON(r.Body, out); err != nil {
		return gimlet.ErrorResponse{StatusCode: http.StatusBadRequest, Message: "request body is not valid JSON"}
	}
	return nil
}

// envelopeHandler sends parse failures through the same responder as run
// failures, so that every error reaches the client in one shape.
type envelopeHandler struct {
	handler  gimlet.RouteHandler
	parseErr error
}

func enveloped(h gimlet.RouteHandler) gimlet.RouteHandler {
	return &envelopeHandler{handler: h}
}

func (h *envelopeHandler) Factory() gimlet.RouteHandler {
	return &envelopeHandler{handler: h.handler.Factory()}
}

func (h *envelopeHandler) Parse(ctx context.Context, r *http.Request) error {
	h.parseErr = h.handler.Parse(ctx, r)
	return nil
}

func (h *envelopeHandler) Run(ctx context.Context) gimlet.Responder {
	if h.parseErr != nil {
		return makeFailure(ctx, h.parseErr)
	}
	return h.handler.Run(ctx)
}
