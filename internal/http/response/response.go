package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/hookbrief-backend/internal/platform/apierr"
	"github.com/yungbote/hookbrief-backend/internal/platform/ctxutil"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

type ErrorEnvelope struct {
	OK            bool     `json:"ok"`
	Error         APIError `json:"error"`
	CorrelationID string   `json:"correlation_id,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	respond(c, status, code, "", err)
}

// RespondAPIError maps err through apierr. Anything without a kind is a 500.
func RespondAPIError(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		status := ae.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		respond(c, status, ae.Code, string(ae.Kind), ae.Err)
		return
	}
	respond(c, http.StatusInternalServerError, "internal_error", string(apierr.KindInternal), errors.New("internal error"))
}

// ErrorKindKey holds the error kind of a failed response in the gin context.
const ErrorKindKey = "hb.error_kind"

func respond(c *gin.Context, status int, code, kind string, err error) {
	c.Set(ErrorKindKey, kind)
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
			Kind:    kind,
		},
		CorrelationID: ctxutil.CorrelationID(c.Request.Context()),
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
