package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fxamacker/cbor/v2"
	"github.com/gin-gonic/gin"
	"github.com/taurusgroup/zkauth/pkg/auth"
	"github.com/taurusgroup/zkauth/pkg/session"
)

// MIMECBOR is the content type of CBOR bodies. Anything else is read as JSON.
const MIMECBOR = "application/cbor"

const maxBodyBytes = 1 << 16

var errBody = errors.New("malformed body")

// bind decodes the request body into v according to its Content-Type.
func bind(c *gin.Context, v interface{}) error {
	if c.ContentType() != MIMECBOR {
		if err := c.ShouldBindJSON(v); err != nil {
			return fmt.Errorf("%w: %v", errBody, err)
		}
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: %v", errBody, err)
	}
	if len(data) > maxBodyBytes {
		return fmt.Errorf("%w: larger than %d bytes", errBody, maxBodyBytes)
	}
	if err := cbor.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", errBody, err)
	}
	return nil
}

// wantsCBOR follows the Accept header, and falls back to the request's Content-Type.
func wantsCBOR(c *gin.Context) bool {
	if c.GetHeader("Accept") == "" {
		return c.ContentType() == MIMECBOR
	}
	return c.NegotiateFormat(gin.MIMEJSON, MIMECBOR) == MIMECBOR
}

func render(c *gin.Context, code int, v interface{}) {
	if !wantsCBOR(c) {
		c.JSON(code, v)
		return
	}
	data, err := cbor.Marshal(v)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(code, MIMECBOR, data)
}

// fail maps err to a status code and aborts the request.
func fail(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBody):
		code = http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, session.ErrRejected):
		code = http.StatusUnauthorized
	}
	_ = c.Error(err)
	render(c, code, auth.GenericError{Error: err.Error()})
	c.Abort()
}
