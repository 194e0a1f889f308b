package errors

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode_Envelope(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondValidationError(rr, ErrCodeMissingField, "Challenge title is required", "title")

	apiErr := Decode(rr.Result())

	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, ErrCodeMissingField, apiErr.Code())
	assert.Equal(t, "title", apiErr.Body.Field)
	assert.Equal(t, "Challenge title is required", apiErr.Error())
}

func TestDecode_NonEnvelopeBody(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusBadGateway,
		Body:       io.NopCloser(strings.NewReader("<html>bad gateway</html>")),
	}

	apiErr := Decode(resp)

	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Code())
	assert.Equal(t, "unexpected status 502", apiErr.Error())
}
