// Package testutil holds gin context builders shared by the handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensegate/internal/shared/constants"
	"github.com/orris-inc/licensegate/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewTestContext builds a context whose body is body encoded as JSON, or no
// body when body is nil.
func NewTestContext(method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	if body == nil {
		return newContext(method, path, nil)
	}
	raw, _ := json.Marshal(body)
	return newContext(method, path, raw)
}

// NewRawTestContext builds a context whose body is sent verbatim. Signed
// calls and webhooks need the exact bytes.
func NewRawTestContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	return newContext(method, path, body)
}

func newContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	if body == nil {
		c.Request = httptest.NewRequest(method, path, nil)
		return c, w
	}
	c.Request = httptest.NewRequest(method, path, bytes.NewReader(body))
	c.Request.Header.Set(constants.HeaderContentType, "application/json")
	return c, w
}

// SetStoreContext marks the context as authenticated for token, as the
// signed request middleware does.
func SetStoreContext(c *gin.Context, token string) {
	c.Set(constants.ContextKeyStoreToken, token)
}

func SetURLParam(c *gin.Context, key, value string) {
	c.Params = append(c.Params, gin.Param{Key: key, Value: value})
}

func SetQueryParams(c *gin.Context, params map[string]string) {
	q := c.Request.URL.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	c.Request.URL.RawQuery = q.Encode()
}

// ParseResponse decodes the response envelope, leaving data raw.
func ParseResponse(w *httptest.ResponseRecorder, target any) error {
	return json.Unmarshal(w.Body.Bytes(), target)
}

// APIResponse mirrors the response envelope with data left undecoded.
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		Details string `json:"details,omitempty"`
	} `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// DecodeData unmarshals the envelope's data into target.
func (r *APIResponse) DecodeData(target any) error {
	return json.Unmarshal(r.Data, target)
}

// NewMockLogger returns a logger that discards everything.
func NewMockLogger() logger.Interface {
	return logger.NewNop()
}
