package validator

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type sampleRequest struct {
	Name string `json:"name" binding:"required"`
	Age  int    `json:"age" binding:"min=0"`
}

func newBindContext(t *testing.T, body string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Setup()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestBindTranslatesFieldErrors(t *testing.T) {
	c := newBindContext(t, `{"age":-3}`)

	var req sampleRequest
	fields := Bind(c, &req)
	if fields == nil {
		t.Fatal("invalid payload bound without errors")
	}

	// Field names come from json tags, messages from the English
	// translator.
	for _, field := range []string{"name", "age"} {
		msg, ok := fields[field]
		if !ok || msg == "" {
			t.Errorf("no translated message for %q: %v", field, fields)
		}
	}
}

func TestBindAcceptsValidPayload(t *testing.T) {
	c := newBindContext(t, `{"name":"Ada","age":36}`)

	var req sampleRequest
	if fields := Bind(c, &req); fields != nil {
		t.Fatalf("valid payload rejected: %v", fields)
	}
	if req.Name != "Ada" || req.Age != 36 {
		t.Errorf("bound values wrong: %+v", req)
	}
}

func TestTranslateErrorsNonValidationError(t *testing.T) {
	fields := TranslateErrors(errors.New("unexpected EOF"))
	if fields["detail"] != "unexpected EOF" {
		t.Errorf("fields = %v, want detail entry", fields)
	}
}

func TestBindRejectsMalformedJSON(t *testing.T) {
	c := newBindContext(t, `{"name":`)

	var req sampleRequest
	fields := Bind(c, &req)
	if fields == nil {
		t.Fatal("malformed JSON bound without errors")
	}
	if _, ok := fields["detail"]; !ok {
		t.Errorf("fields = %v, want a detail entry for a syntax error", fields)
	}
}
