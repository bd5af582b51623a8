package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postValidate(t *testing.T, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/event-hints/validate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	ValidateEventHintExpression().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		return rec.Code, nil
	}
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestValidateEndpointAcceptsValidExpression(t *testing.T) {
	code, resp := postValidate(t, `{"expression": "description.contains(\"spotify\") && amount > 5.00"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["is_valid"])
	assert.NotContains(t, resp, "error")
}

func TestValidateEndpointReportsSyntaxError(t *testing.T) {
	code, resp := postValidate(t, `{"expression": "description.contains(\"spotify\""}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, resp["is_valid"])
	assert.Contains(t, resp["error"], "syntax error")
}

func TestValidateEndpointReportsSemanticError(t *testing.T) {
	code, resp := postValidate(t, `{"expression": "merchant == \"x\""}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, resp["is_valid"])
	assert.Contains(t, resp["error"], "unknown field")
}

func TestValidateEndpointRejectsBadBody(t *testing.T) {
	code, _ := postValidate(t, `{`)
	assert.Equal(t, http.StatusBadRequest, code)
}
