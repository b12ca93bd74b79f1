package main

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailedResponseMatchesAPIErrorBody(t *testing.T) {
	resp := failedResponse()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Equal(t, "Analysis failed", body["error"])
	assert.Equal(t, "error", body["status"])
	assert.EqualValues(t, 0, body["authenticity"])
}
