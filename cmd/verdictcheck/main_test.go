package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authenticity-backend/internal/evidence"
	"authenticity-backend/internal/llm"
	"authenticity-backend/internal/prompt"
)

type stubModel struct {
	reply string
	model string
	msgs  []llm.Message
}

func (s *stubModel) Invoke(_ context.Context, model string, msgs []llm.Message) (string, error) {
	s.model = model
	s.msgs = msgs
	return s.reply, nil
}

type stubEvidence struct{ calls int }

func (s *stubEvidence) Gather(context.Context, string) ([]evidence.Item, int, error) {
	s.calls++
	return []evidence.Item{{Title: "Wire report", URL: "https://news.example.com/a", Snippet: "Confirmed."}}, 1, nil
}

func testDeps(reply string) (deps, *stubModel, *stubEvidence) {
	m := &stubModel{reply: reply}
	e := &stubEvidence{}
	return deps{model: m, evidence: e, prompts: prompt.NewBuilder("fast", "strong")}, m, e
}

func TestRunTextGathersEvidence(t *testing.T) {
	d, m, e := testDeps("```json\n{\"authenticity\": 80, \"status\": \"authentic\", \"details\": \"ok\"}\n```")
	var out bytes.Buffer
	err := run(context.Background(), options{contentType: "text", text: "City council approves budget"}, d, &out)
	require.NoError(t, err)

	assert.Equal(t, 1, e.calls)
	assert.Equal(t, "fast", m.model)
	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.EqualValues(t, 80, got["authenticity"])
	assert.Equal(t, "authentic", got["status"])
}

func TestRunImageFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 'P', 'N', 'G'}, 0o644))

	d, m, e := testDeps("not json")
	var out bytes.Buffer
	err := run(context.Background(), options{contentType: "image", file: path, model: "override"}, d, &out)
	require.NoError(t, err)

	assert.Zero(t, e.calls)
	assert.Equal(t, "override", m.model)
	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.EqualValues(t, 50, got["authenticity"])
}

func TestRunRawPrintsReply(t *testing.T) {
	d, _, _ := testDeps("plain reply")
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), options{contentType: "audio", text: "voice memo", raw: true}, d, &out))
	assert.Equal(t, "plain reply\n", out.String())
}

func TestRunRejectsUnknownType(t *testing.T) {
	d, _, _ := testDeps("")
	err := run(context.Background(), options{contentType: "pdf"}, d, &bytes.Buffer{})
	require.Error(t, err)
}

func TestMediaFromFile(t *testing.T) {
	m := mediaFromFile("clip.unknownext", []byte("abc"))
	assert.Equal(t, "application/octet-stream", m.MIMEType)
	assert.Equal(t, "data:application/octet-stream;base64,YWJj", m.DataURI)
}
