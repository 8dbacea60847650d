package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyCommand(t *testing.T) {
	t.Setenv("MODEL_PROVIDER", "vader")
	t.Setenv("STORE_BACKEND", "memory")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"classify", "I", "am", "so", "sad", "today"})

	require.NoError(t, root.Execute())
	assert.JSONEq(t, `{"sentiment":"negative"}`, out.String())
}

func TestClassifyCommand_LogsStayOffStdout(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	t.Setenv("MODEL_PROVIDER", "vader")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "debug")

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"classify", "Hi, my name is Bob"})

	require.NoError(t, root.Execute())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp), "stdout must be only the JSON response")
	assert.Contains(t, resp, "sentiment")
	assert.Contains(t, errOut.String(), "[App] Initialized")
}

func TestClassifyCommand_RequiresSentence(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"classify"})

	assert.Error(t, root.Execute())
}

func TestInvalidProviderIsRejected(t *testing.T) {
	t.Setenv("MODEL_PROVIDER", "bard")

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"classify", "hello"})

	assert.Error(t, root.Execute())
}
