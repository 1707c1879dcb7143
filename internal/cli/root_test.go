package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombowditch/codedump/client"
	"github.com/tombowditch/codedump/internal/config"
	"github.com/tombowditch/codedump/internal/fakeapi"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	color.NoColor = true
	for _, env := range []string{config.EnvTokenKey, config.EnvTokenSecret, config.EnvBaseURL, config.EnvTimeout, config.EnvPreCheck} {
		t.Setenv(env, "")
	}

	var stdout, stderr bytes.Buffer
	root := New("test")
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--env-file", ""}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func startAPI(t *testing.T) (*fakeapi.Server, []string) {
	t.Helper()
	api := fakeapi.New(fakeapi.Config{})
	srv := api.Start()
	t.Cleanup(srv.Close)
	return api, []string{"--base-url", srv.URL + "/api", "--key", "test-key", "--secret", "test-secret"}
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "test\n", out)
}

func TestVersionIgnoresBrokenConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codedump.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: soon\n"), 0o600))

	out, _, err := run(t, "--config", path, "version")
	require.NoError(t, err)
	assert.Equal(t, "test\n", out)

	_, _, err = run(t, "--config", path, "access")
	assert.ErrorContains(t, err, "parsing timeout")
}

func TestLanguages(t *testing.T) {
	_, flags := startAPI(t)

	out, _, err := run(t, append(flags, "languages")...)
	require.NoError(t, err)
	var langs []string
	require.NoError(t, json.Unmarshal([]byte(out), &langs))
	assert.Equal(t, []string{"php", "python", "go"}, langs)
}

func TestAddCode(t *testing.T) {
	api, flags := startAPI(t)

	out, _, err := run(t, append(flags, "add", "--title", "hi", "--language", "go", "--code", "x := 1")...)
	require.NoError(t, err)
	dumps := api.Dumps("test-key")
	require.Len(t, dumps, 1)
	assert.Equal(t, dumps[0].URL, strings.TrimSpace(out))
	assert.Equal(t, "public", dumps[0].Access)
}

func TestAddFileWithPreCheck(t *testing.T) {
	api, flags := startAPI(t)
	path := filepath.Join(t.TempDir(), "main.py")
	require.NoError(t, os.WriteFile(path, []byte("print(1)\n"), 0o600))

	_, _, err := run(t, append(flags, "--precheck", "add", "--title", "py", "--language", "python", "--file", path)...)
	require.NoError(t, err)
	assert.Equal(t, []string{"access/get", "languages/get", "code/add"}, api.Commands())
	assert.Equal(t, "print(1)\n", api.Dumps("test-key")[0].Code)
}

func TestAddRequiresOneSource(t *testing.T) {
	api, flags := startAPI(t)

	_, _, err := run(t, append(flags, "add", "--title", "hi", "--language", "go")...)
	assert.ErrorContains(t, err, "exactly one of --code or --file")
	assert.Empty(t, api.Requests())
}

func TestDumps(t *testing.T) {
	_, flags := startAPI(t)

	_, _, err := run(t, append(flags, "add", "--title", "one", "--language", "php", "--code", "<?php")...)
	require.NoError(t, err)

	out, _, err := run(t, append(flags, "dumps")...)
	require.NoError(t, err)
	var dumps []client.Dump
	require.NoError(t, json.Unmarshal([]byte(out), &dumps))
	require.Len(t, dumps, 1)
	assert.Equal(t, "one", dumps[0].Title)
}

func TestNoAPIKey(t *testing.T) {
	_, stderr, err := run(t, "access")
	assert.True(t, client.IsNoAPIKey(err), "got %v", err)
	assert.Contains(t, stderr, "No API key defined")
}

func TestConfigFile(t *testing.T) {
	api := fakeapi.New(fakeapi.Config{Key: "file-key", Secret: "file-secret"})
	srv := api.Start()
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "codedump.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: file-key\napi_secret: file-secret\nbase_url: "+srv.URL+"/api\n"), 0o600))

	out, _, err := run(t, "--config", path, "access")
	require.NoError(t, err)
	assert.JSONEq(t, `["public","private"]`, out)
}
