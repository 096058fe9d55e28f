package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityMover/internal/db"
)

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "citymover version dev\n", out.String())
}

func TestPrintStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "city_app.db")
	var out bytes.Buffer
	require.NoError(t, printStatus(context.Background(), &out, path))

	var st db.Status
	require.NoError(t, json.Unmarshal(out.Bytes(), &st))
	assert.Equal(t, db.StatusHealthy, st.Status)
	assert.Equal(t, path, st.DBFile)
	assert.Equal(t, int64(2), st.UserCount)
	assert.Contains(t, st.Tables, "properties")
}

func TestMigrateDown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "city_app.db")
	var out bytes.Buffer
	require.NoError(t, migrateDown(context.Background(), &out, path))
	assert.True(t, strings.Contains(out.String(), "rolled back migration 0002"), out.String())
}

func TestStatusCommand_UsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "citymover.yaml")
	dbPath := filepath.Join(dir, "from-yaml.db")
	yaml := "database:\n  path: " + dbPath + "\nauth:\n  jwt_secret: s\n"
	require.NoError(t, os.WriteFile(conf, []byte(yaml), 0o600))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--conf", conf, "status"})
	t.Cleanup(func() { configPath = "" })
	require.NoError(t, cmd.Execute())
	assert.Equal(t, dbPath, jsonField(t, out.Bytes(), "db_file"))
}

func jsonField(t *testing.T, data []byte, key string) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	s, _ := m[key].(string)
	return s
}
