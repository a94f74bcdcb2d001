package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadDevicesFromFile(t *testing.T) {
	path := writeTemp(t, "devices.ini", `[lab-host-1]
R58M123 = 30
emulator-5554 =

[lab-host-2]
192.168.1.5:5555 = 28`)

	entries, err := readDevicesFromFile(path)

	require.NoError(t, err)
	assert.ElementsMatch(t, []deviceEntry{
		{Host: "lab-host-1", Serial: "R58M123", SDK: 30},
		{Host: "lab-host-1", Serial: "emulator-5554"},
		{Host: "lab-host-2", Serial: "192.168.1.5:5555", SDK: 28},
	}, entries)
}

func TestReadDevicesFromFileBadSDK(t *testing.T) {
	path := writeTemp(t, "devices.ini", "[lab-host-1]\nR58M123 = thirty\n")

	_, err := readDevicesFromFile(path)

	assert.Error(t, err)
}

func TestParseFlags(t *testing.T) {
	f, err := parseFlags([]string{"-serial", "a", "-serial", "b", "-users", "-sdk", "30", "-debug"})

	require.NoError(t, err)
	assert.Equal(t, serialsValue{"a", "b"}, f.Serials)
	assert.True(t, f.ListUsers)
	assert.True(t, f.Debug)
	assert.Equal(t, 30, f.SDK)
	assert.Equal(t, noUser, f.UserID)
	assert.Equal(t, 10, f.Concurrency)
}

func TestCollectEntries(t *testing.T) {
	path := writeTemp(t, "devices.ini", "[lab-host-1]\nR58M123 = 30\n")
	f := &flags{IniFilePath: path, Serials: serialsValue{"emulator-5554"}, SDK: 29}

	entries, err := collectEntries(f)

	require.NoError(t, err)
	assert.Equal(t, []deviceEntry{
		{Host: "lab-host-1", Serial: "R58M123", SDK: 30},
		{Host: "localhost", Serial: "emulator-5554", SDK: 29},
	}, entries)
}

func TestRunWithoutDevices(t *testing.T) {
	err := run(&flags{UserID: noUser}, &bytes.Buffer{})

	assert.Error(t, err)
}

func dumpPath(name string) string {
	return filepath.Join("..", "..", "droidcheck", "usermanager", "testdata", name)
}

func TestParseDumpFile(t *testing.T) {
	var out bytes.Buffer
	f := &flags{DumpFile: dumpPath("dumpsys_user_26.txt"), SDK: 28, UserID: noUser}

	require.NoError(t, parseDumpFile(f, &out))

	var r struct {
		SDK   int `json:"sdk"`
		Users struct {
			Users []struct {
				ID    int    `json:"id"`
				State string `json:"state"`
			} `json:"users"`
		} `json:"users"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &r))
	assert.Equal(t, 28, r.SDK)
	require.Len(t, r.Users.Users, 2)
	assert.Equal(t, 0, r.Users.Users[0].ID)
	assert.Equal(t, 10, r.Users.Users[1].ID)
}

func TestParseDumpFileSingleUser(t *testing.T) {
	var out bytes.Buffer
	f := &flags{DumpFile: dumpPath("dumpsys_user_30.txt"), SDK: 30, UserID: 10}

	require.NoError(t, parseDumpFile(f, &out))

	var r struct {
		User struct {
			ID     int    `json:"id"`
			Type   string `json:"type"`
			Parent int    `json:"parent"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &r))
	assert.Equal(t, 10, r.User.ID)
	assert.Equal(t, "android.os.usertype.profile.MANAGED", r.User.Type)
	assert.Equal(t, 0, r.User.Parent)
}

func TestParseDumpFileErrors(t *testing.T) {
	tests := []struct {
		name string
		f    *flags
	}{
		{"missing sdk", &flags{DumpFile: dumpPath("dumpsys_user_26.txt"), UserID: noUser}},
		{"unsupported sdk", &flags{DumpFile: dumpPath("dumpsys_user_26.txt"), SDK: 23, UserID: noUser}},
		{"missing file", &flags{DumpFile: "does-not-exist.txt", SDK: 30, UserID: noUser}},
		{"unknown user", &flags{DumpFile: dumpPath("dumpsys_user_26.txt"), SDK: 28, UserID: 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, parseDumpFile(tt.f, &bytes.Buffer{}))
		})
	}
}
