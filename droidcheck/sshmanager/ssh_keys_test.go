package sshmanager

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKey(t *testing.T, dir, name string) {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	block := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), block, 0600))
}

func TestFileKeyManagerReadsKeys(t *testing.T) {
	dir := t.TempDir()
	writeKey(t, dir, "id_ed25519")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "id_ed25519.pub"), []byte("ignored"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "id_broken"), []byte("not a key"), 0600))

	signers, err := FileKeyManager{Dir: dir}.ReadPrivateKeys("")
	require.NoError(t, err)
	assert.Len(t, signers, 1)
}

func TestFileKeyManagerNoKeys(t *testing.T) {
	_, err := FileKeyManager{Dir: t.TempDir()}.ReadPrivateKeys("")
	assert.ErrorIs(t, err, ErrNoUsableKeys)
}

func TestClientConfigPassword(t *testing.T) {
	cfg, err := ClientConfig("lab", "secret", "")
	require.NoError(t, err)
	assert.Equal(t, "lab", cfg.User)
	assert.Len(t, cfg.Auth, 1)
}
