package utils

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileMD5(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	err := os.WriteFile(path, []byte("hello"), 0644)
	assert.NoError(t, err)

	sum, err := FileMD5(path)
	assert.NoError(t, err)
	// md5("hello")
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", sum)

	// same content, same digest
	again, err := FileMD5(path)
	assert.NoError(t, err)
	assert.Equal(t, sum, again)

	_, err = FileMD5(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestPortCheck(t *testing.T) {
	ln, err := net.Listen("tcp", "localhost:0")
	assert.NoError(t, err)
	defer ln.Close()

	_, port, err := net.SplitHostPort(ln.Addr().String())
	assert.NoError(t, err)
	assert.True(t, PortCheck(port, 1000))
	assert.False(t, PortCheck("", 100))
}

func TestDoExec(t *testing.T) {
	item := DoExec("echo -n ok", "", nil)
	assert.Equal(t, 0, item.Status)
	assert.Equal(t, "ok", item.Output)

	item = DoExec("exit 3", "", nil)
	assert.Equal(t, 3, item.Status)

	dir := t.TempDir()
	item = DoExec("pwd", dir, nil)
	assert.Equal(t, 0, item.Status)
	assert.Equal(t, dir, strings.TrimSpace(item.Output))
}
