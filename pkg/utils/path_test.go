package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextFileName(t *testing.T) {
	tests := map[string]string{
		"report.docx":        "report.txt",
		"archive.tar.zip":    "archive.tar.txt",
		"README":             "README.txt",
		".bashrc":            ".bashrc.txt",
		"dir/sub/page.html":  "page.txt",
		`C:\docs\deck.pptx`:  "deck.txt",
		"":                   "converted.txt",
		"Quarterly Plan.pdf": "Quarterly Plan.txt",
	}
	for in, want := range tests {
		assert.Equal(t, want, TextFileName(in), in)
	}
}

func TestClientBaseName(t *testing.T) {
	assert.Equal(t, "a.txt", ClientBaseName("a.txt"))
	assert.Equal(t, "a.txt", ClientBaseName("/tmp/x/a.txt"))
	assert.Equal(t, "a.txt", ClientBaseName(`..\..\a.txt`))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/notes")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "notes"), got)

	t.Setenv("FILE_TO_TEXT_TEST_DIR", "/srv/data")
	got, err = ExpandPath("$FILE_TO_TEXT_TEST_DIR/in")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/srv/data/in"), got)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "unnamed_file", SanitizeFileName("  "))
	assert.NotContains(t, SanitizeFileName("a/b"), "/")
}

func TestFindExecutable(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "tool")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))
	plain := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0o644))

	if !IsExecutable(bin) {
		t.Skip("executable bits are not supported on this platform")
	}

	got, err := FindExecutable("", plain, bin)
	require.NoError(t, err)
	assert.Equal(t, bin, got)

	_, err = FindExecutable(filepath.Join(dir, "missing"), "definitely-not-a-real-binary-name")
	assert.Equal(t, ErrorTypeNotFound, GetErrorType(err))
}
