package cirfile

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePath(t *testing.T) {
	tempDir := t.TempDir()
	homeDir := t.TempDir()
	policy := PathPolicy{HomeDir: homeDir, TempDir: tempDir}

	var tests = []struct {
		path        string
		shouldError bool
	}{
		{"testdata/invalid.cf", true},
		{"testdata/invalid", true},
		{"", true},
		{"/", true},
		{"invalid.cf", true},
		{"/invalid.cf", true},
		{filepath.Join(tempDir, "no-such-file"), true},
		{filepath.Join(tempDir, "should-succeed.cf"), false},
		{filepath.Join(tempDir, "should-succeed.ptyout.cf"), false},
		{filepath.Join(tempDir, "should-fail.x.ptyout.cf"), true},
		{filepath.Join(tempDir, ".cf"), true},
		{filepath.Join(tempDir, "sub", "dir", "nested.cf"), false},
		{tempDir + "/../escape.cf", true},
		{filepath.Join(homeDir, "no-such-file"), true},
		{filepath.Join(homeDir, "should-succeed.cf"), false},
		{filepath.Join(homeDir, "screens", "s1", "l1.ptyout.cf"), false},
		{tempDir + "-sibling/prefix.cf", true},
	}
	for _, tt := range tests {
		err := policy.Validate(tt.path)
		if tt.shouldError {
			assert.True(t, errors.Is(err, ErrInvalidPath), "path[%s] err[%v]", tt.path, err)
		} else {
			assert.Nil(t, err, "path[%s]", tt.path)
		}
	}
}

func TestPathError(t *testing.T) {
	err := PathPolicy{}.Validate("invalid.cf")
	var pathErr *PathError
	assert.True(t, errors.As(err, &pathErr))
	assert.Equal(t, "invalid.cf", pathErr.Path)
	assert.Contains(t, err.Error(), "invalid.cf")
}

func TestDefaultHomeDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeVarName, dir)
	assert.Equal(t, dir, DefaultHomeDir())
	assert.Equal(t, dir, DefaultPathPolicy().HomeDir)
}
