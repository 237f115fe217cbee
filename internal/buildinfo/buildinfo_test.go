package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// These tests mutate package variables, so they do not run in parallel.

func TestRelease(t *testing.T) {
	defer func(v, c string) { Version, Commit = v, c }(Version, Commit)

	tests := []struct {
		name    string
		version string
		commit  string
		want    string
	}{
		{"version wins", "v1.2.0", "0123456789abcdef", "v1.2.0"},
		{"short commit", "", "0123456789abcdef", "0123456"},
		{"tiny commit", "", "abc", "abc"},
		{"nothing injected", "", "", "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit = tt.version, tt.commit
			assert.Equal(t, tt.want, Release())
		})
	}
}

func TestFields(t *testing.T) {
	defer func(v string) { Version = v }(Version)
	Version = "v0.1.0"

	f := Fields()
	assert.Equal(t, "v0.1.0", f["version"])
	assert.Contains(t, f, "commit")
	assert.Contains(t, f, "build_date")
}
