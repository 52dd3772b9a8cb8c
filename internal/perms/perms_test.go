package perms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPermissionConstants(t *testing.T) {
	t.Parallel()

	require.Equal(t, os.FileMode(0o644), RegularFile)
	require.Equal(t, os.FileMode(0o755), RegularDir)
	require.Zero(t, RegularFile&0o111, "files should not be executable")
	require.Zero(t, RegularFile&0o022, "files should only be writable by the owner")
}

func TestCreatedPermissions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		create func(path string) error
		want   os.FileMode
		isDir  bool
	}{
		{
			name: "file",
			create: func(path string) error {
				return os.WriteFile(path, []byte("x"), RegularFile)
			},
			want: RegularFile,
		},
		{
			name: "nested directory",
			create: func(path string) error {
				return os.MkdirAll(filepath.Join(path, "docs"), RegularDir)
			},
			want:  RegularDir,
			isDir: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "target")
			require.NoError(t, tc.create(path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			require.Equal(t, tc.isDir, info.IsDir())
			require.Equal(t, tc.want, info.Mode().Perm())
		})
	}
}
