package pathutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantErr   bool
		errContains string
	}{
		{
			name:    "valid simple path",
			path:    "main.go",
			wantErr: false,
		},
		{
			name:    "valid absolute path",
			path:    "/tmp/test.go",
			wantErr: false,
		},
		{
			name:    "valid path with subdirectory",
			path:    "internal/domain/finding.go",
			wantErr: false,
		},
		{
			name:        "empty path",
			path:        "",
			wantErr:     true,
			errContains: "path cannot be empty",
		},
		{
			name:        "path with null bytes",
			path:        "test\x00.go",
			wantErr:     true,
			errContains: "null bytes",
		},
		{
			name:    "path with dots cleaned",
			path:    "./test/../main.go",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidatePath(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, result)
			}
		})
	}
}

func TestValidatePath_CleansPath(t *testing.T) {
	result, err := ValidatePath("./test/../main.go")
	require.NoError(t, err)
	assert.Equal(t, "main.go", result)
}

func TestValidatePathInDir(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name        string
		path        string
		baseDir     string
		wantErr     bool
		errContains string
	}{
		{
			name:    "valid path within directory",
			path:    filepath.Join(tmpDir, "subdir", "file.go"),
			baseDir: tmpDir,
			wantErr: false,
		},
		{
			name:    "path equals base directory",
			path:    tmpDir,
			baseDir: tmpDir,
			wantErr: false,
		},
		{
			name:        "path escapes base directory",
			path:        filepath.Join(tmpDir, "..", "escape.go"),
			baseDir:     tmpDir,
			wantErr:     true,
			errContains: "escapes base directory",
		},
		{
			name:        "empty path",
			path:        "",
			baseDir:     tmpDir,
			wantErr:     true,
			errContains: "path cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidatePathInDir(tt.path, tt.baseDir)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, result)
			}
		})
	}
}

func TestRepoRelative(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{name: "plain", path: "app/main.py", want: "app/main.py"},
		{name: "dot prefix", path: "./app/main.py", want: "app/main.py"},
		{name: "absolute", path: "/scan/Dockerfile", want: "scan/Dockerfile"},
		{name: "windows separators", path: "src\\db\\query.cs", want: "src/db/query.cs"},
		{name: "empty", path: "", wantErr: ErrEmptyPath},
		{name: "dot only", path: "./", wantErr: ErrEmptyPath},
		{name: "null byte", path: "a\x00b", wantErr: ErrNullBytes},
		{name: "traversal", path: "../../etc/passwd", wantErr: ErrPathEscapesBase},
		{name: "inner traversal", path: "app/../../secret", wantErr: ErrPathEscapesBase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RepoRelative(tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
