package finding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"main.tf", "main.tf"},
		{"./src/app.py", "src/app.py"},
		{"../../scan/modules/vpc.tf", "modules/vpc.tf"},
		{"/scan/Dockerfile", "Dockerfile"},
		{"/src/app/views.py", "app/views.py"},
		{`src\win\file.go`, "src/win/file.go"},
		{"  k8s/deploy.yaml ", "k8s/deploy.yaml"},
		{"scan/handler.go", "scan/handler.go"},
		{"./scan/handler.go", "scan/handler.go"},
		{"src/main.go", "src/main.go"},
		{"../src/lib.py", "lib.py"},
		{"/github/workspace/cmd/main.go", "cmd/main.go"},
		{"/opt/app/main.go", "/opt/app/main.go"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePath(tt.input))
		})
	}
}

func TestLocation(t *testing.T) {
	loc := NewLocation("./main.tf", 7)
	assert.Equal(t, "main.tf", loc.File())
	assert.Equal(t, 7, loc.Line())
	assert.True(t, loc.HasFile())
	assert.True(t, loc.HasLine())
	assert.Equal(t, "main.tf:7", loc.String())

	noLine := NewLocation("package-lock.json", -3)
	assert.Equal(t, 0, noLine.Line())
	assert.False(t, noLine.HasLine())
	assert.Equal(t, "package-lock.json", noLine.String())

	empty := NewLocation("", 10)
	assert.False(t, empty.HasFile())
	assert.False(t, empty.HasLine())
}

func TestCategory(t *testing.T) {
	c, err := ParseCategory("IaC")
	assert.NoError(t, err)
	assert.Equal(t, CategoryIaC, c)
	assert.Equal(t, "iac", c.String())

	_, err = ParseCategory("bogus")
	assert.Error(t, err)
}
