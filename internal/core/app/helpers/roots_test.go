package helpers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommonNamespace(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  string
	}{
		{"shared prefix", []string{`\App\Model\User`, `\App\Service\Mailer`, `\App\helper`}, `\App`},
		{"deep prefix", []string{`\App\Model\User`, `\App\Model\Account`}, `\App\Model`},
		{"global symbol", []string{`\App\Model\User`, `\strlen_ext`}, ""},
		{"disjoint", []string{`\App\User`, `\Lib\Thing`}, ""},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommonNamespace(tt.names))
		})
	}
}

func TestUniqueScanRoots(t *testing.T) {
	dir := t.TempDir()
	roots := UniqueScanRoots([]string{
		filepath.Join(dir, "src"),
		filepath.Join(dir, "src", "..", "src"),
		filepath.Join(dir, "lib"),
	})
	assert.Equal(t, []string{filepath.Join(dir, "lib"), filepath.Join(dir, "src")}, roots)
}
