package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"App\\Model\\User", "\\App\\Model\\User"},
		{"\\App\\Model\\User", "\\App\\Model\\User"},
		{"  \\\\App\\User ", "\\App\\User"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestNamespaceAndBasename(t *testing.T) {
	assert.Equal(t, "\\App\\Model", Namespace("\\App\\Model\\User"))
	assert.Equal(t, "", Namespace("\\Thing"))
	assert.Equal(t, "User", Basename("\\App\\Model\\User"))
	assert.Equal(t, []string{"App", "Model", "User"}, Segments("\\App\\Model\\User"))
	assert.Nil(t, Segments("\\"))
}

func TestNew(t *testing.T) {
	s := New("App\\Service\\Mailer", KindClass, WithAbstract(true), WithLocation("src/Service/Mailer.php", 12))
	assert.Equal(t, "\\App\\Service\\Mailer", s.Name())
	assert.Equal(t, "\\App\\Service", s.Namespace())
	assert.Equal(t, "Mailer", s.Basename())
	assert.True(t, s.Abstract())
	assert.Equal(t, 12, s.Line())
	assert.Equal(t, "class", s.Kind().String())
}

func TestIsScalar(t *testing.T) {
	for _, name := range []string{"int", "class-string", "array-key", "list", "self", "null"} {
		assert.True(t, IsScalar(name), name)
	}
	for _, name := range []string{"Foo", "\\int", "Int", "resource-ish"} {
		assert.False(t, IsScalar(name), name)
	}
}

func TestFilter(t *testing.T) {
	f, err := NewFilter([]string{`*\Internal\*`, `App\Legacy\Old*`, ""})
	require.NoError(t, err)

	assert.True(t, f.Match(`\App\Internal\Cache`))
	assert.True(t, f.Match(`App\Sub\Internal\Deep\Thing`))
	assert.True(t, f.Match(`\App\Legacy\OldMailer`))
	assert.False(t, f.Match(`\App\Legacy\NewMailer`))
	assert.False(t, f.Match(`\App\Model\User`))

	var none *Filter
	assert.False(t, none.Match(`\App\Internal\Cache`))

	_, err = NewFilter([]string{`App\[`})
	assert.Error(t, err)
}
