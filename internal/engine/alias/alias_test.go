package alias

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirectives(t *testing.T) {
	src := `<?php
namespace App\Model;

use App\Foo;
use Vendor\Lib\Client as HttpClient;
use function App\Util\helper;
use const App\Config\LIMIT;
use App\Shape\{Circle, Square as Box};
use App\A, App\B as Bee;

class User {}
`
	got := ParseDirectives(src)
	require.Len(t, got, 8)

	assert.Equal(t, Directive{Path: "\\App\\Foo", Alias: "Foo"}, got[0])
	assert.Equal(t, Directive{Path: "\\Vendor\\Lib\\Client", Alias: "HttpClient"}, got[1])
	assert.Equal(t, Directive{Path: "\\App\\Util\\helper", Alias: "helper", Kind: "function"}, got[2])
	assert.Equal(t, Directive{Path: "\\App\\Config\\LIMIT", Alias: "LIMIT", Kind: "const"}, got[3])
	assert.Equal(t, Directive{Path: "\\App\\Shape\\Circle", Alias: "Circle"}, got[4])
	assert.Equal(t, Directive{Path: "\\App\\Shape\\Square", Alias: "Box"}, got[5])
	assert.Equal(t, Directive{Path: "\\App\\A", Alias: "A"}, got[6])
	assert.Equal(t, Directive{Path: "\\App\\B", Alias: "Bee"}, got[7])
}

func TestParseDirectives_Empty(t *testing.T) {
	assert.Empty(t, ParseDirectives(""))
	assert.Empty(t, ParseDirectives("<?php\nclass Nothing {}\n"))
}

func TestBuilder_RegistersBothKeys(t *testing.T) {
	b := NewBuilder([]Unit{{
		Name:   "App\\Model\\User",
		Source: "use Vendor\\Lib\\Client as HttpClient;\nuse App\\Foo;",
	}})
	table := b.Build("\\App\\Model\\User")

	assert.Equal(t, "\\Vendor\\Lib\\Client", table.Resolve("HttpClient"))
	assert.Equal(t, "\\Vendor\\Lib\\Client", table.Resolve("\\HttpClient"))
	assert.Equal(t, "\\App\\Foo", table.Resolve("Foo"))
	assert.Equal(t, "\\App\\Foo", table.Resolve("\\Foo"))
	assert.Equal(t, "Missing", table.Resolve("Missing"))
}

func TestBuilder_TraitComposition(t *testing.T) {
	b := NewBuilder([]Unit{
		{Name: "\\App\\User", Source: "use App\\Foo;", Traits: []string{"\\App\\Concerns\\HasMail"}},
		{Name: "\\App\\Concerns\\HasMail", Source: "use App\\Mail\\Mailer;", Traits: []string{"\\App\\Concerns\\Loops"}},
		{Name: "\\App\\Concerns\\Loops", Source: "use App\\Loop;", Traits: []string{"\\App\\Concerns\\HasMail"}},
	})
	table := b.Build("\\App\\User")

	assert.Equal(t, "\\App\\Foo", table.Resolve("Foo"))
	assert.Equal(t, "\\App\\Mail\\Mailer", table.Resolve("Mailer"))
	assert.Equal(t, "\\App\\Loop", table.Resolve("Loop"))
}

func TestBuilder_OwnImportsWinOverTraitImports(t *testing.T) {
	b := NewBuilder([]Unit{
		{Name: "\\App\\User", Source: "use App\\Foo;", Traits: []string{"\\App\\HasFoo", "\\App\\HasBar"}},
		{Name: "\\App\\HasFoo", Source: "use Vendor\\Foo;\nuse Vendor\\Bar;"},
		{Name: "\\App\\HasBar", Source: "use Other\\Bar;\nuse Other\\Baz;"},
	})
	table := b.Build("\\App\\User")

	assert.Equal(t, "\\App\\Foo", table.Resolve("Foo"))
	assert.Equal(t, "\\App\\Foo", table.Resolve("\\Foo"))
	assert.Equal(t, "\\Vendor\\Bar", table.Resolve("Bar"))
	assert.Equal(t, "\\Other\\Baz", table.Resolve("Baz"))

	// The trait's own table is unaffected by its users.
	assert.Equal(t, "\\Vendor\\Foo", b.Build("\\App\\HasFoo").Resolve("Foo"))
}

func TestBuilder_MissingSourceYieldsEmptyTable(t *testing.T) {
	b := NewBuilder([]Unit{{Name: "\\App\\Ghost"}})
	table := b.Build("\\App\\Ghost")
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 0, b.Build("\\Not\\Registered").Len())
}

func TestMergeSiblingDefaults_ExplicitAliasWins(t *testing.T) {
	b := NewBuilder([]Unit{
		{Name: "\\App\\Model\\User", Source: "use App\\Foo;"},
		{Name: "\\App\\Model\\Foo"},
		{Name: "\\App\\Model\\Account"},
		{Name: "\\App\\Service\\Mailer"},
	})
	tables := b.BuildAll()

	user := tables["\\App\\Model\\User"]
	assert.Equal(t, "\\App\\Foo", user.Resolve("Foo"))
	assert.Equal(t, "\\App\\Foo", user.Resolve("\\Foo"))
	assert.Equal(t, "\\App\\Model\\Account", user.Resolve("Account"))
	assert.Equal(t, "\\App\\Model\\Account", user.Resolve("\\Account"))
	assert.Equal(t, "Mailer", user.Resolve("Mailer"))

	account := tables["\\App\\Model\\Account"]
	assert.Equal(t, "\\App\\Model\\Foo", account.Resolve("Foo"))
	assert.Equal(t, "\\App\\Model\\User", account.Resolve("User"))

	mailer := tables["\\App\\Service\\Mailer"]
	assert.Equal(t, "User", mailer.Resolve("User"))
}

func TestTable_AddDefault(t *testing.T) {
	table := NewTable()
	table.Add("Foo", "\\A\\Foo")
	assert.False(t, table.AddDefault("Foo", "\\B\\Foo"))
	assert.True(t, table.AddDefault("Bar", "\\B\\Bar"))
	assert.Equal(t, []string{"Bar", "Foo"}, table.Keys())

	var nilTable *Table
	assert.Equal(t, "X", nilTable.Resolve("X"))
}
