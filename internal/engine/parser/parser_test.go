package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"refdoc/internal/engine/symbol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userSource = `<?php

namespace App\Model;

use App\Service\Mailer;
use App\Support\{Collection, Clock as Time};

/**
 * A registered user.
 */
abstract class User
{
    use Concerns\HasEvents, \App\Support\Loggable;

    /** Maximum name length. */
    public const MAX_NAME = 64;
    private const SECRET = 'x';

    /** @var Collection<Account> */
    public Collection $accounts;
    public static int $count = 0;
    private string $hash;

    public function __construct(public readonly string $name, private int $age = 0)
    {
    }

    /**
     * Sends a message.
     */
    public function notify(Mailer $mailer, ?int $limit = 10, string ...$tags): bool
    {
        return true;
    }

    private function secret(): void {}

    public function __toString(): string { return $this->name; }

    abstract public function id(): int;
}

interface Named
{
    public function name(): string;
}

trait Greets
{
    public function greet(&$target) {}
}

/**
 * Global helper.
 */
function helper(array $items = []): ?User
{
    return null;
}
`

func parseFixture(t *testing.T, src string) *File {
	t.Helper()
	file, err := NewPHPParser().ParseFile(context.Background(), "User.php", []byte(src))
	require.NoError(t, err)
	require.NotNil(t, file)
	return file
}

func TestPHPParser_ClassLikes(t *testing.T) {
	file := parseFixture(t, userSource)
	require.Len(t, file.Classes, 3)
	assert.NotEmpty(t, file.Hash)

	user := file.Classes[0]
	assert.Equal(t, "\\App\\Model\\User", user.Name)
	assert.Equal(t, symbol.KindClass, user.Kind)
	assert.True(t, user.Abstract)
	assert.Equal(t, "\\App\\Model", user.Namespace)
	assert.Contains(t, user.Doc, "A registered user.")
	assert.Contains(t, user.Imports, "use App\\Service\\Mailer;")
	assert.Equal(t, []string{"\\App\\Model\\Concerns\\HasEvents", "\\App\\Support\\Loggable"}, user.Traits)
	assert.Equal(t, 11, user.Location.Line)

	named := file.Classes[1]
	assert.Equal(t, "\\App\\Model\\Named", named.Name)
	assert.Equal(t, symbol.KindInterface, named.Kind)
	require.Len(t, named.Methods, 1)
	assert.True(t, named.Methods[0].Abstract)

	greets := file.Classes[2]
	assert.Equal(t, symbol.KindTrait, greets.Kind)
	require.Len(t, greets.Methods, 1)
	require.Len(t, greets.Methods[0].Params, 1)
	assert.True(t, greets.Methods[0].Params[0].ByRef)
	assert.Equal(t, "$target", greets.Methods[0].Params[0].Name)
}

func TestPHPParser_Members(t *testing.T) {
	user := parseFixture(t, userSource).Classes[0]

	require.Len(t, user.Constants, 1)
	assert.Equal(t, "MAX_NAME", user.Constants[0].Name)
	assert.Equal(t, "64", user.Constants[0].Value)
	assert.Contains(t, user.Constants[0].Doc, "Maximum name length.")

	names := make([]string, 0, len(user.Properties))
	for _, p := range user.Properties {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"$accounts", "$name"}, names)
	assert.Equal(t, "Collection", user.Properties[0].Type)
	assert.Contains(t, user.Properties[0].Doc, "@var Collection<Account>")
	assert.Equal(t, "string", user.Properties[1].Type)

	methods := make([]string, 0, len(user.Methods))
	for _, m := range user.Methods {
		methods = append(methods, m.Name)
	}
	assert.Equal(t, []string{"__construct", "notify", "id"}, methods)

	notify := user.Methods[1]
	assert.Equal(t, "bool", notify.ReturnType)
	assert.Contains(t, notify.Doc, "Sends a message.")
	require.Len(t, notify.Params, 3)
	assert.Equal(t, ParamDecl{Name: "$mailer", Type: "Mailer"}, notify.Params[0])
	assert.Equal(t, ParamDecl{Name: "$limit", Type: "?int", Optional: true, Default: "10"}, notify.Params[1])
	assert.Equal(t, ParamDecl{Name: "$tags", Type: "string", Variadic: true}, notify.Params[2])

	assert.True(t, user.Methods[2].Abstract)
}

func TestPHPParser_Functions(t *testing.T) {
	file := parseFixture(t, userSource)
	require.Len(t, file.Functions, 1)

	fn := file.Functions[0]
	assert.Equal(t, "\\App\\Model\\helper", fn.Name)
	assert.Equal(t, "?User", fn.ReturnType)
	assert.Contains(t, fn.Doc, "Global helper.")
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "[]", fn.Params[0].Default)
	assert.True(t, fn.Params[0].Optional)
}

func TestPHPParser_BracedNamespaces(t *testing.T) {
	src := `<?php
namespace App\One {
    use App\Two\Thing;
    class First {}
}
namespace App\Two {
    class Thing {}
}
namespace {
    class Root {}
}
`
	file := parseFixture(t, src)
	require.Len(t, file.Classes, 3)
	assert.Equal(t, "\\App\\One\\First", file.Classes[0].Name)
	assert.Contains(t, file.Classes[0].Imports, "App\\Two\\Thing")
	assert.Equal(t, "\\App\\Two\\Thing", file.Classes[1].Name)
	assert.Empty(t, file.Classes[1].Imports)
	assert.Equal(t, "\\Root", file.Classes[2].Name)
}

func TestResolveClassName(t *testing.T) {
	imports := "use App\\Support\\Loggable;\nuse App\\Concerns as C;\nuse function App\\helper;"
	assert.Equal(t, "\\App\\Support\\Loggable", resolveClassName("Loggable", "\\App\\Model", imports))
	assert.Equal(t, "\\App\\Concerns\\HasEvents", resolveClassName("C\\HasEvents", "\\App\\Model", imports))
	assert.Equal(t, "\\Vendor\\X", resolveClassName("\\Vendor\\X", "\\App\\Model", imports))
	assert.Equal(t, "\\App\\Model\\helper", resolveClassName("helper", "\\App\\Model", imports))
	assert.Equal(t, "\\Plain", resolveClassName("Plain", "", ""))
}

func TestSource_Discover(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("Model/User.php", "<?php\nnamespace App\\Model;\nclass User {}\n")
	write("Model/Account.php", "<?php\nnamespace App\\Model;\nclass Account {}\n")
	write("vendor/lib/Lib.php", "<?php\nclass Lib {}\n")
	write("Model/notes.txt", "not php")
	write("Model/UserTest.php", "<?php\nclass UserTest {}\n")

	src, err := NewSource(SourceConfig{
		Roots:        []string{root},
		ExcludeDirs:  []string{"vendor"},
		ExcludeFiles: []string{"*Test.php"},
		Workers:      2,
	}, nil)
	require.NoError(t, err)

	paths, err := src.Files(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "Model", "Account.php"),
		filepath.Join(root, "Model", "User.php"),
	}, paths)

	files, err := src.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "\\App\\Model\\Account", files[0].Classes[0].Name)
	assert.Equal(t, "\\App\\Model\\User", files[1].Classes[0].Name)
}

func TestSource_InvalidPatterns(t *testing.T) {
	_, err := NewSource(SourceConfig{Include: []string{"[unterminated"}}, nil)
	assert.Error(t, err)

	src, err := NewSource(SourceConfig{Roots: []string{filepath.Join(t.TempDir(), "missing")}}, nil)
	require.NoError(t, err)
	_, err = src.Files(context.Background())
	assert.Error(t, err)
}
