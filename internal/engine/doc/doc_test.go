package doc

import (
	"testing"

	"refdoc/internal/engine/alias"
	"refdoc/internal/engine/parser"
	"refdoc/internal/engine/resolver"
	"refdoc/internal/engine/symbol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userImports = "use App\\Service\\Mailer;\nuse App\\Support\\Collection;\n"

func newTestBuilder() *Builder {
	tables := alias.NewBuilder([]alias.Unit{
		{Name: "\\App\\Model\\User", Source: userImports},
		{Name: "\\App\\Model\\Account"},
		{Name: "\\App\\Model\\format", Source: userImports},
	}).BuildAll()
	return NewBuilder(resolver.NewResolver(tables), []string{"Team <team@example.com>"})
}

func userDecl() parser.ClassDecl {
	return parser.ClassDecl{
		Name: "\\App\\Model\\User",
		Kind: symbol.KindClass,
		Doc: `/**
 * A registered user.
 *
 * Users own accounts.
 *
 * @author Jane <jane@example.com>
 * @author Team <team@example.com>
 * @see https://example.com/users
 * @property-read int $id Identifier
 */`,
		Constants: []parser.ConstantDecl{
			{Name: "MAX", Value: "64", Doc: "/** Upper bound. */"},
			{Name: "HIDDEN", Value: "1", Doc: "/** @internal */"},
		},
		Properties: []parser.PropertyDecl{
			{Name: "$accounts", Type: "array", Doc: "/** @var Collection<Account> Linked accounts */"},
			{Name: "$nickname", Doc: "/** Optional nickname. */"},
		},
		Methods: []parser.FunctionDecl{
			{
				Name: "__construct",
				Params: []parser.ParamDecl{
					{Name: "$name", Type: "string"},
				},
				ReturnType: "",
			},
			{
				Name: "notify",
				Doc: `/**
 * Sends a message.
 *
 * @param Mailer $mailer Transport
 * @psalm-param Mailer|null $mailer Transport or none
 * @param int $unknown Not a parameter
 * @return self|Account The account notified
 */`,
				Params: []parser.ParamDecl{
					{Name: "$mailer"},
					{Name: "$tags", Type: "string", Variadic: true},
					{Name: "$limit", Type: "int", Optional: true, Default: "10"},
				},
				ReturnType: "bool",
			},
			{Name: "legacy", Doc: "/** @deprecated */"},
		},
	}
}

func TestBuilder_Class(t *testing.T) {
	d := newTestBuilder().Class(userDecl())
	require.False(t, d.Ignore)
	require.NotNil(t, d.Class)
	assert.Nil(t, d.Callable)

	assert.Equal(t, symbol.KindClass, d.Kind)
	assert.Equal(t, "\\App\\Model\\User", d.Name)
	assert.Equal(t, "A registered user.", d.Title)
	assert.Equal(t, "Users own accounts.", d.Description)
	assert.Equal(t, []string{"Team <team@example.com>", "Jane <jane@example.com>"}, d.Authors)

	require.Len(t, d.Class.Constants, 1)
	assert.Equal(t, Constant{Name: "MAX", Value: "64", Description: "Upper bound."}, d.Class.Constants[0])

	assert.Equal(t, []Property{
		{Name: "accounts", Type: "\\App\\Support\\Collection<\\App\\Model\\Account>", Description: "Linked accounts"},
		{Name: "nickname", Type: "mixed", Description: "Optional nickname."},
		{Name: "id", Type: "int", Description: "Identifier"},
	}, d.Class.Properties)

	assert.Equal(t, []string{
		"https://example.com/users",
		"\\App\\Model\\Account",
		"\\App\\Support\\Collection",
	}, d.SeeAlso)

	require.Len(t, d.Class.Methods, 2)
	assert.Equal(t, "__construct", d.Class.Methods[0].Name)
	assert.Nil(t, d.Class.Methods[0].Callable.Return)
}

func TestBuilder_Method(t *testing.T) {
	d := newTestBuilder().Class(userDecl())
	notify := d.Class.Methods[1]

	assert.Equal(t, symbol.KindMethod, notify.Kind)
	assert.Equal(t, "\\App\\Model\\User", notify.Owner())
	require.NotNil(t, notify.Callable)
	require.Len(t, notify.Callable.Params, 3)

	mailer := notify.Callable.Params[0]
	assert.Equal(t, "\\App\\Service\\Mailer|null", mailer.Type)
	assert.Equal(t, "Transport or none", mailer.Description)

	require.NotNil(t, notify.Callable.Return)
	assert.Equal(t, "self|\\App\\Model\\Account", notify.Callable.Return.Type)
	assert.Equal(t, "The account notified", notify.Callable.Return.Description)

	assert.Equal(t, []string{"\\App\\Service\\Mailer", "\\App\\Model\\Account"}, notify.SeeAlso)
	assert.Equal(t,
		"notify(\\App\\Service\\Mailer|null $mailer, string ...$tags, int $limit = 10): self|\\App\\Model\\Account",
		notify.Signature())
	assert.Equal(t, "notify-app-service-mailer-null-mailer-string-tags-int-limit-10-self-app-model-account", notify.Anchor())
}

func TestBuilder_ReturnFallsBackToDeclaredType(t *testing.T) {
	d := newTestBuilder().Class(parser.ClassDecl{
		Name:    "\\App\\Model\\Account",
		Kind:    symbol.KindClass,
		Methods: []parser.FunctionDecl{{Name: "owner", ReturnType: "?User"}},
	})
	require.Len(t, d.Class.Methods, 1)
	assert.Equal(t, "", d.Title)
	assert.Equal(t, "owner(): ?\\App\\Model\\User", d.Class.Methods[0].Signature())
}

func TestBuilder_Function(t *testing.T) {
	b := newTestBuilder()

	missing := b.Function(parser.FunctionDecl{Name: "\\App\\Model\\format"})
	assert.True(t, missing.Ignore)

	internal := b.Function(parser.FunctionDecl{Name: "\\App\\Model\\format", Doc: "/** Helper.\n * @internal\n */"})
	assert.True(t, internal.Ignore)

	d := b.Function(parser.FunctionDecl{
		Name:   "\\App\\Model\\format",
		Doc:    "/**\n * Formats a user.\n * @param User $user\n * @return string\n */",
		Params: []parser.ParamDecl{{Name: "$user"}},
	})
	require.False(t, d.Ignore)
	assert.Equal(t, symbol.KindFunction, d.Kind)
	assert.Equal(t, "Formats a user.", d.Title)
	assert.Equal(t, "App\\Model\\format(\\App\\Model\\User $user): string", d.Signature())
	assert.Equal(t, []string{"\\App\\Model\\User"}, d.SeeAlso)
}

func TestAnchor(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"getName(): string", "getname-string"},
		{"  Spaced   Out  ", "spaced-out"},
		{"with_underscore(int $a = 1)", "with_underscore-int-a-1"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Anchor(tt.in), tt.in)
	}
}
