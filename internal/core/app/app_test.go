package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"refdoc/internal/core/config"
	"refdoc/internal/core/errors"
	"refdoc/internal/engine/parser"
	"refdoc/internal/engine/symbol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtures = map[string]string{
	"src/Model/User.php": `<?php
namespace App\Model;

use App\Service\Mailer;

/**
 * A registered user.
 */
class User
{
    /** @var Account[] Linked accounts */
    public array $accounts = [];

    /**
     * Sends a notification.
     *
     * @param Mailer $mailer Transport
     * @return bool
     */
    public function notify(Mailer $mailer): bool
    {
        return true;
    }
}
`,
	"src/Model/Account.php": `<?php
namespace App\Model;

/** An account. */
class Account
{
}
`,
	"src/Service/Mailer.php": `<?php
namespace App\Service;

/** Sends mail. */
interface Mailer
{
}
`,
	"src/Internal/Hidden.php": `<?php
namespace App\Internal;

/** Not for users. */
class Hidden
{
}
`,
	"src/functions.php": `<?php
namespace App;

/** Formats things. */
function helper(): string
{
    return '';
}
`,
	"vendor/lib/Dep.php": `<?php
namespace Vendor\Lib;

/** Third party. */
class Dep {}
`,
}

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range fixtures {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func newTestApp(t *testing.T, root string, mutate func(*config.Config)) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Project.Name = "acme/app"
	cfg.Project.Description = "The app."
	cfg.Exclude.Symbols = []string{`*\Internal\*`}
	cfg.Build.Workers = 2
	if mutate != nil {
		mutate(cfg)
	}
	paths, err := config.ResolvePaths(cfg, root)
	require.NoError(t, err)
	a, err := New(cfg, paths)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func readPage(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, "docs", filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestApp_Build(t *testing.T) {
	root := writeProject(t)
	a := newTestApp(t, root, nil)

	result, err := a.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, result.Files)
	assert.Equal(t, 4, result.Symbols)
	assert.Equal(t, 4, result.Documents)
	assert.Equal(t, 5, result.PagesWritten)
	assert.Equal(t, 0, result.PagesSkipped)
	assert.Empty(t, result.RunID)

	user := readPage(t, root, "App/Model/User.md")
	assert.Contains(t, user, "# `App\\Model\\User`\n[Back to index](../../index.md)\n")
	assert.Contains(t, user, "* `$accounts`: `\\App\\Model\\Account[]` Linked accounts\n")
	assert.Contains(t, user, "* [`\\App\\Model\\Account`: An account.](Account.md)\n")
	assert.Contains(t, user, "* [`\\App\\Service\\Mailer`: Sends mail.](../Service/Mailer.md)\n")
	assert.Contains(t, user, "* `$mailer`: `\\App\\Service\\Mailer` Transport  \n")

	index := readPage(t, root, "index.md")
	assert.Contains(t, index, "## Functions\n* [\\App\\helper: Formats things.](App/helper.md)\n")
	assert.Contains(t, index, "## Interfaces\n* [\\App\\Service\\Mailer: Sends mail.](App/Service/Mailer.md)\n")
	assert.NotContains(t, index, "Hidden")
	assert.NotContains(t, index, "Vendor")

	_, err = os.Stat(filepath.Join(root, "docs", "App", "Internal", "Hidden.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestApp_BuildWithManifest(t *testing.T) {
	root := writeProject(t)
	a := newTestApp(t, root, func(cfg *config.Config) { cfg.DB.Enabled = true })

	first, err := a.Build(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, first.RunID)
	assert.Equal(t, 5, first.PagesWritten)

	second, err := a.Build(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, 0, second.PagesWritten)
	assert.Equal(t, 5, second.PagesSkipped)

	require.NoError(t, os.Remove(filepath.Join(root, "src", "Model", "Account.php")))
	third, err := a.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, third.PagesRemoved)
	assert.Equal(t, 3, third.Documents)
	_, err = os.Stat(filepath.Join(root, "docs", "App", "Model", "Account.md"))
	assert.True(t, os.IsNotExist(err))
	assert.NotContains(t, readPage(t, root, "index.md"), "Account")
}

func TestApp_ProjectNamespaceScopesSymbols(t *testing.T) {
	root := writeProject(t)
	a := newTestApp(t, root, func(cfg *config.Config) { cfg.Project.Namespace = `App\Model` })

	result, err := a.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Documents)

	user := readPage(t, root, "App/Model/User.md")
	assert.Contains(t, user, "* `\\App\\Service\\Mailer`\n")
	assert.Equal(t, 1, result.Unlinkable)
}

func TestBuildService_ResolveAndLink(t *testing.T) {
	root := writeProject(t)
	svc := newTestApp(t, root, nil).BuildService()
	ctx := context.Background()

	resolved, err := svc.ResolveType(ctx, `App\Model\User`, "?array{id: int, owner: Account}|Mailer")
	require.NoError(t, err)
	assert.Equal(t, `\App\Model\User`, resolved.Owner)
	assert.Equal(t, `?array{id: int, owner: \App\Model\Account}|\App\Service\Mailer`, resolved.Text)
	assert.Equal(t, []string{`\App\Model\Account`, `\App\Service\Mailer`}, resolved.Linkable)

	_, err = svc.ResolveType(ctx, `App\Nope`, "int")
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))

	path, ok, err := svc.LinkPath(ctx, `\App\Model\User`, `\App\Service\Mailer`)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "../Service/Mailer.md", path)

	_, ok, err = svc.LinkPath(ctx, `\App\Model\User`, `\App\Internal\Hidden`)
	require.NoError(t, err)
	assert.False(t, ok)
}

type stubSource struct {
	files []parser.File
}

func (s stubSource) Discover(ctx context.Context) ([]parser.File, error) {
	return s.files, nil
}

func TestApp_DuplicateDeclarationsWarn(t *testing.T) {
	decl := parser.ClassDecl{Name: `\App\Thing`, Kind: symbol.KindClass, Doc: "/** A thing. */"}
	src := stubSource{files: []parser.File{
		{Path: "a.php", Classes: []parser.ClassDecl{decl}},
		{Path: "b.php", Classes: []parser.ClassDecl{decl}},
	}}

	cfg := config.Default()
	paths, err := config.ResolvePaths(cfg, t.TempDir())
	require.NoError(t, err)
	a, err := New(cfg, paths, WithSource(src))
	require.NoError(t, err)

	result, err := a.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Documents)
	require.Len(t, result.Warnings, 1)
	assert.True(t, strings.Contains(result.Warnings[0], "duplicate declaration of \\App\\Thing"))
}

func TestHealthService(t *testing.T) {
	root := writeProject(t)
	a := newTestApp(t, root, nil)
	health := NewHealthService(a)

	before := health.Check(context.Background())
	assert.Equal(t, "up", before.Status)
	assert.Equal(t, "not built yet", before.Components["graph"])

	_, err := a.Build(context.Background())
	require.NoError(t, err)
	after := health.Check(context.Background())
	assert.Equal(t, "ok (5 files, 4 symbols)", after.Components["graph"])
}

func TestApp_ReconfigureKeepsPreviousStateOnError(t *testing.T) {
	root := writeProject(t)
	a := newTestApp(t, root, nil)
	prevPaths, prevSource, prevSymbols, prevConfig := a.Paths, a.source, a.symbols, a.Config

	bad := config.Default()
	bad.Project.Name = "acme/app"
	bad.Exclude.Symbols = []string{`*\Model\*`}
	bad.Source.Include = []string{"[unterminated"}
	bad.Output.Dir = "elsewhere"

	err := a.Reconfigure(bad)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
	assert.Equal(t, prevPaths, a.Paths)
	assert.Same(t, prevSource, a.source)
	assert.Same(t, prevSymbols, a.symbols)
	assert.Same(t, prevConfig, a.Config)

	result, err := a.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, result.Documents)
	assert.Contains(t, readPage(t, root, "index.md"), "App\\Model\\User")
	assert.NotContains(t, readPage(t, root, "index.md"), "Hidden")
}
