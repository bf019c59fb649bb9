package routetree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/pen/internal/manifest"
)

func mustParse(t *testing.T, doc string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse([]byte(doc))
	require.NoError(t, err)
	return m
}

func TestGroupKey(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"/", RootGroup},
		{"//", RootGroup},
		{"", RootGroup},
		{"/blog/", "blog"},
		{"/blog", "blog"},
		{"/blog/post/", "blog"},
		{"//docs//api/", "docs"},
		{"/[slug]/", "[slug]"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, GroupKey(tt.url))
		})
	}
}

func TestBuildGroupsInManifestOrder(t *testing.T) {
	tree := Build(mustParse(t, `{"/": {}, "/blog/": {}, "/about/": {}}`))

	require.Equal(t, 3, tree.Len())
	assert.Equal(t, []Group{
		{Name: "root", Routes: []string{"/"}},
		{Name: "blog", Routes: []string{"/blog/"}},
		{Name: "about", Routes: []string{"/about/"}},
	}, tree.Groups())
}

func TestBuildAppendsToFirstSeenGroup(t *testing.T) {
	tree := Build(mustParse(t, `{
		"/blog/": {},
		"/about/": {},
		"/blog/first/": {},
		"/": {},
		"/about/team/": {},
		"/blog/second/": {}
	}`))

	assert.Equal(t, []string{"blog", "about", "root"}, tree.Names())

	blog, ok := tree.Routes("blog")
	require.True(t, ok)
	assert.Equal(t, []string{"/blog/", "/blog/first/", "/blog/second/"}, blog)

	about, _ := tree.Routes("about")
	assert.Equal(t, []string{"/about/", "/about/team/"}, about)

	_, ok = tree.Routes("missing")
	assert.False(t, ok)
}

func TestRootAlwaysGroupsSlash(t *testing.T) {
	tree := Build(mustParse(t, `{"/root/": {}, "/x/": {}, "/": {}}`))

	routes, ok := tree.Routes(RootGroup)
	require.True(t, ok)
	assert.Equal(t, []string{"/root/", "/"}, routes)
}

func TestBuildEmptyManifest(t *testing.T) {
	tree := Build(manifest.New())

	assert.Equal(t, 0, tree.Len())
	assert.Empty(t, tree.Groups())
	assert.Empty(t, tree.Names())
}

func TestBuildIsDeterministic(t *testing.T) {
	m := mustParse(t, `{"/c/": {}, "/a/": {}, "/c/d/": {}, "/": {}, "/b/": {}}`)

	first := Build(m)
	second := Build(m)

	assert.Equal(t, first.Groups(), second.Groups())
	assert.NotSame(t, first, second)
}

func TestGroupsReturnsCopies(t *testing.T) {
	tree := FromURLs([]string{"/a/"})

	groups := tree.Groups()
	groups[0].Routes[0] = "mutated"

	routes, _ := tree.Routes("a")
	assert.Equal(t, []string{"/a/"}, routes)
}
