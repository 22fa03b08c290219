package imagegen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogueCategories(t *testing.T) {
	t.Parallel()

	c := DefaultCatalogue()
	require.Equal(t, []string{"backgrounds", "blog", "hero", "locations", "services"}, c.Categories())
	for _, cat := range c.Categories() {
		require.NotEmpty(t, c.Subcategories(cat), cat)
		for _, sub := range c.Subcategories(cat) {
			prompt, ok := c.Lookup(cat, sub)
			require.True(t, ok)
			require.NotEmpty(t, prompt)
		}
	}
}

func TestLookupMisses(t *testing.T) {
	t.Parallel()

	c := DefaultCatalogue()
	_, ok := c.Lookup("hero", "nonexistent")
	require.False(t, ok)
	_, ok = c.Lookup("nope", "homepage")
	require.False(t, ok)
	_, ok = c.Lookup("", "")
	require.False(t, ok)
}

func TestAllReturnsCopy(t *testing.T) {
	t.Parallel()

	all := DefaultCatalogue().All()
	all["hero"]["homepage"] = "changed"
	prompt, _ := DefaultCatalogue().Lookup("hero", "homepage")
	require.NotEqual(t, "changed", prompt)
}

func TestParseCatalogueRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := ParseCatalogue([]byte("hero: [1, 2]"))
	require.Error(t, err)
	_, err = ParseCatalogue([]byte(""))
	require.Error(t, err)
}

func TestExtensionForMIME(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"image/jpeg":            ".jpg",
		"IMAGE/JPEG":            ".jpg",
		"image/png":             ".png",
		"image/webp":            ".webp",
		"image/gif":             ".gif",
		"image/jpeg; charset=x": ".jpg",
		"image/avif":            ".png",
		"":                      ".png",
		"not a mime":            ".png",
	}
	for in, want := range cases {
		require.Equal(t, want, ExtensionForMIME(in), in)
	}
}

func TestOutputName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "test.jpg", OutputName("test", "image/jpeg"))
	require.Equal(t, "test.png", OutputName("test.png", "image/jpeg"))
	require.Equal(t, "banner.final.webp", OutputName("banner.final.webp", "image/gif"))
	require.Equal(t, "test.jpg", OutputName("test.", "image/jpeg"))
	require.Equal(t, "hero.png", OutputName("hero.", "application/octet-stream"))
}
