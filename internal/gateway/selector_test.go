package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() Catalog {
	return NewCatalog(CatalogOptions{
		AzureEndpoint: "https://example.openai.azure.com",
	})
}

func TestCatalogOrder(t *testing.T) {
	providers := testCatalog().Providers()
	require.Len(t, providers, 4)

	// Native-document providers come before text-only providers.
	assert.Equal(t, KindAnthropic, providers[0].Kind)
	assert.Equal(t, EmbedNativeDocument, providers[0].Embedding)
	for _, d := range providers[1:] {
		assert.Equal(t, EmbedDecodedText, d.Embedding)
	}
}

func TestCatalogAzureEndpoint(t *testing.T) {
	t.Run("composed from resource endpoint", func(t *testing.T) {
		c := NewCatalog(CatalogOptions{
			AzureEndpoint:   "https://example.openai.azure.com",
			AzureDeployment: "gpt-4o",
			AzureAPIVersion: "2024-02-15-preview",
		})
		var azure ProviderDescriptor
		for _, d := range c.Providers() {
			if d.Kind == KindAzureOpenAI {
				azure = d
			}
		}
		assert.Equal(t,
			"https://example.openai.azure.com/openai/deployments/gpt-4o/chat/completions?api-version=2024-02-15-preview",
			azure.Endpoint)
	})

	t.Run("empty without resource endpoint", func(t *testing.T) {
		c := NewCatalog(CatalogOptions{})
		for _, d := range c.Providers() {
			if d.Kind == KindAzureOpenAI {
				assert.Empty(t, d.Endpoint)
			}
		}
	})
}

func TestSelect(t *testing.T) {
	catalog := testCatalog()

	t.Run("no credentials at all", func(t *testing.T) {
		_, gwErr := catalog.Select(Credentials{}, 100)
		require.NotNil(t, gwErr)
		assert.Equal(t, ErrNoProviderConfigured, gwErr.Kind)
	})

	t.Run("single credentialed provider wins", func(t *testing.T) {
		creds := Credentials{KindGoogle: "g-key"}
		d, gwErr := catalog.Select(creds, 100)
		require.Nil(t, gwErr)
		assert.Equal(t, KindGoogle, d.Kind)
	})

	t.Run("priority order decides ties", func(t *testing.T) {
		creds := Credentials{
			KindAnthropic: "a-key",
			KindOpenAI:    "o-key",
			KindGoogle:    "g-key",
		}
		d, gwErr := catalog.Select(creds, 100)
		require.Nil(t, gwErr)
		assert.Equal(t, KindAnthropic, d.Kind)
	})

	t.Run("size skips to next credentialed provider", func(t *testing.T) {
		creds := Credentials{
			KindOpenAI: "o-key",
			KindGoogle: "g-key",
		}
		// Over google's ceiling but under openai's.
		d, gwErr := catalog.Select(creds, 200<<10)
		require.Nil(t, gwErr)
		assert.Equal(t, KindOpenAI, d.Kind)
	})

	t.Run("too large for every credentialed provider", func(t *testing.T) {
		creds := Credentials{KindGoogle: "g-key"}
		_, gwErr := catalog.Select(creds, 1<<20)
		require.NotNil(t, gwErr)
		assert.Equal(t, ErrPayloadTooLarge, gwErr.Kind)
	})

	t.Run("azure without endpoint is not selectable", func(t *testing.T) {
		noAzure := NewCatalog(CatalogOptions{})
		_, gwErr := noAzure.Select(Credentials{KindAzureOpenAI: "az-key"}, 100)
		require.NotNil(t, gwErr)
		assert.Equal(t, ErrNoProviderConfigured, gwErr.Kind)
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		creds := Credentials{KindAnthropic: "a-key", KindOpenAI: "o-key"}
		for i := 0; i < 10; i++ {
			d, gwErr := catalog.Select(creds, 100)
			require.Nil(t, gwErr)
			assert.Equal(t, KindAnthropic, d.Kind)
		}
	})
}

func TestDetect(t *testing.T) {
	catalog := testCatalog()

	_, ok := catalog.Detect(Credentials{})
	assert.False(t, ok)

	d, ok := catalog.Detect(Credentials{KindOpenAI: "o-key"})
	require.True(t, ok)
	assert.Equal(t, KindOpenAI, d.Kind)
}
