package gateway

// EmbeddingStrategy selects how a provider ingests the uploaded CSV.
type EmbeddingStrategy string

const (
	// EmbedNativeDocument sends the file as a base64 document block the
	// model ingests directly.
	EmbedNativeDocument EmbeddingStrategy = "native_document"
	// EmbedDecodedText inlines the decoded file text into the prompt.
	EmbedDecodedText EmbeddingStrategy = "decoded_text"
)

// ProviderKind enumerates supported provider kinds.
type ProviderKind string

const (
	KindAnthropic   ProviderKind = "anthropic"
	KindOpenAI      ProviderKind = "openai"
	KindAzureOpenAI ProviderKind = "azure_openai"
	KindGoogle      ProviderKind = "google"
)

// ProviderDescriptor is the static description of one supported provider.
// Descriptors are created once at startup and never mutated.
type ProviderDescriptor struct {
	Kind             ProviderKind
	CredentialEnv    string // env var holding the API key, for diagnostics
	Embedding        EmbeddingStrategy
	Endpoint         string // empty means the provider cannot be used (azure without a resource endpoint)
	DefaultModel     string
	MaxPayloadBytes  int64
	MaxContextTokens int
}

// CatalogOptions carries the startup overrides for the fixed provider table.
type CatalogOptions struct {
	AnthropicModel string
	OpenAIModel    string
	GoogleModel    string

	// Azure OpenAI needs a per-account resource endpoint in addition to
	// its key; without one the descriptor stays unusable.
	AzureEndpoint   string
	AzureDeployment string
	AzureAPIVersion string
}

// Catalog is the ordered, immutable set of provider descriptors. Order is
// the selection priority: native-document providers come before text-only
// providers.
type Catalog struct {
	descriptors []ProviderDescriptor
}

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	openAIEndpoint    = "https://api.openai.com/v1/chat/completions"
	googleEndpoint    = "https://generativelanguage.googleapis.com/v1beta/models"
)

// NewCatalog builds the provider catalog from the fixed table plus the
// startup overrides.
func NewCatalog(opts CatalogOptions) Catalog {
	anthropicModel := orDefault(opts.AnthropicModel, "claude-3-sonnet-20240229")
	openAIModel := orDefault(opts.OpenAIModel, "gpt-4-turbo-preview")
	googleModel := orDefault(opts.GoogleModel, "gemini-pro")
	azureDeployment := orDefault(opts.AzureDeployment, "gpt-4o")
	azureAPIVersion := orDefault(opts.AzureAPIVersion, "2024-02-15-preview")

	return Catalog{descriptors: []ProviderDescriptor{
		{
			Kind:             KindAnthropic,
			CredentialEnv:    "ANTHROPIC_API_KEY",
			Embedding:        EmbedNativeDocument,
			Endpoint:         anthropicEndpoint,
			DefaultModel:     anthropicModel,
			MaxPayloadBytes:  16 << 20,
			MaxContextTokens: 200_000,
		},
		{
			Kind:             KindOpenAI,
			CredentialEnv:    "OPENAI_API_KEY",
			Embedding:        EmbedDecodedText,
			Endpoint:         openAIEndpoint,
			DefaultModel:     openAIModel,
			MaxPayloadBytes:  512 << 10,
			MaxContextTokens: 128_000,
		},
		{
			Kind:             KindAzureOpenAI,
			CredentialEnv:    "AZURE_OPENAI_API_KEY",
			Embedding:        EmbedDecodedText,
			Endpoint:         azureChatEndpoint(opts.AzureEndpoint, azureDeployment, azureAPIVersion),
			DefaultModel:     azureDeployment,
			MaxPayloadBytes:  256 << 10,
			MaxContextTokens: 50_000,
		},
		{
			Kind:             KindGoogle,
			CredentialEnv:    "GOOGLE_API_KEY",
			Embedding:        EmbedDecodedText,
			Endpoint:         googleEndpoint,
			DefaultModel:     googleModel,
			MaxPayloadBytes:  128 << 10,
			MaxContextTokens: 32_768,
		},
	}}
}

// Providers returns the descriptors in priority order. The returned slice
// is a copy; the catalog itself stays immutable.
func (c Catalog) Providers() []ProviderDescriptor {
	out := make([]ProviderDescriptor, len(c.descriptors))
	copy(out, c.descriptors)
	return out
}

// azureChatEndpoint composes the Azure OpenAI deployment URL. Returns ""
// when no resource endpoint is configured.
func azureChatEndpoint(endpoint, deployment, apiVersion string) string {
	if endpoint == "" {
		return ""
	}
	if endpoint[len(endpoint)-1] != '/' {
		endpoint += "/"
	}
	return endpoint + "openai/deployments/" + deployment + "/chat/completions?api-version=" + apiVersion
}

func orDefault(val, def string) string {
	if val == "" {
		return def
	}
	return val
}
