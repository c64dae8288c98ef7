package gateway

// Credentials is the read-only map of provider kind to API key, loaded
// once at startup.
type Credentials map[ProviderKind]string

// Has reports whether a non-empty credential exists for kind.
func (c Credentials) Has(kind ProviderKind) bool {
	return c[kind] != ""
}

// Select picks exactly one descriptor for a payload of csvSize bytes:
// the first credentialed provider, in catalog priority order, whose
// payload ceiling fits. There is no load balancing and no fallback after
// a failed request; a failed call returns its error.
func (c Catalog) Select(creds Credentials, csvSize int64) (ProviderDescriptor, *GatewayError) {
	credentialed := 0
	for _, d := range c.descriptors {
		if !creds.Has(d.Kind) || d.Endpoint == "" {
			continue
		}
		credentialed++
		if csvSize <= d.MaxPayloadBytes {
			return d, nil
		}
	}

	if credentialed == 0 {
		return ProviderDescriptor{}, &GatewayError{
			Kind:    ErrNoProviderConfigured,
			Message: "no supported LLM provider configured",
		}
	}
	return ProviderDescriptor{}, &GatewayError{
		Kind:    ErrPayloadTooLarge,
		Message: "no configured provider accepts a payload of this size",
	}
}

// Detect returns the descriptor Select would consider first, ignoring
// payload size. Used for startup logging and /upload-info.
func (c Catalog) Detect(creds Credentials) (ProviderDescriptor, bool) {
	for _, d := range c.descriptors {
		if creds.Has(d.Kind) && d.Endpoint != "" {
			return d, true
		}
	}
	return ProviderDescriptor{}, false
}
