package httpapi

import (
	"net/http"

	"csvchat/internal/utils"
)

func (d *Dependencies) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"message": "gateway is running",
	})
}

// handleUploadInfo reports the upload limits and which provider a call
// would currently use.
func (d *Dependencies) handleUploadInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	detected := ""
	if desc, ok := d.Gateway.DetectProvider(); ok {
		detected = string(desc.Kind)
	}

	known := make([]string, 0, 4)
	for _, desc := range d.Gateway.Catalog() {
		known = append(known, string(desc.Kind))
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"max_file_size_mb":    d.maxUploadBytes >> 20,
		"supported_formats":   []string{"csv"},
		"description":         "Upload CSV files and ask questions about the data",
		"llm_provider":        detected,
		"available_providers": known,
	})
}

// handleDebugEnv reports which credentials are present. Booleans and
// lengths only; never values.
func (d *Dependencies) handleDebugEnv(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	detected := ""
	if desc, ok := d.Gateway.DetectProvider(); ok {
		detected = string(desc.Kind)
	}

	providers := make(map[string]any)
	for _, desc := range d.Gateway.Catalog() {
		key := d.creds[desc.Kind]
		providers[string(desc.Kind)] = map[string]any{
			"credential_env":    desc.CredentialEnv,
			"api_key_exists":    key != "",
			"api_key_length":    len(key),
			"endpoint_set":      desc.Endpoint != "",
			"default_model":     desc.DefaultModel,
			"embedding":         string(desc.Embedding),
			"max_payload_bytes": desc.MaxPayloadBytes,
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]any{
		"detected_provider": detected,
		"providers":         providers,
	})
}
