package httpapi

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"csvchat/internal/gateway"
	"csvchat/internal/usage"
	"csvchat/internal/utils"
)

// multipartMemoryLimit is how much of the form stays in memory before
// spilling to a temp file.
const multipartMemoryLimit = 4 << 20

// ChatResponse is the outward-facing success shape for /chat.
type ChatResponse struct {
	Success      bool   `json:"success"`
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	FileName     string `json:"file_name"`
	FileSize     int64  `json:"file_size"`
	ProviderUsed string `json:"provider_used"`
	ModelUsed    string `json:"model_used"`
	RequestID    string `json:"request_id"`
}

// handleChat accepts a multipart CSV upload plus a question, validates
// the upload, and hands the triple to the gateway.
//
// Flow:
//  1. Validate method
//  2. Rate limit by client IP
//  3. Parse multipart form (bounded by the upload ceiling)
//  4. Validate file name, extension, size
//  5. Call the gateway
//  6. Record usage metadata, return answer or mapped error
func (d *Dependencies) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := uuid.New().String()

	if r.Method != http.MethodPost {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()

	if !d.RateLimit.Allow(ctx, clientIP(r)) {
		utils.RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	// Bound the whole form a bit above the file ceiling so the question
	// field still fits next to a maximum-size file.
	r.Body = http.MaxBytesReader(w, r.Body, d.maxUploadBytes+multipartMemoryLimit)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("File size exceeds %dMB limit", d.maxUploadBytes>>20))
		return
	}

	question := r.FormValue("question")
	if question == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "No question provided")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "No file selected")
		return
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		utils.RespondWithError(w, http.StatusBadRequest, "Only CSV files are supported")
		return
	}
	if header.Size > d.maxUploadBytes {
		utils.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("File size exceeds %dMB limit", d.maxUploadBytes>>20))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to read uploaded file")
		return
	}

	answer, err := d.Gateway.AnswerQuestion(ctx, gateway.ChatRequest{
		CSVBytes:    data,
		CSVFileName: header.Filename,
		Question:    question,
		RequestID:   reqID,
	})

	rec := usage.NewRecord(reqID)
	rec.FileBytes = int64(len(data))
	rec.GatewayMs = time.Since(start).Milliseconds()

	if err != nil {
		gwErr := gateway.AsGatewayError(err)
		status := statusForKind(gwErr.Kind)

		rec.Provider = gwErr.Provider
		rec.Outcome = string(gwErr.Kind)
		rec.HTTPStatus = status
		d.recordUsage(rec)

		utils.RespondWithError(w, status, gwErr.Message)
		return
	}

	rec.Provider = answer.ProviderUsed
	rec.Model = answer.ModelUsed
	rec.Outcome = "ok"
	rec.HTTPStatus = http.StatusOK
	d.recordUsage(rec)

	utils.RespondWithJSON(w, http.StatusOK, ChatResponse{
		Success:      true,
		Question:     question,
		Answer:       answer.AnswerText,
		FileName:     header.Filename,
		FileSize:     header.Size,
		ProviderUsed: answer.ProviderUsed,
		ModelUsed:    answer.ModelUsed,
		RequestID:    reqID,
	})
}

// statusForKind maps the gateway error taxonomy to HTTP statuses.
func statusForKind(kind gateway.ErrorKind) int {
	switch kind {
	case gateway.ErrNoProviderConfigured:
		return http.StatusInternalServerError
	case gateway.ErrPayloadTooLarge:
		return http.StatusBadRequest
	case gateway.ErrUpstreamAuth:
		return http.StatusInternalServerError
	case gateway.ErrUpstreamRateLimited:
		return http.StatusTooManyRequests
	case gateway.ErrUpstreamBadRequest:
		return http.StatusBadRequest
	case gateway.ErrUpstreamTransient:
		return http.StatusBadGateway
	case gateway.ErrUpstreamUnparsable:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// recordUsage is best-effort; the response is already decided.
func (d *Dependencies) recordUsage(rec *usage.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Usage.Record(ctx, rec); err != nil {
		d.logger.Warn("failed to record usage", "request_id", rec.RequestID, "error", err)
	}
}

// clientIP picks the rate-limit key: the first forwarded address when
// behind a proxy, the peer address otherwise.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			fwd = fwd[:idx]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
