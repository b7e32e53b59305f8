package handlers

import (
	"fmt"

	"github.com/scrypster/folio/internal/config"
	"github.com/scrypster/folio/internal/storage"
	"github.com/scrypster/folio/pkg/types"
)

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthResponse is the response format for GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReportListResponse is the response format for GET /api/reports.
type ReportListResponse struct {
	Reports []storage.Record `json:"reports"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
	HasMore bool             `json:"has_more"`
}

// DeduplicateResponse is the response format for POST /api/deduplicate.
type DeduplicateResponse struct {
	Snapshot types.Snapshot `json:"snapshot"`
	Removed  int            `json:"removed"`
}

// AdminQualityRequest is the request format for POST /api/admin/quality.
type AdminQualityRequest struct {
	Projects []types.AdminProject `json:"projects"`
	Skills   []types.AdminSkill   `json:"skills"`
}

// ConfigResponse is the response format for GET /api/config.
// The API token is masked.
type ConfigResponse struct {
	Server  ServerConfigResponse `json:"server"`
	Storage string               `json:"storage"`
	Source  string               `json:"source"`
	Archive ArchiveResponse      `json:"archive"`
}

// ServerConfigResponse contains server settings with the token masked.
type ServerConfigResponse struct {
	Host         string  `json:"host"`
	Port         int     `json:"port"`
	SecurityMode string  `json:"security_mode"`
	APIToken     string  `json:"api_token"` // Masked
	RateLimit    float64 `json:"rate_limit"`
	Burst        int     `json:"burst"`
}

// ArchiveResponse describes where artifacts go and how long they are kept.
type ArchiveResponse struct {
	Dir       string `json:"dir"`
	Retention string `json:"retention"`
}

// MaskAPIKey masks an API key for safe display.
// Shows first 7 chars and last 4 chars, hides the middle.
func MaskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) < 8 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// ToConfigResponse converts a config.Config to ConfigResponse with masked keys.
func ToConfigResponse(cfg *config.Config) ConfigResponse {
	return ConfigResponse{
		Server: ServerConfigResponse{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			SecurityMode: cfg.Server.SecurityMode,
			APIToken:     MaskAPIKey(cfg.Server.APIToken),
			RateLimit:    cfg.Server.RateLimit,
			Burst:        cfg.Server.Burst,
		},
		Storage: cfg.Storage.Engine,
		Source:  cfg.Source.Driver,
		Archive: ArchiveResponse{
			Dir: cfg.Archive.Dir,
			Retention: fmt.Sprintf("hourly(%d),daily(%d),weekly(%d),monthly(%d)",
				cfg.Archive.Hourly, cfg.Archive.Daily, cfg.Archive.Weekly, cfg.Archive.Monthly),
		},
	}
}
