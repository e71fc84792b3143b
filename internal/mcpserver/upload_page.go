package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/kneeview/internal/kneeboard"
	"github.com/starford/kneeview/internal/storage"
)

const maxPageSize = 20 << 20 // 20 MB

type uploadResult struct {
	SavedPath string `json:"savedPath"`
	Group     string `json:"group"`
	Subgroup  string `json:"subgroup,omitempty"`
	Night     bool   `json:"night"`
	Page      uint32 `json:"page"`
}

func (s *Server) uploadPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rel, err := storage.PageName(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	base := path.Base(rel)
	if !strings.EqualFold(path.Ext(base), ".png") {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported file extension: %s (only png)", path.Ext(base))), nil
	}
	info, ok := kneeboard.ParseFilename(strings.TrimSuffix(base, path.Ext(base)))
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("name %q does not follow the page naming contract", base)), nil
	}

	data, err := decodePayload(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(data) > maxPageSize {
		return mcp.NewToolResultError(fmt.Sprintf("file too large: %d bytes (max %d)", len(data), maxPageSize)), nil
	}
	if detected := http.DetectContentType(data); detected != "image/png" {
		return mcp.NewToolResultError(fmt.Sprintf("content is not a PNG image (detected: %s)", detected)), nil
	}

	if err := s.store.Write(rel, data); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save page: %v", err)), nil
	}
	if err := s.svc.Refresh(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, _ := json.Marshal(uploadResult{
		SavedPath: rel,
		Group:     info.Group,
		Subgroup:  info.Subgroup.Name,
		Night:     info.IsNight,
		Page:      info.Page,
	})
	return mcp.NewToolResultText(string(out)), nil
}

// decodePayload accepts plain base64 or a data:image/png;base64 URI.
func decodePayload(raw string) ([]byte, error) {
	encoded := raw
	if strings.HasPrefix(raw, "data:") {
		rest := strings.TrimPrefix(raw, "data:")
		commaIdx := strings.Index(rest, ",")
		if commaIdx < 0 {
			return nil, fmt.Errorf("invalid data URI: missing comma separator")
		}
		meta := rest[:commaIdx]
		if !strings.Contains(meta, ";base64") {
			return nil, fmt.Errorf("only base64 data URIs are supported")
		}
		if mime := strings.Split(meta, ";")[0]; mime != "image/png" {
			return nil, fmt.Errorf("unsupported MIME type in data URI: %s", mime)
		}
		encoded = rest[commaIdx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	return data, nil
}
