package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
)

// uriScheme is the custom URI scheme for LedgerLens resources.
const uriScheme = "ledgerlens://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource exposing the queryable field reference.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "schema",
		Name:        "schema",
		Description: "Entity indices and their queryable fields with types",
		MIMEType:    "text/plain",
	}, s.handleSchemaResource)
}

// handleSchemaResource returns the target schema field reference.
func (s *Server) handleSchemaResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     domain.SchemaReference(),
		}},
	}, nil
}
