package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerPagesResource(srv, svc)
	registerPageTemplate(srv, svc)
}

func registerPagesResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"outliner://pages",
		"Pages",
		mcp.WithResourceDescription("Every live page with its revision and modification time."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		pages, err := svc.ListPages(ctx, false)
		if err != nil {
			return nil, err
		}
		payload := map[string]any{
			"pages": pages,
			"count": len(pages),
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerPageTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"outliner://pages/{id}",
		"Page",
		mcp.WithTemplateDescription("A page rendered as markdown with its list items."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := templateArg(request.Params.Arguments["id"])
		if id == "" {
			return nil, fmt.Errorf("page id is required")
		}
		dto, err := svc.GetPage(ctx, id)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{"page": dto})
	})
}

// templateArg reads a URI template variable, which the server may deliver as
// a string or a one-element slice.
func templateArg(v any) string {
	switch a := v.(type) {
	case string:
		return a
	case []string:
		if len(a) > 0 {
			return a[0]
		}
	}
	return ""
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
