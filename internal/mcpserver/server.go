// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the contact inbox read-only to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const contactsURI = "folio://contacts"

// Lister returns every stored contact record as raw JSON.
type Lister interface {
	List(ctx context.Context) []json.RawMessage
}

// Server wraps the MCP server with the inbox tools.
type Server struct {
	mcp     *server.MCPServer
	records Lister
}

// New creates a new MCP server with all inbox tools registered.
func New(records Lister) *Server {
	s := &Server{records: records}

	s.mcp = server.NewMCPServer(
		"Folio",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_contacts",
		mcp.WithDescription("List every contact-form submission, oldest first, as a JSON array "+
			"of {id, name, email, message, createdAt}."),
	), s.listContacts)

	s.mcp.AddTool(mcp.NewTool("count_contacts",
		mcp.WithDescription("Return the number of stored contact-form submissions."),
	), s.countContacts)

	s.mcp.AddResource(
		mcp.NewResource(contactsURI, "Contact inbox",
			mcp.WithResourceDescription("All contact-form submissions as a JSON array."),
			mcp.WithMIMEType("application/json"),
		),
		s.readContactsResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) contactsJSON(ctx context.Context) (string, error) {
	out, err := json.MarshalIndent(s.records.List(ctx), "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (s *Server) listContacts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.contactsJSON(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) countContacts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(fmt.Sprintf("%d", len(s.records.List(ctx)))), nil
}

func (s *Server) readContactsResource(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := s.contactsJSON(ctx)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contactsURI,
			MIMEType: "application/json",
			Text:     out,
		},
	}, nil
}
