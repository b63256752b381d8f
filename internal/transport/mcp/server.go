package mcp

import (
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	promptsvc "github.com/promptlab/promptlab/internal/service/prompt"
)

// Server wraps the mark3labs/mcp-go MCPServer and its StreamableHTTPServer.
// Tools are registered in tools.go; this file owns only the server lifecycle.
type Server struct {
	httpSrv *mcpserver.StreamableHTTPServer
}

func New(promptSvc *promptsvc.Service) *Server {
	mcpSrv := mcpserver.NewMCPServer(
		"promptlab",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	RegisterTools(mcpSrv, promptSvc)

	return &Server{
		httpSrv: mcpserver.NewStreamableHTTPServer(mcpSrv),
	}
}

// Handler returns an http.Handler that serves the MCP endpoint.
func (s *Server) Handler() http.Handler {
	return s.httpSrv
}
