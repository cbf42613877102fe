// Package mcp exposes the resolver over the Model Context Protocol, so that
// assistants can look up functions in running processes.
package mcp

import (
	"context"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/coral-mesh/apiresolver/pkg/resolver"
	"github.com/coral-mesh/apiresolver/pkg/resolver/builtin"
	"github.com/coral-mesh/apiresolver/pkg/version"
)

// FactoryFunc builds the resolver factory for one tool call.
type FactoryFunc func(opts resolver.Options) *resolver.Factory

// Config contains configuration for the MCP server.
type Config struct {
	// Name is the server name announced to clients.
	Name string

	// DefaultPID is used when a call names no process.
	DefaultPID int

	// DefaultType is used when a call names no resolver type.
	DefaultType string

	// MaxMatches caps every resolve call; 0 is unlimited.
	MaxMatches int

	// EnabledTools optionally restricts which tools are available.
	// If empty, all tools are enabled.
	EnabledTools []string
}

// Server serves resolver tools over MCP.
type Server struct {
	mcpServer  *server.MCPServer
	config     Config
	logger     zerolog.Logger
	newFactory FactoryFunc
	tools      []string
}

// New creates a new MCP server with the built-in resolver types.
func New(config Config, logger zerolog.Logger) *Server {
	return NewWithFactory(config, logger, builtin.NewFactory)
}

// NewWithFactory is New with a custom source of resolver factories.
func NewWithFactory(config Config, logger zerolog.Logger, newFactory FactoryFunc) *Server {
	if config.Name == "" {
		config.Name = "apiresolve"
	}
	if config.DefaultType == "" {
		config.DefaultType = builtin.DefaultType
	}

	s := &Server{
		mcpServer: server.NewMCPServer(
			config.Name,
			version.Version,
			server.WithToolCapabilities(false),
		),
		config:     config,
		logger:     logger,
		newFactory: newFactory,
	}
	s.registerTools()

	s.logger.Debug().
		Strs("tools", s.tools).
		Msg("MCP server initialized")

	return s
}

// ServeStdio serves MCP over stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.logger.Info().Msg("Starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ToolNames returns the names of the registered tools.
func (s *Server) ToolNames() []string {
	return slices.Clone(s.tools)
}

func (s *Server) registerTools() {
	s.addTool(mcp.NewTool(ToolResolveFunctions,
		mcp.WithDescription("Find functions or methods in a running process by glob query. "+
			"Query syntax depends on type: module uses exports|imports|sections:<module>!<symbol>, "+
			"go uses functions:<package>!<name> or methods:<package>!<type>.<method>, "+
			"kernel uses [<module>!]<symbol>. Append /i for case-insensitive matching."),
		mcp.WithString("type",
			mcp.Description("Resolver type (see list_resolver_types). Defaults to "+s.config.DefaultType),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Query, e.g. exports:libc.so*!open* or functions:net/http!Get"),
		),
		mcp.WithNumber("pid",
			mcp.Description("Target process ID; 0 is the server process"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Stop after this many matches"),
		),
	), s.handleResolve)

	s.addTool(mcp.NewTool(ToolListResolverTypes,
		mcp.WithDescription("List resolver types and whether each can inspect the given process"),
		mcp.WithNumber("pid",
			mcp.Description("Target process ID; 0 is the server process"),
		),
	), s.handleListTypes)
}

func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	if !s.isToolEnabled(tool.Name) {
		return
	}
	s.mcpServer.AddTool(tool, handler)
	s.tools = append(s.tools, tool.Name)
}

// isToolEnabled checks if a tool is enabled based on configuration.
func (s *Server) isToolEnabled(toolName string) bool {
	if len(s.config.EnabledTools) == 0 {
		return true
	}
	return slices.Contains(s.config.EnabledTools, toolName)
}

func (s *Server) handleResolve(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil
	}
	typ := req.GetString("type", s.config.DefaultType)
	pid := req.GetInt("pid", s.config.DefaultPID)
	if pid < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("invalid pid %d", pid)), nil
	}
	limit := req.GetInt("limit", 0)
	if s.config.MaxMatches > 0 && (limit <= 0 || limit > s.config.MaxMatches) {
		limit = s.config.MaxMatches
	}

	factory := s.newFactory(resolver.Options{PID: pid, Logger: s.logger})
	h, ok := factory.Make(typ)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf(
			"resolver type %q is not available for pid %d (registered: %v)", typ, pid, factory.Types())), nil
	}
	defer func() { _ = h.Close() }()

	out, err := resolve(ctx, h, query, limit)
	out.PID = pid
	if err != nil {
		s.logger.Debug().
			Err(err).
			Str("resolver_type", typ).
			Str("query", query).
			Int("matches", len(out.Matches)).
			Msg("Resolve failed")
		out.Error = err.Error()
		res, err := jsonResult(out)
		if err != nil {
			return nil, err
		}
		res.IsError = true
		return res, nil
	}

	s.logger.Debug().
		Str("resolver_type", typ).
		Str("query", query).
		Int("matches", len(out.Matches)).
		Msg("Resolved functions")

	return jsonResult(out)
}

func (s *Server) handleListTypes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pid := req.GetInt("pid", s.config.DefaultPID)
	if pid < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("invalid pid %d", pid)), nil
	}

	factory := s.newFactory(resolver.Options{PID: pid, Logger: s.logger})
	out := ListTypesOutput{PID: pid, Types: []ResolverType{}}
	for _, typ := range factory.Types() {
		out.Types = append(out.Types, ResolverType{
			Type:      typ,
			Available: factory.Available(typ),
		})
	}
	return jsonResult(out)
}
