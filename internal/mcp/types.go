package mcp

import "github.com/coral-mesh/apiresolver/internal/cli/format"

// Tool names.
const (
	ToolResolveFunctions  = "resolve_functions"
	ToolListResolverTypes = "list_resolver_types"
)

// ResolveOutput is the result of resolve_functions.
type ResolveOutput struct {
	Type      string          `json:"type"`
	Query     string          `json:"query"`
	PID       int             `json:"pid"`
	Matches   []format.Record `json:"matches"`
	Truncated bool            `json:"truncated"`
	// Error is set when the backend failed; Matches holds what was found
	// before the failure.
	Error string `json:"error,omitempty"`
}

// ResolverType describes one registered resolver type.
type ResolverType struct {
	Type      string `json:"type"`
	Available bool   `json:"available"`
}

// ListTypesOutput is the result of list_resolver_types.
type ListTypesOutput struct {
	PID   int            `json:"pid"`
	Types []ResolverType `json:"types"`
}
