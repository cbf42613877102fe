package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/coral-mesh/apiresolver/internal/cli/format"
	"github.com/coral-mesh/apiresolver/pkg/resolver"
)

// resolve collects the matches of query. Enumeration stops at limit or when
// ctx is done.
func resolve(ctx context.Context, h *resolver.Handle, query string, limit int) (ResolveOutput, error) {
	out := ResolveOutput{
		Type:    h.Type(),
		Query:   query,
		Matches: []format.Record{},
	}

	var opts format.Options
	err := h.EnumerateMatches(query, func(m resolver.Match) bool {
		if ctx.Err() != nil {
			return false
		}
		if limit > 0 && len(out.Matches) == limit {
			out.Truncated = true
			return false
		}
		out.Matches = append(out.Matches, opts.Record(format.Row{Query: query, Match: m}))
		return true
	})
	if err != nil {
		return out, err
	}
	if err := ctx.Err(); err != nil {
		return out, fmt.Errorf("resolve %q: %w", query, err)
	}
	return out, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
