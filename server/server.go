// Package server exposes a tools.Toolbox to an MCP host.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/flitsinc/weather-mcp/tools"
)

const (
	Name    = "weather"
	Version = "0.1.0"
)

// New returns an MCP server named "weather" with every tool of box
// registered under its function name.
func New(box *tools.Toolbox, log *zap.Logger) *mcp.Server {
	if log == nil {
		log = zap.NewNop()
	}
	srv := mcp.NewServer(&mcp.Implementation{Name: Name, Version: Version}, nil)
	for _, t := range box.All() {
		srv.AddTool(&mcp.Tool{
			Name:        t.FuncName(),
			Title:       t.Label(),
			Description: t.Description(),
			InputSchema: InputSchema(t.Schema()),
		}, handler(box, t.FuncName(), log))
	}
	return srv
}

// Run serves srv over standard input and output until the host closes the
// stream or ctx is cancelled.
func Run(ctx context.Context, srv *mcp.Server) error {
	return srv.Run(ctx, &mcp.StdioTransport{})
}

// handler dispatches calls for the named tool through box.
func handler(box *tools.Toolbox, name string, log *zap.Logger) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (res *mcp.CallToolResult, err error) {
		start := time.Now()
		log := log.With(zap.String("tool", name))

		defer func() {
			if p := recover(); p != nil {
				log.Error("tool panicked", zap.Any("panic", p))
				res = toCallToolResult(tools.Errorf("tool %s failed: %v", name, p))
			}
		}()

		var args json.RawMessage
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		runner := tools.NewRunner(ctx, func(status string) {
			log.Debug("tool status", zap.String("status", status))
		})
		result := box.Run(runner, name, args)

		if rerr := result.Error(); rerr != nil {
			log.Warn("tool call rejected", zap.Error(rerr))
		} else {
			log.Debug("tool call done", zap.String("result", result.Label()), zap.Duration("took", time.Since(start)))
		}
		return toCallToolResult(result), nil
	}
}

func toCallToolResult(r tools.Result) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: r.Text()}},
		IsError: r.Error() != nil,
	}
}

// InputSchema converts a tool's parameter schema into the host library's
// JSON schema type.
func InputSchema(fs *tools.FunctionSchema) *jsonschema.Schema {
	if fs == nil {
		return &jsonschema.Schema{Type: "object"}
	}
	s := convert(fs.Parameters)
	if s.Type == "" {
		s.Type = "object"
	}
	return s
}

func convert(v tools.ValueSchema) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:        v.Type,
		Description: v.Description,
		Required:    v.Required,
	}
	if len(v.Properties) > 0 {
		s.Properties = make(map[string]*jsonschema.Schema, len(v.Properties))
		for name, prop := range v.Properties {
			s.Properties[name] = convert(prop)
		}
	}
	if v.Default != nil {
		raw, err := json.Marshal(v.Default)
		if err != nil {
			panic(fmt.Sprintf("server: default %v is not JSON encodable: %v", v.Default, err))
		}
		s.Default = raw
	}
	return s
}
