// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes kneeboard tools for LLM and voice integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/kneeview/internal/apperr"
	"github.com/starford/kneeview/internal/kneeboard"
	"github.com/starford/kneeview/internal/models"
	"github.com/starford/kneeview/internal/storage"
	"github.com/starford/kneeview/internal/viewer"
)

// Server wraps the MCP server with kneeboard tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *viewer.Service
	store storage.Provider
}

// New creates a new MCP server with all kneeboard tools registered.
func New(svc *viewer.Service, store storage.Provider) *Server {
	s := &Server{svc: svc, store: store}

	s.mcp = server.NewMCPServer(
		"Kneeview",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Return the active scenario, night mode, selection and current page."),
	), s.getState)

	s.mcp.AddTool(mcp.NewTool("set_scenario",
		mcp.WithDescription("Switch the active scenario. The era is derived from the aircraft."),
		mcp.WithString("aircraft", mcp.Required(), mcp.Description("Aircraft id as used for the kneeboard sub-directory (e.g. FA-18C_hornet)")),
		mcp.WithString("theater", mcp.Description("Theater name (e.g. Syria)")),
	), s.setScenario)

	s.mcp.AddTool(mcp.NewTool("list_groups",
		mcp.WithDescription("List the page groups of the active scenario with day/night availability and subgroups."),
	), s.listGroups)

	s.mcp.AddTool(mcp.NewTool("load_group",
		mcp.WithDescription("Select a group (and optional subgroup) and show its first page. "+
			"An empty result means nothing matched and the selection is unchanged."),
		mcp.WithString("group", mcp.Required(), mcp.Description("Group name, matched case-insensitively")),
		mcp.WithString("subgroup", mcp.Description("Optional subgroup; omit for pages without subgroup")),
	), s.loadGroup)

	s.mcp.AddTool(mcp.NewTool("next_page",
		mcp.WithDescription("Advance to the next page, wrapping to the first."),
	), s.command(kneeboard.CmdNextPage))

	s.mcp.AddTool(mcp.NewTool("previous_page",
		mcp.WithDescription("Go back one page, wrapping to the last."),
	), s.command(kneeboard.CmdPreviousPage))

	s.mcp.AddTool(mcp.NewTool("toggle_night_mode",
		mcp.WithDescription("Switch between day and night pages."),
	), s.command(kneeboard.CmdToggleNightMode))

	s.mcp.AddTool(mcp.NewTool("run_command",
		mcp.WithDescription("Run a named viewer command: "+commandList()+"."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Command name")),
	), s.runCommand)

	s.mcp.AddTool(mcp.NewTool("search_pages",
		mcp.WithDescription("Search the pages of the active scenario by file, group or subgroup name."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Name fragment")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 20)")),
	), s.searchPages)

	s.mcp.AddTool(mcp.NewTool("upload_page",
		mcp.WithDescription("Store a PNG kneeboard page and rescan. The name MUST follow the page naming "+
			"contract; read it first via get_naming_contract or the kneeview://page-naming resource."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Page file name, optionally prefixed by one aircraft directory")),
		mcp.WithString("data", mcp.Required(), mcp.Description("Base64 PNG data or a data:image/png;base64 URI")),
	), s.uploadPage)

	s.mcp.AddTool(mcp.NewTool("get_naming_contract",
		mcp.WithDescription("Returns the kneeboard page file naming contract."),
	), s.getNamingContract)

	// Resource: page naming contract.
	s.mcp.AddResource(
		mcp.NewResource("kneeview://page-naming", "Page Naming Contract",
			mcp.WithResourceDescription("File naming rules the kneeboard scanner understands."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNamingResource,
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

func commandList() string {
	cmds := kneeboard.Commands()
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) getState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.svc.State(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(snap), nil
}

func (s *Server) setScenario(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	aircraft, err := req.RequireString("aircraft")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	theater := req.GetString("theater", "")

	changed, err := s.svc.UpdateScenario(ctx, models.ScenarioUpdate{Aircraft: aircraft, Theater: theater})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.svc.State(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"changed": changed, "state": snap}), nil
}

func (s *Server) listGroups(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groups, err := s.svc.Groups(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(groups) == 0 {
		return mcp.NewToolResultText("no groups found"), nil
	}
	return jsonResult(groups), nil
}

func (s *Server) loadGroup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	group, err := req.RequireString("group")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	subgroup := req.GetString("subgroup", "")

	pages, snap, err := s.svc.LoadGroup(ctx, group, subgroup)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(pages) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("no pages for %s", selectionName(group, subgroup))), nil
	}
	return jsonResult(map[string]any{"pages": pages, "state": snap}), nil
}

func selectionName(group, subgroup string) string {
	if subgroup == "" {
		return group
	}
	return group + "/" + subgroup
}

func (s *Server) command(cmd kneeboard.Command) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.execute(ctx, string(cmd)), nil
	}
}

func (s *Server) runCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.execute(ctx, name), nil
}

func (s *Server) execute(ctx context.Context, name string) *mcp.CallToolResult {
	snap, err := s.svc.Execute(ctx, name)
	if err != nil {
		if errors.Is(err, apperr.ErrUnknownCommand) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown command %q (known: %s)", name, commandList()))
		}
		return mcp.NewToolResultError(err.Error())
	}
	return jsonResult(snap)
}

func (s *Server) searchPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", 20)
	results, err := s.svc.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (s *Server) getNamingContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PageNamingContract), nil
}

func (s *Server) readNamingResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "kneeview://page-naming",
			MIMEType: "text/markdown",
			Text:     PageNamingContract,
		},
	}, nil
}
