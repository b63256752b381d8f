package mcp

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	domainprompt "github.com/promptlab/promptlab/internal/domain/prompt"
	promptsvc "github.com/promptlab/promptlab/internal/service/prompt"
)

// RegisterTools registers the prompt retrieval tools on the MCP server, so
// agent clients can pull stored prompts directly over the protocol.
func RegisterTools(s *mcpserver.MCPServer, promptSvc *promptsvc.Service) {
	s.AddTool(mcpmcp.NewTool("list_prompts",
		mcpmcp.WithDescription("List stored prompts. Filters combine with AND semantics: collection, case-insensitive substring search over title and content, and a comma-separated tag list the prompt must fully carry."),
		mcpmcp.WithString("collection_id", mcpmcp.Description("Collection UUID to filter by")),
		mcpmcp.WithString("search", mcpmcp.Description("Substring to match in title or content, case-insensitive")),
		mcpmcp.WithString("tags", mcpmcp.Description("Comma-separated tag names; prompts must carry every one")),
	), listPromptsHandler(promptSvc))

	s.AddTool(mcpmcp.NewTool("get_prompt",
		mcpmcp.WithDescription("Fetch one prompt by id, including its current content, version number, and tags."),
		mcpmcp.WithString("prompt_id", mcpmcp.Required(), mcpmcp.Description("Prompt UUID")),
	), getPromptHandler(promptSvc))

	s.AddTool(mcpmcp.NewTool("get_prompt_version",
		mcpmcp.WithDescription("Fetch one historical version of a prompt with its full content snapshot. Version numbers start at 1."),
		mcpmcp.WithString("prompt_id", mcpmcp.Required(), mcpmcp.Description("Prompt UUID")),
		mcpmcp.WithString("version", mcpmcp.Required(), mcpmcp.Description("Version number")),
	), getPromptVersionHandler(promptSvc))
}

func listPromptsHandler(svc *promptsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		var filters domainprompt.ListFilters

		if v := mcpmcp.ParseString(req, "collection_id", ""); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				return mcpmcp.NewToolResultText("error: invalid collection_id"), nil
			}
			filters.CollectionID = &id
		}
		filters.Search = mcpmcp.ParseString(req, "search", "")
		if v := mcpmcp.ParseString(req, "tags", ""); v != "" {
			filters.Tags = strings.Split(v, ",")
		}

		prompts, err := svc.List(ctx, filters)
		if err != nil {
			return mcpmcp.NewToolResultText("error: " + err.Error()), nil
		}
		if prompts == nil {
			prompts = []domainprompt.Prompt{}
		}
		result, _ := json.Marshal(prompts)
		return mcpmcp.NewToolResultText(string(result)), nil
	}
}

func getPromptHandler(svc *promptsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		id, err := uuid.Parse(mcpmcp.ParseString(req, "prompt_id", ""))
		if err != nil {
			return mcpmcp.NewToolResultText("error: invalid prompt_id"), nil
		}

		p, err := svc.GetByID(ctx, id)
		if err != nil {
			return mcpmcp.NewToolResultText("error: " + err.Error()), nil
		}
		result, _ := json.Marshal(p)
		return mcpmcp.NewToolResultText(string(result)), nil
	}
}

func getPromptVersionHandler(svc *promptsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		id, err := uuid.Parse(mcpmcp.ParseString(req, "prompt_id", ""))
		if err != nil {
			return mcpmcp.NewToolResultText("error: invalid prompt_id"), nil
		}
		number, err := strconv.Atoi(mcpmcp.ParseString(req, "version", ""))
		if err != nil {
			return mcpmcp.NewToolResultText("error: invalid version"), nil
		}

		v, err := svc.GetVersion(ctx, id, number)
		if err != nil {
			return mcpmcp.NewToolResultText("error: " + err.Error()), nil
		}
		result, _ := json.Marshal(v)
		return mcpmcp.NewToolResultText(string(result)), nil
	}
}
