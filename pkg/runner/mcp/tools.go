package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListPagesTool(srv, svc)
	registerGetPageTool(srv, svc)
	registerCreatePageTool(srv, svc)
	registerTodayJournalTool(srv, svc)
	registerRecentJournalTool(srv, svc)
	registerPruneJournalTool(srv, svc)
	registerSetTodoTool(srv, svc)
	registerAppendItemTool(srv, svc)
	registerAgendaTool(srv, svc)
}

func registerListPagesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_pages",
		mcp.WithDescription("List pages, most recently modified first."),
		mcp.WithBoolean("include_deleted",
			mcp.Description("Include soft-deleted pages."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pages, err := svc.ListPages(ctx, request.GetBool("include_deleted", false))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"pages": pages,
			"count": len(pages),
		})
	})
}

func registerGetPageTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_page_markdown",
		mcp.WithDescription("Fetch a page as markdown along with its numbered list items."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Page identifier."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.GetPage(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerCreatePageTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"create_page",
		mcp.WithDescription("Create a page from markdown."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Page title."),
		),
		mcp.WithString("markdown",
			mcp.Description("Initial content; defaults to one empty item."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Title    string `json:"title"`
			Markdown string `json:"markdown"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.CreatePage(ctx, args.Title, args.Markdown)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerTodayJournalTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"today_journal",
		mcp.WithDescription("Return today's journal page, creating it if it does not exist yet."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dto, created, err := svc.TodayJournal(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"page":    dto,
			"created": created,
		})
	})
}

func registerRecentJournalTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"recent_journal",
		mcp.WithDescription("List journal pages from a recent window, newest day first."),
		mcp.WithString("window",
			mcp.Description("Window such as 3d, 2w or 1w3d (default 2w)."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		window := strings.TrimSpace(request.GetString("window", ""))
		pages, err := svc.RecentJournal(ctx, window)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"pages": pages,
			"count": len(pages),
		})
	})
}

func registerPruneJournalTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"prune_journal",
		mcp.WithDescription("Delete past journal pages that were never written in."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := svc.PruneJournal(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"deleted": ids,
			"count":   len(ids),
		})
	})
}

func registerSetTodoTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"set_todo",
		mcp.WithDescription("Change the todo marker or list position of one item. Lines are numbered from 1 in document order, as returned by get_page_markdown."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Page identifier."),
		),
		mcp.WithNumber("line",
			mcp.Required(),
			mcp.Description("List item number."),
			mcp.Min(1),
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Action to apply."),
			mcp.Enum(ActionNames()...),
		),
		mcp.WithString("status",
			mcp.Description("Status for add and status actions."),
			mcp.Enum("TODO", "DOING", "NOW", "LATER", "DONE"),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		line, err := request.RequireInt("line")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		action, err := request.RequireString("action")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		status := strings.ToUpper(strings.TrimSpace(request.GetString("status", "")))

		dto, changed, err := svc.SetTodo(ctx, id, line, action, status)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v", describeAction(action, status), err)), nil
		}
		return toJSONResult(map[string]any{
			"page":    dto,
			"changed": changed,
		})
	})
}

func registerAppendItemTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"append_item",
		mcp.WithDescription("Append a top-level item to a page. A leading TODO, DOING, NOW, LATER or DONE becomes a todo marker."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Item text; [[Title]] makes a page reference."),
		),
		mcp.WithString("id",
			mcp.Description("Page identifier; defaults to today's journal page."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := request.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.AppendItem(ctx, request.GetString("id", ""), text)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerAgendaTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"agenda",
		mcp.WithDescription("Collect todo items across pages."),
		mcp.WithString("window",
			mcp.Description("Only pages modified within this window, e.g. 1w. Empty means all pages."),
		),
		mcp.WithBoolean("include_done",
			mcp.Description("Include done items."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		agenda, err := svc.Agenda(ctx, request.GetString("window", ""), request.GetBool("include_done", false))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(agenda)
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
