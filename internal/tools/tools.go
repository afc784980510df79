package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/arhont375/articlevec/internal/embedder"
	"github.com/arhont375/articlevec/internal/service"
	"github.com/arhont375/articlevec/internal/types"
)

// Handler holds dependencies for tool handlers
type Handler struct {
	svc *service.Service
}

// AddInput defines the input schema for article_add
type AddInput struct {
	Title   string `json:"title" jsonschema:"required" jsonschema_description:"Article title"`
	Excerpt string `json:"excerpt" jsonschema:"required" jsonschema_description:"Short article excerpt"`
	Body    string `json:"body" jsonschema:"required" jsonschema_description:"Full article body"`
	Model   string `json:"model,omitempty" jsonschema_description:"Embedding model: mini_lm or mp_net (default: mini_lm)"`
}

// AddOutput defines the output schema for article_add
type AddOutput struct {
	Article *types.Article `json:"article"`
}

// GetInput defines the input schema for article_get
type GetInput struct {
	ID int64 `json:"id" jsonschema:"required" jsonschema_description:"ID of the article to fetch"`
}

// GetOutput defines the output schema for article_get
type GetOutput struct {
	Article *types.Article `json:"article"`
}

// SearchInput defines the input schema for article_search
type SearchInput struct {
	Query string `json:"query" jsonschema:"required" jsonschema_description:"Free-text query to search for"`
	Model string `json:"model,omitempty" jsonschema_description:"Embedding model: mini_lm or mp_net (default: mini_lm)"`
	Limit int    `json:"limit,omitempty" jsonschema_description:"Maximum number of results (default: 5)"`
}

// SearchOutput defines the output schema for article_search
type SearchOutput struct {
	Articles []types.Article `json:"articles"`
}

// DeleteInput defines the input schema for article_delete
type DeleteInput struct {
	ID int64 `json:"id" jsonschema:"required" jsonschema_description:"ID of the article to delete"`
}

// DeleteOutput defines the output schema for article_delete
type DeleteOutput struct {
	Message string `json:"message"`
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}

func inputModel(name string) embedder.Model {
	if name == "" {
		return embedder.ModelMiniLM
	}
	return embedder.Model(name)
}

// Register adds all article tools to the MCP server
func Register(server *mcp.Server, svc *service.Service) {
	h := &Handler{svc: svc}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "article_add",
		Description: "Store an article and embed its title, excerpt, and body",
	}, h.Add)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "article_get",
		Description: "Fetch an article by id",
	}, h.Get)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "article_search",
		Description: "Search articles by semantic similarity",
	}, h.Search)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "article_delete",
		Description: "Delete an article by id",
	}, h.Delete)
}

func (h *Handler) Add(ctx context.Context, req *mcp.CallToolRequest, input AddInput) (*mcp.CallToolResult, AddOutput, error) {
	if input.Title == "" || input.Excerpt == "" || input.Body == "" {
		return errorResult("title, excerpt, and body are required"), AddOutput{}, nil
	}

	art, err := h.svc.Create(ctx, types.Article{
		Title:   input.Title,
		Excerpt: input.Excerpt,
		Body:    input.Body,
	}, inputModel(input.Model))
	if err != nil {
		return errorResult(fmt.Sprintf("failed to store article: %v", err)), AddOutput{}, nil
	}

	result, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to format response: %v", err)), AddOutput{}, nil
	}
	return textResult(fmt.Sprintf("Article added successfully:\n%s", string(result))), AddOutput{Article: art}, nil
}

func (h *Handler) Get(ctx context.Context, req *mcp.CallToolRequest, input GetInput) (*mcp.CallToolResult, GetOutput, error) {
	if input.ID == 0 {
		return errorResult("id is required"), GetOutput{}, nil
	}

	art, err := h.svc.Get(ctx, input.ID)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to fetch article: %v", err)), GetOutput{}, nil
	}

	result, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to format response: %v", err)), GetOutput{}, nil
	}
	return textResult(string(result)), GetOutput{Article: art}, nil
}

func (h *Handler) Search(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	if input.Query == "" {
		return errorResult("query is required"), SearchOutput{}, nil
	}

	articles, err := h.svc.Search(ctx, input.Query, inputModel(input.Model), input.Limit)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to search: %v", err)), SearchOutput{}, nil
	}

	if len(articles) == 0 {
		return textResult("No matching articles found."), SearchOutput{Articles: []types.Article{}}, nil
	}

	result, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to format response: %v", err)), SearchOutput{}, nil
	}
	return textResult(string(result)), SearchOutput{Articles: articles}, nil
}

func (h *Handler) Delete(ctx context.Context, req *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	if input.ID == 0 {
		return errorResult("id is required"), DeleteOutput{}, nil
	}

	if err := h.svc.Delete(ctx, input.ID); err != nil {
		return errorResult(fmt.Sprintf("failed to delete: %v", err)), DeleteOutput{}, nil
	}

	msg := fmt.Sprintf("Article %d has been deleted.", input.ID)
	return textResult(msg), DeleteOutput{Message: msg}, nil
}
