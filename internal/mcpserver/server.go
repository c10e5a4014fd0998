// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes quire tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/quire/internal/collection"
	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/scaffold"
	"github.com/starford/quire/internal/schema"
	"github.com/starford/quire/internal/storage"
)

const contractURI = "quire://frontmatter-format"

// Server wraps the MCP server with quire tools.
type Server struct {
	mcp       *server.MCPServer
	scaffolds *scaffold.Scaffolder
	store     storage.Provider
	layout    *collection.Layout
	db        *index.DB
	schemas   *schema.Validator
	logger    *slog.Logger
}

// New creates a new MCP server with all quire tools registered.
func New(sc *scaffold.Scaffolder, store storage.Provider, layout *collection.Layout, db *index.DB, schemas *schema.Validator, logger *slog.Logger) *Server {
	s := &Server{
		scaffolds: sc,
		store:     store,
		layout:    layout,
		db:        db,
		schemas:   schemas,
		logger:    logger,
	}

	s.mcp = server.NewMCPServer(
		"quire",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("create_entry",
		mcp.WithDescription("Create a new content entry from a title. The file name is derived "+
			"from the title and an existing entry is never replaced. Read the contract first via "+
			"the get_frontmatter_contract tool or the "+contractURI+" resource."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Collection: post, note, lab or essay (aliases accepted)")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Single-line title")),
		mcp.WithString("description", mcp.Description("Single-line summary; ignored for kinds without one")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags, e.g. \"go, cli\"")),
	), s.createEntry)

	s.mcp.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("List catalogued entries, newest first."),
		mcp.WithString("kind", mcp.Description("Optional collection to list")),
		mcp.WithString("tag", mcp.Description("Optional tag filter")),
	), s.listEntries)

	s.mcp.AddTool(mcp.NewTool("validate_entry",
		mcp.WithDescription("Validate an entry's frontmatter against its collection schema."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path relative to the content root (e.g. blog/my-post.md)")),
	), s.validateEntry)

	s.mcp.AddTool(mcp.NewTool("get_frontmatter_contract",
		mcp.WithDescription("Returns the frontmatter contract every entry follows. "+
			"Call this before creating entries."),
	), s.getFrontmatterContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Frontmatter Contract",
			mcp.WithResourceDescription("Frontmatter format and collection layout of quire entries."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
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

func (s *Server) createEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kindName, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kind, err := collection.Parse(kindName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description := req.GetString("description", "")
	tags := scaffold.ParseTags(req.GetString("tags", ""))

	res, err := s.scaffolds.Create(ctx, s.scaffolds.NewRequest(kind, title, description, tags))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := index.IndexPath(s.db, s.store, s.layout, res.Path); err != nil {
		s.logger.Warn("mcp: index created entry failed", slog.String("path", res.Path), slog.String("error", err.Error()))
	}

	return mcp.NewToolResultText(fmt.Sprintf("created: %s", res.Path)), nil
}

func (s *Server) listEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var f index.Filter
	if name := req.GetString("kind", ""); name != "" {
		kind, err := collection.Parse(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		f.Collection = kind.String()
	}
	f.Tag = req.GetString("tag", "")

	if err := index.Sync(s.db, s.store, s.layout, s.logger); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries, err := s.db.ListEntries(f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

type validationReport struct {
	Path   string        `json:"path"`
	Kind   string        `json:"kind"`
	Valid  bool          `json:"valid"`
	Issues []issueReport `json:"issues"`
}

type issueReport struct {
	Path    string `json:"path"`
	Keyword string `json:"keyword"`
	Message string `json:"message"`
}

func (s *Server) validateEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kind, ok := s.layout.KindOf(path)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("%s is not inside a collection directory", path)), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.schemas.ValidateDocument(kind, data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report := validationReport{Path: path, Kind: kind.String(), Valid: res.Valid, Issues: []issueReport{}}
	for _, is := range res.Issues {
		report.Issues = append(report.Issues, issueReport{Path: is.Path, Keyword: is.Keyword, Message: is.Message})
	}
	out, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getFrontmatterContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FrontmatterContract(s.layout)), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     FrontmatterContract(s.layout),
		},
	}, nil
}
