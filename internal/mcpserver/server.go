// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Noteforge store operations for LLM integration via
// stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/noteforge/internal/apperr"
	"github.com/starford/noteforge/internal/codec"
	"github.com/starford/noteforge/internal/noteservice"
)

// Server wraps the MCP server with Noteforge tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all Noteforge tools registered.
func New(svc *noteservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Noteforge",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes, optionally filtered by a full-text search query "+
			"and/or a tag substring. Ordered newest first."),
		mcp.WithString("search", mcp.Description("Full-text query (plain text is matched as a phrase; FTS5 syntax is passed through)")),
		mcp.WithString("tag", mcp.Description("Case-insensitive substring filter over the tags field")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a single note by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Numeric note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note. A blank title is stored as \"Untitled\". "+
			"Tags are a comma-separated list; see the noteforge://note-format resource."),
		mcp.WithString("title", mcp.Description("Note title")),
		mcp.WithString("body", mcp.Description("Markdown body")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags, e.g. \"work,urgent\"")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Overwrite title, body and tags of an existing note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Numeric note id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("body", mcp.Description("New Markdown body")),
		mcp.WithString("tags", mcp.Description("New comma-separated tags")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note permanently. Deleting an absent id succeeds."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Numeric note id")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("import_notes",
		mcp.WithDescription("Merge a Noteforge JSON export file into the store. Records whose "+
			"id matches an existing note are updated, all others are inserted under fresh ids."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the export file")),
	), s.importNotes)

	s.mcp.AddTool(mcp.NewTool("export_notes",
		mcp.WithDescription("Write all notes to a portable JSON export file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Destination file path")),
	), s.exportNotes)

	// Resource: export document format.
	s.mcp.AddResource(
		mcp.NewResource("noteforge://note-format", "Note Format Contract",
			mcp.WithResourceDescription("Fields of a note record and the export document shape."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
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

// optString returns the named string argument or "" when absent.
func optString(req mcp.CallToolRequest, name string) string {
	if v, err := req.RequireString(name); err == nil {
		return v
	}
	return ""
}

func noteID(req mcp.CallToolRequest) (int64, error) {
	raw, err := req.RequireString("id")
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid note id: %q", raw)
	}
	return id, nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.svc.List(ctx, optString(req, "search"), optString(req, "tag"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(notes, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := noteID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: note %d", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(note, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := s.svc.Create(ctx, optString(req, "title"), optString(req, "body"), optString(req, "tags"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created note %d", note.ID)), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := noteID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.svc.Update(ctx, id, optString(req, "title"), optString(req, "body"), optString(req, "tags")); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: note %d", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated note %d", id)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := noteID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Delete(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted note %d", id)), nil
}

func (s *Server) importNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	records, err := codec.ParseFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	stats, err := s.svc.Import(ctx, records, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("inserted %d, updated %d", stats.Inserted, stats.Updated)), nil
}

func (s *Server) exportNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.ExportDocument(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	count, err := codec.Export(path, doc.Notes)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("exported %d notes to %s", count, path)), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "noteforge://note-format",
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
