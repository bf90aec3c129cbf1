// Package mcp exposes the registered actions as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/agrimind"
	"github.com/aretw0/agrimind/pkg/actions"
	"github.com/aretw0/agrimind/pkg/chat"
	"github.com/aretw0/agrimind/pkg/domain"
	"github.com/aretw0/agrimind/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// Resource URIs.
const (
	ActionsURI  = "agrimind://actions"
	SeasonalURI = "agrimind://seasonal"
)

// AgriBotTool is the stateful chat tool registered when a chat service is set.
const AgriBotTool = "agribot"

// Server wraps an ActionRunner and exposes it as an MCP Server.
type Server struct {
	runner    ports.ActionRunner
	chat      *chat.Service
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithChat registers the agribot tool backed by svc.
func WithChat(svc *chat.Service) Option {
	return func(s *Server) { s.chat = svc }
}

// NewServer creates a new MCP Server instance with one tool per action.
func NewServer(runner ports.ActionRunner, opts ...Option) (*Server, error) {
	s := &Server{
		runner:    runner,
		mcpServer: server.NewMCPServer("agrimind-mcp", strings.TrimSpace(agrimind.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.registerTools(); err != nil {
		return nil, err
	}
	s.registerResources()
	return s, nil
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx
// is canceled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() error {
	for _, spec := range s.runner.Actions() {
		raw, err := json.Marshal(spec.Input.JSONSchema())
		if err != nil {
			return fmt.Errorf("input schema of %s: %w", spec.Name, err)
		}
		s.mcpServer.AddTool(mcp.NewToolWithRawSchema(spec.Name, spec.Description, raw), s.actionHandler(spec.Name))
	}

	if s.chat != nil {
		tool := mcp.NewTool(AgriBotTool,
			mcp.WithDescription("Talk to AgriBot. The conversation is stored on the server; pass conversationId to continue one."),
			mcp.WithString("message", mcp.Required(), mcp.Description("The farmer's message")),
			mcp.WithString("conversationId", mcp.Description("Conversation to continue (optional)")),
		)
		s.mcpServer.AddTool(tool, s.handleAgriBot)
	}
	return nil
}

// actionHandler runs one action. Failures are reported as tool errors
// carrying the same structured result as successes.
func (s *Server) actionHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := s.runner.Run(ctx, name, request.GetArguments())
		text, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encode result: %w", err)
		}
		res := mcp.NewToolResultStructured(result, string(text))
		if !result.OK() {
			slog.Debug("MCP tool failed", "action", name, "kind", result.Error.Kind)
			res.IsError = true
		}
		return res, nil
	}
}

func (s *Server) handleAgriBot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	message, _ := args["message"].(string)
	id, _ := args["conversationId"].(string)

	turn, err := s.chat.Send(ctx, id, message)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", domain.KindOf(err), err)), nil
	}
	out := map[string]any{"conversationId": turn.ConversationID, "response": turn.Reply}
	return mcp.NewToolResultStructured(out, turn.Reply), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ActionsURI, "Registered actions",
		mcp.WithResourceDescription("Name, description and input/output JSON Schemas of every action"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		specs := s.runner.Actions()
		infos := make([]domain.ActionInfo, 0, len(specs))
		for _, spec := range specs {
			infos = append(infos, spec.Info())
		}
		jsonBytes, err := json.Marshal(infos)
		if err != nil {
			return nil, fmt.Errorf("failed to encode actions: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ActionsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(SeasonalURI, "Seasonal planning calendar",
		mcp.WithResourceDescription("Planting and harvest windows of common crops"),
		mcp.WithMIMEType("text/markdown"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		cal, err := actions.Seasonal()
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      SeasonalURI,
				MIMEType: "text/markdown",
				Text:     cal.Markdown(),
			},
		}, nil
	})
}
