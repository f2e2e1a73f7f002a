package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/nest/internal/logging"
	"github.com/aretw0/nest/internal/presentation/graph"
	"github.com/aretw0/nest/pkg/domain"
	"github.com/aretw0/nest/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Resource URIs.
const (
	GraphURI        = "nest://graph"
	GraphMermaidURI = "nest://graph/mermaid"
)

// SessionArgs selects a session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// StartArgs are the arguments of start_session.
type StartArgs struct {
	SessionID string `json:"session_id,omitempty"`
}

// DispatchArgs are the arguments of dispatch_event.
type DispatchArgs struct {
	SessionID string `json:"session_id"`
	Event     string `json:"event"`
}

// SessionResponse is the structured result of the session tools.
type SessionResponse struct {
	SessionID string   `json:"session_id" jsonschema_description:"The session identifier"`
	Path      []string `json:"path" jsonschema_description:"Active state keys, root first"`
	Phase     string   `json:"phase" jsonschema_description:"Phase reached by the last tick"`
	Event     string   `json:"event" jsonschema_description:"Last dispatched event"`
	Finished  bool     `json:"finished" jsonschema_description:"Indicates if the process has finished"`
}

// TransitionView is one enabled rule.
type TransitionView struct {
	From  string `json:"from" jsonschema_description:"Active state key at the rule's level"`
	Event string `json:"event" jsonschema_description:"Event name, or * for any event"`
	To    string `json:"to" jsonschema_description:"Target state key, empty to leave the level"`
}

// TransitionsResponse is the structured result of list_transitions.
type TransitionsResponse struct {
	Transitions []TransitionView `json:"transitions" jsonschema_description:"Enabled rules, outermost level first"`
}

// Server wraps a session engine and exposes it as an MCP Server.
type Server struct {
	engine    ports.SessionEngine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger of the server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.SessionEngine, version string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("nest-mcp", version),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a new session of the state machine and enter its initial states."),
		mcp.WithString("session_id", mcp.Description("Session identifier (optional, generated when omitted)")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("dispatch_event",
		mcp.WithDescription("Dispatch an event to a session. Fails if no enabled transition accepts it."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("event", mcp.Required(), mcp.Description("Event name")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleDispatch))

	s.mcpServer.AddTool(mcp.NewTool("get_snapshot",
		mcp.WithDescription("Get the active path of a session without changing it."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleSnapshot))

	s.mcpServer.AddTool(mcp.NewTool("list_transitions",
		mcp.WithDescription("List the transitions enabled from the active path of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[TransitionsResponse](),
	), mcp.NewStructuredToolHandler(s.handleTransitions))

	s.mcpServer.AddTool(mcp.NewTool("terminate_session",
		mcp.WithDescription("Leave every active state of a session and delete it."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
	), s.handleTerminate)
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, args StartArgs) (SessionResponse, error) {
	info, err := s.engine.Start(ctx, args.SessionID)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return sessionResponse(info), nil
}

func (s *Server) handleDispatch(ctx context.Context, _ mcp.CallToolRequest, args DispatchArgs) (SessionResponse, error) {
	if args.SessionID == "" {
		return SessionResponse{}, errors.New("session_id is required")
	}
	event, err := domain.SanitizeEvent(args.Event)
	if err != nil {
		s.logger.Warn("MCP dispatch: event rejected", "err", err, "size", len(args.Event))
		return SessionResponse{}, fmt.Errorf("event rejected: %w", err)
	}
	info, err := s.engine.Dispatch(ctx, args.SessionID, event)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("dispatch failed: %w", err)
	}
	return sessionResponse(info), nil
}

func (s *Server) handleSnapshot(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	info, err := s.engine.Snapshot(ctx, args.SessionID)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("snapshot failed: %w", err)
	}
	return sessionResponse(info), nil
}

func (s *Server) handleTransitions(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (TransitionsResponse, error) {
	transitions, err := s.engine.Transitions(ctx, args.SessionID)
	if err != nil {
		return TransitionsResponse{}, fmt.Errorf("list transitions failed: %w", err)
	}
	resp := TransitionsResponse{Transitions: make([]TransitionView, len(transitions))}
	for i, t := range transitions {
		resp.Transitions[i] = TransitionView{From: t.From, Event: t.Event, To: t.To}
	}
	return resp, nil
}

func (s *Server) handleTerminate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.engine.Terminate(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("terminate failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("session %s terminated", id)), nil
}

func sessionResponse(info *domain.SessionInfo) SessionResponse {
	return SessionResponse{
		SessionID: info.ID,
		Path:      info.Path,
		Phase:     info.Phase,
		Event:     info.Event,
		Finished:  info.Finished,
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "State Tree Definition",
		mcp.WithMIMEType("application/json"),
	), s.readGraph)

	s.mcpServer.AddResource(mcp.NewResource(GraphMermaidURI, "State Diagram",
		mcp.WithMIMEType("text/vnd.mermaid"),
	), s.readMermaid)
}

func (s *Server) readGraph(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.engine.Inspect())
	if err != nil {
		return nil, fmt.Errorf("failed to encode state tree: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GraphURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) readMermaid(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GraphMermaidURI,
			MIMEType: "text/vnd.mermaid",
			Text:     graph.GenerateMermaid(s.engine.Inspect(), nil),
		},
	}, nil
}
