package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"pagesense/internal/browser"
	"pagesense/internal/config"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Server wires the MCP runtime to the tab/session manager.
type Server struct {
	cfg       config.Config
	sessions  *browser.SessionManager
	tools     map[string]Tool
	mcpServer *mcpserver.MCPServer
}

// Tool describes the contract for MCP tool implementations.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// NewServer constructs the pagesense MCP server and registers all tools.
func NewServer(cfg config.Config, sessions *browser.SessionManager) (*Server, error) {
	mcpSrv := mcpserver.NewMCPServer(
		cfg.Server.Name,
		cfg.Server.Version,
		mcpserver.WithResourceCapabilities(true, true),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
		mcpserver.WithPromptCapabilities(false),
		mcpserver.WithRecovery(),
	)

	server := &Server{
		cfg:       cfg,
		sessions:  sessions,
		tools:     make(map[string]Tool),
		mcpServer: mcpSrv,
	}

	server.registerAllTools()
	return server, nil
}

// Start launches the stdio server (Claude/Gemini CLI default).
func (s *Server) Start(ctx context.Context) error {
	stdio := mcpserver.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// StartSSE hosts the server over HTTP using SSE endpoints with graceful shutdown.
func (s *Server) StartSSE(ctx context.Context, port int) error {
	sseServer := mcpserver.NewSSEServer(s.mcpServer, mcpserver.WithBaseURL("http://localhost:"+strconv.Itoa(port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    ":" + strconv.Itoa(port),
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Printf("SSE server shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// ExecuteTool executes a tool directly (used by demos/tests).
func (s *Server) ExecuteTool(name string, args map[string]interface{}) (interface{}, error) {
	tool, exists := s.tools[name]
	if !exists {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	return tool.Execute(context.Background(), args)
}

func (s *Server) registerAllTools() {
	// Navigation and snapshotting
	s.registerTool(&NavigateTool{sessions: s.sessions})
	s.registerTool(&SnapshotTool{sessions: s.sessions})
	s.registerTool(&PageDiffTool{sessions: s.sessions})
	s.registerTool(&FocusedSnapshotTool{sessions: s.sessions})
	s.registerTool(&WaitForChangesTool{sessions: s.sessions})

	// Interaction
	s.registerTool(&ClickTool{sessions: s.sessions})
	s.registerTool(&TypeTextTool{sessions: s.sessions})
	s.registerTool(&SelectOptionTool{sessions: s.sessions})
	s.registerTool(&ScrollDownTool{sessions: s.sessions})
	s.registerTool(&ScrollUpTool{sessions: s.sessions})
	s.registerTool(&ScrollToRefTool{sessions: s.sessions})

	// Tabs
	s.registerTool(&OpenTabTool{sessions: s.sessions})
	s.registerTool(&ListTabsTool{sessions: s.sessions})
	s.registerTool(&SwitchTabTool{sessions: s.sessions})
	s.registerTool(&CloseTabTool{sessions: s.sessions})

	// Task context
	s.registerTool(&SetTaskContextTool{sessions: s.sessions})
	s.registerTool(&ClearTaskContextTool{sessions: s.sessions})

	// Extraction and screenshots
	s.registerTool(&ExtractTool{sessions: s.sessions})
	s.registerTool(&ScreenshotTool{sessions: s.sessions})

	// Auth profiles
	s.registerTool(&SaveAuthTool{sessions: s.sessions})
	s.registerTool(&LoadAuthTool{sessions: s.sessions})
	s.registerTool(&ListAuthTool{sessions: s.sessions})
	s.registerTool(&DeleteAuthTool{sessions: s.sessions})

	// Recordings
	s.registerTool(&StartRecordingTool{sessions: s.sessions})
	s.registerTool(&StopRecordingTool{sessions: s.sessions})
	s.registerTool(&ReplayRecordingTool{sessions: s.sessions})
	s.registerTool(&ListRecordingsTool{sessions: s.sessions})
	s.registerTool(&DeleteRecordingTool{sessions: s.sessions})

	// Supplemental fact log
	s.registerTool(&QueryFactsTool{sessions: s.sessions})
	s.registerTool(&AwaitFactTool{sessions: s.sessions})
}

func (s *Server) registerTool(tool Tool) {
	s.tools[tool.Name()] = tool

	schema, err := json.Marshal(tool.InputSchema())
	if err != nil {
		schema = json.RawMessage(`{"type":"object"}`)
	}

	mcpTool := mcp.NewToolWithRawSchema(tool.Name(), tool.Description(), schema)
	s.mcpServer.AddTool(mcpTool, s.wrapTool(tool))
}

func (s *Server) wrapTool(tool Tool) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			args = map[string]interface{}{}
		}

		result, err := tool.Execute(ctx, args)
		if err != nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{mcp.NewTextContent(fmt.Sprintf("tool %s failed: %v", tool.Name(), err))},
				IsError: true,
			}, nil
		}

		payload := marshalToolPayload(tool.Name(), result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(string(payload))},
			IsError: false,
		}, nil
	}
}

func marshalToolPayload(toolName string, result interface{}) []byte {
	payload, marshalErr := json.Marshal(result)
	if marshalErr == nil {
		return payload
	}

	fallback := map[string]interface{}{
		"success": false,
		"error":   fmt.Sprintf("tool %s returned non-serializable payload: %v", toolName, marshalErr),
	}
	payload, fallbackErr := json.Marshal(fallback)
	if fallbackErr == nil {
		return payload
	}

	return []byte(fmt.Sprintf(`{"success":false,"error":"tool %s failed to encode payload"}`, toolName))
}
