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

	"github.com/aretw0/shipyard/internal/logging"
	"github.com/aretw0/shipyard/pkg/delivery"
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/pipeline"
	"github.com/aretw0/shipyard/pkg/schema"
	"github.com/aretw0/shipyard/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const catalogURI = "shipyard://generators"

// GeneratorSummary describes a generator to MCP clients.
type GeneratorSummary struct {
	Kind        string            `json:"kind" jsonschema_description:"Generator kind passed to generate"`
	Filename    string            `json:"filename" jsonschema_description:"Name of the produced archive"`
	Description string            `json:"description,omitempty"`
	Fields      map[string]string `json:"fields" jsonschema_description:"Configuration fields and their types"`
}

// CatalogResponse lists every generator.
type CatalogResponse struct {
	Generators []GeneratorSummary `json:"generators"`
}

// GenerateResponse reports a written archive.
type GenerateResponse struct {
	Kind      string `json:"kind"`
	Filename  string `json:"filename"`
	Path      string `json:"path" jsonschema_description:"Where the archive was written"`
	Bytes     int    `json:"bytes"`
	Documents int    `json:"documents" jsonschema_description:"Uploaded documents accepted for this run"`
}

// Server exposes the generator catalog as an MCP server.
type Server struct {
	sessions   *session.Manager
	dispatcher *pipeline.Dispatcher
	outputDir  string
	logger     *slog.Logger
	mcpServer  *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for tool calls.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOutputDir sets where archives go when a call names no output_dir.
func WithOutputDir(dir string) Option {
	return func(s *Server) {
		s.outputDir = dir
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, dispatcher *pipeline.Dispatcher, version string, opts ...Option) *Server {
	s := &Server{
		sessions:   sessions,
		dispatcher: dispatcher,
		outputDir:  ".",
		logger:     logging.NewNop(),
		mcpServer:  server.NewMCPServer("shipyard-mcp", strings.TrimSpace(version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

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

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_generators",
		mcp.WithDescription("List the available generators and their configuration fields."),
		mcp.WithOutputSchema[CatalogResponse](),
	), mcp.NewStructuredToolHandler(s.handleListGenerators))

	s.mcpServer.AddTool(mcp.NewTool("generate",
		mcp.WithDescription("Run a generator over uploaded documents and the optional baseline dataset, writing the plugin archive to disk."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Generator kind, see list_generators")),
		mcp.WithString("documents", mcp.Description(`JSON array of {"path","content"} data files (optional)`)),
		mcp.WithBoolean("include_baseline", mcp.Description("Prepend the baseline game data (default false)")),
		mcp.WithString("fields", mcp.Description("JSON object of generator configuration fields (optional)")),
		mcp.WithString("output_dir", mcp.Description("Directory for the archive (optional)")),
		mcp.WithOutputSchema[GenerateResponse](),
	), mcp.NewStructuredToolHandler(s.handleGenerate))
}

func (s *Server) catalog() CatalogResponse {
	defs := s.dispatcher.Catalog().Definitions()
	resp := CatalogResponse{Generators: make([]GeneratorSummary, 0, len(defs))}
	for _, def := range defs {
		fields := make(map[string]string, len(def.Schema))
		for _, name := range def.Fields() {
			fields[name] = def.Schema[name].Name()
		}
		resp.Generators = append(resp.Generators, GeneratorSummary{
			Kind:        string(def.Kind),
			Filename:    def.Filename,
			Description: def.Description,
			Fields:      fields,
		})
	}
	return resp
}

func (s *Server) handleListGenerators(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CatalogResponse, error) {
	return s.catalog(), nil
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (GenerateResponse, error) {
	kind, _ := args["kind"].(string)
	includeBaseline, _ := args["include_baseline"].(bool)

	var docs []domain.SourceEntry
	if raw, ok := args["documents"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &docs); err != nil {
			return GenerateResponse{}, fmt.Errorf("documents: %w", err)
		}
	}
	fields := map[string]any{}
	if raw, ok := args["fields"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return GenerateResponse{}, fmt.Errorf("fields: %w", err)
		}
	}
	outDir := s.outputDir
	if dir, ok := args["output_dir"].(string); ok && dir != "" {
		outDir = dir
	}

	// Each call runs in a throwaway session so uploads never leak between calls.
	sess, err := s.sessions.Start(ctx)
	if err != nil {
		return GenerateResponse{}, err
	}
	defer func() {
		if err := s.sessions.Delete(context.WithoutCancel(ctx), sess.ID); err != nil {
			s.logger.Warn("MCP generate: failed to discard session", "session_id", sess.ID, "err", err)
		}
	}()

	accepted := 0
	for _, doc := range docs {
		ok, err := sess.Uploads.Add(ctx, doc.Path, "text/plain", doc.Content)
		if err != nil {
			return GenerateResponse{}, err
		}
		if ok {
			accepted++
		}
	}

	deliverer := delivery.NewDirDeliverer(outDir)
	artifact, err := s.dispatcher.Generate(ctx, sess, pipeline.Request{
		Kind:            domain.GeneratorKind(kind),
		IncludeBaseline: includeBaseline,
		Fields:          fields,
	}, deliverer)
	if err != nil {
		return GenerateResponse{}, describe(err)
	}

	return GenerateResponse{
		Kind:      kind,
		Filename:  artifact.Filename,
		Path:      deliverer.LastPath(),
		Bytes:     artifact.Size(),
		Documents: accepted,
	}, nil
}

// describe flattens validation failures into one line per field.
func describe(err error) error {
	fieldErrs := schema.FieldErrors(err)
	if len(fieldErrs) == 0 {
		return err
	}
	lines := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		lines[i] = fmt.Sprintf("%s: %s", fe.Key, fe.Reason)
	}
	return errors.New("invalid fields: " + strings.Join(lines, "; "))
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(catalogURI, "Generator Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.catalog())
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      catalogURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
