// Package lsp implements a Language Server Protocol server that hosts one
// editor view per open document. It pushes link annotations to the client
// and sends alias replacements back as workspace edits.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/aidanlsb/sld/internal/config"
	"github.com/aidanlsb/sld/internal/index"
	"github.com/aidanlsb/sld/internal/rules"
)

var errExit = errors.New("exit requested")

// Options configures a Server.
type Options struct {
	VaultPath  string
	Debug      bool
	Global     *config.Config
	ExtraRules []rules.PrefixRule

	// Input and Output default to stdin and stdout.
	Input  io.Reader
	Output io.Writer
}

// Server is the sld LSP server.
type Server struct {
	vaultPath  string
	debug      bool
	global     *config.Config
	extraRules []rules.PrefixRule

	rules    *rules.Set
	vaultCfg *config.VaultConfig
	db       *index.Database

	documents *DocumentManager

	input  *bufio.Reader
	output io.Writer
	mu     sync.Mutex // Protects output writes

	nextID   int
	requests map[string]pendingEdit // outgoing request id -> edit

	shutdown bool
}

// NewServer creates a new LSP server.
func NewServer(opts Options) *Server {
	in, out := opts.Input, opts.Output
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Server{
		vaultPath:  opts.VaultPath,
		debug:      opts.Debug,
		global:     opts.Global,
		extraRules: opts.ExtraRules,
		documents:  NewDocumentManager(),
		input:      bufio.NewReader(in),
		output:     out,
		requests:   make(map[string]pendingEdit),
	}
}

// Run processes messages until the client exits or the input ends.
func (s *Server) Run(ctx context.Context) error {
	if s.vaultPath != "" {
		if err := s.initialize(); err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
	}
	defer s.close()

	s.logDebug("sld LSP server started for vault: %s", s.vaultPath)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := s.handleNextMessage()
		switch {
		case err == nil:
		case errors.Is(err, errExit), errors.Is(err, io.EOF):
			return nil
		default:
			s.logDebug("Error handling message: %v", err)
		}
		s.afterMessage()
	}
}

// initialize loads configuration, resolves rules and opens the index.
func (s *Server) initialize() error {
	vc, err := config.LoadVaultConfig(s.vaultPath)
	if err != nil {
		return err
	}
	s.vaultCfg = vc
	s.rules = config.Resolve(s.global, vc, s.extraRules)

	if !vc.IndexEnabled() {
		return nil
	}
	db, err := index.Open(s.vaultPath)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	s.db = db
	return nil
}

func (s *Server) close() {
	for _, doc := range s.documents.All() {
		s.documents.Close(doc.URI)
	}
	if s.db != nil {
		s.db.Close()
	}
}

// handleNextMessage reads and processes a single message.
func (s *Server) handleNextMessage() error {
	contentLength := -1
	for {
		line, err := s.input.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "Content-Length:"); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("bad Content-Length %q", v)
			}
			contentLength = n
		}
	}
	if contentLength < 0 {
		return fmt.Errorf("no Content-Length header")
	}

	content := make([]byte, contentLength)
	if _, err := io.ReadFull(s.input, content); err != nil {
		return err
	}

	var msg jsonRPCMessage
	if err := json.Unmarshal(content, &msg); err != nil {
		return fmt.Errorf("failed to parse message: %w", err)
	}

	if msg.Method == "" {
		return s.handleResponse(msg)
	}
	s.logDebug("Received: %s", msg.Method)
	return s.dispatch(msg)
}

// dispatch routes a message to the appropriate handler.
func (s *Server) dispatch(msg jsonRPCMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		s.shutdown = true
		return s.sendResult(msg.ID, nil)
	case "exit":
		return errExit
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case MethodDidChangeSelection:
		return s.handleDidChangeSelection(msg)
	case MethodDidChangeVisibleRange:
		return s.handleDidChangeVisibleRange(msg)
	case MethodReloadConfig:
		return s.handleReloadConfig(msg)
	default:
		if msg.ID != nil {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found: "+msg.Method)
		}
		s.logDebug("Unhandled method: %s", msg.Method)
		return nil
	}
}

// afterMessage runs deferred editor work and pushes changed annotations.
func (s *Server) afterMessage() {
	for _, doc := range s.documents.All() {
		if err := doc.View.Drain(); err != nil {
			s.logDebug("%s: %v", doc.URI, err)
		}
		if doc.dirty {
			doc.dirty = false
			if err := s.publishAnnotations(doc); err != nil {
				s.logDebug("Failed to publish annotations: %v", err)
			}
		}
	}
}

// sendResult sends a successful response.
func (s *Server) sendResult(id any, result any) error {
	return s.send(jsonRPCResponse{JSONRPC: "2.0", ID: id, Result: result})
}

// sendError sends an error response.
func (s *Server) sendError(id any, code int, message string) error {
	return s.send(jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &jsonRPCError{Code: code, Message: message},
	})
}

// sendNotification sends a notification (no response expected).
func (s *Server) sendNotification(method string, params any) error {
	return s.send(jsonRPCMessage{JSONRPC: "2.0", Method: method, Params: mustMarshal(params)})
}

// sendRequest sends a server-to-client request and remembers the edit it
// carries until the client answers.
func (s *Server) sendRequest(method string, edit pendingEdit, params any) error {
	s.nextID++
	id := "sld-" + strconv.Itoa(s.nextID)
	s.requests[id] = edit
	return s.send(jsonRPCMessage{JSONRPC: "2.0", ID: id, Method: method, Params: mustMarshal(params)})
}

// send writes a JSON-RPC message to the output.
func (s *Server) send(msg any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.output, "Content-Length: %d\r\n\r\n", len(content)); err != nil {
		return err
	}
	_, err = s.output.Write(content)
	return err
}

// logDebug logs a debug message to stderr if debug mode is enabled.
func (s *Server) logDebug(format string, args ...any) {
	if s.debug {
		fmt.Fprintf(os.Stderr, "[sld-lsp] "+format+"\n", args...)
	}
}

func uriToPath(uri string) string {
	if u, err := url.Parse(uri); err == nil && u.Scheme == "file" {
		return filepath.FromSlash(u.Path)
	}
	return strings.TrimPrefix(uri, "file://")
}

func pathToURI(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

// JSON-RPC types

const (
	codeInvalidParams  = -32602
	codeMethodNotFound = -32601
)

type jsonRPCMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *jsonRPCError   `json:"error,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      any           `json:"id"`
	Result  any           `json:"result,omitempty"`
	Error   *jsonRPCError `json:"error,omitempty"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
