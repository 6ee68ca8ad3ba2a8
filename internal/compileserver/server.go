// Package compileserver implements `srcc serve`: a long-lived process
// that accepts one WebSocket connection per editor/IDE client and runs
// the compiler pipeline on demand, streaming back one JSON message per
// stage instead of the single C file a batch run produces.
//
// A gorilla/websocket connection is wrapped in an http.Server with a
// goroutine-per-connection read loop and a mutex-guarded client registry,
// exposing a fixed request/response protocol instead of an open
// connect/send/receive relay: a connection sends one Request per compile
// and reads back a Stage message per pipeline stage followed by a Done or
// Error message.
package compileserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"srcc/internal/errors"
	"srcc/internal/pipeline"
)

// Request is the single message a client sends per compile.
type Request struct {
	File      string `json:"file"`
	Source    string `json:"source"`
	OptLevel  int    `json:"optLevel"`
	Verbose   bool   `json:"verbose"`
	NoRuntime bool   `json:"noRuntime"`
}

// Message is the envelope for every response frame. Stage is one of
// "tokens", "ast", "typed", "optimized", "c", "error", or "done";
// Text is set for the stage messages, Err for "error", and neither for
// "done".
type Message struct {
	Stage string `json:"stage"`
	Text  string `json:"text,omitempty"`
	Err   *Error `json:"error,omitempty"`
}

// Error mirrors errors.CompileError's fields across the wire.
type Error struct {
	Kind    string `json:"kind"`
	File    string `json:"file"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Server accepts WebSocket connections and serves one compile per
// request/response round trip. MaxConcurrent bounds how many compiles run
// at once across all connections with a buffered-channel semaphore; a
// compile request beyond that limit waits for a free slot.
type Server struct {
	Address       string
	Port          int
	MaxConcurrent int

	upgrader websocket.Upgrader
	sem      chan struct{}

	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

// New constructs a Server. maxConcurrent <= 0 defaults to 4.
func New(address string, port int, maxConcurrent int) *Server {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Server{
		Address:       address,
		Port:          port,
		MaxConcurrent: maxConcurrent,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sem:     make(chan struct{}, maxConcurrent),
		clients: make(map[string]*websocket.Conn),
	}
}

// ListenAndServe blocks, serving WebSocket compile requests until ctx is
// cancelled. It uses an errgroup so the HTTP server's goroutine and the
// context-cancellation shutdown path are both observed by the same Wait.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/compile", s.handleConn)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.Address, s.Port),
		Handler: mux,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("compileserver: listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleConn(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("compileserver: upgrade: %v", err)
		return
	}
	id := uuid.NewString()

	s.mu.Lock()
	s.clients[id] = conn
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, id)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		s.handleRequest(conn, req)
	}
}

func (s *Server) handleRequest(conn *websocket.Conn, req Request) {
	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	opts := pipeline.Options{OptLevel: req.OptLevel, Verbose: req.Verbose, NoRuntime: req.NoRuntime}
	res, err := pipeline.Run(req.File, []byte(req.Source), opts)

	if res.Tokens != nil {
		send(conn, Message{Stage: "tokens", Text: pipeline.DumpTokens(res.Tokens)})
	}
	if res.AST != nil {
		send(conn, Message{Stage: "ast", Text: pipeline.DumpTree(res.AST)})
	}
	if res.Typed != nil {
		send(conn, Message{Stage: "typed", Text: pipeline.DumpTree(res.Typed)})
	}
	if res.Optimized != nil {
		send(conn, Message{Stage: "optimized", Text: pipeline.DumpTree(res.Optimized)})
	}

	if err != nil {
		send(conn, Message{Stage: "error", Err: toWireError(err)})
		return
	}
	send(conn, Message{Stage: "c", Text: res.C})
	send(conn, Message{Stage: "done"})
}

func send(conn *websocket.Conn, msg Message) {
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	conn.WriteMessage(websocket.TextMessage, b)
}

func toWireError(err error) *Error {
	ce, ok := err.(*errors.CompileError)
	if !ok {
		return &Error{Message: err.Error()}
	}
	return &Error{
		Kind:    string(ce.Kind),
		File:    ce.File,
		Line:    ce.Line,
		Message: ce.Message,
	}
}
