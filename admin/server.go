package admin

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"permanode/config"
)

const (
	readLimit    = 64 << 10
	writeTimeout = 10 * time.Second
)

// Server accepts admin websocket connections and answers each command
// with a Reply.
type Server struct {
	addr     string
	secret   []byte
	handler  Handler
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
	wg    sync.WaitGroup
}

func NewServer(cfg config.WebsocketConfig, handler Handler) *Server {
	return &Server{
		addr:    cfg.Address,
		secret:  []byte(cfg.AuthSecret),
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades authorized requests and serves commands until the
// peer disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := authorize(r, s.secret); err != nil {
		slog.WarnContext(r.Context(), "admin connection rejected", "remote", r.RemoteAddr, "error", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "admin upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	if !s.track(conn) {
		_ = conn.Close()
		return
	}
	defer s.untrack(conn)

	slog.InfoContext(r.Context(), "admin client connected", "remote", r.RemoteAddr)
	s.serve(context.WithoutCancel(r.Context()), conn)
}

func (s *Server) serve(ctx context.Context, conn *websocket.Conn) {
	conn.SetReadLimit(readLimit)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !errors.Is(err, net.ErrClosed) {
				slog.DebugContext(ctx, "admin connection closed", "error", err)
			}
			return
		}

		var reply Reply
		var cmd Command
		if err := cmd.UnmarshalJSON(data); err != nil {
			reply = errorReply(err)
		} else {
			reply = s.handler.Handle(ctx, cmd)
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			slog.WarnContext(ctx, "failed to write admin reply", "error", err)
			return
		}
	}
}

// track registers conn unless the server is shutting down.
func (s *Server) track(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conns != nil {
		delete(s.conns, conn)
	}
	s.mu.Unlock()
	_ = conn.Close()
	s.wg.Done()
}

// closeAll closes every open connection and refuses new ones.
func (s *Server) closeAll() {
	s.mu.Lock()
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()
	for conn := range conns {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
	s.wg.Wait()
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "admin channel listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		s.closeAll()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.closeAll()
	<-errc
	return err
}
