// Package localserver serves admin commands on a Unix socket.
//
// A client writes one command line and reads the reply until the server
// closes the connection. Access is controlled by the socket's file mode, so
// commands need no credentials.
package localserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// connTimeout bounds a whole exchange.
	connTimeout = 10 * time.Second

	maxCommandLine = 1024
)

// Server represents the local management server.
type Server struct {
	path     string
	handler  *Handler
	logger   *slog.Logger
	listener net.Listener
	running  atomic.Bool
	wg       sync.WaitGroup
}

// New creates a server for socketPath.
func New(socketPath string, handler *Handler, log *slog.Logger) *Server {
	return &Server{
		path:    socketPath,
		handler: handler,
		logger:  log,
	}
}

// Listen creates the socket with mode 0600. A socket left behind by a
// previous process is replaced; any other file at the path is an error.
func (s *Server) Listen() error {
	if fi, err := os.Lstat(s.path); err == nil {
		if fi.Mode()&os.ModeSocket == 0 {
			return fmt.Errorf("localserver: %s exists and is not a socket", s.path)
		}
		if err := os.Remove(s.path); err != nil {
			return fmt.Errorf("localserver: remove stale socket: %w", err)
		}
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return err
	}
	if err := os.Chmod(s.path, 0600); err != nil {
		ln.Close()
		return err
	}

	s.listener = ln
	s.running.Store(true)
	return nil
}

// Serve accepts connections until Shutdown. Listen must have succeeded.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// ListenAndServe calls Listen then Serve.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Addr returns the socket path.
func (s *Server) Addr() string {
	return s.path
}

// Shutdown stops accepting, waits for open exchanges and removes the
// socket file.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var closeErr error
	if s.listener != nil {
		closeErr = s.listener.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return closeErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(connTimeout))

	line, err := bufio.NewReader(io.LimitReader(conn, maxCommandLine)).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		s.logger.Warn("admin command read failed", "error", err)
		return
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		replyError(conn, "empty command")
		return
	}

	s.logger.Info("admin command", "command", fields[0])
	if err := s.handler.Execute(conn, fields[0], fields[1:]); err != nil {
		s.logger.Warn("admin reply failed", "command", fields[0], "error", err)
	}
}

// Call sends cmd to the socket at path and returns the reply. A reply
// starting with ErrorPrefix is returned as an error.
func Call(ctx context.Context, path, cmd string) (string, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(connTimeout)
	}
	conn.SetDeadline(deadline)

	if _, err := io.WriteString(conn, cmd+"\n"); err != nil {
		return "", err
	}
	data, err := io.ReadAll(conn)
	if err != nil {
		return "", err
	}

	out := string(data)
	if msg, failed := strings.CutPrefix(out, ErrorPrefix); failed {
		return "", errors.New(strings.TrimSpace(msg))
	}
	return out, nil
}
