// Package ipc provides the localhost control endpoint for a running
// instance. Binding the deterministic port doubles as the single-instance
// lock; stop/status subcommands talk to it with a one-line text protocol.
package ipc

import (
	"bufio"
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrAlreadyRunning indicates another instance already holds the endpoint.
var ErrAlreadyRunning = errors.New("instance already running")

// Callbacks defines control actions a remote command can trigger.
type Callbacks struct {
	OnStatus func() (state string, remaining time.Duration)
	OnStop   func()
}

// Server owns the control listener.
type Server struct {
	listener  net.Listener
	address   string
	callbacks Callbacks
	logger    *zap.Logger
	done      chan struct{}
}

// Listen binds the instance's control port. Failing to bind means another
// instance is already running.
func Listen(appName string, callbacks Callbacks, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	address := fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, ErrAlreadyRunning
	}
	server := &Server{
		listener:  listener,
		address:   address,
		callbacks: callbacks,
		logger:    logger,
		done:      make(chan struct{}),
	}
	go server.serve()
	return server, nil
}

// Address returns the bound address.
func (server *Server) Address() string {
	return server.address
}

// Close releases the endpoint and the single-instance lock.
func (server *Server) Close() error {
	err := server.listener.Close()
	<-server.done
	return err
}

func (server *Server) serve() {
	defer close(server.done)
	for {
		conn, err := server.listener.Accept()
		if err != nil {
			return
		}
		server.handle(conn)
	}
}

func (server *Server) handle(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return
	}
	command := strings.TrimSpace(line)
	server.logger.Debug("control command received", zap.String("command", command))

	switch command {
	case "status":
		state, remaining := "idle", time.Duration(0)
		if server.callbacks.OnStatus != nil {
			state, remaining = server.callbacks.OnStatus()
		}
		fmt.Fprintf(conn, "%s %d\n", state, int64(remaining.Seconds()))
	case "stop":
		if server.callbacks.OnStop != nil {
			server.callbacks.OnStop()
		}
		fmt.Fprintln(conn, "ok")
	default:
		fmt.Fprintln(conn, "unknown command")
	}
}

func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
