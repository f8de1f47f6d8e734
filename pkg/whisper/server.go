// Package whisper supervises a local whisper.cpp HTTP server so the
// backend can transcribe audio without an external API.
package whisper

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"
)

const (
	defaultHost    = "127.0.0.1"
	defaultPort    = 8080
	defaultThreads = 4
	readyTimeout   = 30 * time.Second
	stopTimeout    = 5 * time.Second
)

var ErrAlreadyRunning = errors.New("whisper server already running")

type ServerConfig struct {
	BinaryPath string
	ModelPath  string
	Host       string
	Port       int
	Threads    int
	Logger     *slog.Logger
}

// Server owns the whisper-server child process. When the configured port is
// already served, Start adopts that server instead of spawning one.
type Server struct {
	cfg    ServerConfig
	logger *slog.Logger

	mu      sync.RWMutex
	cmd     *exec.Cmd
	cancel  context.CancelFunc
	exited  chan struct{}
	running bool
	adopted bool
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if _, err := os.Stat(cfg.BinaryPath); err != nil {
		return nil, fmt.Errorf("whisper server binary: %w", err)
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("whisper model: %w", err)
	}
	if cfg.Host == "" {
		cfg.Host = defaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Threads == 0 {
		cfg.Threads = defaultThreads
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Server{cfg: cfg, logger: cfg.Logger.With("component", "whisper")}, nil
}

// Address is the base URL clients should post audio to.
func (s *Server) Address() string {
	return "http://" + net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Start launches the process and blocks until /health answers or ctx ends.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	if s.portInUse() {
		s.logger.Warn("port already in use, assuming whisper server is running", "addr", s.Address())
		s.running, s.adopted = true, true
		return nil
	}

	procCtx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(procCtx, s.cfg.BinaryPath,
		"-m", s.cfg.ModelPath,
		"--host", s.cfg.Host,
		"--port", strconv.Itoa(s.cfg.Port),
		"-t", strconv.Itoa(s.cfg.Threads),
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start whisper server: %w", err)
	}

	go s.pipe(stdout, "stdout")
	go s.pipe(stderr, "stderr")

	s.logger.Info("starting whisper server", "addr", s.Address(), "model", s.cfg.ModelPath)

	exited := make(chan struct{})
	go s.monitor(cmd, exited)

	if err := s.waitReady(ctx, exited); err != nil {
		cancel()
		<-exited
		return err
	}

	s.cmd, s.cancel, s.exited = cmd, cancel, exited
	s.running = true
	s.logger.Info("whisper server ready")
	return nil
}

// Stop interrupts the process and kills it if it has not exited in time.
// An adopted server is left alone.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	if s.adopted {
		s.adopted = false
		return nil
	}

	s.logger.Info("stopping whisper server")
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Signal(os.Interrupt)
	}
	select {
	case <-s.exited:
	case <-time.After(stopTimeout):
		s.logger.Warn("graceful shutdown timed out, killing whisper server")
		s.cancel()
		<-s.exited
	}
	s.cancel()
	return nil
}

func (s *Server) portInUse() bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port)), time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (s *Server) waitReady(ctx context.Context, exited <-chan struct{}) error {
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()

	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Address()+"/health", nil)
		if err != nil {
			return err
		}
		if resp, err := client.Do(req); err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("whisper server not ready: %w", ctx.Err())
		case <-exited:
			return errors.New("whisper server exited during startup")
		case <-ticker.C:
		}
	}
}

func (s *Server) pipe(r io.Reader, stream string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		s.logger.Debug(scanner.Text(), "stream", stream)
	}
}

func (s *Server) monitor(cmd *exec.Cmd, exited chan<- struct{}) {
	err := cmd.Wait()
	close(exited)

	s.mu.Lock()
	wasRunning := s.running
	s.running = false
	s.mu.Unlock()

	if wasRunning && err != nil {
		s.logger.Error("whisper server exited unexpectedly", "error", err)
	}
}
