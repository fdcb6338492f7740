package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"preparser/internal/config"
	"preparser/internal/daemon"
	"preparser/internal/engine"
	"preparser/internal/logging"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires a daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	svc := &service{daemon: d, logger: logger}
	if err := rpcServer.RegisterName("Preparser", svc); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the server is closed.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
}

func domainNames(m engine.Mask) []string {
	domains := m.Domains()
	names := make([]string, 0, len(domains))
	for _, d := range domains {
		names = append(names, d.String())
	}
	return names
}

func (s *service) EnqueueParse(req EnqueueParseRequest, resp *EnqueueParseResponse) error {
	mask, err := config.ParseDomainNames(req.Domains)
	if err != nil {
		return err
	}
	id, err := s.daemon.EnqueueParse(req.SourcePath, mask, req.Interact, req.Subitems)
	if err != nil {
		return err
	}
	resp.RequestID = uint64(id)
	return nil
}

func (s *service) EnqueueThumbnail(req EnqueueThumbnailRequest, resp *EnqueueThumbnailResponse) error {
	seek := engine.SeekDescriptor{Ticks: req.Ticks, Fraction: req.Fraction}
	switch req.SeekKind {
	case "time":
		seek.Kind = engine.SeekByTime
	case "position":
		seek.Kind = engine.SeekByPosition
	default:
		seek.Kind = engine.SeekNone
	}
	if req.Precise {
		seek.Precision = engine.PrecisionPrecise
	}
	timeout := time.Duration(req.TimeoutSeconds) * time.Second
	id, err := s.daemon.EnqueueThumbnail(req.SourcePath, seek, timeout)
	if err != nil {
		return err
	}
	resp.RequestID = uint64(id)
	return nil
}

func (s *service) Cancel(req CancelRequest, resp *CancelResponse) error {
	resp.Cancelled = s.daemon.Cancel(engine.RequestID(req.RequestID))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status()
	resp.Running = status.Running
	resp.PID = status.PID
	resp.LockPath = status.LockPath
	resp.SocketPath = status.SocketPath
	resp.AuditPath = status.AuditPath
	resp.LiveRequests = status.LiveRequests
	resp.UptimeSecs = status.UptimeSecs
	return nil
}

func (s *service) Outcomes(req OutcomesRequest, resp *OutcomesResponse) error {
	outcomes, err := s.daemon.RecentOutcomes(context.Background(), req.Limit)
	if err != nil {
		return err
	}
	resp.Outcomes = make([]Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		resp.Outcomes = append(resp.Outcomes, Outcome{
			CorrelationID: o.CorrelationID,
			RequestID:     uint64(o.RequestID),
			Kind:          kindName(o.Kind),
			Domains:       domainNames(o.Domains),
			Status:        o.Status.String(),
			AcceptedAt:    o.AcceptedAt,
			TerminatedAt:  o.TerminatedAt,
		})
	}
	return nil
}

func kindName(k engine.Kind) string {
	if k == engine.KindThumbnail {
		return "thumbnail"
	}
	return "parse"
}
