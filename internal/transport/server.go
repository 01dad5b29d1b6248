package transport

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/dovydenkovas/learned-cat/internal/exam"
)

// ioTimeout bounds a single request/response exchange with one client.
// A stalled client only loses its own connection; the engine loop has
// long since moved on.
const ioTimeout = 30 * time.Second

// Server accepts exam clients and routes each request through the
// coordinator, blocking per connection until the engine's reply arrives.
type Server struct {
	coord *exam.Coordinator
	log   zerolog.Logger

	listener net.Listener
}

// NewServer binds the listen address.
func NewServer(addr string, coord *exam.Coordinator, log zerolog.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		coord:    coord,
		log:      log.With().Str("component", "transport").Logger(),
		listener: ln,
	}, nil
}

// Addr is the bound listen address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Run serves connections until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info().Stringer("addr", s.listener.Addr()).Msg("Exam server listening")

	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Error().Err(err).Msg("Accept failed")
			continue
		}
		go s.handle(ctx, conn)
	}
}

// handle runs one request/response exchange and closes the connection.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(ioTimeout))

	var req Request
	if err := ReadFrame(conn, &req); err != nil {
		s.log.Warn().Err(err).Stringer("peer", conn.RemoteAddr()).Msg("Bad request frame")
		_ = WriteFrame(conn, Response{Kind: KindError, Error: &ErrorPayload{
			Code:    CodeBadRequest,
			Message: "malformed request",
		}})
		return
	}

	examReq, ok := toEngineRequest(req)
	if !ok {
		_ = WriteFrame(conn, Response{Kind: KindError, Error: &ErrorPayload{
			Code:    CodeBadRequest,
			Message: "unknown operation or missing field",
		}})
		return
	}

	resp, err := s.coord.Dispatch(ctx, examReq)
	if err != nil {
		var collab *exam.CollaboratorError
		if errors.As(err, &collab) {
			s.log.Error().Err(err).Str("user", req.User).Str("test", req.Test).
				Msg("Collaborator failure")
		}
	}

	if err := WriteFrame(conn, encodeResponse(resp, err)); err != nil {
		s.log.Warn().Err(err).Stringer("peer", conn.RemoteAddr()).Msg("Reply write failed")
	}
}

// toEngineRequest validates the wire request before it may enter the
// engine loop.
func toEngineRequest(req Request) (exam.Request, bool) {
	if req.User == "" {
		return exam.Request{}, false
	}
	switch req.Op {
	case OpList:
		return exam.Request{Op: exam.OpListTests, User: req.User}, true
	case OpQuestion:
		if req.Test == "" {
			return exam.Request{}, false
		}
		return exam.Request{Op: exam.OpRequestQuestion, User: req.User, Test: req.Test}, true
	case OpAnswer:
		if req.Test == "" {
			return exam.Request{}, false
		}
		return exam.Request{
			Op:     exam.OpSubmitAnswer,
			User:   req.User,
			Test:   req.Test,
			Answer: req.Answer,
		}, true
	default:
		return exam.Request{}, false
	}
}
