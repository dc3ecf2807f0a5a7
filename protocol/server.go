package protocol

import (
	"errors"
	"io"
	"net"
	"sync"

	"golang.org/x/net/context"

	"github.com/coreos/jbod"
)

// Server exposes a jbod.Device over the protocol. Each connection is served
// strictly one request at a time; operations from all connections are
// serialized onto the device.
type Server struct {
	dev       jbod.Device
	lst       net.Listener
	blockSize int

	devMut sync.Mutex

	mu     sync.RWMutex // protects fields below
	closed bool
	conns  map[net.Conn]struct{}
	wg     sync.WaitGroup
}

func Serve(addr string, dev jbod.Device, blockSize int) (*Server, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &Server{
		dev:       dev,
		lst:       l,
		blockSize: blockSize,
		conns:     make(map[net.Conn]struct{}),
	}
	go srv.serve()
	return srv, nil
}

func (s *Server) ListenAddr() net.Addr {
	return s.lst.Addr()
}

func (s *Server) serve() {
	for {
		conn, err := s.lst.Accept()
		if err != nil {
			if !s.isClosed() {
				clog.Errorf("error listening: %v", err)
			}
			return
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()
		promConns.Inc()

		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		promConns.Dec()
		conn.Close()
		s.wg.Done()
	}()
	clog.Debugf("client connected from %s", conn.RemoteAddr())
	block := make([]byte, s.blockSize)
	for {
		err := s.handleOne(conn, block)
		if err == nil {
			continue
		}
		if err != io.EOF && !s.isClosed() {
			clog.Errorf("error handling %s: %v", conn.RemoteAddr(), err)
		}
		return
	}
}

func (s *Server) handleOne(conn net.Conn, block []byte) error {
	h, err := ReadPacket(conn, s.blockSize, block)
	if err != nil {
		return err
	}
	op := h.Op()
	promServedOps.WithLabelValues(op.Command.String()).Inc()

	status := StatusOK
	switch {
	case !op.Command.Valid():
		clog.Warningf("unknown command in opcode %#x", h.Opcode)
		status = StatusErr
	case op.Command == jbod.CmdWriteBlock && !h.HasPayload(s.blockSize):
		clog.Warningf("write-block from %s without a block", conn.RemoteAddr())
		status = StatusErr
	default:
		s.devMut.Lock()
		err = s.dev.Execute(context.TODO(), op, block)
		s.devMut.Unlock()
		if err != nil {
			clog.Debugf("%s: %v", op, err)
			status = StatusErr
		}
	}

	resp, err := EncodeResponse(op, status, block, s.blockSize)
	if err != nil {
		return err
	}
	// Echo the opcode exactly as received, reserved bits included.
	putHeader(resp, Header{Length: uint16(len(resp)), Opcode: h.Opcode, Status: status})
	return writeFull(conn, resp)
}

func (s *Server) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.closed
}

// Close stops accepting, drops every connection and waits for their
// handlers to return.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("protocol: server already closed")
	}
	s.closed = true
	err := s.lst.Close()
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	return err
}
