package protocol

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/coreos/pkg/capnslog"
	"golang.org/x/net/context"

	"github.com/coreos/jbod"
)

var clog = capnslog.NewPackageLogger("github.com/coreos/jbod", "protocol")

const connectTimeout = 2 * time.Second

var _ jbod.Device = &Client{}

// Client is the session with a remote array. It owns at most one connection
// and keeps exactly one request outstanding on it.
type Client struct {
	mut       sync.Mutex
	conn      net.Conn
	blockSize int
	scratch   []byte
}

func NewClient(blockSize int) *Client {
	return &Client{blockSize: blockSize}
}

// Dial returns a client connected to addr, a host:port pair.
func Dial(addr string, blockSize int) (*Client, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("bad port %q: %v", portStr, err)
	}
	c := NewClient(blockSize)
	if err := c.Connect(host, uint16(port)); err != nil {
		return nil, err
	}
	return c, nil
}

// Connect opens the connection. On failure the client is left disconnected.
func (c *Client) Connect(host string, port uint16) error {
	c.mut.Lock()
	defer c.mut.Unlock()
	if c.conn != nil {
		return jbod.ErrConnected
	}
	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))
	conn, err := net.DialTimeout("tcp", addr, connectTimeout)
	if err != nil {
		return err
	}
	clog.Debugf("connected to %s", addr)
	c.conn = conn
	return nil
}

// Disconnect closes the connection. It is a no-op when not connected.
func (c *Client) Disconnect() error {
	c.mut.Lock()
	defer c.mut.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) Connected() bool {
	c.mut.Lock()
	defer c.mut.Unlock()
	return c.conn != nil
}

// Close is Disconnect, so a Client can be used as a jbod.DeviceCloser.
func (c *Client) Close() error {
	return c.Disconnect()
}

// Execute sends op and waits for its response. A read-block response is
// read into block. The response must echo the opcode and report success.
// If ctx carries a deadline it bounds the whole round trip; otherwise the
// call blocks until the array answers or the stream fails.
func (c *Client) Execute(ctx context.Context, op jbod.Op, block []byte) error {
	c.mut.Lock()
	defer c.mut.Unlock()
	if c.conn == nil {
		return jbod.ErrNotConnected
	}
	cmd := op.Command.String()
	promOps.WithLabelValues(cmd).Inc()
	err := c.roundTrip(ctx, op, block)
	if err != nil {
		promOpFailures.WithLabelValues(cmd).Inc()
		clog.Debugf("%s failed: %v", op, err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, op jbod.Op, block []byte) error {
	if op.Command == jbod.CmdReadBlock && len(block) != c.blockSize {
		return fmt.Errorf("%w: read-block into %d bytes", jbod.ErrBadBlockSize, len(block))
	}
	pkt, err := EncodeRequest(op, block, c.blockSize)
	if err != nil {
		return err
	}
	deadline, _ := ctx.Deadline()
	if err := c.conn.SetDeadline(deadline); err != nil {
		return c.drop(err)
	}
	clog.Tracef("sending %s", op)
	if err := writeFull(c.conn, pkt); err != nil {
		return c.drop(err)
	}

	// Whatever the header announces is drained into scratch; the caller's
	// block is only touched once the response is known good.
	if c.scratch == nil {
		c.scratch = make([]byte, c.blockSize)
	}
	h, err := ReadPacket(c.conn, c.blockSize, c.scratch)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("%w: connection closed", jbod.ErrShortPacket)
		}
		return c.drop(err)
	}
	if h.Opcode != op.Pack() {
		return fmt.Errorf("%w: sent %#x, got %#x", jbod.ErrOpMismatch, op.Pack(), h.Opcode)
	}
	if !h.OK() {
		return fmt.Errorf("%w: %s returned %d", jbod.ErrStatus, op, h.Status)
	}
	if op.Command == jbod.CmdReadBlock {
		if !h.HasPayload(c.blockSize) {
			return fmt.Errorf("%w: read-block response without a block", jbod.ErrBadLength)
		}
		copy(block, c.scratch)
	}
	return nil
}

// drop closes a connection whose stream position is no longer known, so no
// later request can be paired with a stale response.
func (c *Client) drop(err error) error {
	clog.Warningf("dropping connection to %s: %v", c.conn.RemoteAddr(), err)
	c.conn.Close()
	c.conn = nil
	return err
}
