// protocol is the framed request/response protocol spoken between a volume
// and a remote disk array.
//
// Every packet, in either direction, is an 8 byte header
//
//	length:u16 | opcode:u32 | status:u16
//
// in network byte order, followed by exactly one block of payload if and
// only if length is HeaderLen plus the block size.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/coreos/jbod"
)

const HeaderLen = 8

const (
	StatusOK  int16 = 0
	StatusErr int16 = -1
)

// Header is a decoded packet header.
type Header struct {
	Length uint16
	Opcode uint32
	Status int16
}

func (h Header) Op() jbod.Op {
	return jbod.UnpackOp(h.Opcode)
}

// HasPayload reports whether a block follows the header. It depends on the
// length alone.
func (h Header) HasPayload(blockSize int) bool {
	return int(h.Length) == HeaderLen+blockSize
}

// OK reports whether the status signals success.
func (h Header) OK() bool {
	return h.Status >= 0
}

func putHeader(buf []byte, h Header) {
	binary.BigEndian.PutUint16(buf[0:2], h.Length)
	binary.BigEndian.PutUint32(buf[2:6], h.Opcode)
	binary.BigEndian.PutUint16(buf[6:8], uint16(h.Status))
}

func parseHeader(buf []byte) Header {
	return Header{
		Length: binary.BigEndian.Uint16(buf[0:2]),
		Opcode: binary.BigEndian.Uint32(buf[2:6]),
		Status: int16(binary.BigEndian.Uint16(buf[6:8])),
	}
}

func encode(op jbod.Op, status int16, block []byte, withPayload bool, blockSize int) ([]byte, error) {
	length := HeaderLen
	if withPayload {
		if len(block) != blockSize {
			return nil, fmt.Errorf("%w: %s payload is %d bytes", jbod.ErrBadBlockSize, op, len(block))
		}
		length += blockSize
	}
	if length > 0xFFFF {
		return nil, fmt.Errorf("%w: %d", jbod.ErrBadLength, length)
	}
	pkt := make([]byte, length)
	putHeader(pkt, Header{
		Length: uint16(length),
		Opcode: op.Pack(),
		Status: status,
	})
	if withPayload {
		copy(pkt[HeaderLen:], block)
	}
	return pkt, nil
}

// EncodeRequest frames op for the wire. Only a write-block carries block;
// for every other command block is ignored.
func EncodeRequest(op jbod.Op, block []byte, blockSize int) ([]byte, error) {
	return encode(op, StatusOK, block, op.Command == jbod.CmdWriteBlock, blockSize)
}

// EncodeResponse frames the answer to op. Only a successful read-block
// carries block.
func EncodeResponse(op jbod.Op, status int16, block []byte, blockSize int) ([]byte, error) {
	withPayload := op.Command == jbod.CmdReadBlock && status >= 0
	return encode(op, status, block, withPayload, blockSize)
}

// readFull reads exactly len(buf) bytes from r. A stream that ends before the
// first byte returns io.EOF; one that ends later is a short packet.
func readFull(r io.Reader, buf []byte) error {
	off := 0
	for off != len(buf) {
		n, err := r.Read(buf[off:])
		off += n
		if err != nil {
			if off == len(buf) {
				return nil
			}
			if err == io.EOF && off == 0 {
				return io.EOF
			}
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return fmt.Errorf("%w: got %d of %d bytes", jbod.ErrShortPacket, off, len(buf))
			}
			return err
		}
	}
	return nil
}

// writeFull writes all of buf to w, tolerating partial writes that make
// progress.
func writeFull(w io.Writer, buf []byte) error {
	off := 0
	for off != len(buf) {
		n, err := w.Write(buf[off:])
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		off += n
	}
	return nil
}

// ReadPacket reads one packet from r. If the header announces a payload it
// is read into block, which must be blockSize bytes long. Any length other
// than a bare header or a header plus one block is rejected. io.EOF is
// returned only if the stream ended cleanly before the packet began.
func ReadPacket(r io.Reader, blockSize int, block []byte) (Header, error) {
	var hbuf [HeaderLen]byte
	if err := readFull(r, hbuf[:]); err != nil {
		return Header{}, err
	}
	h := parseHeader(hbuf[:])
	switch {
	case int(h.Length) == HeaderLen:
	case h.HasPayload(blockSize):
		if len(block) != blockSize {
			return h, fmt.Errorf("%w: need a %d byte buffer for the payload", jbod.ErrBadBlockSize, blockSize)
		}
		if err := readFull(r, block); err != nil {
			if err == io.EOF {
				err = fmt.Errorf("%w: missing payload", jbod.ErrShortPacket)
			}
			return h, err
		}
	default:
		return h, fmt.Errorf("%w: %d", jbod.ErrBadLength, h.Length)
	}
	return h, nil
}
