// trace parses and replays workload traces against a volume.
//
// A trace is one command per line:
//
//	MOUNT
//	UNMOUNT
//	READ <addr> <len>
//	WRITE <addr> <len> <byte>
//
// WRITE fills its range with the given byte. Blank lines and lines starting
// with '#' are skipped.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/coreos/pkg/capnslog"

	"github.com/coreos/jbod/block"
)

var clog = capnslog.NewPackageLogger("github.com/coreos/jbod", "trace")

type Kind int

const (
	Mount Kind = iota
	Unmount
	Read
	Write
)

func (k Kind) String() string {
	switch k {
	case Mount:
		return "MOUNT"
	case Unmount:
		return "UNMOUNT"
	case Read:
		return "READ"
	case Write:
		return "WRITE"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Command struct {
	Kind Kind
	Addr int64
	Len  int
	Fill byte
	Line int
}

func (c Command) String() string {
	switch c.Kind {
	case Read:
		return fmt.Sprintf("READ %d %d", c.Addr, c.Len)
	case Write:
		return fmt.Sprintf("WRITE %d %d %d", c.Addr, c.Len, c.Fill)
	}
	return c.Kind.String()
}

// Parse reads a whole trace.
func Parse(r io.Reader) ([]Command, error) {
	var out []Command
	s := bufio.NewScanner(r)
	line := 0
	for s.Scan() {
		line++
		text := strings.TrimSpace(s.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		cmd, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("trace: line %d: %v", line, err)
		}
		cmd.Line = line
		out = append(out, cmd)
	}
	return out, s.Err()
}

func parseLine(text string) (Command, error) {
	f := strings.Fields(text)
	var cmd Command
	var want int
	switch strings.ToUpper(f[0]) {
	case "MOUNT":
		cmd.Kind, want = Mount, 1
	case "UNMOUNT":
		cmd.Kind, want = Unmount, 1
	case "READ":
		cmd.Kind, want = Read, 3
	case "WRITE":
		cmd.Kind, want = Write, 4
	default:
		return cmd, fmt.Errorf("unknown command %q", f[0])
	}
	if len(f) != want {
		return cmd, fmt.Errorf("%s takes %d arguments, got %d", cmd.Kind, want-1, len(f)-1)
	}
	if want == 1 {
		return cmd, nil
	}
	addr, err := strconv.ParseInt(f[1], 0, 64)
	if err != nil {
		return cmd, fmt.Errorf("bad address %q", f[1])
	}
	n, err := strconv.Atoi(f[2])
	if err != nil || n < 0 {
		return cmd, fmt.Errorf("bad length %q", f[2])
	}
	cmd.Addr, cmd.Len = addr, n
	if cmd.Kind == Write {
		b, err := strconv.ParseUint(f[3], 0, 8)
		if err != nil {
			return cmd, fmt.Errorf("bad fill byte %q", f[3])
		}
		cmd.Fill = byte(b)
	}
	return cmd, nil
}

// Result summarizes a replay.
type Result struct {
	Commands     int
	Failures     int
	BytesRead    uint64
	BytesWritten uint64
	// Mismatches counts reads whose data differed from what the trace wrote.
	Mismatches int
}

// Replay runs cmds against v. Failed commands are counted and the replay
// carries on. If verify is set every read is checked against a model of
// what the trace has written so far, assuming the array started zeroed.
func Replay(v *block.Volume, cmds []Command, verify bool) Result {
	var res Result
	var model []byte
	if verify {
		model = make([]byte, v.Size())
	}
	for _, cmd := range cmds {
		res.Commands++
		var err error
		switch cmd.Kind {
		case Mount:
			err = v.Mount()
		case Unmount:
			err = v.Unmount()
		case Read:
			buf := make([]byte, cmd.Len)
			var n int
			n, err = v.ReadAt(buf, cmd.Addr)
			res.BytesRead += uint64(n)
			if err == nil && verify && string(buf) != string(model[cmd.Addr:cmd.Addr+int64(cmd.Len)]) {
				clog.Errorf("line %d: %s returned unexpected data", cmd.Line, cmd)
				res.Mismatches++
			}
		case Write:
			buf := make([]byte, cmd.Len)
			for i := range buf {
				buf[i] = cmd.Fill
			}
			var n int
			n, err = v.WriteAt(buf, cmd.Addr)
			res.BytesWritten += uint64(n)
			if verify && n > 0 {
				copy(model[cmd.Addr:], buf[:n])
			}
		}
		if err != nil {
			clog.Debugf("line %d: %s: %v", cmd.Line, cmd, err)
			res.Failures++
		}
	}
	return res
}
