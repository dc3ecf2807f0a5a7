package jbod

import "fmt"

// Command is a device command carried in the command field of an opcode.
type Command uint8

const (
	CmdMount Command = iota
	CmdUnmount
	CmdSeekToDisk
	CmdSeekToBlock
	CmdReadBlock
	CmdWriteBlock
)

var commandNames = [...]string{
	CmdMount:       "mount",
	CmdUnmount:     "unmount",
	CmdSeekToDisk:  "seek-disk",
	CmdSeekToBlock: "seek-block",
	CmdReadBlock:   "read-block",
	CmdWriteBlock:  "write-block",
}

func (c Command) String() string {
	if int(c) < len(commandNames) {
		return commandNames[c]
	}
	return fmt.Sprintf("command(%d)", uint8(c))
}

func (c Command) Valid() bool {
	return c <= CmdWriteBlock
}

// Opcode layout, most significant field first:
//
//	disk(4) | block(8) | command(6) | reserved(14)
const (
	diskShift    = 28
	blockShift   = 20
	commandShift = 14

	diskMask    = 0xF
	blockMask   = 0xFF
	commandMask = 0x3F
)

// Op is a single device operation. Disk is only meaningful for
// CmdSeekToDisk and Block only for CmdSeekToBlock.
type Op struct {
	Command Command
	Disk    int
	Block   int
}

func MountOp() Op         { return Op{Command: CmdMount} }
func UnmountOp() Op       { return Op{Command: CmdUnmount} }
func SeekDiskOp(d int) Op { return Op{Command: CmdSeekToDisk, Disk: d} }
func SeekBlockOp(b int) Op {
	return Op{Command: CmdSeekToBlock, Block: b}
}
func ReadBlockOp() Op  { return Op{Command: CmdReadBlock} }
func WriteBlockOp() Op { return Op{Command: CmdWriteBlock} }

// Pack encodes the op into its wire opcode. Fields that the command doesn't
// use are left zero.
func (o Op) Pack() uint32 {
	v := uint32(o.Command&commandMask) << commandShift
	switch o.Command {
	case CmdSeekToDisk:
		v |= uint32(o.Disk&diskMask) << diskShift
	case CmdSeekToBlock:
		v |= uint32(o.Block&blockMask) << blockShift
	}
	return v
}

// UnpackOp decodes a wire opcode.
func UnpackOp(v uint32) Op {
	return Op{
		Command: Command((v >> commandShift) & commandMask),
		Disk:    int((v >> diskShift) & diskMask),
		Block:   int((v >> blockShift) & blockMask),
	}
}

func (o Op) String() string {
	switch o.Command {
	case CmdSeekToDisk:
		return fmt.Sprintf("%s %d", o.Command, o.Disk)
	case CmdSeekToBlock:
		return fmt.Sprintf("%s %d", o.Command, o.Block)
	}
	return o.Command.String()
}

// BlockRef names a block on the array.
type BlockRef struct {
	Disk  int
	Block int
}

func (b BlockRef) String() string {
	return fmt.Sprintf("disk: %d, block: %d", b.Disk, b.Block)
}
