package jbod

import "testing"

func TestPackLayout(t *testing.T) {
	tests := []struct {
		op   Op
		want uint32
	}{
		{MountOp(), 0},
		{UnmountOp(), 1 << 14},
		{SeekDiskOp(3), 3<<28 | 2<<14},
		{SeekDiskOp(15), 15<<28 | 2<<14},
		{SeekBlockOp(255), 255<<20 | 3<<14},
		{ReadBlockOp(), 4 << 14},
		{WriteBlockOp(), 5 << 14},
		// Disk and block only travel with the seeks that use them.
		{Op{Command: CmdReadBlock, Disk: 7, Block: 9}, 4 << 14},
	}
	for _, tt := range tests {
		if got := tt.op.Pack(); got != tt.want {
			t.Errorf("%v: got %#x, want %#x", tt.op, got, tt.want)
		}
	}
}

func TestUnpackOp(t *testing.T) {
	for _, op := range []Op{SeekDiskOp(9), SeekBlockOp(17), WriteBlockOp(), MountOp()} {
		got := UnpackOp(op.Pack())
		if got != op {
			t.Fatalf("got %v, want %v", got, op)
		}
	}
	if c := UnpackOp(0x3F << 14).Command; c.Valid() {
		t.Fatalf("command %v should be invalid", c)
	}
}
