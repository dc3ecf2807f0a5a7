package jbod

import (
	"errors"
	"testing"
)

func TestLocate(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		addr uint64
		want Location
	}{
		{0, Location{BlockRef{0, 0}, 0}},
		{255, Location{BlockRef{0, 0}, 255}},
		{256, Location{BlockRef{0, 1}, 0}},
		{65535, Location{BlockRef{0, 255}, 255}},
		{65536, Location{BlockRef{1, 0}, 0}},
		{cfg.Size() - 1, Location{BlockRef{15, 255}, 255}},
	}
	for _, tt := range tests {
		if got := cfg.Locate(tt.addr); got != tt.want {
			t.Errorf("Locate(%d) = %+v, want %+v", tt.addr, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatal(err)
	}
	bad := []func(*Config){
		func(c *Config) { c.DiskSize = 1000 },
		func(c *Config) { c.NumDisks = 17 },
		func(c *Config) { c.NumDisks = 0 },
		func(c *Config) { c.DiskSize = 512 * 256 },
		func(c *Config) { c.MaxTransfer = 0 },
		func(c *Config) { c.BlockSize, c.DiskSize = 64 * 1024, 64 * 1024 },
	}
	for i, f := range bad {
		cfg := DefaultConfig()
		f(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("case %d: got %v, want range error", i, err)
		}
	}
	cfg := DefaultConfig()
	cfg.CacheSize = 1
	if err := cfg.Validate(); !errors.Is(err, ErrBadCapacity) {
		t.Fatalf("got %v", err)
	}
}

func TestErrorKinds(t *testing.T) {
	if !IsStateError(ErrMounted) || IsRangeError(ErrMounted) {
		t.Fatal("ErrMounted is a state error")
	}
	if !IsProtocolError(ErrShortPacket) || !IsRangeError(ErrTooLong) {
		t.Fatal("misclassified error")
	}
}

func TestLargestBlock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BlockSize = MaxBlockSize
	cfg.DiskSize = MaxBlockSize
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	cfg.BlockSize++
	cfg.DiskSize++
	if err := cfg.Validate(); !IsRangeError(err) {
		t.Fatalf("got %v", err)
	}
}
