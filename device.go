package jbod

import (
	"fmt"
	"sort"

	"github.com/coreos/pkg/capnslog"
	"golang.org/x/net/context"
)

var clog = capnslog.NewPackageLogger("github.com/coreos/jbod", "jbod")

// Device is anything that executes device operations against a bank of
// disks: a connection to a remote array or a local emulation of one.
//
// A CmdReadBlock fills block, a CmdWriteBlock consumes it, and every other
// command ignores it. Reads and writes act on the most recently sought disk
// and block. Execute blocks until the operation completes.
type Device interface {
	Execute(ctx context.Context, op Op, block []byte) error
}

// DeviceCloser is a Device holding resources that must be released.
type DeviceCloser interface {
	Device
	Close() error
}

type NewDeviceFunc func(name string, cfg Config, dataDir string) (DeviceCloser, error)

var devices map[string]NewDeviceFunc

// RegisterDevice makes a device backend available under name. It panics if
// name is registered twice.
func RegisterDevice(name string, newFunc NewDeviceFunc) {
	if devices == nil {
		devices = make(map[string]NewDeviceFunc)
	}

	if _, ok := devices[name]; ok {
		panic("jbod: attempted to register device " + name + " twice")
	}

	devices[name] = newFunc
}

// CreateDevice opens the backend registered as kind.
func CreateDevice(kind, name string, cfg Config, dataDir string) (DeviceCloser, error) {
	newFunc, ok := devices[kind]
	if !ok {
		return nil, fmt.Errorf("jbod: unknown device kind %q", kind)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clog.Infof("creating device: %s (%s)", name, kind)
	return newFunc(name, cfg, dataDir)
}

// DeviceKinds lists the registered backends.
func DeviceKinds() []string {
	var out []string
	for k := range devices {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
