// jbod presents a bank of fixed-size disks as a single linear volume, with an
// LRU block cache in front of a backing store reached over a framed TCP
// protocol.
package jbod

// Version is set by build scripts, do not touch.
var Version string
