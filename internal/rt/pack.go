// Package rt implements the small set of runtime primitives generated
// HILTI/Spicy parsers call into at codegen time: integer/address
// pack-unpack (spec.md's binary-protocol parsing scenarios), an
// incremental regex token matcher, and UTF-8 codec round-tripping. This
// mirrors original_source/hilti/runtime's rt namespace without importing
// its C++ shape — each primitive here is the Go-idiomatic equivalent a
// generated C++ call site would invoke through cgo in a full build.
//
// Pack/unpack is grounded on Consensys-go-corset's pkg/trace/lt.Header,
// which hand-rolls big-endian binary layout with encoding/binary rather
// than reflection-based encoding; the same approach fits fixed-width
// protocol fields better than gob/json would.
package rt

import (
	"encoding/binary"
	"fmt"
	"net"
)

// ByteOrder selects the wire byte order a &byte-order attribute requests.
type ByteOrder int

const (
	BigEndian ByteOrder = iota
	LittleEndian
	HostOrder // resolved to the host's native order at unpack time
)

func (o ByteOrder) resolve() binary.ByteOrder {
	switch o {
	case LittleEndian:
		return binary.LittleEndian
	case HostOrder:
		return nativeOrder
	default:
		return binary.BigEndian
	}
}

// nativeOrder is fixed at little-endian, matching every mainstream
// platform Go targets for this toolchain (amd64/arm64); a true runtime
// probe is unnecessary complexity HILTI's own cross-compilation story
// doesn't need either.
var nativeOrder binary.ByteOrder = binary.LittleEndian

// UnpackUint reads a width-byte (1, 2, 4, or 8) unsigned integer from data
// in the given order, returning the value and the number of bytes
// consumed. It reports WouldBlock-shaped errors via ErrShortInput when
// data is too short, so a caller driving a Fiber can reinterpret that into
// a yield.
func UnpackUint(data []byte, width int, order ByteOrder) (uint64, int, error) {
	if len(data) < width {
		return 0, 0, fmt.Errorf("%w: need %d bytes, have %d", ErrShortInput, width, len(data))
	}
	bo := order.resolve()
	switch width {
	case 1:
		return uint64(data[0]), 1, nil
	case 2:
		return uint64(bo.Uint16(data)), 2, nil
	case 4:
		return uint64(bo.Uint32(data)), 4, nil
	case 8:
		return bo.Uint64(data), 8, nil
	default:
		return 0, 0, fmt.Errorf("unpack: unsupported integer width %d", width)
	}
}

// UnpackInt is UnpackUint with the result sign-extended from width bytes.
func UnpackInt(data []byte, width int, order ByteOrder) (int64, int, error) {
	u, n, err := UnpackUint(data, width, order)
	if err != nil {
		return 0, 0, err
	}
	switch width {
	case 1:
		return int64(int8(u)), n, nil
	case 2:
		return int64(int16(u)), n, nil
	case 4:
		return int64(int32(u)), n, nil
	default:
		return int64(u), n, nil
	}
}

// PackUint writes v as a width-byte unsigned integer in the given order.
func PackUint(v uint64, width int, order ByteOrder) ([]byte, error) {
	bo := order.resolve()
	buf := make([]byte, width)
	switch width {
	case 1:
		buf[0] = byte(v)
	case 2:
		bo.PutUint16(buf, uint16(v))
	case 4:
		bo.PutUint32(buf, uint32(v))
	case 8:
		bo.PutUint64(buf, v)
	default:
		return nil, fmt.Errorf("pack: unsupported integer width %d", width)
	}
	return buf, nil
}

// PackInt packs a signed value through its unsigned bit pattern.
func PackInt(v int64, width int, order ByteOrder) ([]byte, error) {
	return PackUint(uint64(v), width, order)
}

// ErrShortInput is returned by Unpack* functions when the input is too
// short to contain the requested field; callers driving a Fiber treat this
// as a WouldBlock condition rather than a hard parse failure.
var ErrShortInput = fmt.Errorf("rt: short input")

// UnpackAddressV4 reads a 4-byte IPv4 address.
func UnpackAddressV4(data []byte) (net.IP, int, error) {
	if len(data) < 4 {
		return nil, 0, fmt.Errorf("%w: need 4 bytes for IPv4 address", ErrShortInput)
	}
	ip := make(net.IP, 4)
	copy(ip, data[:4])
	return ip, 4, nil
}

// UnpackAddressV6 reads a 16-byte IPv6 address.
func UnpackAddressV6(data []byte) (net.IP, int, error) {
	if len(data) < 16 {
		return nil, 0, fmt.Errorf("%w: need 16 bytes for IPv6 address", ErrShortInput)
	}
	ip := make(net.IP, 16)
	copy(ip, data[:16])
	return ip, 16, nil
}

// PackAddress renders ip back to its wire bytes (4 for a v4 address, 16
// for v6), matching whichever form net.IP already holds.
func PackAddress(ip net.IP) ([]byte, error) {
	if v4 := ip.To4(); v4 != nil {
		return []byte(v4), nil
	}
	if v6 := ip.To16(); v6 != nil {
		return []byte(v6), nil
	}
	return nil, fmt.Errorf("pack: invalid IP address")
}

// Port is a transport-layer port plus protocol tag, matching HILTI's
// `port` type (spec.md §3's KindPort).
type Port struct {
	Number   uint16
	Protocol string // "tcp", "udp", "icmp"
}

// UnpackPort reads a 2-byte port number in the given order.
func UnpackPort(data []byte, order ByteOrder, protocol string) (Port, int, error) {
	n, consumed, err := UnpackUint(data, 2, order)
	if err != nil {
		return Port{}, 0, err
	}
	return Port{Number: uint16(n), Protocol: protocol}, consumed, nil
}
