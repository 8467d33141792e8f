package fdt

import (
	"fmt"
	"unicode/utf8"

	"github.com/scigolib/fdt/internal/cursor"
)

// Load parses a complete DTB image and reconstructs its tree. The returned
// DeviceTree retains no reference to buffer: every byte it needs is copied
// out before Load returns, so the caller may discard or reuse buffer
// immediately afterward.
func Load(buffer []byte) (*DeviceTree, error) {
	r := cursor.NewReader(buffer)

	magic, err := r.ReadBEU32(hdrOffMagic)
	if err != nil {
		return nil, fmt.Errorf("fdt: reading magic number: %w", err)
	}
	if magic != magicNumber {
		return nil, ErrInvalidMagicNumber
	}

	totalSize, err := r.ReadBEU32(hdrOffTotalSize)
	if err != nil {
		return nil, fmt.Errorf("fdt: reading total size: %w", err)
	}
	if int(totalSize) != len(buffer) {
		return nil, ErrSizeMismatch
	}

	version, err := r.ReadBEU32(hdrOffVersion)
	if err != nil {
		return nil, fmt.Errorf("fdt: reading version: %w", err)
	}
	if version != supportedVersion {
		return nil, ErrVersionNotSupported
	}

	offDTStruct, err := r.ReadBEU32(hdrOffStructOffset)
	if err != nil {
		return nil, fmt.Errorf("fdt: reading off_dt_struct: %w", err)
	}
	offDTStrings, err := r.ReadBEU32(hdrOffStringsOffset)
	if err != nil {
		return nil, fmt.Errorf("fdt: reading off_dt_strings: %w", err)
	}
	offMemRsvmap, err := r.ReadBEU32(hdrOffMemRsvmapOffset)
	if err != nil {
		return nil, fmt.Errorf("fdt: reading off_mem_rsvmap: %w", err)
	}
	bootCPUIDPhys, err := r.ReadBEU32(hdrOffBootCPUIDPhys)
	if err != nil {
		return nil, fmt.Errorf("fdt: reading boot_cpuid_phys: %w", err)
	}

	reserved, err := loadReservations(r, int(offMemRsvmap))
	if err != nil {
		return nil, err
	}

	_, root, err := parseNode(r, int(offDTStruct), int(offDTStrings))
	if err != nil {
		return nil, err
	}

	return &DeviceTree{
		Version:       version,
		BootCPUIDPhys: bootCPUIDPhys,
		Reserved:      reserved,
		Root:          root,
	}, nil
}

// loadReservations reads (address, size) pairs starting at pos until it
// reads a pair whose size is zero; that terminator pair is discarded and
// not appended to the returned list.
func loadReservations(r *cursor.Reader, pos int) ([]Reservation, error) {
	var reserved []Reservation
	for {
		address, err := r.ReadBEU64(pos)
		if err != nil {
			return nil, fmt.Errorf("fdt: reading reservation address at %d: %w", pos, err)
		}
		pos += 8
		size, err := r.ReadBEU64(pos)
		if err != nil {
			return nil, fmt.Errorf("fdt: reading reservation size at %d: %w", pos, err)
		}
		pos += 8

		if size == 0 {
			return reserved, nil
		}
		reserved = append(reserved, Reservation{Address: address, Size: size})
	}
}

// parseNode parses a single OF_DT_BEGIN_NODE..OF_DT_END_NODE record starting
// at start, returning the position just past OF_DT_END_NODE and the decoded
// Node.
func parseNode(r *cursor.Reader, start, stringsBase int) (int, Node, error) {
	tok, err := r.ReadBEU32(start)
	if err != nil {
		return 0, Node{}, fmt.Errorf("fdt: reading node token at %d: %w", start, err)
	}
	if tok != ofDTBeginNode {
		return 0, Node{}, &ParseError{Offset: start}
	}

	rawName, err := r.ReadCString0(start + 4)
	if err != nil {
		return 0, Node{}, fmt.Errorf("fdt: reading node name at %d: %w", start+4, err)
	}
	name, err := decodeUTF8(rawName)
	if err != nil {
		return 0, Node{}, err
	}

	pos := cursor.Align(start+4+len(rawName)+1, 4)

	var props []Prop
	for {
		tok, err := r.ReadBEU32(pos)
		if err != nil {
			return 0, Node{}, fmt.Errorf("fdt: reading token at %d: %w", pos, err)
		}
		if tok != ofDTProp {
			break
		}

		valSize, err := r.ReadBEU32(pos + 4)
		if err != nil {
			return 0, Node{}, fmt.Errorf("fdt: reading prop value length at %d: %w", pos+4, err)
		}
		nameOffset, err := r.ReadBEU32(pos + 8)
		if err != nil {
			return 0, Node{}, fmt.Errorf("fdt: reading prop name offset at %d: %w", pos+8, err)
		}

		valStart := pos + 12
		valEnd := valStart + int(valSize)
		val, err := r.Subslice(valStart, valEnd)
		if err != nil {
			return 0, Node{}, fmt.Errorf("fdt: reading prop value at %d: %w", valStart, err)
		}

		rawPropName, err := r.ReadCString0(stringsBase + int(nameOffset))
		if err != nil {
			return 0, Node{}, fmt.Errorf("fdt: resolving prop name at strings+%d: %w", nameOffset, err)
		}
		propName, err := decodeUTF8(rawPropName)
		if err != nil {
			return 0, Node{}, err
		}

		owned := make([]byte, len(val))
		copy(owned, val)
		props = append(props, Prop{Name: propName, Value: owned})

		pos = cursor.Align(valEnd, 4)
	}

	var children []Node
	for {
		tok, err := r.ReadBEU32(pos)
		if err != nil {
			return 0, Node{}, fmt.Errorf("fdt: reading token at %d: %w", pos, err)
		}
		if tok != ofDTBeginNode {
			break
		}

		newPos, child, err := parseNode(r, pos, stringsBase)
		if err != nil {
			return 0, Node{}, err
		}
		pos = newPos
		children = append(children, child)
	}

	tok, err = r.ReadBEU32(pos)
	if err != nil {
		return 0, Node{}, fmt.Errorf("fdt: reading end-node token at %d: %w", pos, err)
	}
	if tok != ofDTEndNode {
		return 0, Node{}, &ParseError{Offset: pos}
	}
	pos += 4

	return pos, Node{Name: name, Props: props, Children: children}, nil
}

func decodeUTF8(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", ErrUtf8
	}
	// string(b) copies, so the result outlives the buffer b aliases.
	return string(b), nil
}
