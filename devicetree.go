// Package fdt loads and produces the Flattened Device Tree (FDT/DTB) binary
// format: the compiled representation of hardware description trees
// consumed by boot firmware and operating system kernels, particularly on
// ARM-family embedded platforms.
//
// Given an in-memory DTB image, Load reconstructs the hierarchical tree of
// nodes with their properties and reserved-memory entries. Given such a
// tree, Store produces a semantically equivalent DTB image — the codec does
// not guarantee byte-identical round trips (string-table layout and padding
// may differ), only that a loaded-then-stored-then-reloaded tree is
// observably the same tree.
package fdt

// Reservation is a single (address, size) memory-reservation entry. The
// mandatory (0,0) terminator pair is never present in DeviceTree.Reserved;
// Load discards it on read and Store always re-appends it on write.
type Reservation struct {
	Address uint64
	Size    uint64
}

// DeviceTree is the root of a parsed or hand-built device tree.
type DeviceTree struct {
	// Version is the DTB format version. Load requires this to be 17;
	// trees built directly should set it to 17 as well, since Store does
	// not consult it (it always writes the fixed, supported version).
	Version uint32
	// BootCPUIDPhys is the physical ID of the boot CPU, carried through
	// unchanged.
	BootCPUIDPhys uint32
	// Reserved is the list of reserved memory regions, without the
	// mandatory terminator pair.
	Reserved []Reservation
	// Root is the tree's unnamed top-level node.
	Root Node
}

// NewDeviceTree returns a DeviceTree with the fixed, supported version, the
// given boot CPU id, no reserved regions, and an empty unnamed root node,
// ready for callers to populate before calling Store.
func NewDeviceTree(bootCPUIDPhys uint32) *DeviceTree {
	return &DeviceTree{
		Version:       supportedVersion,
		BootCPUIDPhys: bootCPUIDPhys,
		Root:          NewNode(""),
	}
}

// Find resolves an absolute path against the tree. The path must start with
// '/'; paths that don't are never found. The root itself is never returned,
// even by Find("/") — only descendants of the root are reachable through
// this API. Find("/") looks for a child of the root literally named "",
// the same way Find("/cpus") looks for a child named "cpus"; it does not
// fall back to Node.Find's "empty path means this node" rule, which only
// applies once a path has already been resolved to some node (see Node.Find
// and the idempotence property it gives Find: re-resolving an empty
// relative path against a node already found returns that same node).
func (dt *DeviceTree) Find(path string) *Node {
	if len(path) == 0 || path[0] != '/' {
		return nil
	}
	rest := path[1:]
	if rest == "" {
		for i := range dt.Root.Children {
			if dt.Root.Children[i].Name == "" {
				return &dt.Root.Children[i]
			}
		}
		return nil
	}
	return dt.Root.Find(rest)
}
