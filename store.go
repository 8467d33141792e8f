package fdt

import (
	"github.com/scigolib/fdt/internal/cursor"
	"github.com/scigolib/fdt/internal/strtab"
)

// StoreOption configures Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	strings strtab.Table
}

// WithDedupStrings selects the deduplicating string-table implementation,
// which shrinks the strings block in trees with many repeated property
// names at the cost of an index map. The default is the plain, append-only
// table.
func WithDedupStrings() StoreOption {
	return func(o *storeOptions) {
		o.strings = strtab.NewDedup()
	}
}

// Store serializes dt into a fresh DTB image. The image is semantically
// equivalent to dt but is not guaranteed to be byte-identical to any image
// dt may have been loaded from: string-table layout and padding can differ.
func Store(dt *DeviceTree, opts ...StoreOption) ([]byte, error) {
	o := storeOptions{strings: strtab.New()}
	for _, opt := range opts {
		opt(&o)
	}

	w := cursor.NewWriter()

	// Magic, then four placeholder offsets back-patched once their blocks
	// are laid out.
	w.AppendBEU32(magicNumber)
	totalSizeOff := w.ReserveU32()
	offStructOff := w.ReserveU32()
	offStringsOff := w.ReserveU32()
	offRsvmapOff := w.ReserveU32()

	w.AppendBEU32(supportedVersion)
	w.AppendBEU32(compatVersion)
	w.AppendBEU32(dt.BootCPUIDPhys)

	sizeStringsOff := w.ReserveU32()
	sizeStructOff := w.ReserveU32()

	// Memory reservation block.
	w.Pad(8)
	if err := w.WriteBEU32(offRsvmapOff, uint32(w.Len())); err != nil {
		return nil, err
	}
	for _, r := range dt.Reserved {
		w.AppendBEU64(r.Address)
		w.AppendBEU64(r.Size)
	}
	w.AppendBEU64(0)
	w.AppendBEU64(0)

	// Structure block.
	w.Pad(4)
	structureStart := w.Len()
	if err := w.WriteBEU32(offStructOff, uint32(structureStart)); err != nil {
		return nil, err
	}
	serializeNode(&dt.Root, w, o.strings)

	w.Pad(4)
	w.AppendBEU32(ofDTEnd)

	if err := w.WriteBEU32(sizeStructOff, uint32(w.Len()-structureStart)); err != nil {
		return nil, err
	}
	if err := w.WriteBEU32(sizeStringsOff, uint32(o.strings.Len())); err != nil {
		return nil, err
	}

	// Strings block.
	w.Pad(4)
	if err := w.WriteBEU32(offStringsOff, uint32(w.Len())); err != nil {
		return nil, err
	}
	w.Extend(o.strings.Bytes())

	if err := w.WriteBEU32(totalSizeOff, uint32(w.Len())); err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// serializeNode appends node's OF_DT_BEGIN_NODE..OF_DT_END_NODE record to
// structure, interning property names into strings as it goes.
func serializeNode(node *Node, structure *cursor.Writer, strings strtab.Table) {
	structure.Pad(4)
	structure.AppendBEU32(ofDTBeginNode)
	structure.WriteCString0(node.Name)

	for _, prop := range node.Props {
		structure.Pad(4)
		structure.AppendBEU32(ofDTProp)
		structure.Pad(4)
		structure.AppendBEU32(uint32(len(prop.Value)))
		structure.Pad(4)
		structure.AppendBEU32(strings.AddString(prop.Name))
		structure.Extend(prop.Value)
	}

	for i := range node.Children {
		serializeNode(&node.Children[i], structure, strings)
	}

	structure.Pad(4)
	structure.AppendBEU32(ofDTEndNode)
}
