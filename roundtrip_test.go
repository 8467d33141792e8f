package fdt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRoundTripPreservesTreeShape builds a small but representative tree,
// stores it, reloads it, and checks that every property and path lookup
// still resolves the same way. Store does not promise a byte-identical
// image, only an observably identical tree.
func TestRoundTripPreservesTreeShape(t *testing.T) {
	dt := NewDeviceTree(1)
	dt.Reserved = []Reservation{{Address: 0x40000000, Size: 0x1000}}

	root := &dt.Root
	root.AddPropU32("#address-cells", 2)
	root.AddPropU32("#size-cells", 2)
	root.AddPropStrings("compatible", []string{"vendor,board"})

	cpus := root.AddChild(NewNode("cpus"))
	cpu0 := cpus.AddChild(NewNode("cpu@0"))
	cpu0.AddPropString("device_type", "cpu")
	cpu0.AddPropU64("reg", 0)
	cpu0.AddPropString("status", "okay")

	memory := root.AddChild(NewNode("memory@40000000"))
	memory.AddPropString("device_type", "memory")
	memory.AddPropRaw("reg", append(u64be(0x40000000), u64be(0x40000000)...))

	buf, err := Store(dt)
	require.NoError(t, err)

	reloaded, err := Load(buf)
	require.NoError(t, err)

	assert.Equal(t, dt.BootCPUIDPhys, reloaded.BootCPUIDPhys)
	assert.Equal(t, dt.Reserved, reloaded.Reserved)

	addrCells, err := reloaded.Root.PropU32("#address-cells")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), addrCells)

	gotCPU0 := reloaded.Find("/cpus/cpu@0")
	require.NotNil(t, gotCPU0)
	deviceType, err := gotCPU0.PropString("device_type")
	require.NoError(t, err)
	assert.Equal(t, "cpu", deviceType)

	reg, err := gotCPU0.PropU64("reg")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), reg)

	status, err := gotCPU0.PropString("status")
	require.NoError(t, err)
	assert.Equal(t, "okay", status)

	gotMemory := reloaded.Find("/memory@40000000")
	require.NotNil(t, gotMemory)
	assert.Len(t, gotMemory.PropRaw("reg"), 16)

	assert.Nil(t, reloaded.Find("/cpus/cpu@1"))
}

// TestRoundTripEmptyNodeIsAddressableOnlyThroughDeviceTree exercises the
// Find("/") boundary: a root whose only child is the empty-named node must
// still resolve through DeviceTree.Find, even though Node.Find on an empty
// relative path would instead return the node it was called on.
func TestRoundTripEmptyNodeIsAddressableOnlyThroughDeviceTree(t *testing.T) {
	dt := NewDeviceTree(0)
	dt.Root.AddChild(NewNode(""))

	buf, err := Store(dt)
	require.NoError(t, err)

	reloaded, err := Load(buf)
	require.NoError(t, err)

	got := reloaded.Find("/")
	require.NotNil(t, got)
	assert.NotSame(t, &reloaded.Root, got)
}

func u64be(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * (7 - i)))
	}
	return b
}
