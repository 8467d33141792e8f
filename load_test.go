package fdt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalDTB builds the smallest well-formed DTB image by hand: an empty
// root node, no properties, no reserved regions, no interned strings.
//
//	header (40)  | rsvmap terminator (16) | BEGIN_NODE "" (8, padded) | END_NODE (4) | OF_DT_END (4)
//	0..40        | 40..56                 | 56..64                    | 64..68       | 68..72
func minimalDTB() []byte {
	b := make([]byte, 0, 72)
	be32 := func(v uint32) {
		b = append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}

	be32(magicNumber)    // 0
	be32(72)             // total_size
	be32(56)             // off_dt_struct
	be32(72)             // off_dt_strings
	be32(40)             // off_mem_rsvmap
	be32(supportedVersion)
	be32(compatVersion)
	be32(0) // boot_cpuid_phys
	be32(0) // size_dt_strings
	be32(16) // size_dt_struct

	b = append(b, make([]byte, 16)...) // rsvmap terminator (0, 0)

	be32(ofDTBeginNode)
	b = append(b, 0x00)             // empty name + NUL
	b = append(b, 0x00, 0x00, 0x00) // pad to 4

	be32(ofDTEndNode)
	be32(ofDTEnd)

	return b
}

func TestLoadMinimalTree(t *testing.T) {
	dt, err := Load(minimalDTB())
	require.NoError(t, err)
	assert.Equal(t, supportedVersion, dt.Version)
	assert.Equal(t, uint32(0), dt.BootCPUIDPhys)
	assert.Empty(t, dt.Reserved)
	assert.Equal(t, "", dt.Root.Name)
	assert.Empty(t, dt.Root.Props)
	assert.Empty(t, dt.Root.Children)
}

func TestLoadInvalidMagic(t *testing.T) {
	buf := minimalDTB()
	buf[0] = 0x00

	_, err := Load(buf)
	assert.ErrorIs(t, err, ErrInvalidMagicNumber)
}

func TestLoadSizeMismatch(t *testing.T) {
	buf := minimalDTB()
	buf = append(buf, 0, 0, 0, 0) // totalsize header field now disagrees with len(buf)

	_, err := Load(buf)
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestLoadUnsupportedVersion(t *testing.T) {
	buf := minimalDTB()
	buf[20], buf[21], buf[22], buf[23] = 0, 0, 0, 16 // version = 16, not 17

	_, err := Load(buf)
	assert.ErrorIs(t, err, ErrVersionNotSupported)
}

func TestLoadMissingEndNodeIsParseError(t *testing.T) {
	buf := minimalDTB()
	buf[64], buf[65], buf[66], buf[67] = 0, 0, 0, 4 // OF_DT_NOP where OF_DT_END_NODE is expected

	_, err := Load(buf)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 64, parseErr.Offset)
}

func TestLoadTooShortForHeader(t *testing.T) {
	_, err := Load(make([]byte, 10))
	require.Error(t, err)
}
