package fdt

// Header and structure-block constants fixed by the DTB format (devicetree
// spec v17). See other_examples' fdt builder and the upstream device tree
// compiler for the same values.
const (
	magicNumber      uint32 = 0xd00dfeed
	supportedVersion uint32 = 17
	compatVersion    uint32 = 16
)

// Structure-block tokens. ofDTNop is part of the wider FDT token space
// (dtc emits it as padding in some builds) but no operation in this
// library produces or tolerates it: an OF_DT_NOP encountered while parsing
// is reported as a ParseError, the same as any other out-of-place token.
const (
	ofDTBeginNode uint32 = 0x00000001
	ofDTEndNode   uint32 = 0x00000002
	ofDTProp      uint32 = 0x00000003
	ofDTNop       uint32 = 0x00000004
	ofDTEnd       uint32 = 0x00000009
)

// Fixed header field offsets (bytes), all big-endian uint32.
const (
	hdrOffMagic           = 0
	hdrOffTotalSize       = 4
	hdrOffStructOffset    = 8
	hdrOffStringsOffset   = 12
	hdrOffMemRsvmapOffset = 16
	hdrOffVersion         = 20
	hdrOffLastCompVersion = 24
	hdrOffBootCPUIDPhys   = 28
	hdrOffSizeDTStrings   = 32
	hdrOffSizeDTStruct    = 36
	headerSize            = 40
)
