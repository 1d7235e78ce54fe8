package ir

import "fmt"

// BufferInstInfo is the flags view of buffer load and store instructions.
type BufferInstInfo uint32

const (
	bufferInstOffsetMask = 0xfff

	bufferGloballyCoherent BufferInstInfo = 1 << (11 + iota)
	bufferSystemCoherent
	bufferOffsetEnable
	bufferIndexEnable
)

// NewBufferInstInfo packs a static byte offset and coherency bits.
func NewBufferInstInfo(instOffset uint32, glc, slc bool) BufferInstInfo {
	if instOffset > bufferInstOffsetMask {
		throw(ErrInvalidArgument, "buffer instruction offset %#x does not fit", instOffset)
	}

	f := BufferInstInfo(instOffset)

	if glc {
		f |= bufferGloballyCoherent
	}

	if slc {
		f |= bufferSystemCoherent
	}

	return f
}

// InstOffset is the static byte offset encoded in the instruction.
func (f BufferInstInfo) InstOffset() uint32 { return uint32(f) & bufferInstOffsetMask }

func (f BufferInstInfo) GloballyCoherent() bool { return f&bufferGloballyCoherent != 0 }
func (f BufferInstInfo) SystemCoherent() bool   { return f&bufferSystemCoherent != 0 }
func (f BufferInstInfo) OffsetEnable() bool     { return f&bufferOffsetEnable != 0 }
func (f BufferInstInfo) IndexEnable() bool      { return f&bufferIndexEnable != 0 }

func (f BufferInstInfo) WithOffsetEnable() BufferInstInfo { return f | bufferOffsetEnable }
func (f BufferInstInfo) WithIndexEnable() BufferInstInfo  { return f | bufferIndexEnable }

func (f BufferInstInfo) String() string {
	return fmt.Sprintf("offset=%d glc=%v slc=%v", f.InstOffset(), f.GloballyCoherent(), f.SystemCoherent())
}
