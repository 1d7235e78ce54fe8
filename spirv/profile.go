package spirv

// Profile describes what the target device and SPIR-V version accept.
type Profile struct {
	Version Version

	SupportsFloat16      bool
	SupportsFloat64      bool
	SupportsInt64Atomics bool

	// MaxUboSize bounds uniform buffers whose size the shader does not
	// declare, in bytes.
	MaxUboSize uint32

	// SharedMemoryDefault is the workgroup memory size in bytes used when
	// the runtime info does not give one.
	SharedMemoryDefault uint32

	// Debug emits OpName for interface variables and resources.
	Debug bool
}

// DefaultProfile returns the profile of a Vulkan 1.2 class device.
func DefaultProfile() Profile {
	return Profile{
		Version:             Version1_5,
		SupportsFloat16:     true,
		SupportsFloat64:     true,
		MaxUboSize:          64 << 10,
		SharedMemoryDefault: 2 << 10,
		Debug:               true,
	}
}

// MaxUboDwords is MaxUboSize in dwords.
func (p Profile) MaxUboDwords() uint32 { return p.MaxUboSize / 4 }

// Bindings hands out binding slots across the shaders of one pipeline.
// Every EmitContext advances it. It is not synchronized: callers compiling
// the stages of one pipeline in parallel must give each its own copy or
// serialize.
type Bindings struct {
	Unified uint32 // next descriptor binding in set 0
	Buffer  uint32 // next buffer index, for buffer offset tables
	User    uint32 // next user data slot
}
