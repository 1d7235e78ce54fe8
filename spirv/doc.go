// Package spirv emits SPIR-V modules from shader programs.
//
// Emission happens in two steps. NewEmitContext declares everything a
// program needs before any instruction is translated: arithmetic types,
// the push constant block carrying user data registers, the stage's
// interface variables, buffers, texel buffers, images, samplers and
// workgroup memory. Emit then walks the program's blocks, translating each
// instruction and recording its result ID on the instruction, so operands
// resolve through EmitContext.Def.
//
//	m, err := spirv.Emit(ctx, spirv.DefaultProfile(), prog, rt, nil)
//	if err != nil {
//		return err
//	}
//
//	text, _ := spirv.Disassemble(m.Binary)
//
// Descriptor bindings are handed out from a Bindings counter shared by the
// stages of a pipeline. Each emitted Module carries a BindingMap relating
// slots back to the program's resource lists.
//
// # Binary writer
//
// ModuleBuilder writes the logical sections of a module in the order the
// SPIR-V specification requires, de-duplicating types, constants,
// capabilities and extensions:
//
//	b := spirv.NewModuleBuilder(spirv.Version1_3)
//	b.AddCapability(spirv.CapabilityShader)
//	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
//
//	f32 := b.AddTypeFloat(32)
//	vec4 := b.AddTypeVector(f32, 4)
//
//	binary := b.Build()
//
// # References
//
// SPIR-V Specification: https://registry.khronos.org/SPIR-V/specs/unified1/SPIRV.html
package spirv
