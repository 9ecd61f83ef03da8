// Package wasm decodes modules in the WebAssembly binary format and
// holds them in a Runtime for inspection.
//
// The decoder validates the header, LEB128 varints, section framing and
// the structure of every standard section. It does not execute code.
package wasm

import "fmt"

// Runtime holds the modules loaded into one runtime instance. Each
// instance is independent; Load appends to Modules in call order.
type Runtime struct {
	Modules []*Module
}

// Default returns a fresh runtime with no modules loaded.
func Default() *Runtime {
	return &Runtime{}
}

// Load decodes raw as a wasm binary module and adds it to the runtime.
// A decode failure leaves the runtime unchanged.
func (r *Runtime) Load(raw []byte) error {
	m, err := Decode(raw)
	if err != nil {
		return fmt.Errorf("load module: %w", err)
	}
	r.Modules = append(r.Modules, m)
	return nil
}
