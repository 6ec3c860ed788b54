//go:build debug_kheap

package kheap

// freedMemoryPattern is an easy-to-identify word written across freed blocks in
// debug builds, so that use-after-free reads surface as recognizable garbage.
const freedMemoryPattern uint64 = 0xF4EEF4EEF4EEF4EE

// DebugFillFreed writes a recognizable marker pattern across a freed block so
// that later reads through dangling references are easy to identify. The block
// must start at a word-aligned address and size must be a multiple of the word
// size. This method no-ops unless the debug_kheap build tag is present.
func DebugFillFreed(mem Memory, addr, size int) {
	for offset := 0; offset < size; offset += WordSize {
		mem.WriteWord(addr+offset, freedMemoryPattern)
	}
}

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops unless the debug_kheap build tag is present
func DebugValidate(validatable Validatable) {
	err := validatable.Validate()
	if err != nil {
		panic(err)
	}
}

// DebugCheckPow2 will verify that the numerical value passed in is a power of two, and panics if it is not.
// This method no-ops unless the debug_kheap build tag is present.
func DebugCheckPow2[T Number](value T, name string) {
	err := CheckPow2[T](value, name)
	if err != nil {
		panic(err)
	}
}
