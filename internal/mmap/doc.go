// Package mmap reserves anonymous memory regions directly from the OS.
//
// The allocator's backing arena is a single read-write anonymous mapping,
// acquired in one piece and released in one piece. Keeping the arena
// off-heap means the Go garbage collector never scans or moves it, so the
// base address handed out by MapAnon stays stable for the mapping's
// lifetime — callers hold raw pointers into it.
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE
//   - Windows: VirtualAlloc with MEM_RESERVE|MEM_COMMIT
//
// Close() is idempotent, but callers must ensure no access to Bytes() after
// Close() returns.
package mmap
