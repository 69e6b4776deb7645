// Package govern keeps pathological generated programs from exhausting or
// hanging the fuzz host.
//
// # Purpose
//
//   - Governor substitutes a bounded accounting allocator for the guest
//     runtime's normal allocator hook, so out-of-memory conditions surface
//     through the toolchain's own handling instead of killing the process.
//   - Watchdog enforces a wall-clock deadline on guest execution through
//     the runtime's cooperative interrupt callback.
//
// # Scope
//
// Both mechanisms are advisory to the guest: an allocation rejection and a
// timeout are guest-visible faults, never harness failures. The watchdog
// cannot pre-empt a native loop that never reaches a polling point; that
// limitation is accepted.
package govern
