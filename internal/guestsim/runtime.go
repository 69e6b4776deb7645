package guestsim

import (
	"errors"

	"fuzzrig/internal/toolchain"
)

// runtime is the simulated guest VM. Allocations flow through the
// configured allocator hook so the harness governor sees every byte; the
// interrupt callback runs before every executed op, standing in for the
// real VM's safe-point polling.
type runtime struct {
	opts   toolchain.RuntimeOptions
	live   [][]byte // released at the next collection
	leaked [][]byte // survives collection, released only at Close
	closed bool
}

type factory struct{}

func (factory) NewRuntime(opts toolchain.RuntimeOptions) toolchain.Runtime {
	return &runtime{opts: opts}
}

func (r *runtime) NewThread() toolchain.Thread {
	return &thread{rt: r, sandboxed: r.opts.Sandbox}
}

// Collect frees every collectible allocation through the allocator hook.
// Leaked buffers deliberately stay, so the harness leak oracle can see
// them.
func (r *runtime) Collect() {
	for _, buf := range r.live {
		if r.opts.Alloc != nil {
			r.opts.Alloc(buf, 0)
		}
	}
	r.live = r.live[:0]
}

func (r *runtime) Close() {
	r.Collect()
	for _, buf := range r.leaked {
		if r.opts.Alloc != nil {
			r.opts.Alloc(buf, 0)
		}
	}
	r.leaked = r.leaked[:0]
	r.closed = true
}

type thread struct {
	rt        *runtime
	ops       []stmt
	loaded    bool
	native    bool
	sandboxed bool
	fault     error
}

func (t *thread) Sandbox() { t.sandboxed = true }

// Load stages a bytecode chunk; zero means ready to resume.
func (t *thread) Load(_ string, bytecode []byte) int {
	ops, ok := decodeOps(bytecode)
	if !ok {
		return 1
	}
	t.ops = ops
	t.loaded = true
	return 0
}

// RaiseRuntimeError records a guest-visible fault; the execution loop
// notices it at the next step boundary.
func (t *thread) RaiseRuntimeError(msg string) { t.fault = errors.New(msg) }

// Resume runs the thread once to completion or fault. Every step first
// polls the interrupt callback, which is how the watchdog gets a chance to
// cancel a runaway loop.
func (t *thread) Resume() error {
	if !t.loaded || t.rt.closed {
		return errors.New("guestsim: resume without a loaded chunk")
	}
	for _, op := range t.ops {
		if err := t.step(); err != nil {
			return err
		}
		switch op.kind {
		case opAlloc, opLeak:
			if err := t.allocate(op); err != nil {
				return err
			}
		case opLoop:
			for {
				if err := t.step(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (t *thread) step() error {
	if t.rt.opts.Interrupt != nil {
		t.rt.opts.Interrupt(t, false)
	}
	if t.fault != nil {
		err := t.fault
		t.fault = nil
		return err
	}
	return nil
}

func (t *thread) allocate(op stmt) error {
	if t.rt.opts.Alloc == nil {
		return nil
	}
	buf, ok := t.rt.opts.Alloc(nil, op.n)
	if !ok {
		// Budget exhaustion surfaces as a guest fault, never a harness
		// failure.
		return errors.New("not enough memory")
	}
	if op.kind == opLeak {
		t.rt.leaked = append(t.rt.leaked, buf)
	} else {
		t.rt.live = append(t.rt.live, buf)
	}
	return nil
}
