// Package codegen consumes the compiled artifact of an iteration through
// two independent oracles: an assembly-emission-only path that proves the
// backend accepts arbitrary legal bytecode, and an execution path that runs
// the same bytecode interpreted and, when the host supports it, natively
// compiled.
package codegen

import (
	"fmt"

	"fuzzrig/internal/govern"
	"fuzzrig/internal/report"
	"fuzzrig/internal/toolchain"
)

// ChunkName labels loaded fuzz artifacts in guest diagnostics.
const ChunkName = "=fuzz"

// Driver owns the artifact-consumption policy for one harness.
type Driver struct {
	tc             *toolchain.Toolchain
	governor       *govern.Governor
	watchdog       *govern.Watchdog
	fatal          report.FatalSink
	collectCeiling uint64
	target         toolchain.Target
}

// NewDriver wires a driver. A zero collectCeiling selects the default
// post-collection leak ceiling.
func NewDriver(tc *toolchain.Toolchain, governor *govern.Governor, watchdog *govern.Watchdog, fatal report.FatalSink, collectCeiling uint64, target toolchain.Target) *Driver {
	if collectCeiling == 0 {
		collectCeiling = govern.DefaultCollectCeiling
	}
	if target == "" {
		target = toolchain.TargetA64
	}
	return &Driver{
		tc:             tc,
		governor:       governor,
		watchdog:       watchdog,
		fatal:          fatal,
		collectCeiling: collectCeiling,
		target:         target,
	}
}

// EmitAssembly runs the assembly-only path: a disposable runtime loads the
// artifact solely so the backend can lower it; the listing is discarded and
// no guest code ever executes.
func (d *Driver) EmitAssembly(artifact []byte) {
	rt := d.tc.Runtimes.NewRuntime(toolchain.RuntimeOptions{})
	defer rt.Close()

	th := rt.NewThread()
	if th.Load(ChunkName, artifact) == 0 {
		_, _ = d.tc.CodeGen.EmitAssembly(th, toolchain.AsmOptions{
			Target:       d.target,
			OutputBinary: true,
		})
	}
	rt.Collect()
}

// Execute runs the artifact on the long-lived runtime: once interpreted,
// and once more natively compiled when the backend reports host support,
// producing two independent traces of the same bytecode. After each resume
// a full collection must bring tracked usage back under the leak ceiling;
// exceeding it is a discovered defect, not advisory logging.
func (d *Driver) Execute(rt toolchain.Runtime, artifact []byte) {
	d.runOnce(rt, artifact, false)
	if d.tc.CodeGen.Supported() {
		d.runOnce(rt, artifact, true)
	}
}

// ExecuteInterpreted runs only the interpreted pass, for harnesses with
// native code generation switched off.
func (d *Driver) ExecuteInterpreted(rt toolchain.Runtime, artifact []byte) {
	d.runOnce(rt, artifact, false)
}

func (d *Driver) runOnce(rt toolchain.Runtime, artifact []byte, native bool) {
	th := rt.NewThread()
	th.Sandbox()

	if th.Load(ChunkName, artifact) == 0 {
		if native {
			if err := d.tc.CodeGen.NativeCompile(th); err != nil {
				d.fatal.Fatal("codegen", fmt.Sprintf("native compile rejected legal bytecode: %v", err))
				return
			}
		}
		d.watchdog.Arm()
		// A resume error is a guest-level fault (timeout, budget
		// exhaustion, guest error) and ends this thread's run.
		_ = th.Resume()
	}

	// Full collection is expected to reclaim everything the script
	// allocated.
	rt.Collect()
	if used := d.governor.Used(); used >= d.collectCeiling {
		d.fatal.Fatal("codegen", fmt.Sprintf("post-collection usage %d at or above ceiling %d (native=%v)", used, d.collectCeiling, native))
	}
}
