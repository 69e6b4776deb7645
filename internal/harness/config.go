package harness

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"fuzzrig/internal/govern"
	"fuzzrig/internal/toolchain"
)

// Stage-dependency violations reported by Config.Validate.
var (
	// ErrVMRequiresCompiler: execution needs a compiled artifact.
	ErrVMRequiresCompiler = errors.New("fuzz.vm requires fuzz.compile")
	// ErrCodegenRequiresVM: native compilation piggybacks on execution.
	ErrCodegenRequiresVM = errors.New("fuzz.codegen requires fuzz.vm")
	// ErrAsmRequiresCompiler: assembly emission needs an artifact too.
	ErrAsmRequiresCompiler = errors.New("fuzz.codegen_asm requires fuzz.compile")
)

// FuzzConfig toggles the pipeline stages for every iteration.
type FuzzConfig struct {
	Typecheck       bool `toml:"typecheck"`
	Lint            bool `toml:"lint"`
	Transpile       bool `toml:"transpile"`
	Compile         bool `toml:"compile"`
	VM              bool `toml:"vm"`
	Codegen         bool `toml:"codegen"`
	CodegenAsm      bool `toml:"codegen_asm"`
	TypeAnnotations bool `toml:"type_annotations"`
}

// LimitsConfig carries the resource-governance constants.
type LimitsConfig struct {
	HeapCeiling        uint64 `toml:"heap_ceiling"`
	CollectCeiling     uint64 `toml:"collect_ceiling"`
	InterruptTimeoutMS int    `toml:"interrupt_timeout_ms"`
}

// CodegenConfig selects the assembly target.
type CodegenConfig struct {
	Target string `toml:"target"`
}

// Config is the whole harness configuration, loadable from fuzzrig.toml.
type Config struct {
	FlagPrefix string        `toml:"flag_prefix"`
	Fuzz       FuzzConfig    `toml:"fuzz"`
	Limits     LimitsConfig  `toml:"limits"`
	Codegen    CodegenConfig `toml:"codegen"`
}

// DefaultConfig mirrors the original harness constants: every stage on,
// type annotations generated, A64 assembly, 512 MiB heap ceiling, 256 KiB
// leak ceiling, 10ms watchdog.
func DefaultConfig() Config {
	return Config{
		FlagPrefix: "Guest",
		Fuzz: FuzzConfig{
			Typecheck:       true,
			Lint:            true,
			Transpile:       true,
			Compile:         true,
			VM:              true,
			Codegen:         true,
			CodegenAsm:      true,
			TypeAnnotations: true,
		},
		Limits: LimitsConfig{
			HeapCeiling:        govern.DefaultHeapCeiling,
			CollectCeiling:     govern.DefaultCollectCeiling,
			InterruptTimeoutMS: 10,
		},
		Codegen: CodegenConfig{Target: string(toolchain.TargetA64)},
	}
}

// LoadConfig reads a TOML file over the defaults. Missing sections keep
// their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0])
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate enforces the stage-dependency constraints.
func (c Config) Validate() error {
	if c.Fuzz.VM && !c.Fuzz.Compile {
		return ErrVMRequiresCompiler
	}
	if c.Fuzz.Codegen && !c.Fuzz.VM {
		return ErrCodegenRequiresVM
	}
	if c.Fuzz.CodegenAsm && !c.Fuzz.Compile {
		return ErrAsmRequiresCompiler
	}
	switch toolchain.Target(c.Codegen.Target) {
	case toolchain.TargetA64, toolchain.TargetX64:
	default:
		return fmt.Errorf("unknown codegen target %q", c.Codegen.Target)
	}
	return nil
}

// InterruptTimeout returns the watchdog timeout as a duration.
func (c Config) InterruptTimeout() time.Duration {
	if c.Limits.InterruptTimeoutMS <= 0 {
		return govern.DefaultInterruptTimeout
	}
	return time.Duration(c.Limits.InterruptTimeoutMS) * time.Millisecond
}
