package guestsim

import (
	"fmt"
	"strings"

	"fuzzrig/internal/flagreg"
	"fuzzrig/internal/toolchain"
)

// FlagPrefix is the simulated toolchain's internal flag namespace.
const FlagPrefix = "Guest"

// translator derives a module set from raw structured input: the input is
// split on "---" lines, one module per section, named module0..moduleN in
// order. Deterministic for identical input by construction.
type translator struct{}

func (translator) Translate(input []byte, typeAnnotations bool) (toolchain.ModuleSet, error) {
	sections := strings.Split(string(input), "\n---\n")
	set := make(toolchain.ModuleSet, 0, len(sections))
	for i, section := range sections {
		source := strings.TrimRight(section, "\n")
		if typeAnnotations {
			source = "# typed\n" + source
		}
		set = append(set, toolchain.Module{
			Name:   fmt.Sprintf("module%d", i),
			Source: source,
		})
	}
	return set, nil
}

// New wires the complete simulated toolchain, flags registry included.
func New() *toolchain.Toolchain {
	flags := flagreg.NewRegistry()
	flags.RegisterBool(FlagPrefix+"ExperimentalSolver", false)
	flags.RegisterBool(FlagPrefix+"FastPathTables", false)
	flags.RegisterBool(FlagPrefix+"StrictUtilityTypes", false)
	flags.RegisterBool("Debug"+FlagPrefix+flagreg.FreezeArenaFlagSuffix, false)
	flags.RegisterInt(FlagPrefix+flagreg.TypeInferRecursionLimitName, 2500)
	flags.RegisterInt(FlagPrefix+flagreg.TypeInferTypePackLoopLimitName, 5000)
	flags.RegisterInt(FlagPrefix+flagreg.CheckRecursionLimitName, 100000)
	flags.RegisterInt(FlagPrefix+flagreg.TypeInferIterationLimitName, 1<<20)
	flags.RegisterInt(FlagPrefix+flagreg.DependencyChildLimitName, 100000)
	flags.RegisterInt(FlagPrefix+flagreg.TableStringifierLengthName, 1000)

	return &toolchain.Toolchain{
		Translator: translator{},
		Parser:     parser{},
		Frontend:   newFrontend(),
		Transpiler: transpiler{},
		Compiler:   compiler{},
		Runtimes:   factory{},
		CodeGen:    newCodeGen(true),
		Flags:      flags,
	}
}

// NewWithoutNativeSupport wires the toolchain with a backend that reports
// no host support, so only the interpreted execution path runs.
func NewWithoutNativeSupport() *toolchain.Toolchain {
	tc := New()
	tc.CodeGen = newCodeGen(false)
	return tc
}
