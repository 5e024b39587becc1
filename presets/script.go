package presets

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// RunScript runs a tengo preset script. The script sees the track length as
// the global total_duration and must leave an array of section maps in the
// global sections.
func RunScript(dir, name string, total float64) ([]SectionSpec, error) {
	src, err := LoadScript(dir, name)
	if err != nil {
		return nil, fmt.Errorf("presets: load script %s: %w", name, err)
	}
	return runScriptSource(name, src, total)
}

func runScriptSource(name string, src []byte, total float64) ([]SectionSpec, error) {
	script := tengo.NewScript(src)
	if err := script.Add("total_duration", total); err != nil {
		return nil, err
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("presets: compile %s: %w", name, err)
	}
	if err := run(compiled); err != nil {
		return nil, fmt.Errorf("presets: run %s: %w", name, err)
	}
	if !compiled.IsDefined("sections") {
		return nil, fmt.Errorf("%w: script %s defines no sections", ErrInvalidPreset, name)
	}

	v := compiled.Get("sections")
	if v.ValueType() != "array" {
		return nil, fmt.Errorf("%w: script %s: sections is %s, not array", ErrInvalidPreset, name, v.ValueType())
	}
	specs, err := DecodeSpec[[]SectionSpec](v.Array())
	if err != nil {
		return nil, fmt.Errorf("presets: decode %s: %w", name, err)
	}
	return specs, nil
}

// run executes compiled, turning a runtime panic inside the VM into an error.
// Scripts are edited by hand and hot reloaded, so a fault must not take the
// frame loop down with it.
func run(compiled *tengo.Compiled) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrScriptPanic, r)
		}
	}()
	return compiled.Run()
}
