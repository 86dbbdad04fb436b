//go:build !tinygo

package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

type hclFile struct {
	Log       *hclLog       `hcl:"log,block"`
	Scheduler *hclScheduler `hcl:"scheduler,block"`
	Machine   *hclMachine   `hcl:"machine,block"`
	Apps      []*hclApp     `hcl:"app,block"`
}

type hclLog struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

type hclScheduler struct {
	Levels           *int     `hcl:"levels,optional"`
	BaseSlice        *uint64  `hcl:"base_slice,optional"`
	SliceMultipliers []uint64 `hcl:"slice_multipliers,optional"`
	QueueCapacity    *int     `hcl:"queue_capacity,optional"`
	StackSize        *uint64  `hcl:"stack_size,optional"`
	BootIOTask       *bool    `hcl:"boot_io_task,optional"`
}

type hclMachine struct {
	HeapBase *uint64     `hcl:"heap_base,optional"`
	HeapSize *uint64     `hcl:"heap_size,optional"`
	Display  *hclDisplay `hcl:"display,block"`
	Net      *hclNet     `hcl:"net,block"`
}

type hclDisplay struct {
	Width  int `hcl:"width"`
	Height int `hcl:"height"`
}

type hclNet struct {
	IRQ      *uint32 `hcl:"irq,optional"`
	Loopback *bool   `hcl:"loopback,optional"`
	Ring     *int    `hcl:"ring,optional"`
}

type hclApp struct {
	Name      string `hcl:"name,label"`
	Instances *int   `hcl:"instances,optional"`
	Fib       *int   `hcl:"fib,optional"`
	Frames    *int   `hcl:"frames,optional"`
}

// Load reads and decodes the boot file at path.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boot file: %w", err)
	}
	return Parse(src, path)
}

// Parse decodes HCL source. filename is used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	var parsed hclFile
	if diags := gohcl.DecodeBody(f.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	cfg := Default()
	parsed.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

func (p *hclFile) apply(cfg *Config) {
	if l := p.Log; l != nil {
		setIf(&cfg.LogLevel, l.Level)
		setIf(&cfg.LogFormat, l.Format)
	}
	if s := p.Scheduler; s != nil {
		k := &cfg.Kernel
		setIf(&k.Levels, s.Levels)
		setIf(&k.BaseSlice, s.BaseSlice)
		setIf(&k.QueueCapacity, s.QueueCapacity)
		setIf(&k.BootIOTask, s.BootIOTask)
		if s.StackSize != nil {
			k.StackSize = uintptr(*s.StackSize)
		}
		switch {
		case s.SliceMultipliers != nil:
			k.SliceMultipliers = s.SliceMultipliers
		case s.Levels != nil && *s.Levels > 0:
			// Multipliers follow the level count unless given explicitly.
			k.SliceMultipliers = nil
			*k = k.WithDefaults()
		}
	}
	if m := p.Machine; m != nil {
		setIf(&cfg.HeapBase, m.HeapBase)
		setIf(&cfg.HeapSize, m.HeapSize)
		if d := m.Display; d != nil {
			cfg.Width, cfg.Height = d.Width, d.Height
		}
		if n := m.Net; n != nil {
			setIf(&cfg.Kernel.NetIRQ, n.IRQ)
			setIf(&cfg.Loopback, n.Loopback)
			setIf(&cfg.Kernel.NetRing, n.Ring)
		}
	}
	if len(p.Apps) > 0 {
		cfg.Apps = cfg.Apps[:0]
		for _, a := range p.Apps {
			app := App{Name: a.Name, Instances: 1, Frames: 1}
			setIf(&app.Instances, a.Instances)
			setIf(&app.Fib, a.Fib)
			setIf(&app.Frames, a.Frames)
			cfg.Apps = append(cfg.Apps, app)
		}
	}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

