package hal

import "sync"

// MaxIRQLines is the number of interrupt sources the software PLIC models.
const MaxIRQLines = 64

// PLIC is a software platform-level interrupt controller.
//
// Devices Raise a line; the kernel Claims the lowest pending line (line 0 is
// reserved as "no interrupt", as on the real PLIC) and Completes it when served.
// A claimed line is not re-delivered until it is completed.
type PLIC struct {
	mu      sync.Mutex
	pending uint64
	claimed uint64
	enabled uint64
}

// NewPLIC returns a controller with every line enabled.
func NewPLIC() *PLIC {
	return &PLIC{enabled: ^uint64(0) &^ 1}
}

// Enable sets the enable bit for line.
func (p *PLIC) Enable(line uint32, on bool) {
	if line == 0 || line >= MaxIRQLines {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if on {
		p.enabled |= 1 << line
	} else {
		p.enabled &^= 1 << line
	}
}

// Raise asserts line. Raising an already pending line is a no-op.
func (p *PLIC) Raise(line uint32) {
	if line == 0 || line >= MaxIRQLines {
		return
	}
	p.mu.Lock()
	p.pending |= 1 << line
	p.mu.Unlock()
}

func (p *PLIC) deliverable() uint64 {
	return p.pending & p.enabled &^ p.claimed
}

func (p *PLIC) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deliverable() != 0
}

func (p *PLIC) Claim() (uint32, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.deliverable()
	if d == 0 {
		return 0, false
	}
	for line := uint32(1); line < MaxIRQLines; line++ {
		if d&(1<<line) != 0 {
			p.pending &^= 1 << line
			p.claimed |= 1 << line
			return line, true
		}
	}
	return 0, false
}

func (p *PLIC) Complete(line uint32) {
	if line == 0 || line >= MaxIRQLines {
		return
	}
	p.mu.Lock()
	p.claimed &^= 1 << line
	p.mu.Unlock()
}
