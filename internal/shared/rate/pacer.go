package rate

import "go.uber.org/ratelimit"

// Pacer spreads suspend calls to the host over time so a scan over a large
// tab set never lands as one burst. A nil Pacer does not pace.
type Pacer struct {
	l ratelimit.Limiter
}

func NewPacer(callsPerSec int) *Pacer {
	if callsPerSec < 1 {
		callsPerSec = 1
	}
	return &Pacer{l: ratelimit.New(callsPerSec)}
}

// Take blocks until the next call is allowed.
func (p *Pacer) Take() {
	if p == nil {
		return
	}
	p.l.Take()
}
