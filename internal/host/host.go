// Package host defines the browser-side collaborators the core depends on:
// tab enumeration and the suspend action. The daemon itself talks to a
// Registry fed by the browser companion over the command interface.
package host

import (
	"context"

	"github.com/abrorxon-karimxonov/zen-auto-inactive-tabs/model"
)

// Host is the boundary contract required by the scheduler.
//
// QueryAll's order is load-bearing: when the minimum-active floor stops a
// scan, earlier-enumerated tabs have already been suspended and later ones are
// spared, so enumeration order is the tie-break.
type Host interface {
	QueryAll(ctx context.Context) ([]model.Tab, error)
	Discard(ctx context.Context, id model.TabID) error
}
