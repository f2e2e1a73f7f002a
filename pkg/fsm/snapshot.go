package fsm

import (
	"context"

	"github.com/aretw0/nest/pkg/domain"
)

// Dump captures the live stack, root first. Each state's dump handlers fill a
// fresh data map.
func (p *Process) Dump(ctx context.Context) *domain.Snapshot {
	var chain []*State
	for st := p.current; st != nil; st = st.parent {
		chain = append(chain, st)
	}
	snap := &domain.Snapshot{
		Status: p.phase,
		Event:  p.event,
		Stack:  make([]domain.StateDump, 0, len(chain)),
	}
	for i := len(chain) - 1; i >= 0; i-- {
		st := chain[i]
		data := make(map[string]any)
		st.runDumpHandlers(ctx, append([]DumpHandler(nil), st.dumps...), data)
		snap.Stack = append(snap.Stack, domain.StateDump{Key: st.key, Data: data})
	}
	return snap
}

// Restore discards the live stack and rebuilds it from snap. Nested states are
// resolved with the same ancestor scan as Dispatch; keys unknown to the tree
// become placeholder leaves. Restore handlers receive the saved data; enter
// handlers are not run. Status and event are taken from the snapshot.
func (p *Process) Restore(ctx context.Context, snap *domain.Snapshot) {
	p.current = nil
	for _, d := range snap.Stack {
		if p.current == nil {
			p.current = p.newState(nil, d.Key, p.root)
		} else {
			p.current = p.newSubstate(p.current, d.Key)
		}
		data := d.Data
		if data == nil {
			data = make(map[string]any)
		}
		st := p.current
		st.runDumpHandlers(ctx, append([]DumpHandler(nil), st.restores...), data)
	}
	p.phase = snap.Status
	p.event = snap.Event
}
