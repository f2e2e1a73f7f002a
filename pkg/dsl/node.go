package dsl

import "github.com/aretw0/nest/pkg/domain"

// Initial sets the substate entered when this state is entered, for any event.
func (b *Builder) Initial(to string) *Builder {
	return b.On(domain.InitialState, domain.AnyEvent, to)
}

// Go adds an unconditional move from one substate to another.
func (b *Builder) Go(from, to string) *Builder {
	return b.On(from, domain.AnyEvent, to)
}

// Finish makes event leave this level when fired in from.
func (b *Builder) Finish(from, event string) *Builder {
	return b.On(from, event, domain.FinalState)
}

// Always applies event from every substate of this level.
func (b *Builder) Always(event, to string) *Builder {
	return b.On(domain.AnyState, event, to)
}
