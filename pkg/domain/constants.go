package domain

// Wildcards and pseudo-states understood by the transition resolver.
//
// InitialState and FinalState share the empty string literal but play different
// roles: InitialState is a lookup key ("nothing entered yet at this level") while
// FinalState is a resolved target ("leave this level"). Keep them apart in code.
const (
	AnyState     = "*"
	AnyEvent     = "*"
	InitialState = ""
	FinalState   = ""
	EmptyEvent   = ""
)
