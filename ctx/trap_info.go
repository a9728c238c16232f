// Package ctx holds the Context capability interface and the trap contracts
// that slots and properties use to intercept operations. Context and the
// trap types are mutually referential in the source material (a trap method
// receives a Context, and Context exposes the protect/unprotect calls a trap
// wrapper needs), so they are kept in one package here: splitting them across
// packages the way the teacher splits unrelated concerns would force an
// import cycle that Go does not allow.
package ctx

import "github.com/dragonation/rogiso-go/base"

// TrapInfo records the subject and parameters of one trapped operation.
type TrapInfo interface {
	Subject() base.Value
	ParametersCount() int
	Parameter(index int) base.Value
}

type trapInfo struct {
	subject    base.Value
	parameters []base.Value
}

func NewTrapInfo(subject base.Value, parameters []base.Value) TrapInfo {
	return &trapInfo{subject: subject, parameters: parameters}
}

func (t *trapInfo) Subject() base.Value { return t.subject }

func (t *trapInfo) ParametersCount() int { return len(t.parameters) }

func (t *trapInfo) Parameter(index int) base.Value {
	if index < 0 || index >= len(t.parameters) {
		return base.MakeUndefined()
	}
	return t.parameters[index]
}
