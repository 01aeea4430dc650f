package types

import (
	"viper/token"
)

// PendingType is a forward reference to a struct that has been named
// (e.g. as a field or parameter type) before its own declaration has been
// parsed. It starts life Empty; Pass 2 eventually drives it to Complete
// (backed by a *StructType) or, if the declaration is never found,
// Incomplete (backed by an *IncompleteType, sized from whatever field
// list was staged on it). Every PendingType created during parsing is
// pushed onto the Registry's pending list so the end-of-pass sweep can
// flag whatever never resolved.
type PendingType struct {
	base

	Namespaces []string
	TypeName   string
	Span       token.Span

	fields  []StructField
	methods []Method

	resolved Type
}

// NewPendingType creates an unresolved placeholder and registers it on
// reg's pending work list.
func NewPendingType(reg *Registry, namespaces []string, name string, span token.Span) *PendingType {
	p := &PendingType{Namespaces: namespaces, TypeName: name, Span: span}
	reg.pending = append(reg.pending, p)
	return p
}

// Set stages the field/method list a later declaration supplied, without
// yet deciding whether the type is complete. This mirrors
// PendingStructType::set: it re-arms the placeholder (clearing any
// previous resolution) so a subsequent InitComplete/InitIncomplete call
// picks up the new layout.
func (p *PendingType) Set(fields []StructField, methods []Method) {
	p.fields = fields
	p.methods = methods
	p.resolved = nil
}

// InitComplete resolves the placeholder to a full StructType built from
// the staged field/method list and removes it from reg's pending list.
func (p *PendingType) InitComplete(reg *Registry) *StructType {
	st := &StructType{Namespaces: p.Namespaces, TypeName: p.TypeName, Fields: p.fields, Methods: p.methods}
	p.resolved = st
	reg.removePending(p)
	return st
}

// InitIncomplete resolves the placeholder to an IncompleteType sized from
// whatever fields were staged, and removes it from reg's pending list.
// This is the path taken when end-of-pipeline resolution (§4.6) still
// finds the placeholder unresolved.
func (p *PendingType) InitIncomplete(reg *Registry) *IncompleteType {
	size := 0
	for _, f := range p.fields {
		size += f.Type.Size()
	}

	it := &IncompleteType{TypeName: p.TypeName, size: size}
	p.resolved = it
	reg.removePending(p)
	return it
}

// Resolved reports the concrete type this placeholder currently holds, if
// any.
func (p *PendingType) Resolved() (Type, bool) {
	return p.resolved, p.resolved != nil
}

func (p *PendingType) Name() string {
	if p.resolved != nil {
		return p.resolved.Name()
	}
	return p.TypeName
}

func (p *PendingType) MangleID() string {
	if p.resolved != nil {
		return p.resolved.MangleID()
	}
	return "Stray error-type in program"
}

func (p *PendingType) Size() int {
	if p.resolved != nil {
		return p.resolved.Size()
	}
	size := 0
	for _, f := range p.fields {
		size += f.Type.Size()
	}
	return size
}

func (p *PendingType) IsStruct() bool {
	return p.resolved != nil && p.resolved.IsStruct()
}

func (p *PendingType) IsObject() bool {
	return p.resolved != nil && p.resolved.IsObject()
}

func (p *PendingType) CastRankTo(dest Type) CastRank {
	if p.resolved != nil {
		return p.resolved.CastRankTo(dest)
	}
	return Disallowed
}
