package errz

// NewFieldNotFound reports a failed field lookup on typ. An empty name or
// query means that part of the lookup was not used.
func NewFieldNotFound(typ, name, query string, pos int) *Error {
	return &Error{
		Kind:        FieldNotFound,
		Type:        typ,
		Name:        name,
		Query:       query,
		Position:    pos,
		HasPosition: query != "",
	}
}

// NewConstructorNotFound reports a failed constructor lookup. Pass nil params
// for index based lookups.
func NewConstructorNotFound(typ string, params []string) *Error {
	return &Error{Kind: ConstructorNotFound, Type: typ, Params: params}
}

// NewConstructorIndexNotFound reports an out of range constructor index.
func NewConstructorIndexNotFound(typ string, index int) *Error {
	return &Error{Kind: ConstructorNotFound, Type: typ, Position: index, HasPosition: true}
}

// NewMethodNotFound reports a failed method lookup.
func NewMethodNotFound(typ, name, returns string, params []string) *Error {
	return &Error{Kind: MethodNotFound, Type: typ, Name: name, Query: returns, Params: params}
}

// NewClassNotFound reports that no loader could resolve name.
func NewClassNotFound(name string) *Error {
	return &Error{Kind: ClassNotFound, Name: name}
}

// NewClassDefinition reports that name could not be defined from its bytes.
func NewClassDefinition(name, reason string) *Error {
	return &Error{Kind: ClassDefinition, Name: name, Message: reason}
}

// NewInvocationFailed wraps an error raised by a member invocation.
func NewInvocationFailed(typ, member string, cause error) *Error {
	return &Error{Kind: InvocationFailed, Type: typ, Name: member, Cause: cause}
}

// NewAccess reports a member the host runtime does not allow touching.
func NewAccess(typ, member, reason string) *Error {
	return &Error{Kind: Access, Type: typ, Name: member, Message: reason}
}

// NewCompileFailed reports a compilation unit the compiler rejected. The
// cause carries the diagnostics.
func NewCompileFailed(unit string, cause error) *Error {
	return &Error{Kind: CompileFailed, Name: unit, Cause: cause}
}
