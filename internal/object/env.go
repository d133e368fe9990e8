package object

// Environment is a parent-linked name-to-value scope: the interpreter's
// globals are the root Environment, and every function call pushes a
// fresh child frame whose Parent is the environment captured at the
// function's `def` site (its closure), not the caller's frame.
type Environment struct {
	vars   map[string]Value
	order  []string
	Parent *Environment
}

// NewEnvironment allocates a root environment with no parent.
func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]Value)}
}

// NewChildEnvironment allocates a frame whose lookups fall through to
// parent when a name isn't bound locally.
func NewChildEnvironment(parent *Environment) *Environment {
	return &Environment{vars: make(map[string]Value), Parent: parent}
}

// Get resolves name by walking from this environment outward through
// Parent links, returning NewNameError if no frame binds it.
func (e *Environment) Get(name string) (Value, error) {
	for env := e; env != nil; env = env.Parent {
		if v, ok := env.vars[name]; ok {
			return v, nil
		}
	}
	return nil, NewNameError("name '" + name + "' is not defined")
}

// SetLocal binds name in this environment specifically, shadowing any
// same-named binding in an enclosing scope. This is what StoreName uses:
// the language has no explicit `global`/`nonlocal` declarations, so every
// assignment is local to its own frame.
func (e *Environment) SetLocal(name string, v Value) {
	if _, exists := e.vars[name]; !exists {
		e.order = append(e.order, name)
	}
	e.vars[name] = v
}

// Dict projects the environment's local bindings into a Dict, in
// assignment order, used by MakeClass to turn a class body's frame into
// the class namespace.
func (e *Environment) Dict() *Dict {
	d := NewDict()
	for _, k := range e.order {
		d.SetStr(k, e.vars[k])
	}
	return d
}
