package register

// Local is one lexically scoped name bound to a register.
type Local struct {
	Name       string
	Register   byte
	Depth      int
	Captured   bool // true once an enclosed closure references it as an upvalue
	Persistent bool
}

// Scopes tracks the active local-variable stack for one function, the
// same depth-tagged locals array a stack-based compiler keeps but
// resolving to register indices instead of stack slots.
type Scopes struct {
	locals []Local
	depth  int
}

func NewScopes() *Scopes { return &Scopes{} }

func (s *Scopes) Begin() { s.depth++ }

// End pops every local declared at the current depth, returning their
// registers so the caller can Free them (in reverse-declaration order,
// satisfying the allocator's LIFO rule) unless they were marked
// Persistent.
func (s *Scopes) End() []Local {
	var popped []Local
	for len(s.locals) > 0 && s.locals[len(s.locals)-1].Depth == s.depth {
		last := s.locals[len(s.locals)-1]
		s.locals = s.locals[:len(s.locals)-1]
		popped = append(popped, last)
	}
	s.depth--
	return popped
}

func (s *Scopes) Declare(name string, reg byte) {
	s.locals = append(s.locals, Local{Name: name, Register: reg, Depth: s.depth})
}

// Resolve finds the innermost local bound to name, reporting its register.
func (s *Scopes) Resolve(name string) (Local, bool) {
	for i := len(s.locals) - 1; i >= 0; i-- {
		if s.locals[i].Name == name {
			return s.locals[i], true
		}
	}
	return Local{}, false
}

// MarkCaptured flags name as captured by a nested closure so the compiler
// promotes its register to persistent.
func (s *Scopes) MarkCaptured(name string) {
	for i := range s.locals {
		if s.locals[i].Name == name {
			s.locals[i].Captured = true
			s.locals[i].Persistent = true
		}
	}
}

func (s *Scopes) Depth() int { return s.depth }
