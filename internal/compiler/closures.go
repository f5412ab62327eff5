package compiler

// resolveUpvalue walks the enclosing-frame chain looking for name: a name
// not found as a
// local in this frame is looked up in the enclosing frame; if found
// there as a local, that local is marked captured/persistent and a new
// "local" upvalue is added here, otherwise the search recurses into the
// enclosing frame's own upvalues, adding a "non-local" upvalue that
// chains through it.
func (c *Compiler) resolveUpvalue(name string) (byte, bool) {
	if c.enclosing == nil {
		return 0, false
	}
	if local, ok := c.enclosing.scope.Resolve(name); ok {
		c.enclosing.scope.MarkCaptured(name)
		c.enclosing.regs.MarkPersistent(local.Register)
		return c.addUpvalue(local.Register, true), true
	}
	if idx, ok := c.enclosing.resolveUpvalue(name); ok {
		return c.addUpvalue(idx, false), true
	}
	return 0, false
}

// addUpvalue appends (or reuses) an upvalue slot and returns its index.
func (c *Compiler) addUpvalue(index byte, isLocal bool) byte {
	for i, uv := range c.upvalues {
		if uv.Index == index && uv.IsLocal == isLocal {
			return byte(i)
		}
	}
	c.upvalues = append(c.upvalues, Upvalue{Index: index, IsLocal: isLocal})
	return byte(len(c.upvalues) - 1)
}
