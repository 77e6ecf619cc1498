package models

// Validate checks the group record before it is stored.
func (g *Group) Validate() error {
	return validateStruct(g)
}

func (g *Group) String() string {
	return g.Title
}
