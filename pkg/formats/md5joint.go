package formats

// Animated component bits of MD5Joint.Components, in the order their values
// appear in a frame.
const (
	ComponentX     uint32 = 1 << 0
	ComponentY     uint32 = 1 << 1
	ComponentZ     uint32 = 1 << 2
	ComponentYaw   uint32 = 1 << 3 // orientation x
	ComponentPitch uint32 = 1 << 4 // orientation y
	ComponentRoll  uint32 = 1 << 5 // orientation z

	// ComponentInvalid is the sentinel bit. It and every bit above it must be clear.
	ComponentInvalid uint32 = 1 << 6
)

// MD5Joint is one node of a joint hierarchy. Joints reference each other by
// index into the owning slice; a parent always precedes its children.
type MD5Joint struct {
	Name       string
	Parent     int    // -1 for roots
	Components uint32 // Animated component mask (.md5anim only)
	FirstKey   int    // Offset of the first animated value in a frame (.md5anim only)
	Children   []int
}

// Hierarchy is a flat, index-addressed joint tree.
type Hierarchy []MD5Joint

// BuildHierarchy fills in the child lists of joints from their parent indices.
// Parents must already have been validated.
func BuildHierarchy(joints []MD5Joint) Hierarchy {
	for i := range joints {
		joints[i].Children = nil
	}
	for i := range joints {
		if p := joints[i].Parent; p >= 0 {
			joints[p].Children = append(joints[p].Children, i)
		}
	}
	return Hierarchy(joints)
}

// ChildrenOf returns the indices of the direct children of joint id.
func (h Hierarchy) ChildrenOf(id int) []int {
	return h[id].Children
}

// Roots returns the indices of all joints without a parent.
func (h Hierarchy) Roots() []int {
	var roots []int
	for i := range h {
		if h[i].Parent < 0 {
			roots = append(roots, i)
		}
	}
	return roots
}

// Walk visits every joint depth-first starting at the roots, so each joint is
// visited after its parent.
func (h Hierarchy) Walk(fn func(id int)) {
	var visit func(id int)
	visit = func(id int) {
		fn(id)
		for _, c := range h[id].Children {
			visit(c)
		}
	}
	for _, r := range h.Roots() {
		visit(r)
	}
}

// Find returns the index of the joint with the given name, or -1.
func (h Hierarchy) Find(name string) int {
	for i := range h {
		if h[i].Name == name {
			return i
		}
	}
	return -1
}
