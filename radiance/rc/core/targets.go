package core

// Role identifies a render target by what it holds.
type Role int

const (
	RoleSDF Role = iota
	RoleMergeA
	RoleMergeB
	RoleMipmap
)

// Roles lists every target role in allocation order.
func Roles() []Role {
	return []Role{RoleSDF, RoleMergeA, RoleMergeB, RoleMipmap}
}

func (r Role) String() string {
	switch r {
	case RoleSDF:
		return "sdf"
	case RoleMergeA:
		return "merge_a"
	case RoleMergeB:
		return "merge_b"
	case RoleMipmap:
		return "mipmap"
	default:
		return "unknown"
	}
}

// TargetSize is the resolution allocated for a role.
func (s ComputedSize) TargetSize(r Role) [2]uint32 {
	if r == RoleMipmap {
		return s.MipmapSize()
	}
	return s.Scaled
}

// PingPong tracks which merge buffer is read and which is written.
type PingPong struct {
	read  Role
	write Role
}

// NewPingPong starts by writing MergeA.
func NewPingPong() PingPong {
	return PingPong{read: RoleMergeB, write: RoleMergeA}
}

func (p PingPong) Read() Role  { return p.read }
func (p PingPong) Write() Role { return p.write }

// Swap exchanges the roles; call once after every cascade iteration.
func (p *PingPong) Swap() {
	p.read, p.write = p.write, p.read
}

// FinalRole is the merge buffer holding the result after count iterations:
// MergeA for an odd count, MergeB for an even count.
func FinalRole(count uint32) Role {
	pp := NewPingPong()
	for i := uint32(1); i < count; i++ {
		pp.Swap()
	}
	return pp.Write()
}
