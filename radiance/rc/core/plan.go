package core

import "fmt"

type PassKind int

const (
	PassSDF PassKind = iota
	PassCascade
	PassMipmap
	PassComposite
)

func (k PassKind) String() string {
	switch k {
	case PassSDF:
		return "sdf"
	case PassCascade:
		return "cascade"
	case PassMipmap:
		return "mipmap"
	case PassComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// NoRole marks a pass writing the view destination instead of a target.
const NoRole Role = -1

// PlannedPass is one GPU render pass of a frame.
type PlannedPass struct {
	Kind  PassKind
	Label string
	Reads []Role
	Write Role
	// Probe is the cascade iteration for cascade passes, -1 otherwise.
	Probe int
}

// FramePlan is the ordered pass list for one view and frame.
type FramePlan struct {
	Passes []PlannedPass
	// Final is the merge buffer the mipmap and composite passes consume.
	Final Role
}

// PlanFrame lays out SDF, cascadeCount cascade iterations, mipmap and composite.
func PlanFrame(cfg Config) FramePlan {
	count := max(cfg.CascadeCount, 1)
	plan := FramePlan{Passes: make([]PlannedPass, 0, count+3)}

	plan.Passes = append(plan.Passes, PlannedPass{
		Kind:  PassSDF,
		Label: "sdf_pass",
		Write: RoleSDF,
		Probe: -1,
	})

	pp := NewPingPong()
	for i := 0; i < int(count); i++ {
		if i > 0 {
			pp.Swap()
		}
		plan.Passes = append(plan.Passes, PlannedPass{
			Kind:  PassCascade,
			Label: fmt.Sprintf("cascade_pass_%d", count-1-uint32(i)),
			Reads: []Role{RoleSDF, pp.Read()},
			Write: pp.Write(),
			Probe: i,
		})
	}
	plan.Final = pp.Write()

	plan.Passes = append(plan.Passes,
		PlannedPass{
			Kind:  PassMipmap,
			Label: "mipmap_pass",
			Reads: []Role{plan.Final},
			Write: RoleMipmap,
			Probe: -1,
		},
		PlannedPass{
			Kind:  PassComposite,
			Label: "composite_pass",
			Reads: []Role{RoleSDF, RoleMergeA, RoleMergeB, plan.Final, RoleMipmap},
			Write: NoRole,
			Probe: -1,
		},
	)
	return plan
}

// CascadePasses returns only the cascade iterations, in dispatch order.
func (p FramePlan) CascadePasses() []PlannedPass {
	var out []PlannedPass
	for _, pass := range p.Passes {
		if pass.Kind == PassCascade {
			out = append(out, pass)
		}
	}
	return out
}
