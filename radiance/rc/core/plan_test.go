package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanFrame_CascadeCountAndParity(t *testing.T) {
	for n := uint32(1); n <= 8; n++ {
		cfg := DefaultConfig()
		cfg.CascadeCount = n
		plan := PlanFrame(cfg)

		cascades := plan.CascadePasses()
		require.Len(t, cascades, int(n), "cascade count %d", n)

		wantFinal := RoleMergeA
		if (n+1)%2 == 1 {
			wantFinal = RoleMergeB
		}
		assert.Equal(t, wantFinal, plan.Final, "cascade count %d", n)
		assert.Equal(t, FinalRole(n), plan.Final)

		// the composite cascade input is the final buffer
		composite := plan.Passes[len(plan.Passes)-1]
		require.Equal(t, PassComposite, composite.Kind)
		assert.Equal(t, plan.Final, composite.Reads[3])
		assert.Equal(t, NoRole, composite.Write)

		// the last cascade writes the final buffer
		assert.Equal(t, plan.Final, cascades[len(cascades)-1].Write)
	}
}

func TestPlanFrame_Order(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CascadeCount = 3
	plan := PlanFrame(cfg)

	var kinds []PassKind
	for _, p := range plan.Passes {
		kinds = append(kinds, p.Kind)
	}
	assert.Equal(t, []PassKind{PassSDF, PassCascade, PassCascade, PassCascade, PassMipmap, PassComposite}, kinds)

	// coarse to fine
	assert.Equal(t, "cascade_pass_2", plan.Passes[1].Label)
	assert.Equal(t, "cascade_pass_0", plan.Passes[3].Label)
}

func TestPlanFrame_NoAliasing(t *testing.T) {
	for n := uint32(1); n <= 8; n++ {
		cfg := DefaultConfig()
		cfg.CascadeCount = n
		plan := PlanFrame(cfg)

		for _, pass := range plan.Passes {
			for _, r := range pass.Reads {
				assert.NotEqual(t, pass.Write, r, "%s reads its own target", pass.Label)
			}
		}

		// consecutive cascades alternate write targets
		cascades := plan.CascadePasses()
		for i := 1; i < len(cascades); i++ {
			assert.Equal(t, cascades[i-1].Write, cascades[i].Reads[1])
			assert.NotEqual(t, cascades[i-1].Write, cascades[i].Write)
		}
	}
}

func TestPingPong_Swap(t *testing.T) {
	pp := NewPingPong()
	assert.Equal(t, RoleMergeA, pp.Write())
	assert.Equal(t, RoleMergeB, pp.Read())

	pp.Swap()
	assert.Equal(t, RoleMergeB, pp.Write())
	assert.Equal(t, RoleMergeA, pp.Read())

	pp.Swap()
	assert.Equal(t, RoleMergeA, pp.Write())
}
