package projector

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/engine"
)

func confirmedPick(num int, team engine.TeamID, cat engine.Category, asset int64) engine.Pick {
	return engine.Pick{
		PickNumber: num,
		Round:      (num-1)/2 + 1,
		TeamID:     team,
		Category:   cat,
		AssetID:    asset,
		MadeBy:     engine.MadeByHuman,
	}
}

func TestProjector_OptimisticThenConfirmed(t *testing.T) {
	p := New()

	p.SubmitIntent("A", engine.CategoryStrain, 7)
	proj := p.Projection()
	require.Len(t, proj, 1)
	require.False(t, proj[0].Confirmed)

	p.ApplyConfirmed(confirmedPick(1, "A", engine.CategoryStrain, 7))
	proj = p.Projection()
	require.Len(t, proj, 1)
	require.True(t, proj[0].Confirmed)
	require.Equal(t, 1, proj[0].Pick.PickNumber)
}

func TestProjector_ReapplyingConfirmedEventIsIdempotent(t *testing.T) {
	p := New()
	pick := confirmedPick(1, "A", engine.CategoryStrain, 7)

	p.ApplyConfirmed(pick)
	p.ApplyConfirmed(pick)

	require.Len(t, p.Projection(), 1)
	require.Equal(t, engine.Roster{engine.CategoryStrain: 1}, p.Roster("A"))
}

func TestProjector_RevokesCollidingOptimisticEntry(t *testing.T) {
	p := New()

	// This client assumed team B gets pharmacy 3...
	p.SubmitIntent("B", engine.CategoryPharmacy, 3)
	// ...but team A's pick for the same asset confirmed first.
	p.ApplyConfirmed(confirmedPick(1, "A", engine.CategoryPharmacy, 3))

	proj := p.Projection()
	require.Len(t, proj, 1)
	require.True(t, proj[0].Confirmed)
	require.Equal(t, engine.TeamID("A"), proj[0].Pick.TeamID)
	require.Equal(t, engine.Roster{}, p.Roster("B"))
}

func TestProjector_UnrelatedIntentSurvivesConfirmation(t *testing.T) {
	p := New()

	p.SubmitIntent("B", engine.CategoryBrand, 9)
	p.ApplyConfirmed(confirmedPick(1, "A", engine.CategoryPharmacy, 3))

	proj := p.Projection()
	require.Len(t, proj, 2)
	require.True(t, proj[0].Confirmed)
	require.False(t, proj[1].Confirmed)
}

func TestProjector_SnapshotRebuildDropsConflicts(t *testing.T) {
	p := New()

	p.SubmitIntent("B", engine.CategoryBrand, 9)
	p.SubmitIntent("B", engine.CategoryStrain, 4)

	log := []engine.Pick{
		confirmedPick(1, "A", engine.CategoryBrand, 9), // conflicts with first intent
		confirmedPick(2, "B", engine.CategoryProduct, 1),
	}
	p.ApplySnapshot(log)

	proj := p.Projection()
	require.Len(t, proj, 3) // two confirmed + one surviving intent
	require.Equal(t, engine.Roster{
		engine.CategoryProduct: 1,
		engine.CategoryStrain:  1,
	}, p.Roster("B"))
}

func TestProjector_ProjectionOrdersByPickNumber(t *testing.T) {
	p := New()
	p.ApplyConfirmed(confirmedPick(3, "A", engine.CategoryProduct, 5))
	p.ApplyConfirmed(confirmedPick(1, "B", engine.CategoryStrain, 2))
	p.ApplyConfirmed(confirmedPick(2, "A", engine.CategoryBrand, 8))

	proj := p.Projection()
	require.Len(t, proj, 3)
	for i, e := range proj {
		require.Equal(t, i+1, e.Pick.PickNumber)
	}
}
