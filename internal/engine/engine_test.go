package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/stencil-engine/pkg/errors"
)

func TestNew_RankBounds(t *testing.T) {
	_, err := New(0, Config{})
	assert.Error(t, err)
	_, err = New(MaxRank+1, Config{})
	assert.Error(t, err)
	e, err := New(3, Config{})
	require.NoError(t, err)
	assert.Equal(t, 3, e.Rank())
}

func TestRun_UnsetFlags(t *testing.T) {
	noop := func(int, []int) {}

	e, err := New(1, Config{})
	require.NoError(t, err)
	err = e.Run(4, noop, noop)
	assert.Equal(t, apperrors.CodeUnsetFlag, apperrors.GetErrorCode(err))

	s, err := NewShape(1, []Offset{{Dt: 0, Dx: []int{0}}, {Dt: -1, Dx: []int{0}}})
	require.NoError(t, err)
	require.NoError(t, e.RegisterShape(s))
	err = e.Run(4, noop, noop)
	assert.Equal(t, apperrors.CodeUnsetFlag, apperrors.GetErrorCode(err), "grid still missing")

	_, err = e.GenPlan(4)
	assert.Equal(t, apperrors.CodeUnsetFlag, apperrors.GetErrorCode(err))

	require.NoError(t, e.RegisterGrid([]int{0}, []int{8}))
	assert.NoError(t, e.Run(4, noop, noop))
}

func TestRegisterGrid_Errors(t *testing.T) {
	e, err := New(2, Config{})
	require.NoError(t, err)

	err = e.RegisterGrid([]int{0}, []int{4, 4})
	assert.Equal(t, apperrors.CodeExtentMismatch, apperrors.GetErrorCode(err))

	err = e.RegisterGrid([]int{0, 4}, []int{4, 4})
	assert.Equal(t, apperrors.CodeExtentMismatch, apperrors.GetErrorCode(err), "empty extent")
}

func TestRegisterDomain_Errors(t *testing.T) {
	e, err := New(1, Config{})
	require.NoError(t, err)

	err = e.RegisterDomain([]int{0}, []int{4})
	assert.Equal(t, apperrors.CodeUnsetFlag, apperrors.GetErrorCode(err), "domain before grid")

	require.NoError(t, e.RegisterGrid([]int{0}, []int{8}))
	err = e.RegisterDomain([]int{2}, []int{9})
	assert.Equal(t, apperrors.CodeExtentMismatch, apperrors.GetErrorCode(err), "domain outside grid")
}

func TestSetBoundary_Errors(t *testing.T) {
	e, err := New(1, Config{})
	require.NoError(t, err)
	assert.Error(t, e.SetBoundary(1, Periodic))
	assert.Error(t, e.SetBoundary(0, KleinBottle), "klein needs a partner axis")

	e2, err := New(2, Config{})
	require.NoError(t, err)
	assert.NoError(t, e2.SetBoundary(0, KleinBottle))
	assert.Error(t, e2.SetKleinPartner(0, 0))
	assert.NoError(t, e2.SetKleinPartner(0, 1))
}

func TestRegisterShape_RankMismatch(t *testing.T) {
	e, err := New(2, Config{})
	require.NoError(t, err)
	s, err := NewShape(1, []Offset{{Dt: 0, Dx: []int{0}}, {Dt: -1, Dx: []int{0}}})
	require.NoError(t, err)
	err = e.RegisterShape(s)
	assert.Equal(t, apperrors.CodeInvalidShape, apperrors.GetErrorCode(err))
}

func TestBoundaryMode_String(t *testing.T) {
	assert.Equal(t, "non-periodic", NonPeriodic.String())
	assert.Equal(t, "periodic", Periodic.String())
	assert.Equal(t, "klein-bottle", KleinBottle.String())
}

func TestConfig_CutoffDefaults(t *testing.T) {
	e, err := New(2, Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultDtStop, e.dtStop)
	assert.Equal(t, DefaultDxStop, e.dxStop[1])
	assert.Equal(t, DefaultDxStopBoundary, e.dxStopBoundary[0])

	e, err = New(2, Config{DtStop: 3, DxStop: []int{10, 20}, DxStopBoundary: []int{4, 5}})
	require.NoError(t, err)
	assert.Equal(t, 3, e.dtStop)
	assert.Equal(t, 10, e.dxStop[0])
	assert.Equal(t, 20, e.dxStop[1])
	assert.Equal(t, 5, e.dxStopBoundary[1])
}
