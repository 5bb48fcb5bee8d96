package study_test

import (
	"testing"

	"github.com/specialistvlad/hypermdo/internal/mdoerr"
	"github.com/specialistvlad/hypermdo/internal/model"
	"github.com/specialistvlad/hypermdo/internal/recorder"
	"github.com/specialistvlad/hypermdo/internal/study"
	"github.com/specialistvlad/hypermdo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqrtProblem(t *testing.T) *model.Problem {
	t.Helper()
	root := model.NewGroup()
	require.NoError(t, root.AddChild("src", &testutil.Source{Value: 1}))
	require.NoError(t, root.AddChild("sq", testutil.Sqrt{}))
	require.NoError(t, root.Connect("src.y", "sq.x"))
	return model.NewProblem(root)
}

func TestRun_RecordsFailuresAndContinues(t *testing.T) {
	// Arrange
	ctx, _ := testutil.Context(t)
	p := sqrtProblem(t)
	var seen []int
	plan := study.Plan{
		Name:     "roots",
		Variable: "src.y",
		Values:   []float64{4, -1, 9},
		Record:   []string{"sq.y"},
		OnPoint:  func(pt study.Point) { seen = append(seen, pt.Index) },
	}
	rec := recorder.NewMemory()

	// Act
	res, err := study.Run(ctx, p, plan, rec)

	// Assert
	require.NoError(t, err)
	require.Len(t, res.Points, 3)
	assert.Equal(t, 1, res.Failures())
	assert.Equal(t, []int{0, 1, 2}, seen)
	assert.InDelta(t, 2.0, res.Points[0].Outputs[0][0], 1e-12)
	assert.InDelta(t, 3.0, res.Points[2].Outputs[0][0], 1e-12)
	assert.Equal(t, "converged", res.Points[2].Status)

	var ce *mdoerr.ComputeError
	require.ErrorAs(t, res.Points[1].Err, &ce)
	assert.Equal(t, "sq", ce.Component)
	assert.Equal(t, "failed", res.Points[1].Status)

	cases := rec.Cases()
	require.Len(t, cases, 3)
	assert.Equal(t, "roots[1]", cases[1].Name)
}

func TestRun_SinglePoint(t *testing.T) {
	// Arrange
	ctx, _ := testutil.Context(t)
	p := sqrtProblem(t)
	plan := study.Plan{
		Name:    "once",
		Record:  []string{"sq.y"},
		Prepare: func(p *model.Problem) error { return p.Set("src.y", 16) },
	}

	// Act
	res, err := study.Run(ctx, p, plan, nil)

	// Assert
	require.NoError(t, err)
	require.Len(t, res.Points, 1)
	assert.Equal(t, 4.0, res.Points[0].Outputs[0][0])
}

func TestRun_Aborts(t *testing.T) {
	testCases := []struct {
		name string
		plan study.Plan
	}{
		{name: "unknown swept variable", plan: study.Plan{Name: "s", Variable: "nope.y", Values: []float64{1}}},
		{name: "unknown recorded variable", plan: study.Plan{Name: "s", Record: []string{"sq.z"}}},
		{name: "no values", plan: study.Plan{Name: "s", Variable: "src.y"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			ctx, _ := testutil.Context(t)

			// Act
			_, err := study.Run(ctx, sqrtProblem(t), tc.plan, nil)

			// Assert
			assert.Error(t, err)
		})
	}
}

func TestRun_PointsAreIndependent(t *testing.T) {
	// Arrange: the same value gives the same answer wherever it sits.
	ctx, _ := testutil.Context(t)
	plan := study.Plan{Name: "s", Variable: "src.y", Values: []float64{2, 7, 2}, Record: []string{"sq.y"}}

	// Act
	res, err := study.Run(ctx, sqrtProblem(t), plan, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, res.Points[0].Outputs, res.Points[2].Outputs)
}
