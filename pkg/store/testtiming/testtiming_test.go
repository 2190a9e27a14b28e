package testtiming

import (
	"testing"

	"github.com/LambdaTest/forkplan/pkg/core"
	"github.com/stretchr/testify/assert"
	"gopkg.in/guregu/null.v4"
)

func TestToTimings(t *testing.T) {
	rows := []*averageRow{
		{Name: "a.B.test", Duration: null.FloatFrom(1500), Runs: 3},
		{Name: "a.B.skipped", Duration: null.Float{}, Runs: 1},
		{Name: "a.C.test", Duration: null.FloatFrom(0), Runs: 1},
	}
	assert.Equal(t, []core.TestTiming{
		{Name: "a.B.test", DurationSeconds: 1.5},
		{Name: "a.C.test", DurationSeconds: 0},
	}, toTimings(rows))
	assert.Empty(t, toTimings(nil))
}
