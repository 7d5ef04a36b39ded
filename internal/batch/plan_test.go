package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlan_ThousandByThreeHundred(t *testing.T) {
	got := Plan(1000, 300)
	assert.Equal(t, []Window{
		{Index: 0, Offset: 0, Limit: 300},
		{Index: 1, Offset: 300, Limit: 300},
		{Index: 2, Offset: 600, Limit: 300},
		{Index: 3, Offset: 900, Limit: 100},
	}, got)
}

func TestPlan_CoversTotalForAnySize(t *testing.T) {
	for _, total := range []int{1, 2, 7, 99, 100, 101} {
		for size := 1; size <= 120; size++ {
			sum, next := 0, 0
			for _, w := range Plan(total, size) {
				assert.Equal(t, next, w.Offset)
				assert.LessOrEqual(t, w.Limit, size)
				sum += w.Limit
				next += size
			}
			assert.Equal(t, total, sum, "total=%d size=%d", total, size)
		}
	}
}

func TestPlan_Edges(t *testing.T) {
	assert.Empty(t, Plan(0, 10))
	assert.Empty(t, Plan(-5, 10))
	assert.Len(t, Plan(3, 0), 3)
	assert.Equal(t, []Window{{Index: 0, Offset: 0, Limit: 5}}, Plan(5, 50))
}
