package readiness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCurrentLevel(t *testing.T) {
	tests := []struct {
		name     string
		approved []int
		want     int
	}{
		{"none", nil, 0},
		{"level one missing", []int{2, 3}, 0},
		{"only one", []int{1}, 1},
		{"consecutive", []int{1, 2, 3}, 3},
		{"gap stops the run", []int{1, 2, 4, 5}, 2},
		{"unordered with duplicates", []int{3, 1, 2, 2, 1}, 3},
		{"all nine", []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, 9},
		{"out of range ignored", []int{0, 1, 10}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CurrentLevel(tt.approved))
		})
	}
}
