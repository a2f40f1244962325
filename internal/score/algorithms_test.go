package score

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeBreakdownWakeup(t *testing.T) {
	tests := []struct {
		name string
		w    *WakeupFacts
		want int
	}{
		{"成功且在截止前", &WakeupFacts{Status: StatusSuccess, Eligible: true}, 1},
		{"成功但超过截止", &WakeupFacts{Status: StatusSuccess, Eligible: false}, 0},
		{"失败即使在截止前", &WakeupFacts{Status: StatusFail, Eligible: true}, 0},
		{"没有记录", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ComputeBreakdown(tt.w, nil)
			require.Equal(t, tt.want, b.Wakeup)
			require.Equal(t, tt.want, b.Total)
		})
	}
}

func TestComputeBreakdownPlanning(t *testing.T) {
	// 只有一条非空优先任务、没有青蛙任务的一天得1分
	p := &PlanningFacts{
		Priorities: []string{"buy milk", "", "", "", ""},
		Frogs:      []string{"", "", ""},
	}
	b := ComputeBreakdown(nil, p)
	require.Equal(t, Breakdown{Wakeup: 0, Priorities: 1, Frogs: 0, Total: 1}, b)
}

func TestComputeBreakdownBlankEntries(t *testing.T) {
	// 仅含空白字符的条目不算完成
	p := &PlanningFacts{
		Priorities: []string{"   ", "\t", ""},
		Frogs:      []string{" \n "},
	}
	b := ComputeBreakdown(nil, p)
	require.Equal(t, 0, b.Total)
}

func TestComputeBreakdownFullDay(t *testing.T) {
	w := &WakeupFacts{Status: StatusSuccess, Eligible: true}
	p := &PlanningFacts{
		Priorities: []string{"task"},
		Frogs:      []string{"frog"},
	}
	b := ComputeBreakdown(w, p)
	require.Equal(t, Breakdown{Wakeup: 1, Priorities: 1, Frogs: 1, Total: 3}, b)
}

func TestComputeBreakdownIsPure(t *testing.T) {
	// 同样的输入反复计算，结果完全一致
	w := &WakeupFacts{Status: StatusSuccess, Eligible: true}
	p := &PlanningFacts{Priorities: []string{"task"}, Frogs: []string{""}}

	first := ComputeBreakdown(w, p)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, ComputeBreakdown(w, p))
	}
}

func TestIsValidStatus(t *testing.T) {
	require.True(t, IsValidStatus(StatusSuccess))
	require.True(t, IsValidStatus(StatusFail))
	require.False(t, IsValidStatus(""))
	require.False(t, IsValidStatus("SUCCESS"))
	require.False(t, IsValidStatus("pending"))
}
