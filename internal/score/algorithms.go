package score

import "strings"

// --- 起床状态 ---

const (
	// StatusSuccess 表示成员在当天成功起床打卡。
	StatusSuccess = "success"
	// StatusFail 表示成员在当天打卡失败（包括超时提交）。
	StatusFail = "fail"
)

// IsValidStatus 校验起床状态的取值。
func IsValidStatus(status string) bool {
	return status == StatusSuccess || status == StatusFail
}

// --- 单日计分规则 ---

// WakeupFacts 是计算起床分所需的事实。
// Eligible 是提交时刻按截止时间策略判定并冻结的结果，
// 重算时直接使用，绝不重新对照"当前时间"评估。
type WakeupFacts struct {
	Status   string
	Eligible bool
}

// PlanningFacts 是计算计划分所需的事实。
type PlanningFacts struct {
	Priorities []string
	Frogs      []string
}

// Breakdown 是一个成员单日得分的明细。三个子分彼此独立，
// 各自取值0或1，Total是三者之和。
type Breakdown struct {
	Wakeup     int `json:"wakeup"`
	Priorities int `json:"priorities"`
	Frogs      int `json:"frogs"`
	Total      int `json:"total"`
}

// ComputeBreakdown 根据最终存储状态计算单日得分明细。
// 这是一个纯函数：相同的输入永远得到相同的输出，
// 与提交次数和计算时刻无关。记录缺失时对应子分为0。
func ComputeBreakdown(w *WakeupFacts, p *PlanningFacts) Breakdown {
	var b Breakdown
	if w != nil && w.Status == StatusSuccess && w.Eligible {
		b.Wakeup = 1
	}
	if p != nil {
		if hasNonBlank(p.Priorities) {
			b.Priorities = 1
		}
		if hasNonBlank(p.Frogs) {
			b.Frogs = 1
		}
	}
	b.Total = b.Wakeup + b.Priorities + b.Frogs
	return b
}

// hasNonBlank 判断切片中是否存在去除空白后非空的条目。
func hasNonBlank(entries []string) bool {
	for _, e := range entries {
		if strings.TrimSpace(e) != "" {
			return true
		}
	}
	return false
}
