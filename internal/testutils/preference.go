// Package testutils provides deterministic respondents and preference
// fixtures for interview tests.
package testutils

import "slices"

// Preference is a total order over items, best first. Items it does not
// list rank below every listed item and tie-break lexically.
type Preference []string

// Prefer returns whichever of a and b ranks higher.
func (p Preference) Prefer(a, b string) string {
	ia, ib := slices.Index(p, a), slices.Index(p, b)
	switch {
	case ia >= 0 && ib >= 0:
		if ia < ib {
			return a
		}
		return b
	case ia >= 0:
		return a
	case ib >= 0:
		return b
	case a < b:
		return a
	default:
		return b
	}
}

// Filter returns the listed items that appear in items, in preference
// order.
func (p Preference) Filter(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range p {
		if slices.Contains(items, it) {
			out = append(out, it)
		}
	}
	return out
}

// LifeWheelCategories is the default category set in presentation order.
var LifeWheelCategories = []string{"健康", "工作", "家庭", "休閒", "情緒", "成長", "人際", "財富"}

// LifeWheelKeywords gives three distinct keywords for every default
// category.
var LifeWheelKeywords = map[string][]string{
	"健康": {"運動", "睡眠", "飲食"},
	"工作": {"專案", "同事", "薪水"},
	"家庭": {"父母", "孩子", "晚餐"},
	"休閒": {"旅行", "電影", "音樂"},
	"情緒": {"平靜", "焦慮", "快樂"},
	"成長": {"閱讀", "學習", "挑戰"},
	"人際": {"朋友", "聚會", "信任"},
	"財富": {"存款", "投資", "房子"},
}

// LifeWheelPreference ranks every default category and keyword.
var LifeWheelPreference = Preference{
	"家庭", "健康", "成長", "情緒", "人際", "工作", "財富", "休閒",
	"孩子", "運動", "信任", "閱讀", "平靜", "晚餐", "父母", "睡眠",
	"學習", "快樂", "朋友", "專案", "投資", "旅行", "飲食", "挑戰",
	"焦慮", "聚會", "同事", "薪水", "存款", "房子", "電影", "音樂",
}
