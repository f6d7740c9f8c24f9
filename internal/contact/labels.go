package contact

// Option code lookup tables.
var (
	ServiceLabels = map[string]string{
		"brand":     "品牌故事打造",
		"marketing": "整合行銷服務",
		"digital":   "數位轉型優化",
		"content":   "內容創作服務",
		"other":     "其他服務",
	}
	ClinicSizeLabels = map[string]string{
		"small":  "小型診所（1-3 診間）",
		"medium": "中型診所（4-8 診間）",
		"large":  "大型診所（9 診間以上）",
		"chain":  "連鎖診所",
	}
	BudgetLabels = map[string]string{
		"under-50k": "每月 5 萬元以下",
		"50k-100k":  "每月 5-10 萬元",
		"100k-300k": "每月 10-30 萬元",
		"over-300k": "每月 30 萬元以上",
		"undecided": "尚未確定",
	}
	ContactTimeLabels = map[string]string{
		"morning":   "上午（09:00-12:00）",
		"afternoon": "下午（13:00-18:00）",
		"evening":   "晚上（18:00-21:00）",
		"anytime":   "任何時間皆可",
	}
)

// Label maps code through table. Unknown codes are returned unchanged.
func Label(table map[string]string, code string) string {
	if l, ok := table[code]; ok {
		return l
	}
	return code
}
