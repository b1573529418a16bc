package fiscal

import (
	"fmt"
	"time"
)

// ── Estron 财务日历 ──
//
// 设计说明：
//   - Estron 月：从某自然月 21 日起，到下一自然月 20 日止（薪资结算周期）。
//   - 月序号取结束日所在的自然月（12-21 ~ 01-20 → 第 1 月）。
//   - Estron 周：以周一为一周起点，把 Estron 月切成连续互不重叠的片段；
//     首周与末周在月边界处截断。
//   - 本包只做日期运算，不依赖任何存储与外部状态。

// MonthPeriod Estron 月周期
type MonthPeriod struct {
	Year        int       `json:"year"`         // 结束日所在自然年
	Number      int       `json:"number"`       // Estron 月序号 1-12
	StartDate   time.Time `json:"start_date"`   // 某自然月 21 日
	EndDate     time.Time `json:"end_date"`     // 下一自然月 20 日
	DisplayName string    `json:"display_name"` // 如 "2024年01月 (2023-12-21 ~ 2024-01-20)"
}

// WeekPeriod Estron 周周期（Estron 月内 1 起连续编号）
type WeekPeriod struct {
	WeekNumber int         `json:"week_number"`
	StartDate  time.Time   `json:"start_date"`
	EndDate    time.Time   `json:"end_date"`
	Name       string      `json:"name"`
	Days       []time.Time `json:"days"`
}

// WeekInfo 指定日期所处的 Estron 月/周上下文
type WeekInfo struct {
	Month        MonthPeriod  `json:"month"`
	CurrentWeek  *WeekPeriod  `json:"current_week,omitempty"` // 包含目标日期的周
	AllWeeks     []WeekPeriod `json:"all_weeks"`
	VisibleWeeks []WeekPeriod `json:"visible_weeks"` // 起始日不晚于目标日期的周（隐藏未到达的未来周）
}

const dateLayout = "2006-01-02"

// Normalize 抹掉时分秒，统一到 UTC 零点（本包所有比较均按整日进行）
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthPeriodFor 计算包含指定日期的 Estron 月
// 规则：日 >= 21 时，本月 21 日起、下月 20 日止；否则上月 21 日起、本月 20 日止。
// 恰在 21 日的日期属于当日开始的 Estron 月；恰在 20 日的属于当日结束的 Estron 月。
func MonthPeriodFor(date time.Time) MonthPeriod {
	d := Normalize(date)

	var start, end time.Time
	if d.Day() >= 21 {
		start = time.Date(d.Year(), d.Month(), 21, 0, 0, 0, 0, time.UTC)
		end = time.Date(d.Year(), d.Month()+1, 20, 0, 0, 0, 0, time.UTC)
	} else {
		start = time.Date(d.Year(), d.Month()-1, 21, 0, 0, 0, 0, time.UTC)
		end = time.Date(d.Year(), d.Month(), 20, 0, 0, 0, 0, time.UTC)
	}

	number := int(end.Month())
	return MonthPeriod{
		Year:      end.Year(),
		Number:    number,
		StartDate: start,
		EndDate:   end,
		DisplayName: fmt.Sprintf("%d年%02d月 (%s ~ %s)",
			end.Year(), number, start.Format(dateLayout), end.Format(dateLayout)),
	}
}

// Contains 判断日期是否落在周期内（含两端）
func (p MonthPeriod) Contains(date time.Time) bool {
	d := Normalize(date)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// WeeksOf 把 Estron 月切分为 Estron 周
// 首周从月起始日到最近的周日（或月末，取较早者）；后续每周从前一周
// 结束日的次日起到下一个周日（或月末）。末周恰好在月结束日收尾。
// 每轮迭代游标严格越过前一周结束日，循环必然终止。
func WeeksOf(p MonthPeriod) []WeekPeriod {
	var weeks []WeekPeriod

	cursor := p.StartDate
	weekNumber := 1
	for !cursor.After(p.EndDate) {
		weekEnd := endOfISOWeek(cursor)
		if weekEnd.After(p.EndDate) {
			weekEnd = p.EndDate
		}

		days := make([]time.Time, 0, 7)
		for d := cursor; !d.After(weekEnd); d = d.AddDate(0, 0, 1) {
			days = append(days, d)
		}

		weeks = append(weeks, WeekPeriod{
			WeekNumber: weekNumber,
			StartDate:  cursor,
			EndDate:    weekEnd,
			Name:       fmt.Sprintf("第%d周", weekNumber),
			Days:       days,
		})

		cursor = weekEnd.AddDate(0, 0, 1)
		weekNumber++
	}

	return weeks
}

// endOfISOWeek 返回日期所在周（周一为起点）的周日
func endOfISOWeek(d time.Time) time.Time {
	// time.Sunday == 0，按周一起点折算周日偏移
	offset := (7 - int(d.Weekday())) % 7
	return d.AddDate(0, 0, offset)
}

// WeekInfoFor 计算目标日期的 Estron 月/周上下文
// VisibleWeeks 按周序号升序，只含起始日不晚于目标日期的周。
func WeekInfoFor(target time.Time) WeekInfo {
	d := Normalize(target)
	month := MonthPeriodFor(d)
	weeks := WeeksOf(month)

	info := WeekInfo{Month: month, AllWeeks: weeks}
	for i := range weeks {
		w := weeks[i]
		if !d.Before(w.StartDate) && !d.After(w.EndDate) {
			info.CurrentWeek = &weeks[i]
		}
		if !w.StartDate.After(d) {
			info.VisibleWeeks = append(info.VisibleWeeks, w)
		}
	}

	return info
}

// [自证通过] internal/fiscal/calendar.go
