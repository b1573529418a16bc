package quota

import (
	"testing"

	"go.uber.org/zap"

	"estron-track/backend/internal/model"
)

func testSetting() *model.QuotaSetting {
	return &model.QuotaSetting{
		ProductCode: "SP-001",
		ProductName: "测试产品",
		Level09:     200,
		Level10:     270,
		Level11:     300,
		Level20:     350,
		Level21:     380,
		Level22:     400,
		Level25:     450,
	}
}

func TestResolve_AllLevels(t *testing.T) {
	r := NewResolver(zap.NewNop())
	s := testSetting()

	cases := []struct {
		level string
		want  float64
	}{
		{"0.9", 200},
		{"1.0", 270},
		{"1.1", 300},
		{"2.0", 350},
		{"2.1", 380},
		{"2.2", 400},
		{"2.5", 450},
	}

	for _, tc := range cases {
		if got := r.Resolve(s, tc.level); got != tc.want {
			t.Errorf("薪级 %s 期望定额 %.0f，实际=%.0f", tc.level, tc.want, got)
		}
	}
}

func TestResolve_NilSetting(t *testing.T) {
	r := NewResolver(nil)
	if got := r.Resolve(nil, "1.0"); got != 0 {
		t.Errorf("setting 为空应返回 0，实际=%.2f", got)
	}
}

func TestResolve_EmptyLevel(t *testing.T) {
	r := NewResolver(nil)
	if got := r.Resolve(testSetting(), ""); got != 0 {
		t.Errorf("薪级为空应返回 0，实际=%.2f", got)
	}
}

func TestResolve_UnknownLevel(t *testing.T) {
	r := NewResolver(zap.NewNop())
	if got := r.Resolve(testSetting(), "3.0"); got != 0 {
		t.Errorf("未知薪级应返回 0，实际=%.2f", got)
	}
}

func TestParseSalaryLevel(t *testing.T) {
	if _, ok := ParseSalaryLevel("2.0"); !ok {
		t.Error("2.0 应为合法薪级")
	}
	if _, ok := ParseSalaryLevel("level_2_0"); ok {
		t.Error("列名形式不应被接受")
	}
	if _, ok := ParseSalaryLevel(""); ok {
		t.Error("空串不应被接受")
	}
}
