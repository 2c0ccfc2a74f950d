package validate

import (
	"testing"
	"time"
)

type countingLookup struct {
	calls  int
	finals map[string]float64
}

func (c *countingLookup) GetFinalActual(_ string, _ int, key string) (*float64, error) {
	c.calls++
	if v, ok := c.finals[key]; ok {
		return fp(v), nil
	}
	return nil, nil
}

func TestCachedLookup_HitAvoidsInnerCall(t *testing.T) {
	t.Parallel()

	inner := &countingLookup{finals: map[string]float64{"budget_revenue_total": 1000}}
	l := NewCachedLookup(inner, time.Minute)

	for i := 0; i < 3; i++ {
		v, err := l.GetFinalActual("unit-1", 2024, "budget_revenue_total")
		if err != nil || v == nil || *v != 1000 {
			t.Fatalf("round %d: v=%v err=%v", i, v, err)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("底层应只被查一次: calls=%d", inner.calls)
	}
}

func TestCachedLookup_CachesMissToo(t *testing.T) {
	t.Parallel()

	inner := &countingLookup{}
	l := NewCachedLookup(inner, time.Minute)

	for i := 0; i < 2; i++ {
		v, err := l.GetFinalActual("unit-1", 2024, "nonexistent")
		if err != nil || v != nil {
			t.Fatalf("round %d: v=%v err=%v", i, v, err)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("无记录结果也应缓存: calls=%d", inner.calls)
	}
}

func TestCachedLookup_ReturnsCopy(t *testing.T) {
	t.Parallel()

	inner := &countingLookup{finals: map[string]float64{"k": 50}}
	l := NewCachedLookup(inner, time.Minute)

	v1, _ := l.GetFinalActual("u", 2024, "k")
	*v1 = 999
	// 底层值不受调用方改写影响
	if inner.finals["k"] != 50 {
		t.Fatalf("底层数据被污染: %v", inner.finals["k"])
	}
}
