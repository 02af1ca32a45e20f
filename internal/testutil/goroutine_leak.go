package testutil

import (
	"runtime"
	"strings"
	"testing"
	"time"
)

// leakSettle 检查前等待后台 goroutine 退出的时间
const leakSettle = 100 * time.Millisecond

// CheckGoroutineLeak 对比调用前后的 goroutine 数量
//
//	defer testutil.CheckGoroutineLeak(t)()
func CheckGoroutineLeak(t testing.TB) func() {
	t.Helper()
	before := countGoroutines()

	return func() {
		t.Helper()

		deadline := time.Now().Add(leakSettle)
		after := countGoroutines()
		for after > before && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
			after = countGoroutines()
		}

		if leaked := after - before; leaked > 0 {
			buf := make([]byte, 1<<20)
			n := runtime.Stack(buf, true)
			t.Errorf("goroutine leak: %d extra\n\n%s", leaked, buf[:n])
		}
	}
}

func countGoroutines() int {
	buf := make([]byte, 1<<20)
	n := runtime.Stack(buf, true)

	count := 0
	for _, stack := range strings.Split(string(buf[:n]), "\n\n") {
		if strings.TrimSpace(stack) == "" || isFrameworkGoroutine(stack) {
			continue
		}
		count++
	}
	return count
}

// isFrameworkGoroutine 过滤 testing 框架自身的 goroutine
func isFrameworkGoroutine(stack string) bool {
	for _, pattern := range []string{
		"testing.(*T).Run",
		"testing.tRunner",
		"testing.Main",
		"runtime.goexit",
	} {
		if strings.Contains(stack, pattern) {
			return true
		}
	}
	return false
}
