package stacktrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	stack := []byte("goroutine 7 [running]:\n" +
		"runtime/debug.Stack()\n" +
		"\t/usr/local/go/src/runtime/debug/stack.go:26 +0x5e\n" +
		"github.com/shandysiswandi/numsphere/internal/authflow/usecase.(*Controller).Submit(...)\n" +
		"\t/src/app/internal/authflow/usecase/controller.go:184 +0x1d\n" +
		"github.com/shandysiswandi/numsphere/internal/pkg/router.middlewareRecoverer.func1()\n" +
		"\t/src/app/internal/pkg/router/middleware_recover.go:31\n")

	assert.Equal(t, []string{
		"internal/authflow/usecase/controller.go:184",
		"internal/pkg/router/middleware_recover.go:31",
	}, InternalPaths(stack))
	assert.Empty(t, InternalPaths(nil))
}
