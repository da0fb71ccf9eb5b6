package harness

import (
	"bytes"
	"strings"
	"testing"
	"text/tabwriter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/cpulimiter/pkg/limiter"
	"github.com/ja7ad/cpulimiter/pkg/stats"
)

func TestVerboseHook_NilWhenNotVerbose(t *testing.T) {
	assert.Nil(t, verboseHook(false))
}

func TestVerboseHook_PrintsCumulativeCPUTime(t *testing.T) {
	var buf bytes.Buffer
	p := &verbosePrinter{tw: tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)}

	acc := stats.New(nil)
	cs := limiter.CycleStats{
		Cycle:           1,
		WorkingRate:     0.4,
		Usage:           0.35,
		LiveCount:       2,
		SlotMS:          100,
		CumulativeCPUMS: 90_000,
	}
	p.row(cs, acc.Apply(stats.Sample{WorkingRate: cs.WorkingRate, Usage: cs.Usage}))

	out := buf.String()
	require.Contains(t, out, "1.50m")
	assert.True(t, strings.HasPrefix(out, "1"))
}
