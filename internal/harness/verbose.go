package harness

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ja7ad/cpulimiter/pkg/limiter"
	"github.com/ja7ad/cpulimiter/pkg/stats"
	"github.com/ja7ad/cpulimiter/pkg/types"
)

// verbosePrinter prints one tabwriter row per cycle, modeled directly on
// the teacher's newTable/printTableHeader/printTableRow trio.
type verbosePrinter struct {
	tw *tabwriter.Writer
}

func newVerbosePrinter() *verbosePrinter {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CYCLE\tWORKING RATE\tUSAGE\tLIVE\tSLOT\tCPU TIME\tAVG RATE\tAVG USAGE")
	fmt.Fprintln(tw, "-----\t------------\t-----\t----\t----\t--------\t--------\t---------")
	tw.Flush()
	return &verbosePrinter{tw: tw}
}

func (p *verbosePrinter) row(cs limiter.CycleStats, avg stats.Result) {
	usage := "n/a"
	if cs.Usage >= 0 {
		usage = fmt.Sprintf("%.3f", cs.Usage)
	}
	fmt.Fprintf(p.tw, "%d\t%.3f\t%s\t%d\t%.0fms\t%s\t%.3f\t%.3f\n",
		cs.Cycle, cs.WorkingRate, usage, cs.LiveCount, cs.SlotMS,
		types.Millis(cs.CumulativeCPUMS).Humanized(), avg.AvgWorkingRate, avg.AvgUsage)
	p.tw.Flush()
}
