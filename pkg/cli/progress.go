package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/chicogong/media-tools/pkg/executor"
)

// progressReporter renders ffmpeg progress as a terminal progress bar
type progressReporter struct {
	mu          sync.Mutex
	bar         *progressbar.ProgressBar
	description string
}

func newProgressReporter(w io.Writer, description string) *progressReporter {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)

	return &progressReporter{bar: bar, description: description}
}

// Update moves the bar to the reported percentage. Without a known total
// duration only the encoded position is shown.
func (r *progressReporter) Update(p *executor.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.Percent > 0 {
		_ = r.bar.Set(int(p.Percent))
		return
	}
	r.bar.Describe(fmt.Sprintf("%s %s", r.description, p.Time.Truncate(time.Second)))
}

// Close completes the bar on success and clears it otherwise
func (r *progressReporter) Close(success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if success {
		_ = r.bar.Finish()
		return
	}
	_ = r.bar.Clear()
}
