package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"gonum.org/v1/gonum/stat"

	"github.com/sarchlab/cachesim/mem/cache"
)

// A Summary condenses the hit rates of one family.
type Summary struct {
	Policy        cache.Policy
	Configs       int
	Best          cache.Result
	Worst         cache.Result
	MeanHitRate   float64
	StdDevHitRate float64
}

// Summarize computes the hit rate statistics of a family. It returns false if
// results is empty.
func Summarize(results []cache.Result) (Summary, bool) {
	if len(results) == 0 {
		return Summary{}, false
	}

	rates := make([]float64, len(results))
	s := Summary{
		Policy:  results[0].Policy,
		Configs: len(results),
		Best:    results[0],
		Worst:   results[0],
	}

	for i, r := range results {
		rates[i] = r.HitRate()

		if r.HitRate() > s.Best.HitRate() {
			s.Best = r
		}

		if r.HitRate() < s.Worst.HitRate() {
			s.Worst = r
		}
	}

	s.MeanHitRate, s.StdDevHitRate = stat.MeanStdDev(rates, nil)
	if len(rates) == 1 {
		s.StdDevHitRate = 0
	}

	return s, true
}

var (
	goodRate = color.New(color.FgGreen, color.Bold)
	fairRate = color.New(color.FgYellow)
	poorRate = color.New(color.FgRed)
	heading  = color.New(color.Bold)
)

func rateColor(rate float64) *color.Color {
	switch {
	case rate >= 0.9:
		return goodRate
	case rate >= 0.5:
		return fairRate
	default:
		return poorRate
	}
}

// WriteSummary prints one line per summary for a terminal. Hit rates are
// coloured unless colours are disabled through the color package.
func WriteSummary(w io.Writer, summaries []Summary) error {
	_, err := heading.Fprintf(w, "%-24s %8s %8s %8s  %s\n",
		"policy", "mean", "stddev", "best", "best config")
	if err != nil {
		return err
	}

	for _, s := range summaries {
		if _, err := fmt.Fprintf(w, "%-24s ", s.Policy); err != nil {
			return err
		}

		_, err = rateColor(s.MeanHitRate).Fprintf(w, "%7.2f%%", 100*s.MeanHitRate)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(w, " %7.2f%% ", 100*s.StdDevHitRate)
		if err != nil {
			return err
		}

		_, err = rateColor(s.Best.HitRate()).Fprintf(w, "%7.2f%%", 100*s.Best.HitRate())
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(w, "  %d\n", s.Best.Param)
		if err != nil {
			return err
		}
	}

	return nil
}
