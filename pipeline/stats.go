package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// latencyWindow is the number of recent frames kept for latency statistics
const latencyWindow = 1024

// StageTimes holds the time spent in each stage of processing a frame
type StageTimes struct {
	// Preprocess is letterboxing and tensor encoding
	Preprocess time.Duration
	// Inference is the engine invocation
	Inference time.Duration
	// Postprocess is decoding, NMS and unmapping
	Postprocess time.Duration
	// Tracking is the tracker call on a keyframe
	Tracking time.Duration
	// OpticalFlow is the tracker call on a propagation frame
	OpticalFlow time.Duration
	// Total is the whole frame
	Total time.Duration
}

func (s *StageTimes) add(o StageTimes) {
	s.Preprocess += o.Preprocess
	s.Inference += o.Inference
	s.Postprocess += o.Postprocess
	s.Tracking += o.Tracking
	s.OpticalFlow += o.OpticalFlow
	s.Total += o.Total
}

func (s StageTimes) div(n int) StageTimes {
	if n == 0 {
		return StageTimes{}
	}

	d := time.Duration(n)

	return StageTimes{
		Preprocess:  s.Preprocess / d,
		Inference:   s.Inference / d,
		Postprocess: s.Postprocess / d,
		Tracking:    s.Tracking / d,
		OpticalFlow: s.OpticalFlow / d,
		Total:       s.Total / d,
	}
}

// Stats accumulates per stage latency over a stream.  Averages are amortized
// over every processed frame, so a keyframe's detection cost is spread across
// the propagation frames that follow it.
type Stats struct {
	mu        sync.Mutex
	frames    int
	keyframes int
	totals    StageTimes
	// latency is a ring of recent per frame totals in milliseconds
	latency []float64
	next    int
}

// NewStats returns an empty Stats
func NewStats() *Stats {
	return &Stats{
		latency: make([]float64, 0, latencyWindow),
	}
}

// Add records the result of a processed frame
func (s *Stats) Add(res Result) {

	s.mu.Lock()
	defer s.mu.Unlock()

	s.frames++

	if res.Keyframe {
		s.keyframes++
	}

	s.totals.add(res.Times)

	ms := float64(res.Times.Total) / float64(time.Millisecond)

	if len(s.latency) < latencyWindow {
		s.latency = append(s.latency, ms)
		return
	}

	s.latency[s.next] = ms
	s.next = (s.next + 1) % latencyWindow
}

// Summary is a snapshot of the accumulated statistics
type Summary struct {
	// Frames processed
	Frames int
	// Keyframes processed
	Keyframes int
	// Average stage times over all frames
	Average StageTimes
	// MeanLatency of recent frames in milliseconds
	MeanLatency float64
	// StdDevLatency of recent frames in milliseconds
	StdDevLatency float64
	// P95Latency of recent frames in milliseconds
	P95Latency float64
}

// Summary returns a snapshot of the statistics
func (s *Stats) Summary() Summary {

	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		Frames:    s.frames,
		Keyframes: s.keyframes,
		Average:   s.totals.div(s.frames),
	}

	if len(s.latency) == 0 {
		return sum
	}

	if len(s.latency) == 1 {
		sum.MeanLatency = s.latency[0]
	} else {
		sum.MeanLatency, sum.StdDevLatency = stat.MeanStdDev(s.latency, nil)
	}

	sorted := make([]float64, len(s.latency))
	copy(sorted, s.latency)
	sort.Float64s(sorted)

	sum.P95Latency = stat.Quantile(0.95, stat.Empirical, sorted, nil)

	return sum
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%.4f", float64(d)/float64(time.Millisecond))
}

// WriteCSV writes the average stage latencies in milliseconds as a header and
// a single row
func (s *Stats) WriteCSV(w io.Writer) error {

	sum := s.Summary()

	cw := csv.NewWriter(w)

	records := [][]string{
		{"frames", "keyframes", "prep", "inference", "post", "tracking", "flow", "total"},
		{
			fmt.Sprintf("%d", sum.Frames),
			fmt.Sprintf("%d", sum.Keyframes),
			ms(sum.Average.Preprocess),
			ms(sum.Average.Inference),
			ms(sum.Average.Postprocess),
			ms(sum.Average.Tracking),
			ms(sum.Average.OpticalFlow),
			ms(sum.Average.Total),
		},
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("error writing latency csv: %w", err)
	}

	return nil
}
