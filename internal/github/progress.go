package github

import "time"

// UnknownSize is the Total and Percent value when the server does not
// announce a content length.
const UnknownSize = -1

// DownloadProgress is a transient snapshot emitted during one download.
type DownloadProgress struct {
	Downloaded int64   // bytes received so far
	Total      int64   // expected bytes, UnknownSize if not announced
	Percent    float64 // 0-100, UnknownSize when Total is unknown
	Speed      float64 // bytes/second over a short trailing window
}

// ProgressFunc receives progress snapshots. It is called at a bounded
// cadence from the goroutine driving the download.
type ProgressFunc func(DownloadProgress)

const speedWindow = 2 * time.Second

// progressMeter accumulates byte counts and computes snapshots. It keeps a
// trailing window of samples so Speed reflects the current transfer rate
// rather than the whole-download average.
type progressMeter struct {
	total      int64
	downloaded int64
	samples    []progressSample
}

type progressSample struct {
	at    time.Time
	bytes int64
}

func newProgressMeter(total int64) *progressMeter {
	if total <= 0 {
		total = UnknownSize
	}
	m := &progressMeter{total: total}
	m.samples = append(m.samples, progressSample{at: time.Now()})
	return m
}

func (m *progressMeter) add(n int64) {
	m.downloaded += n
	now := time.Now()
	m.samples = append(m.samples, progressSample{at: now, bytes: m.downloaded})

	// Drop samples that fell out of the window, always keeping one older
	// sample as the baseline.
	cutoff := now.Add(-speedWindow)
	for len(m.samples) > 2 && m.samples[1].at.Before(cutoff) {
		m.samples = m.samples[1:]
	}
}

func (m *progressMeter) snapshot() DownloadProgress {
	p := DownloadProgress{
		Downloaded: m.downloaded,
		Total:      m.total,
		Percent:    UnknownSize,
	}
	if m.total > 0 {
		p.Percent = float64(m.downloaded) * 100 / float64(m.total)
	}

	oldest := m.samples[0]
	latest := m.samples[len(m.samples)-1]
	if elapsed := latest.at.Sub(oldest.at).Seconds(); elapsed > 0 {
		p.Speed = float64(latest.bytes-oldest.bytes) / elapsed
	}
	return p
}
