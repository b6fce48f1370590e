package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

const (
	progressInterval = 100 * time.Millisecond
	copyBufferSize   = 32 * 1024
)

// DownloadFile streams the given URL to dest. Bytes go to a temporary
// ".partial" sibling which is renamed into place only after the stream
// completes, so a failed download never leaves a truncated file at dest.
// The configured timeout bounds the request/headers leg and acts as a
// stall detector on the body, so a slow but progressing transfer is never
// cut off. Progress is reported at most every 100ms plus one final snapshot.
func (c *Client) DownloadFile(ctx context.Context, url, dest string, onProgress ProgressFunc) error {
	resp, err := c.get(ctx, url, "application/octet-stream", false, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var received atomic.Int64
	stop, stalled := c.watchStall(resp, &received)
	defer stop()

	tmp := dest + ".partial"
	f, err := os.Create(tmp)
	if err != nil {
		return &DownloadError{URL: url, Err: err}
	}

	src := &countingReader{r: resp.Body, n: &received}
	if err := c.copyWithProgress(ctx, f, src, resp.ContentLength, onProgress); err != nil {
		f.Close()
		os.Remove(tmp)
		if ctx.Err() != nil {
			return &CancelledError{Err: ctx.Err()}
		}
		if stalled.Load() {
			return &DownloadError{
				URL: url,
				Err: fmt.Errorf("stream stalled: no data received for %v", c.settings.Timeout),
			}
		}
		return &DownloadError{URL: url, Err: err}
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &DownloadError{URL: url, Err: err}
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return &DownloadError{URL: url, Err: err}
	}
	return nil
}

// watchStall closes the response body when a full timeout interval passes
// without any bytes arriving, unblocking the read loop. The returned stop
// function must be called once the stream is done.
func (c *Client) watchStall(resp *http.Response, received *atomic.Int64) (stop func(), stalled *atomic.Bool) {
	stalled = &atomic.Bool{}
	if c.settings.Timeout <= 0 {
		return func() {}, stalled
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(c.settings.Timeout)
		defer ticker.Stop()
		last := int64(-1)
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				cur := received.Load()
				if cur == last {
					stalled.Store(true)
					resp.Body.Close()
					return
				}
				last = cur
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, stalled
}

func (c *Client) copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, total int64, onProgress ProgressFunc) error {
	meter := newProgressMeter(total)
	lastEmit := time.Time{}

	buf := make([]byte, copyBufferSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return writeErr
			}
			meter.add(int64(n))
			if onProgress != nil && time.Since(lastEmit) >= progressInterval {
				onProgress(meter.snapshot())
				lastEmit = time.Now()
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return readErr
		}
	}

	if onProgress != nil {
		onProgress(meter.snapshot())
	}
	return nil
}

// countingReader tracks received bytes for the stall watchdog.
type countingReader struct {
	r io.Reader
	n *atomic.Int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n.Add(int64(n))
	return n, err
}
