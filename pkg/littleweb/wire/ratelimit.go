package wire

import "time"

// RateLimiter bounds file-streaming throughput.
// After each buffer of BytesPerInterval bytes is written, the writer sleeps
// for Interval before writing the next one.
type RateLimiter struct {
	BytesPerInterval int
	Interval         time.Duration

	sleep func(time.Duration) // overridable for tests
}

// NewRateLimiter returns a RateLimiter that writes bytesPerInterval bytes
// every interval.
func NewRateLimiter(bytesPerInterval int, interval time.Duration) *RateLimiter {
	return &RateLimiter{BytesPerInterval: bytesPerInterval, Interval: interval}
}

// BufferSize returns the per-write chunk size this limiter imposes,
// overriding the codec's default file-streaming buffer size.
func (l *RateLimiter) BufferSize() int {
	if l == nil || l.BytesPerInterval <= 0 {
		return DefaultFileStreamBufferSize
	}
	return l.BytesPerInterval
}

// Wait pauses for one interval. Called after every buffer write.
func (l *RateLimiter) Wait() {
	if l == nil || l.Interval <= 0 {
		return
	}
	if l.sleep != nil {
		l.sleep(l.Interval)
		return
	}
	time.Sleep(l.Interval)
}
