//go:build !gocv

package vision

import "log/slog"

// NewDefaultMatcher returns the pure-Go matcher. Builds tagged gocv use the
// OpenCV backend instead.
func NewDefaultMatcher(opts MatchOptions, logger *slog.Logger) Matcher {
	if logger != nil {
		logger.Info("matcher backend", "backend", "ncc")
	}
	return NewCardMatcher(opts, logger)
}
