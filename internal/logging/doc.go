// Package logging provides the diagnostic log for hostlog.
//
// This package wraps Go's log/slog to write JSON-formatted entries to
// hostlog-debug.log. The debug log is where the broadcaster reports what it
// cannot report on the console it is observing: attach and detach, subscriber
// registration, and contained subscriber faults. Nothing in this package ever
// writes to the intercepted console.
//
// # Features
//
//   - JSON-formatted structured logging via slog
//   - Configurable log levels (DEBUG, INFO, WARN, ERROR)
//   - Context propagation (session ID, subscriber, stream)
//   - Size-based rotation with numbered backups
//   - Optional gzip compression of rotated files
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. Child loggers created
// via With* methods share the underlying writer. [RotatingWriter] serializes
// writes and rotation with a mutex, so it can also back the file sink.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger(logDir, "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.WithSession(id).Info("run started", "command", argv)
//	logger.WithSubscriber("*sink.LogFile").Warn("subscriber fault", "error", err)
//
// # Log Rotation
//
// [RotatingWriter] rotates once a write would push the file past MaxSizeMB.
// Rotated files are named path.1 (newest) through path.N (oldest) and are
// gzipped in the background when Compress is set:
//
//	rw, err := logging.NewRotatingWriter(path, logging.RotationConfig{
//	    MaxSizeMB:  50,
//	    MaxBackups: 5,
//	    Compress:   true,
//	})
package logging
