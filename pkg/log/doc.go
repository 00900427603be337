// Package log provides the structured logging abstraction shared by the
// vcshare packages.
//
// Library code accepts a [Logger] and defaults to [NoopLogger]; the CLI
// wires a [ZerologAdapter]:
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//	listenerLog := logger.With(log.Uint16("port", 8000))
//	listenerLog.Info("file received", log.String("file", "share_1.png"))
//
// Implement Logger to route messages into another logging stack.
package log
