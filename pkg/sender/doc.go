// Package sender pushes files to remote listeners, one framed file per TCP
// connection.
//
// Sending is fire-and-forget: each file is dialed, written and closed, and
// the outcome is reported per file. Nothing is retried and the listener
// sends no acknowledgement.
//
// # Usage
//
//	s := sender.New(sender.WithTimeout(5 * time.Second), sender.WithLogger(logger))
//	if err := s.SendFile(ctx, "share_1.png", "10.0.0.5:8000"); err != nil {
//	    return err
//	}
//
// Distributing a share set over several hosts:
//
//	targets := sender.ParseTargets("10.0.0.5;10.0.0.6:9000")
//	results, err := s.SendShares(ctx, paths, targets, 8000)
//
// Hosts without a port receive base port + share index, so the three shares
// above go to 10.0.0.5:8000, 10.0.0.6:9000 and 10.0.0.5:8002.
package sender
