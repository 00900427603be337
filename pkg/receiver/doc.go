// Package receiver collects framed files from the network into a flat
// destination directory.
//
// A receive group is one or more Listeners, each bound to its own port and
// serving connections one at a time, that share a single Coordinator. The
// Coordinator holds the group-wide count, the optional file limit, the list
// of bound ports, a one-shot reconstruction latch and the stop flag. Every
// decision that depends on those fields is a single locked method call, so
// two listeners can never both exceed the limit or both trigger
// reconstruction.
//
// # Usage
//
//	r, err := receiver.StartReceiver(ctx, receiver.Config{
//	    Host:             "0.0.0.0",
//	    Scramble:         3,
//	    DestDir:          "incoming",
//	    MaxFiles:         3,
//	    ReconstructAfter: 3,
//	}, receiver.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	ports := r.WaitForPorts(ctx) // OS-assigned ports to hand to senders
//	err = r.Wait()
//
// # Shutdown
//
// Cancellation is cooperative. Listeners poll their stop conditions before
// every accept (bounded by AcceptTimeout) and after every connection: the
// context, the Coordinator stop flag, the stop-file sentinel and the file
// limit. A connection that is mid-transfer is never interrupted, so a stalled
// sender delays its listener's exit unless IdleTimeout is set.
//
// Remote shutdown is available through the control channel: any connection
// to ControlPort stops the group.
package receiver
