package receiver

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/bft-labs/vcshare/pkg/log"
)

// StopCommand is the payload a control client is expected to send. Any
// connection stops the group; the payload only affects logging.
const StopCommand = "STOP"

const controlReadLimit = 64

// control is the one-shot remote stop listener of a receive group.
type control struct {
	ln            *net.TCPListener
	coord         *Coordinator
	logger        log.Logger
	acceptTimeout time.Duration
}

func bindControl(ctx context.Context, addr string, coord *Coordinator, logger log.Logger, acceptTimeout time.Duration) (*control, error) {
	ln, err := listen(ctx, addr)
	if err != nil {
		return nil, err
	}
	if acceptTimeout <= 0 {
		acceptTimeout = DefaultAcceptTimeout
	}
	logger = log.OrNoop(logger).With(log.String("component", "control"), log.Uint16("port", boundPort(ln)))
	logger.Info("control channel listening")
	return &control{ln: ln, coord: coord, logger: logger, acceptTimeout: acceptTimeout}, nil
}

func (c *control) port() uint16 {
	return boundPort(c.ln)
}

func (c *control) serve(ctx context.Context) error {
	defer c.ln.Close()
	for {
		if ctx.Err() != nil {
			return nil
		}
		if _, stop := c.coord.ShouldExit(); stop {
			return nil
		}

		conn, err := acceptWithin(c.ln, c.acceptTimeout)
		if err != nil {
			if _, stop := c.coord.ShouldExit(); stop || ctx.Err() != nil {
				return nil
			}
			c.logger.Error("control accept failed", log.Err(err))
			return fmt.Errorf("%w: control accept: %w", ErrConnectionFailure, err)
		}
		if conn == nil {
			continue
		}

		c.handle(conn)
		c.coord.RequestStop()
		return nil
	}
}

func (c *control) handle(conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	_ = conn.SetReadDeadline(time.Now().Add(c.acceptTimeout))
	buf := make([]byte, controlReadLimit)
	n, _ := conn.Read(buf)
	if strings.EqualFold(strings.TrimSpace(string(buf[:n])), StopCommand) {
		c.logger.Info("STOP command received", log.String("remote", remote))
		return
	}
	c.logger.Info("control connection received, stopping", log.String("remote", remote))
}

// RunControl binds addr, waits for one connection and requests a stop on
// coord. It returns early when ctx is done or the group stops on its own.
func RunControl(ctx context.Context, addr string, coord *Coordinator, logger log.Logger) error {
	c, err := bindControl(ctx, addr, coord, logger, DefaultAcceptTimeout)
	if err != nil {
		return err
	}
	return c.serve(ctx)
}
