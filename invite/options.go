package invite

import (
	"errors"
	"fmt"
	"io"

	"github.com/safermobility/testconsole/sdp"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

type Option func(*Processor) error

var (
	ErrUnknownChannelState = errors.New("unknown channel state")
	ErrInvalidCodec        = errors.New("payload type must be between 0 and 127")
)

// Select the channel state used when an `m=` section has no direction attribute
func WithDefaultChannelState(state sdp.ChannelState) Option {
	return func(p *Processor) error {
		if _, ok := sdp.IsKnownChannelState(string(state)); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownChannelState, state)
		}
		p.parse.DefaultChannelState = state
		return nil
	}
}

// Select the payload types substituted for an empty codec list
func WithDefaultCodecs(codecs ...int) Option {
	return func(p *Processor) error {
		for _, pt := range codecs {
			if !sdp.ValidPayloadType(pt) {
				return fmt.Errorf("%w: %d", ErrInvalidCodec, pt)
			}
		}
		p.parse.DefaultCodecs = slices.Clone(codecs)
		if p.parse.DefaultCodecs == nil {
			p.parse.DefaultCodecs = []int{}
		}
		return nil
	}
}

// Keep empty codec lists empty
func WithoutCodecBackfill() Option {
	return func(p *Processor) error {
		p.parse.DefaultCodecs = nil
		return nil
	}
}

// Toggle the session-level `c=` line in generated SDP
func WithConnectionLine(enabled bool) Option {
	return func(p *Processor) error {
		p.render.OmitConnection = !enabled
		return nil
	}
}

// Write IANA codec names in rtpmap lines instead of "<pt>/8000"
func WithStandardRtpmap(enabled bool) Option {
	return func(p *Processor) error {
		p.render.StandardRtpmap = enabled
		return nil
	}
}

// Write each channel's own protocol on its `m=` line instead of RTP/AVP
func WithWireProtocol(enabled bool) Option {
	return func(p *Processor) error {
		p.render.WireProtocol = enabled
		return nil
	}
}

// Write `a=inactive` for INACTIVE channels instead of `a=sendrecv`
func WithInactiveDirection(enabled bool) Option {
	return func(p *Processor) error {
		p.render.InactiveDirection = enabled
		return nil
	}
}

// Address the request URI to the parsed INVITE-User (`sip:user@host`)
func WithRequestURIUser(enabled bool) Option {
	return func(p *Processor) error {
		p.requestUser = enabled
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return WithGroupLogger(logger, "")
}

func WithGroupLogger(logger *slog.Logger, groupName string) Option {
	return func(p *Processor) error {
		if logger == nil {
			logger = discardLogger()
		}
		if groupName != "" {
			logger = logger.WithGroup(groupName)
		}
		p.logger = logger
		return nil
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
