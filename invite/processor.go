package invite

import (
	"github.com/safermobility/testconsole/sdp"
	"golang.org/x/exp/slog"
)

// Processor parses and renders invites with one consistent set of defaults,
// so every tester form resolves an empty codec list or a missing direction
// attribute the same way.
type Processor struct {
	logger *slog.Logger

	parse       sdp.ParseOptions  // defaults applied while parsing SDP
	render      sdp.RenderOptions // preview toggles
	requestUser bool              // put INVITE-User into the request URI
}

func NewProcessor(opts ...Option) (*Processor, error) {
	p := &Processor{
		logger: discardLogger(),
		parse:  sdp.DefaultParseOptions(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

var defaultProcessor = &Processor{
	logger: discardLogger(),
	parse:  sdp.DefaultParseOptions(),
}

// Parse converts raw INVITE text using the default processor.
func Parse(raw string) (*Invite, error) {
	return defaultProcessor.Parse(raw)
}

// Generate renders a preview using the default processor.
func Generate(inv *Invite) string {
	return defaultProcessor.Generate(inv)
}

// RenderOptions returns the preview toggles the processor renders SDP with.
func (p *Processor) RenderOptions() sdp.RenderOptions {
	return p.render
}
