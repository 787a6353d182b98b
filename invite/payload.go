package invite

import (
	"encoding/json"
	"fmt"

	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

// MarshalPayload encodes the invite as the JSON body of a send-invite
// request. Channels with no codecs are given the default codec list, so
// the service never receives an empty list while backfill is enabled.
// inv itself is left untouched.
func (p *Processor) MarshalPayload(inv *Invite) ([]byte, error) {
	out := inv.Clone()
	out.normalize()

	for i := range out.SDP.Channels {
		ch := &out.SDP.Channels[i]
		if len(ch.Codecs) == 0 && p.parse.DefaultCodecs != nil {
			ch.Codecs = slices.Clone(p.parse.DefaultCodecs)
			p.logger.Debug("backfilled empty codec list", slog.Int("channel", i))
		}
		if ch.Codecs == nil {
			ch.Codecs = []int{}
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return data, nil
}

// UnmarshalPayload decodes a payload produced by MarshalPayload, or saved
// form state, back into an Invite. Missing port and transport take their
// defaults and transport-managed headers are dropped.
func UnmarshalPayload(data []byte) (*Invite, error) {
	inv := New()
	if err := json.Unmarshal(data, inv); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	inv.normalize()
	return inv, nil
}
