package sdp

import (
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// DefaultCodecs is substituted for an `m=` line that lists no usable payload
// types: PCMU, PCMA and G729.
var DefaultCodecs = []int{0, 8, 18}

// ParseOptions resolves the defaults that differ between tester forms.
type ParseOptions struct {
	// DefaultChannelState applies to channels without a direction attribute.
	DefaultChannelState ChannelState
	// DefaultCodecs backfills a channel whose codec list parsed empty.
	// A nil slice disables the backfill.
	DefaultCodecs []int
}

// DefaultParseOptions follows RFC 4566: channels without a direction
// attribute are sendrecv.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		DefaultChannelState: StateSendAndReceive,
		DefaultCodecs:       slices.Clone(DefaultCodecs),
	}
}

// ParseLines builds a Description from lines already known to be SDP.
// It never fails: lines with too few tokens are skipped, and channels that
// end up without a media type, port or transport are dropped.
func ParseLines(lines []string, opts ParseOptions) Description {
	desc := NewDescription()

	// The channel currently being accumulated
	var inMedia *Channel
	flush := func() {
		if inMedia != nil {
			desc.Channels = append(desc.Channels, *inMedia)
			inMedia = nil
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) < 2 || line[1] != '=' {
			continue
		}
		value := strings.TrimSpace(line[2:])

		switch line[0] {
		case 'v': // protocol version
			if n, err := strconv.Atoi(value); err == nil {
				desc.SessionVersion = n
			}
		case 'o': // origin line
			parseOriginLine(value, &desc.Origin)
		case 's': // session line
			if value == "" || value == "-" {
				desc.SessionName = DefaultSessionName
			} else {
				desc.SessionName = value
			}
		case 'i': // session information
			if inMedia == nil {
				desc.SessionInformation = value
			}
		case 'c': // connect to this ip address
			conn, ok := parseConnLine(value)
			if !ok {
				continue
			}
			if inMedia != nil {
				inMedia.ConnectionAddress = conn.IP
			} else {
				desc.Connection = &conn
			}
		case 't': // active time
			parseTimeLine(value, &desc.Timing)
		case 'm': // media line
			flush()
			inMedia = newChannelFromLine(value, opts)
		case 'a': // attribute lines
			if inMedia != nil {
				inMedia.addAttribute(value)
			}
		}
	}
	flush()

	valid := desc.Channels[:0]
	for _, ch := range desc.Channels {
		if ch.Valid() {
			valid = append(valid, ch)
		}
	}
	desc.Channels = valid

	return desc
}

// I want a string that looks like "root 31589 31589 IN IP4 10.0.0.38".
func parseOriginLine(value string, origin *Origin) {
	tokens := strings.Fields(value)
	if len(tokens) < 6 {
		return
	}
	if tokens[0] == "-" {
		origin.UserName = DefaultOriginUser
	} else {
		origin.UserName = tokens[0]
	}
	origin.SessionID = tokens[1]
	if n, err := strconv.Atoi(tokens[2]); err == nil {
		origin.SessionVersion = n
	}
	origin.NetworkType = tokens[3]
	origin.AddressType = tokens[4]
	origin.IP = tokens[5]
}

// I want a string that looks like "IN IP4 10.0.0.38".
func parseConnLine(value string) (Connection, bool) {
	tokens := strings.Fields(value)
	if len(tokens) < 3 {
		return Connection{}, false
	}
	return Connection{
		NetworkType: tokens[0],
		AddressType: tokens[1],
		IP:          tokens[2],
	}, true
}

// I want a string that looks like "0 0".
func parseTimeLine(value string, timing *Timing) {
	tokens := strings.Fields(value)
	if len(tokens) < 2 {
		return
	}
	start, err := strconv.Atoi(tokens[0])
	if err != nil {
		return
	}
	stop, err := strconv.Atoi(tokens[1])
	if err != nil {
		return
	}
	timing.StartTime = start
	timing.StopTime = stop
}

// I want a string that looks like "audio 6304 RTP/AVP 0 8 18 127".
// A nil result means the line was too short to open a channel.
func newChannelFromLine(value string, opts ParseOptions) *Channel {
	tokens := strings.Fields(value)
	if len(tokens) < 3 {
		return nil
	}

	ch := &Channel{
		MediaType:         strings.ToUpper(tokens[0]),
		TransportProtocol: NormalizeTransport(tokens[2]),
		Codecs:            []int{},
		ChannelState:      opts.DefaultChannelState,
	}
	if ch.ChannelState == "" {
		ch.ChannelState = StateSendAndReceive
	}

	// "<port>/<number of ports>" keeps only the base port
	port, _, _ := strings.Cut(tokens[1], "/")
	if n, err := strconv.Atoi(port); err == nil {
		ch.Port = n
	}

	for _, token := range tokens[3:] {
		if pt, err := strconv.Atoi(token); err == nil && ValidPayloadType(pt) {
			ch.Codecs = append(ch.Codecs, pt)
		}
	}
	if len(ch.Codecs) == 0 && opts.DefaultCodecs != nil {
		ch.Codecs = slices.Clone(opts.DefaultCodecs)
	}

	return ch
}
