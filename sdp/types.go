package sdp

// MediaDirection is the wire keyword of an SDP direction attribute.
type MediaDirection string

const (
	SendRecv MediaDirection = "sendrecv"
	SendOnly MediaDirection = "sendonly"
	RecvOnly MediaDirection = "recvonly"
	Inactive MediaDirection = "inactive"
)

// ChannelState is the direction of a channel as the orchestration service
// names it.
type ChannelState string

const (
	StateSend           ChannelState = "SEND"
	StateReceive        ChannelState = "RECEIVE"
	StateSendAndReceive ChannelState = "SEND_AND_RECEIVE"
	StateInactive       ChannelState = "INACTIVE"
)

// IsKnownChannelState reports whether name is one of the four channel states.
func IsKnownChannelState(name string) (ChannelState, bool) {
	switch ChannelState(name) {
	case StateSend,
		StateReceive,
		StateSendAndReceive,
		StateInactive:
		return ChannelState(name), true
	default:
		return "", false
	}
}

// Direction maps a channel state onto the direction attribute written in
// generated SDP. Every state other than SEND and RECEIVE, INACTIVE included,
// is rendered as sendrecv.
func (s ChannelState) Direction() MediaDirection {
	switch s {
	case StateSend:
		return SendOnly
	case StateReceive:
		return RecvOnly
	default:
		return SendRecv
	}
}

func stateFromDirection(attr string) (ChannelState, bool) {
	switch MediaDirection(attr) {
	case SendOnly:
		return StateSend, true
	case RecvOnly:
		return StateReceive, true
	case SendRecv:
		return StateSendAndReceive, true
	case Inactive:
		return StateInactive, true
	default:
		return "", false
	}
}

// Network and address types from RFC 4566 section 5.7
const (
	NetworkTypeIN = "IN"
	AddressIP4    = "IP4"
	AddressIP6    = "IP6"
)

// Transport protocol tokens. The wire form uses a slash, the orchestration
// service expects an underscore.
const (
	ProtoRTPAVP      = "RTP/AVP"
	ProtoRTPSAVP     = "RTP/SAVP"
	ProtoRTPAVPName  = "RTP_AVP"
	ProtoRTPSAVPName = "RTP_SAVP"
)

// NormalizeTransport converts an `m=` line protocol token into the form
// stored on a Channel. Tokens already normalized, and unknown tokens, pass
// through unchanged.
func NormalizeTransport(proto string) string {
	switch proto {
	case ProtoRTPAVP:
		return ProtoRTPAVPName
	case ProtoRTPSAVP:
		return ProtoRTPSAVPName
	default:
		return proto
	}
}

// WireTransport is the inverse of NormalizeTransport. An empty protocol is
// written as RTP/AVP.
func WireTransport(proto string) string {
	switch proto {
	case "", ProtoRTPAVPName:
		return ProtoRTPAVP
	case ProtoRTPSAVPName:
		return ProtoRTPSAVP
	default:
		return proto
	}
}
