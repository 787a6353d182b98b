// Package invite converts between the raw text of a SIP INVITE and the
// structured form the tester console submits to the orchestration service.
package invite

import (
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/safermobility/testconsole/sdp"
	"golang.org/x/exp/maps"
)

type Transport string

const (
	TransportUDP Transport = "UDP"
	TransportTCP Transport = "TCP"
	TransportTLS Transport = "TLS"
)

const (
	DefaultPort      = 5060
	DefaultTransport = TransportUDP

	// InviteUserHeader holds the user part of the request URI.
	InviteUserHeader = "INVITE-User"
)

var (
	ErrEmptyMessage       = errors.New("please enter a SIP INVITE message")
	ErrParse              = errors.New("failed to parse SIP INVITE")
	ErrInvalidPayload     = errors.New("invalid invite payload")
	ErrInvalidDestination = errors.New("invalid destination address")
)

// Headers owned by the transport layer. They are filled in by the
// orchestration service at send time and never kept as custom headers.
var excludedHeaders = map[string]struct{}{
	"via":            {},
	"max-forwards":   {},
	"call-id":        {},
	"cseq":           {},
	"contact":        {},
	"content-type":   {},
	"content-length": {},
	"mime-version":   {},
}

// IsExcludedHeader reports whether a header is transport-managed.
func IsExcludedHeader(name string) bool {
	_, ok := excludedHeaders[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

type DestinationAddress struct {
	IP                string    `json:"ip"`
	Port              int       `json:"port"`
	TransportProtocol Transport `json:"transportProtocol"`
	Alias             string    `json:"alias,omitempty"`
}

// HostPort joins the destination IP and port, bracketing IPv6 addresses.
func (d DestinationAddress) HostPort() string {
	return net.JoinHostPort(d.IP, strconv.Itoa(d.Port))
}

// Invite is the structured form of a SIP INVITE with its SDP offer.
type Invite struct {
	DestinationAddress DestinationAddress `json:"destinationAddress"`
	CustomHeaders      map[string]string  `json:"customHeaders"`
	SDP                sdp.Description    `json:"sdp"`
}

// New returns an empty invite carrying the default destination port and
// transport.
func New() *Invite {
	return &Invite{
		DestinationAddress: DestinationAddress{
			Port:              DefaultPort,
			TransportProtocol: DefaultTransport,
		},
		CustomHeaders: make(map[string]string),
		SDP:           sdp.NewDescription(),
	}
}

// Clone returns a deep copy of the invite.
func (inv *Invite) Clone() *Invite {
	c := *inv
	c.CustomHeaders = maps.Clone(inv.CustomHeaders)
	if c.CustomHeaders == nil {
		c.CustomHeaders = make(map[string]string)
	}
	c.SDP = inv.SDP.Clone()
	return &c
}

// normalize fills missing defaults and drops transport-managed headers.
func (inv *Invite) normalize() {
	if inv.DestinationAddress.Port <= 0 {
		inv.DestinationAddress.Port = DefaultPort
	}
	if inv.DestinationAddress.TransportProtocol == "" {
		inv.DestinationAddress.TransportProtocol = DefaultTransport
	}
	inv.DestinationAddress.TransportProtocol = Transport(strings.ToUpper(string(inv.DestinationAddress.TransportProtocol)))
	if inv.CustomHeaders == nil {
		inv.CustomHeaders = make(map[string]string)
	}
	for name := range inv.CustomHeaders {
		if IsExcludedHeader(name) {
			delete(inv.CustomHeaders, name)
		}
	}
	if inv.SDP.Channels == nil {
		inv.SDP.Channels = []sdp.Channel{}
	}
}

// requestURI renders "sip:host:port;transport=proto", with the INVITE-User
// as user part when withUser is set.
func (inv *Invite) requestURI(withUser bool) string {
	dest := inv.DestinationAddress
	if dest.Port <= 0 {
		dest.Port = DefaultPort
	}
	if dest.TransportProtocol == "" {
		dest.TransportProtocol = DefaultTransport
	}

	var b strings.Builder
	b.WriteString("sip:")
	if user := inv.CustomHeaders[InviteUserHeader]; withUser && user != "" {
		b.WriteString(user)
		b.WriteString("@")
	}
	b.WriteString(dest.HostPort())
	b.WriteString(";transport=")
	b.WriteString(strings.ToLower(string(dest.TransportProtocol)))
	return b.String()
}
