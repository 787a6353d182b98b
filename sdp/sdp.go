// Copyright 2020 Justine Alexandra Roberts Tunney
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Session Description Protocol support for the tester console.
//
// Media testers are configured from the SDP body of a SIP INVITE. The body
// is pasted by an operator, picked apart into a Description, edited field by
// field and then rendered again for the preview pane:
//
//   v=0
//   o=- 2142479003 635515518 IN IP4 10.231.242.146
//   s=-
//   c=IN IP4 10.231.242.146
//   t=0 0
//   m=audio 6304 RTP/AVP 0 8 18 127   <-- one Channel per m= line
//   a=label:34146659
//   a=sendonly                        <-- Channel.ChannelState = SEND
//
// Parsing is lenient: malformed lines are skipped and leave defaults in
// place, and channels lacking a media type, port or transport are dropped.
// Rendering is a preview approximation; rtpmap lines are synthesized from
// the payload type numbers.
//
// Reference Material:
//
// - SDP RFC: http://tools.ietf.org/html/rfc4566
// - RTP A/V profile: http://tools.ietf.org/html/rfc3551
//

package sdp

import (
	"bytes"
	"errors"
	"strconv"

	"github.com/safermobility/testconsole/util"
)

const (
	ContentType = "application/sdp"

	// DefaultOriginUser replaces an `o=` user name of "-".
	DefaultOriginUser = "tester"
	// DefaultSessionName replaces an empty or "-" `s=` line.
	DefaultSessionName = "Test Session"
)

var (
	ErrInvalidSDP = errors.New("invalid sdp")
)

type Origin struct {
	UserName       string `json:"userName"`
	SessionID      string `json:"sessionId"`
	SessionVersion int    `json:"sessionVersion"`
	NetworkType    string `json:"networkType"`
	AddressType    string `json:"addressType"`
	IP             string `json:"ip"`
}

func (origin *Origin) Append(b *bytes.Buffer) {
	b.WriteString("o=")
	if origin.UserName == "" {
		b.WriteString(DefaultOriginUser)
	} else {
		b.WriteString(origin.UserName)
	}
	b.WriteString(" ")
	if origin.SessionID == "" {
		b.WriteString("0")
	} else {
		b.WriteString(origin.SessionID)
	}
	b.WriteString(" ")
	b.WriteString(strconv.Itoa(origin.SessionVersion))
	b.WriteString(" ")
	writeAddress(b, origin.NetworkType, origin.AddressType, origin.IP)
	b.WriteString("\r\n")
}

type Connection struct {
	NetworkType string `json:"networkType"`
	AddressType string `json:"addressType"`
	IP          string `json:"ip"`
}

func (conn *Connection) Append(b *bytes.Buffer) {
	b.WriteString("c=")
	writeAddress(b, conn.NetworkType, conn.AddressType, conn.IP)
	b.WriteString("\r\n")
}

type Timing struct {
	StartTime int `json:"startTime"`
	StopTime  int `json:"stopTime"`
}

// Description is the structured form of an SDP body.
type Description struct {
	SessionVersion     int         `json:"sessionVersion"`
	SessionName        string      `json:"sessionName"`
	SessionInformation string      `json:"sessionInformation,omitempty"`
	Origin             Origin      `json:"origin"`
	Connection         *Connection `json:"connection,omitempty"` // nil omits the session c= line
	Timing             Timing      `json:"timing"`
	Channels           []Channel   `json:"channels"`
}

// RenderOptions controls the parts of the preview the operator can toggle.
// The zero value renders the session connection and simplified rtpmaps.
type RenderOptions struct {
	OmitConnection    bool // drop the session-level c= line
	StandardRtpmap    bool // use IANA names instead of "<pt>/8000"
	WireProtocol      bool // write each channel's own protocol instead of RTP/AVP
	InactiveDirection bool // write a=inactive for INACTIVE instead of a=sendrecv
}

// NewDescription returns the description a parse starts from.
func NewDescription() Description {
	return Description{
		SessionName: DefaultSessionName,
		Origin: Origin{
			UserName:    DefaultOriginUser,
			SessionID:   "0",
			NetworkType: NetworkTypeIN,
			AddressType: AddressIP4,
		},
		Channels: []Channel{},
	}
}

// Clone returns a deep copy that shares nothing with d.
func (d *Description) Clone() Description {
	c := *d
	if d.Connection != nil {
		conn := *d.Connection
		c.Connection = &conn
	}
	c.Channels = make([]Channel, len(d.Channels))
	for i := range d.Channels {
		c.Channels[i] = d.Channels[i].Clone()
	}
	return c
}

func (d *Description) Data(opts RenderOptions) []byte {
	if d == nil {
		return nil
	}
	var b bytes.Buffer
	d.Append(&b, opts)
	return b.Bytes()
}

func (d *Description) String() string {
	if d == nil {
		return ""
	}
	var b bytes.Buffer
	d.Append(&b, RenderOptions{})
	return b.String()
}

func (d *Description) Append(b *bytes.Buffer, opts RenderOptions) {
	b.WriteString("v=")
	b.WriteString(strconv.Itoa(d.SessionVersion))
	b.WriteString("\r\n")
	d.Origin.Append(b)
	b.WriteString("s=")
	if d.SessionName == "" {
		b.WriteString(DefaultSessionName)
	} else {
		b.WriteString(d.SessionName)
	}
	b.WriteString("\r\n")
	if d.SessionInformation != "" {
		b.WriteString("i=")
		b.WriteString(d.SessionInformation)
		b.WriteString("\r\n")
	}
	if d.Connection != nil && !opts.OmitConnection {
		d.Connection.Append(b)
	}
	b.WriteString("t=")
	b.WriteString(strconv.Itoa(d.Timing.StartTime))
	b.WriteString(" ")
	b.WriteString(strconv.Itoa(d.Timing.StopTime))
	b.WriteString("\r\n")

	for i := range d.Channels {
		d.Channels[i].Append(b, opts)
	}
}

func writeAddress(b *bytes.Buffer, netType, addrType, ip string) {
	if netType == "" {
		netType = NetworkTypeIN
	}
	if addrType == "" {
		if util.IsIPv6(ip) {
			addrType = AddressIP6
		} else {
			addrType = AddressIP4
		}
	}
	b.WriteString(netType)
	b.WriteString(" ")
	b.WriteString(addrType)
	b.WriteString(" ")
	if ip == "" {
		// This address from the RFC5735 "TEST-NET-1" block should never route to anywhere.
		b.WriteString("192.0.2.1")
	} else {
		b.WriteString(ip)
	}
}
