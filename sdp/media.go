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

package sdp

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/safermobility/testconsole/util"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Channel is one media stream of a session: an `m=` line together with the
// `c=` and `a=` lines that follow it.
type Channel struct {
	MediaType         string            `json:"mediaType"`         // upper-cased, e.g. AUDIO
	Port              int               `json:"port"`              // must be > 0 to be kept
	TransportProtocol string            `json:"transportProtocol"` // RTP_AVP, RTP_SAVP or as received
	Codecs            []int             `json:"codecs"`            // payload types in offer order
	ConnectionAddress string            `json:"connectionAddress,omitempty"`
	Label             string            `json:"label,omitempty"`
	PacketTime        int               `json:"packetTime,omitempty"`    // ms
	MaxPacketTime     int               `json:"maxPacketTime,omitempty"` // ms
	ChannelState      ChannelState      `json:"channelState"`
	Attributes        map[string]string `json:"attributes,omitempty"` // a= lines we don't recognize
}

// Valid reports whether the channel carries everything an `m=` line needs.
func (ch *Channel) Valid() bool {
	return ch.MediaType != "" && ch.Port > 0 && ch.TransportProtocol != ""
}

// Clone returns a deep copy of the channel.
func (ch Channel) Clone() Channel {
	ch.Codecs = slices.Clone(ch.Codecs)
	if ch.Attributes != nil {
		ch.Attributes = maps.Clone(ch.Attributes)
	}
	return ch
}

func (ch *Channel) addAttribute(line string) {
	name, value, hasValue := strings.Cut(line, ":")

	switch name {
	case "label":
		ch.Label = value
	case "ptime":
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			ch.PacketTime = n
		}
	case "maxptime":
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			ch.MaxPacketTime = n
		}
	case "sendrecv", "sendonly", "recvonly", "inactive":
		if state, ok := stateFromDirection(name); ok && !hasValue {
			ch.ChannelState = state
			return
		}
		ch.setAttribute(line, "")
	default:
		if hasValue {
			ch.setAttribute(name, value)
		} else {
			ch.setAttribute(line, "")
		}
	}
}

func (ch *Channel) setAttribute(name, value string) {
	if ch.Attributes == nil {
		ch.Attributes = make(map[string]string)
	}
	ch.Attributes[name] = value
}

// Append writes the channel in the simplified form the preview uses.
func (ch *Channel) Append(b *bytes.Buffer, opts RenderOptions) {
	b.WriteString("m=")
	b.WriteString(strings.ToLower(ch.MediaType))
	b.WriteString(" ")
	b.WriteString(strconv.Itoa(ch.Port))
	b.WriteString(" ")
	if opts.WireProtocol {
		b.WriteString(WireTransport(ch.TransportProtocol))
	} else {
		b.WriteString(ProtoRTPAVP)
	}
	if len(ch.Codecs) == 0 {
		b.WriteString(" 0")
	}
	for _, pt := range ch.Codecs {
		b.WriteString(" ")
		b.WriteString(strconv.Itoa(pt))
	}
	b.WriteString("\r\n")

	// If this media description has its own `c=` line
	if ch.ConnectionAddress != "" {
		if util.IsIPv6(ch.ConnectionAddress) {
			b.WriteString("c=IN IP6 ")
		} else {
			b.WriteString("c=IN IP4 ")
		}
		b.WriteString(ch.ConnectionAddress)
		b.WriteString("\r\n")
	}

	if ch.Label != "" {
		b.WriteString("a=label:")
		b.WriteString(ch.Label)
		b.WriteString("\r\n")
	}
	if ch.PacketTime > 0 {
		b.WriteString("a=ptime:")
		b.WriteString(strconv.Itoa(ch.PacketTime))
		b.WriteString("\r\n")
	}
	if ch.MaxPacketTime > 0 {
		b.WriteString("a=maxptime:")
		b.WriteString(strconv.Itoa(ch.MaxPacketTime))
		b.WriteString("\r\n")
	}

	for _, pt := range ch.Codecs {
		appendRtpmap(b, pt, opts.StandardRtpmap)
	}

	// rtpmap lines are synthesized from the codec list above
	names := maps.Keys(ch.Attributes)
	slices.Sort(names)
	for _, name := range names {
		if name == "rtpmap" {
			continue
		}
		b.WriteString("a=")
		b.WriteString(name)
		if value := ch.Attributes[name]; value != "" {
			b.WriteString(":")
			b.WriteString(value)
		}
		b.WriteString("\r\n")
	}

	direction := ch.ChannelState.Direction()
	if opts.InactiveDirection && ch.ChannelState == StateInactive {
		direction = Inactive
	}
	b.WriteString("a=")
	b.WriteString(string(direction))
	b.WriteString("\r\n")
}
