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
)

// Codec describes a static RTP payload type as registered with IANA.
type Codec struct {
	PT    uint8  // 7-bit payload type we need to put in our RTP packets
	Name  string // e.g. PCMU, G729, telephone-event, etc.
	Rate  int    // frequency in hertz.  usually 8000
	Param string // sometimes used to specify number of channels
}

// DefaultRtpmapRate is the clock rate assumed for every codec when rtpmap
// lines are synthesized without the IANA table.
const DefaultRtpmapRate = 8000

// StandardCodecs is the RFC 3551 static payload type table.
var StandardCodecs = map[uint8]Codec{
	0:  {PT: 0, Name: "PCMU", Rate: 8000},
	3:  {PT: 3, Name: "GSM", Rate: 8000},
	4:  {PT: 4, Name: "G723", Rate: 8000},
	5:  {PT: 5, Name: "DVI4", Rate: 8000},
	6:  {PT: 6, Name: "DVI4", Rate: 16000},
	7:  {PT: 7, Name: "LPC", Rate: 8000},
	8:  {PT: 8, Name: "PCMA", Rate: 8000},
	9:  {PT: 9, Name: "G722", Rate: 8000},
	10: {PT: 10, Name: "L16", Rate: 44100, Param: "2"},
	11: {PT: 11, Name: "L16", Rate: 44100},
	12: {PT: 12, Name: "QCELP", Rate: 8000},
	13: {PT: 13, Name: "CN", Rate: 8000},
	14: {PT: 14, Name: "MPA", Rate: 90000},
	15: {PT: 15, Name: "G728", Rate: 8000},
	16: {PT: 16, Name: "DVI4", Rate: 11025},
	17: {PT: 17, Name: "DVI4", Rate: 22050},
	18: {PT: 18, Name: "G729", Rate: 8000},
	25: {PT: 25, Name: "CelB", Rate: 90000},
	26: {PT: 26, Name: "JPEG", Rate: 90000},
	28: {PT: 28, Name: "nv", Rate: 90000},
	31: {PT: 31, Name: "H261", Rate: 90000},
	32: {PT: 32, Name: "MPV", Rate: 90000},
	33: {PT: 33, Name: "MP2T", Rate: 90000},
	34: {PT: 34, Name: "H263", Rate: 90000},
}

// LookupCodec returns the static codec registered for a payload type.
func LookupCodec(pt int) (Codec, bool) {
	if pt < 0 || isDynamicPT(pt) {
		return Codec{}, false
	}
	c, ok := StandardCodecs[uint8(pt)]
	return c, ok
}

// appendRtpmap writes one `a=rtpmap` line. Without standard names every
// payload type is written as "<pt>/8000".
func appendRtpmap(b *bytes.Buffer, pt int, standard bool) {
	b.WriteString("a=rtpmap:")
	b.WriteString(strconv.Itoa(pt))
	b.WriteString(" ")
	if c, ok := LookupCodec(pt); standard && ok {
		b.WriteString(c.Name)
		b.WriteString("/")
		b.WriteString(strconv.Itoa(c.Rate))
		if c.Param != "" {
			b.WriteString("/")
			b.WriteString(c.Param)
		}
	} else {
		b.WriteString(strconv.Itoa(pt))
		b.WriteString("/")
		b.WriteString(strconv.Itoa(DefaultRtpmapRate))
	}
	b.WriteString("\r\n")
}

// MaxPayloadType is the largest value the 7-bit RTP payload type field holds.
const MaxPayloadType = 127

// ValidPayloadType reports whether pt fits the RTP payload type field.
func ValidPayloadType(pt int) bool {
	return pt >= 0 && pt <= MaxPayloadType
}

// Returns true if IANA says this payload type is dynamic.
func isDynamicPT(pt int) bool {
	return (pt >= 96)
}
