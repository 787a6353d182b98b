package invite_test

import (
	"testing"

	"github.com/safermobility/testconsole/invite"
	"github.com/safermobility/testconsole/sdp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const acmeInvite = `INVITE sip:10.221.19.252;transport=udp SIP/2.0
To: "VRSP" <sip:10.221.19.252>
From: <sip:acmeSrc@172.21.13.164>;tag=1c257669691
v=0
o=- 2142479003 635515518 IN IP4 10.231.242.146
s=-
c=IN IP4 10.231.242.146
t=0 0
m=audio 6304 RTP/AVP 0 8 18 127
a=label:34146659
a=sendonly
`

func TestParseAcmeInvite(t *testing.T) {
	inv, err := invite.Parse(acmeInvite)
	require.NoError(t, err)

	assert.Equal(t, invite.DestinationAddress{
		IP:                "10.221.19.252",
		Port:              5060,
		TransportProtocol: invite.TransportUDP,
		Alias:             "VRSP",
	}, inv.DestinationAddress)
	assert.Equal(t, map[string]string{
		"To":   `"VRSP" <sip:10.221.19.252>`,
		"From": "<sip:acmeSrc@172.21.13.164>;tag=1c257669691",
	}, inv.CustomHeaders)

	assert.Equal(t, sdp.Description{
		SessionVersion: 0,
		SessionName:    sdp.DefaultSessionName,
		Origin: sdp.Origin{
			UserName:       sdp.DefaultOriginUser,
			SessionID:      "2142479003",
			SessionVersion: 635515518,
			NetworkType:    "IN",
			AddressType:    "IP4",
			IP:             "10.231.242.146",
		},
		Connection: &sdp.Connection{NetworkType: "IN", AddressType: "IP4", IP: "10.231.242.146"},
		Timing:     sdp.Timing{StartTime: 0, StopTime: 0},
		Channels: []sdp.Channel{
			{
				MediaType:         "AUDIO",
				Port:              6304,
				TransportProtocol: "RTP_AVP",
				Codecs:            []int{0, 8, 18, 127},
				Label:             "34146659",
				ChannelState:      sdp.StateSend,
			},
		},
	}, inv.SDP)
}

func TestParseCRLF(t *testing.T) {
	raw := "INVITE sip:10.0.0.5 SIP/2.0\r\n" +
		"Subject: hello\r\n" +
		"\r\n" +
		"v=0\r\n" +
		"m=audio 4000 RTP/AVP 8\r\n"

	inv, err := invite.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "hello", inv.CustomHeaders["Subject"])
	require.Len(t, inv.SDP.Channels, 1)
	assert.Equal(t, []int{8}, inv.SDP.Channels[0].Codecs)
}

func TestParseEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t\r\n"} {
		inv, err := invite.Parse(raw)
		assert.ErrorIs(t, err, invite.ErrEmptyMessage)
		assert.Nil(t, inv)
	}
}

func TestParseRequestLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		ip        string
		port      int
		transport invite.Transport
		user      string
	}{
		{"host only", "INVITE sip:10.0.0.5 SIP/2.0", "10.0.0.5", 5060, invite.TransportUDP, ""},
		{"host and port", "INVITE sip:10.0.0.5:5070 SIP/2.0", "10.0.0.5", 5070, invite.TransportUDP, ""},
		{"user and transport", "INVITE sip:alice@pbx.example.com;transport=tcp SIP/2.0", "pbx.example.com", 5060, invite.TransportTCP, "alice"},
		{"everything", "INVITE sip:+15551234@10.1.1.1:5061;user=phone;transport=TLS SIP/2.0", "10.1.1.1", 5061, invite.TransportTLS, "+15551234"},
		{"ipv6", "INVITE sip:[2001:db8::1]:5080 SIP/2.0", "2001:db8::1", 5080, invite.TransportUDP, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			inv, err := invite.Parse(test.line)
			require.NoError(t, err)
			assert.Equal(t, test.ip, inv.DestinationAddress.IP)
			assert.Equal(t, test.port, inv.DestinationAddress.Port)
			assert.Equal(t, test.transport, inv.DestinationAddress.TransportProtocol)
			user, ok := inv.CustomHeaders[invite.InviteUserHeader]
			assert.Equal(t, test.user != "", ok)
			assert.Equal(t, test.user, user)
		})
	}
}

func TestParseMalformedRequestLine(t *testing.T) {
	inv, err := invite.Parse("INVITE tel:+15551234 SIP/2.0\nv=0\nm=audio 4000 RTP/AVP 0\n")
	assert.ErrorIs(t, err, invite.ErrParse)
	assert.Nil(t, inv)
}

func TestParseDisplayName(t *testing.T) {
	tests := []struct {
		to    string
		alias string
	}{
		{`"VRSP" <sip:10.221.19.252>`, "VRSP"},
		{`"Front Desk"<sip:100@pbx>`, "Front Desk"},
		{`Lab Phone <sip:200@pbx>;tag=abc`, "Lab Phone"},
		{`<sip:300@pbx>`, ""},
		{`sip:300@pbx`, ""},
	}

	for _, test := range tests {
		inv, err := invite.Parse("To: " + test.to)
		require.NoError(t, err)
		assert.Equal(t, test.to, inv.CustomHeaders["To"])
		assert.Equal(t, test.alias, inv.DestinationAddress.Alias, test.to)
	}
}

func TestParseExcludedHeaders(t *testing.T) {
	for _, name := range []string{"Via", "Max-Forwards", "Call-ID", "CSeq", "Contact", "Content-Type", "Content-Length", "MIME-Version", "call-id"} {
		inv, err := invite.Parse("INVITE sip:10.0.0.5 SIP/2.0\n" + name + ": something\nX-Keep: me\n")
		require.NoError(t, err)
		assert.NotContains(t, inv.CustomHeaders, name)
		assert.Equal(t, "me", inv.CustomHeaders["X-Keep"])
		assert.True(t, invite.IsExcludedHeader(name))
	}
}

func TestParseHeadersStopAtSDP(t *testing.T) {
	inv, err := invite.Parse("X-Before: 1\nv=0\nX-After: 2\nm=audio 4000 RTP/AVP 0\n")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"X-Before": "1"}, inv.CustomHeaders)
	require.Len(t, inv.SDP.Channels, 1)
}

func TestParseDropsInvalidChannel(t *testing.T) {
	inv, err := invite.Parse("INVITE sip:10.0.0.5 SIP/2.0\nv=0\nm=audio port RTP/AVP 0\na=label:x\nm=video 5000 RTP/AVP 34\n")
	require.NoError(t, err)
	require.Len(t, inv.SDP.Channels, 1)
	assert.Equal(t, "VIDEO", inv.SDP.Channels[0].MediaType)
}

func TestProcessorOptions(t *testing.T) {
	_, err := invite.NewProcessor(invite.WithDefaultChannelState("SIDEWAYS"))
	assert.ErrorIs(t, err, invite.ErrUnknownChannelState)

	_, err = invite.NewProcessor(invite.WithDefaultCodecs(0, 128))
	assert.ErrorIs(t, err, invite.ErrInvalidCodec)

	p, err := invite.NewProcessor(
		invite.WithDefaultChannelState(sdp.StateSend),
		invite.WithDefaultCodecs(9),
	)
	require.NoError(t, err)

	inv, err := p.Parse("v=0\nm=audio 4000 RTP/AVP\n")
	require.NoError(t, err)
	require.Len(t, inv.SDP.Channels, 1)
	assert.Equal(t, sdp.StateSend, inv.SDP.Channels[0].ChannelState)
	assert.Equal(t, []int{9}, inv.SDP.Channels[0].Codecs)

	p, err = invite.NewProcessor(invite.WithoutCodecBackfill())
	require.NoError(t, err)
	inv, err = p.Parse("v=0\nm=audio 4000 RTP/AVP\n")
	require.NoError(t, err)
	require.Len(t, inv.SDP.Channels, 1)
	assert.Empty(t, inv.SDP.Channels[0].Codecs)
	assert.Equal(t, sdp.StateSendAndReceive, inv.SDP.Channels[0].ChannelState)
}
