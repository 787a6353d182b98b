package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/safermobility/testconsole/config"
	"github.com/safermobility/testconsole/invite"
	"github.com/safermobility/testconsole/sdp"
	"github.com/safermobility/testconsole/snapshot"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawInvite = "INVITE sip:198.51.100.7 SIP/2.0\n" +
	"v=0\n" +
	"o=- 1 1 IN IP4 198.51.100.7\n" +
	"s=-\n" +
	"t=0 0\n" +
	"m=audio 4000 RTP/AVP\n"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "console.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	c, err := config.Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "SEND_AND_RECEIVE", c.Parser.DefaultChannelState)
	assert.Equal(t, []int{0, 8, 18}, c.Parser.DefaultCodecs)
	assert.True(t, c.Parser.CodecBackfill)
	assert.True(t, c.Generator.ConnectionLine)
	assert.False(t, c.Generator.StandardRtpmap)
	assert.False(t, c.Generator.WireProtocol)
	assert.False(t, c.Generator.InactiveDirection)
	assert.False(t, c.Generator.RequestURIUser)
	assert.Equal(t, snapshot.BackendFile, c.Snapshot.Backend)
	assert.Equal(t, snapshot.DefaultRedisKey, c.Snapshot.RedisKey)
	assert.Equal(t, "info", c.Log.Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
parser:
  default_channel_state: receive
  default_codecs: [8, 101]
generator:
  connection_line: false
snapshot:
  backend: redis
  redis_addr: cache:6379
log:
  level: debug
testers:
  - kind: sip
    name: edge
    endpoint: 203.0.113.10:5060
  - kind: rtp
    name: media-a
`)
	t.Setenv("TESTCONSOLE_LOG_FORMAT", "json")
	t.Setenv("TESTCONSOLE_GENERATOR_STANDARD_RTPMAP", "true")

	c, err := config.Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "receive", c.Parser.DefaultChannelState)
	assert.Equal(t, []int{8, 101}, c.Parser.DefaultCodecs)
	assert.False(t, c.Generator.ConnectionLine)
	assert.True(t, c.Generator.StandardRtpmap)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, []config.Tester{
		{Kind: "sip", Name: "edge", Endpoint: "203.0.113.10:5060"},
		{Kind: "rtp", Name: "media-a"},
	}, c.Testers)

	sc := c.SnapshotConfig()
	assert.Equal(t, snapshot.BackendRedis, sc.Backend)
	assert.Equal(t, "cache:6379", sc.RedisAddr)

	p, err := c.NewProcessor(nil)
	require.NoError(t, err)
	assert.True(t, p.RenderOptions().OmitConnection)

	inv, err := p.Parse(rawInvite)
	require.NoError(t, err)
	require.Len(t, inv.SDP.Channels, 1)
	assert.Equal(t, sdp.StateReceive, inv.SDP.Channels[0].ChannelState)
	assert.Equal(t, []int{8, 101}, inv.SDP.Channels[0].Codecs)
}

func TestLoadBackfillDisabled(t *testing.T) {
	path := writeConfig(t, "parser:\n  codec_backfill: false\n")

	c, err := config.Load(viper.New(), path)
	require.NoError(t, err)

	p, err := c.NewProcessor(nil)
	require.NoError(t, err)
	inv, err := p.Parse(rawInvite)
	require.NoError(t, err)
	require.Len(t, inv.SDP.Channels, 1)
	assert.Empty(t, inv.SDP.Channels[0].Codecs)
}

func TestLoadRejectsBadState(t *testing.T) {
	path := writeConfig(t, "parser:\n  default_channel_state: sideways\n")

	c, err := config.Load(viper.New(), path)
	require.NoError(t, err)

	_, err = c.NewProcessor(nil)
	assert.ErrorIs(t, err, invite.ErrUnknownChannelState)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := config.Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRichRendering(t *testing.T) {
	path := writeConfig(t, "generator:\n  wire_protocol: true\n  inactive_direction: true\n")
	t.Setenv("TESTCONSOLE_GENERATOR_REQUEST_URI_USER", "true")

	c, err := config.Load(viper.New(), path)
	require.NoError(t, err)
	p, err := c.NewProcessor(nil)
	require.NoError(t, err)

	inv, err := p.Parse("INVITE sip:bob@198.51.100.7 SIP/2.0\n" +
		"v=0\n" +
		"m=audio 4000 RTP/SAVP 0\n" +
		"a=inactive\n")
	require.NoError(t, err)

	preview := p.Generate(inv)
	assert.Contains(t, preview, "INVITE sip:bob@198.51.100.7:5060;transport=udp SIP/2.0\r\n")
	assert.Contains(t, preview, "m=audio 4000 RTP/SAVP 0\r\n")
	assert.Contains(t, preview, "a=inactive\r\n")
}
