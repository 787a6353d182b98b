package invite

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/safermobility/testconsole/sdp"
	"github.com/safermobility/testconsole/util"
	"golang.org/x/exp/slog"
)

// INVITE sip:[user@]host[:port][;params] SIP/2.0
var requestLineRegexp = regexp.MustCompile(
	`^INVITE\s+sip:(?:([^@\s]+)@)?(\[[0-9A-Fa-f:.]+\]|[^:;\s]+)(?::(\d+))?((?:;[^;\s]*)*)\s+SIP/2\.0$`)

// Display name in front of the To URI, quoted form first.
var (
	quotedDisplayNameRegexp   = regexp.MustCompile(`^"([^"]*)"\s*<sip:`)
	unquotedDisplayNameRegexp = regexp.MustCompile(`^([^"<]+?)\s*<sip:`)
)

// Parse converts the raw text of a SIP INVITE into an Invite. Headers are
// read until the first `v=` line; everything from there on is SDP.
// On failure no partial invite is returned.
func (p *Processor) Parse(raw string) (inv *Invite, err error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyMessage
	}

	defer func() {
		if r := recover(); r != nil {
			inv = nil
			err = fmt.Errorf("%w: %v", ErrParse, r)
		}
		if err != nil {
			p.logger.Warn("unable to parse invite", util.SlogError(err))
		}
	}()

	inv = New()
	var sdpLines []string
	inSDP := false

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !inSDP && strings.HasPrefix(line, "v=") {
			inSDP = true
		}
		if inSDP {
			sdpLines = append(sdpLines, line)
			continue
		}
		if err := parseHeaderLine(line, inv); err != nil {
			return nil, err
		}
	}

	inv.SDP = sdp.ParseLines(sdpLines, p.parse)

	p.logger.Debug(
		"parsed invite",
		slog.String("destination", inv.DestinationAddress.HostPort()),
		slog.Int("headers", len(inv.CustomHeaders)),
		slog.Int("channels", len(inv.SDP.Channels)),
	)

	return inv, nil
}

func parseHeaderLine(line string, inv *Invite) error {
	switch {
	case strings.HasPrefix(line, "INVITE "):
		return parseRequestLine(line, &inv.DestinationAddress, inv.CustomHeaders)
	case strings.HasPrefix(line, "To:"):
		to := strings.TrimSpace(line[3:])
		inv.CustomHeaders["To"] = to
		if alias := displayName(to); alias != "" {
			inv.DestinationAddress.Alias = alias
		}
	case strings.HasPrefix(line, "From:"):
		inv.CustomHeaders["From"] = strings.TrimSpace(line[5:])
	default:
		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" || IsExcludedHeader(name) {
			return nil
		}
		inv.CustomHeaders[name] = strings.TrimSpace(value)
	}
	return nil
}

func parseRequestLine(line string, dest *DestinationAddress, headers map[string]string) error {
	m := requestLineRegexp.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("%w: malformed request line %q", ErrParse, line)
	}
	user, host, port, params := m[1], m[2], m[3], m[4]

	dest.IP = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n > 65535 {
			return fmt.Errorf("%w: invalid port %q", ErrParse, port)
		}
		dest.Port = n
	}
	for _, param := range strings.Split(params, ";") {
		name, value, _ := strings.Cut(param, "=")
		if strings.EqualFold(name, "transport") && value != "" {
			dest.TransportProtocol = Transport(strings.ToUpper(value))
		}
	}
	if user != "" {
		headers[InviteUserHeader] = user
	}
	return nil
}

func displayName(to string) string {
	if m := quotedDisplayNameRegexp.FindStringSubmatch(to); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := unquotedDisplayNameRegexp.FindStringSubmatch(to); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
