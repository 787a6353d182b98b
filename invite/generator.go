package invite

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/safermobility/testconsole/sdp"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Tokens left in the preview for the orchestration service to resolve when
// it sends the request.
const (
	PlaceholderLocalIP   = "[LOCAL_IP]"
	PlaceholderLocalPort = "[LOCAL_PORT]"
	PlaceholderLocalUser = "[LOCAL_USER]"
	PlaceholderBranchID  = "[BRANCH_ID]"
	PlaceholderFromTag   = "[FROM_TAG]"
	PlaceholderCallID    = "[CALL_ID]"
)

const DefaultMaxForwards = 70

// Generate renders a best-effort preview of the INVITE described by inv.
// Transport-level headers carry placeholder tokens, so the result is an
// approximation of what is finally sent, not the literal wire message.
func (p *Processor) Generate(inv *Invite) string {
	body := inv.SDP.Data(p.render)
	transport := strings.ToUpper(string(orDefault(inv.DestinationAddress.TransportProtocol, DefaultTransport)))

	var b bytes.Buffer
	b.WriteString("INVITE ")
	b.WriteString(inv.requestURI(p.requestUser))
	b.WriteString(" SIP/2.0\r\n")

	writeHeader(&b, "Via", "SIP/2.0/"+transport+" "+PlaceholderLocalIP+":"+PlaceholderLocalPort+";branch="+PlaceholderBranchID)
	writeHeader(&b, "Max-Forwards", strconv.Itoa(DefaultMaxForwards))
	writeHeader(&b, "To", inv.toHeader())
	if from := inv.CustomHeaders["From"]; from != "" {
		writeHeader(&b, "From", from)
	} else {
		writeHeader(&b, "From", "<sip:"+PlaceholderLocalUser+"@"+PlaceholderLocalIP+">;tag="+PlaceholderFromTag)
	}
	writeHeader(&b, "Call-ID", PlaceholderCallID)
	writeHeader(&b, "CSeq", "1 INVITE")
	writeHeader(&b, "Contact", "<sip:"+PlaceholderLocalUser+"@"+PlaceholderLocalIP+":"+PlaceholderLocalPort+">")
	writeHeader(&b, "Content-Type", sdp.ContentType)

	for _, name := range inv.extraHeaderNames() {
		writeHeader(&b, name, inv.CustomHeaders[name])
	}

	writeHeader(&b, "Content-Length", strconv.Itoa(len(body)))
	b.WriteString("\r\n")
	b.Write(body)

	return b.String()
}

// toHeader is the verbatim To value when one was parsed, otherwise it is
// built from the destination and its alias.
func (inv *Invite) toHeader() string {
	if to := inv.CustomHeaders["To"]; to != "" {
		return to
	}
	dest := inv.DestinationAddress
	if dest.Port <= 0 {
		dest.Port = DefaultPort
	}
	to := "<sip:" + dest.HostPort() + ">"
	if dest.Alias != "" {
		to = strconv.Quote(dest.Alias) + " " + to
	}
	return to
}

// extraHeaderNames lists the custom headers that are written after the
// standard block, sorted so the preview is stable.
func (inv *Invite) extraHeaderNames() []string {
	names := maps.Keys(inv.CustomHeaders)
	slices.Sort(names)
	return slices.DeleteFunc(names, func(name string) bool {
		switch name {
		case "To", "From", InviteUserHeader:
			return true
		}
		return IsExcludedHeader(name)
	})
}

func writeHeader(b *bytes.Buffer, name, value string) {
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\r\n")
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
