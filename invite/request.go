package invite

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/emiago/sipgo/sip"
	"github.com/safermobility/testconsole/sdp"
	"github.com/safermobility/testconsole/util"
	"golang.org/x/exp/slog"
)

// Local is the signaling endpoint the request is sent from.
type Local struct {
	IP   string
	Port int
	User string
}

const (
	DefaultLocalUser = "tester"
	defaultLocalIP   = "127.0.0.1"
)

// BuildRequest resolves every placeholder of the preview and returns the
// concrete request the orchestration service would put on the wire: a fresh
// Call-ID, From tag and Via branch, and the local endpoint in Via and
// Contact.
func (p *Processor) BuildRequest(inv *Invite, local Local) (*sip.Request, error) {
	if inv.DestinationAddress.IP == "" {
		return nil, fmt.Errorf("%w: missing destination ip", ErrInvalidDestination)
	}
	if local.IP == "" {
		local.IP = defaultLocalIP
	}
	if local.Port <= 0 {
		local.Port = DefaultPort
	}
	if local.User == "" {
		local.User = DefaultLocalUser
	}

	var recipient sip.Uri
	if err := sip.ParseUri(inv.requestURI(p.requestUser), &recipient); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDestination, err)
	}

	transport := strings.ToUpper(string(orDefault(inv.DestinationAddress.TransportProtocol, DefaultTransport)))
	localHostPort := net.JoinHostPort(local.IP, strconv.Itoa(local.Port))
	callID := util.GenerateCallID()

	from := inv.CustomHeaders["From"]
	if from == "" {
		from = "<sip:" + local.User + "@" + localHostPort + ">"
	}
	if !strings.Contains(strings.ToLower(from), ";tag=") {
		from += ";tag=" + util.GenerateTag()
	}

	req := sip.NewRequest(sip.INVITE, recipient)
	req.AppendHeader(sip.NewHeader("Via", "SIP/2.0/"+transport+" "+localHostPort+";branch="+util.GenerateBranch()))
	req.AppendHeader(sip.NewHeader("Max-Forwards", strconv.Itoa(DefaultMaxForwards)))
	req.AppendHeader(sip.NewHeader("From", from))
	req.AppendHeader(sip.NewHeader("To", inv.toHeader()))
	req.AppendHeader(sip.NewHeader("Call-ID", callID))
	req.AppendHeader(sip.NewHeader("CSeq", "1 INVITE"))
	req.AppendHeader(sip.NewHeader("Contact", "<sip:"+local.User+"@"+localHostPort+">"))
	req.AppendHeader(sip.NewHeader("Content-Type", sdp.ContentType))
	for _, name := range inv.extraHeaderNames() {
		req.AppendHeader(sip.NewHeader(name, inv.CustomHeaders[name]))
	}
	body := inv.SDP.Clone()
	if body.Origin.SessionID == "" || body.Origin.SessionID == "0" {
		body.Origin.SessionID = util.GenerateOriginID()
	}
	data := body.Data(p.render)
	req.SetBody(data)

	p.logger.Debug(
		"built invite request",
		slog.String("call_id", callID),
		slog.String("recipient", recipient.String()),
		util.SlogByteString("sdp", data),
	)

	return req, nil
}
