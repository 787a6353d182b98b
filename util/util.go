// Package util holds small helpers shared by the SIP and SDP packages.
package util

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// BranchMagicCookie prefixes every RFC 3261 compliant Via branch.
const BranchMagicCookie = "z9hG4bK"

// GenerateCallID returns a globally unique Call-ID value.
func GenerateCallID() string {
	return uuid.NewString()
}

// GenerateTag returns a random From/To tag.
func GenerateTag() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// GenerateBranch returns a Via branch parameter carrying the magic cookie.
func GenerateBranch() string {
	return BranchMagicCookie + "." + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// GenerateOriginID returns a numeric session id suitable for an SDP `o=` line.
func GenerateOriginID() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}

// IsIPv6 reports whether addr is a literal IPv6 address, with or without brackets.
func IsIPv6(addr string) bool {
	addr = strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
	ip := net.ParseIP(addr)
	return ip != nil && ip.To4() == nil
}

func SlogError(err error) slog.Attr {
	return slog.String("error", err.Error())
}

func SlogByteString(key string, b []byte) slog.Attr {
	return slog.String(key, string(b))
}
