package sdp

import (
	"fmt"

	pionsdp "github.com/pion/sdp/v3"
)

// Validate runs a rendered SDP body through a strict RFC 4566 decoder and
// returns the number of media descriptions it contains.
func Validate(body []byte) (int, error) {
	var sd pionsdp.SessionDescription
	if err := sd.Unmarshal(body); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSDP, err)
	}
	return len(sd.MediaDescriptions), nil
}
