package notify

import (
	"bytes"
	"fmt"
	"strings"
)

// STOMP frame commands used by the notification channel. The backend is
// a STOMP 1.2 broker reached over a websocket; each websocket message
// carries exactly one frame.
const (
	cmdConnect     = "CONNECT"
	cmdConnected   = "CONNECTED"
	cmdSubscribe   = "SUBSCRIBE"
	cmdDisconnect  = "DISCONNECT"
	cmdMessage     = "MESSAGE"
	cmdError       = "ERROR"
	cmdReceipt     = "RECEIPT"
)

// heartbeatFrame is the body of a STOMP heartbeat: a lone line feed.
var heartbeatFrame = []byte("\n")

// frameHeader is a single STOMP header entry. Order is preserved because
// repeated header keys are legal and the first occurrence wins.
type frameHeader struct {
	key   string
	value string
}

// frame is one decoded STOMP frame.
type frame struct {
	command string
	headers []frameHeader
	body    []byte
}

// header returns the value of the first header with the given key, and
// whether it was present.
func (f *frame) header(key string) (string, bool) {
	for _, h := range f.headers {
		if h.key == key {
			return h.value, true
		}
	}
	return "", false
}

// addHeader appends a header entry.
func (f *frame) addHeader(key, value string) {
	f.headers = append(f.headers, frameHeader{key: key, value: value})
}

// headerEscaper encodes the reserved characters in STOMP 1.2 header
// names and values. CONNECT/CONNECTED frames are transmitted without
// escaping for 1.0 compatibility, per the protocol.
var headerEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\r", `\r`,
	"\n", `\n`,
	":", `\c`,
)

var headerUnescaper = strings.NewReplacer(
	`\r`, "\r",
	`\n`, "\n",
	`\c`, ":",
	`\\`, `\`,
)

// marshalFrame serializes a frame into the STOMP wire format:
// command line, header lines, blank line, body, NUL terminator.
func marshalFrame(f *frame) []byte {
	escape := f.command != cmdConnect && f.command != cmdConnected

	var buf bytes.Buffer
	buf.WriteString(f.command)
	buf.WriteByte('\n')
	for _, h := range f.headers {
		key, value := h.key, h.value
		if escape {
			key = headerEscaper.Replace(key)
			value = headerEscaper.Replace(value)
		}
		buf.WriteString(key)
		buf.WriteByte(':')
		buf.WriteString(value)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(f.body)
	buf.WriteByte(0)
	return buf.Bytes()
}

// parseFrame decodes a single STOMP frame from one websocket message.
// It returns (nil, nil) for heartbeat frames.
func parseFrame(data []byte) (*frame, error) {
	// A heartbeat is an empty message or a bare EOL.
	trimmed := bytes.TrimRight(data, "\r\n")
	if len(trimmed) == 0 {
		return nil, nil
	}

	head, body, found := bytes.Cut(data, []byte("\n\n"))
	if !found {
		return nil, &DecodeError{
			What: "stomp frame",
			Err:  fmt.Errorf("missing header/body separator"),
		}
	}

	lines := strings.Split(strings.TrimRight(string(head), "\r"), "\n")
	command := strings.TrimRight(lines[0], "\r")
	if command == "" {
		return nil, &DecodeError{
			What: "stomp frame",
			Err:  fmt.Errorf("empty command line"),
		}
	}

	f := &frame{command: command}
	escape := command != cmdConnect && command != cmdConnected
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, &DecodeError{
				What: "stomp frame",
				Err:  fmt.Errorf("malformed header line %q", line),
			}
		}
		if escape {
			key = headerUnescaper.Replace(key)
			value = headerUnescaper.Replace(value)
		}
		f.addHeader(key, value)
	}

	// Body runs to the NUL terminator; anything after it is ignored.
	if i := bytes.IndexByte(body, 0); i >= 0 {
		body = body[:i]
	}
	f.body = body
	return f, nil
}

// parseHeartbeat parses the "heart-beat" header value "<sx>,<sy>" into
// the server's send and expect intervals in milliseconds. Zero values
// mean the corresponding direction is disabled.
func parseHeartbeat(value string) (sendMs, expectMs int, err error) {
	sx, sy, ok := strings.Cut(value, ",")
	if !ok {
		return 0, 0, fmt.Errorf("malformed heart-beat header %q", value)
	}
	if _, err := fmt.Sscanf(strings.TrimSpace(sx), "%d", &sendMs); err != nil {
		return 0, 0, fmt.Errorf("malformed heart-beat header %q", value)
	}
	if _, err := fmt.Sscanf(strings.TrimSpace(sy), "%d", &expectMs); err != nil {
		return 0, 0, fmt.Errorf("malformed heart-beat header %q", value)
	}
	return sendMs, expectMs, nil
}
