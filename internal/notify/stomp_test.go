package notify

import (
	"bytes"
	"testing"
)

func TestParseFrameMessage(t *testing.T) {
	raw := []byte("MESSAGE\ndestination:/topic/notifications\nsubscription:sub-0\nmessage-id:42\n\n{\"id\":7}\x00")

	f, err := parseFrame(raw)
	if err != nil {
		t.Fatalf("parseFrame failed: %v", err)
	}
	if f.command != cmdMessage {
		t.Fatalf("command = %q, want MESSAGE", f.command)
	}
	if dest, _ := f.header("destination"); dest != topicNotifications {
		t.Fatalf("destination = %q, want %q", dest, topicNotifications)
	}
	if !bytes.Equal(f.body, []byte(`{"id":7}`)) {
		t.Fatalf("body = %q", f.body)
	}
}

func TestParseFrameHeartbeat(t *testing.T) {
	for _, raw := range [][]byte{[]byte("\n"), []byte("\r\n"), {}} {
		f, err := parseFrame(raw)
		if err != nil {
			t.Fatalf("heartbeat %q parsed with error: %v", raw, err)
		}
		if f != nil {
			t.Fatalf("heartbeat %q parsed as frame %+v", raw, f)
		}
	}
}

func TestParseFrameMalformed(t *testing.T) {
	for _, raw := range []string{
		"MESSAGE\nno-separator",
		"MESSAGE\nbroken header line\n\nbody\x00",
	} {
		if _, err := parseFrame([]byte(raw)); !IsDecodeError(err) {
			t.Fatalf("parsing %q: got %v, want DecodeError", raw, err)
		}
	}
}

func TestMarshalFrameRoundTrip(t *testing.T) {
	f := &frame{command: cmdSubscribe}
	f.addHeader("id", "sub-0")
	f.addHeader("destination", topicNotifications)

	parsed, err := parseFrame(marshalFrame(f))
	if err != nil {
		t.Fatalf("re-parsing marshaled frame: %v", err)
	}
	if parsed.command != cmdSubscribe {
		t.Fatalf("command = %q", parsed.command)
	}
	if dest, _ := parsed.header("destination"); dest != topicNotifications {
		t.Fatalf("destination = %q", dest)
	}
}

func TestHeaderEscaping(t *testing.T) {
	f := &frame{command: cmdSubscribe}
	f.addHeader("destination", "/queue/a:b\nc")

	parsed, err := parseFrame(marshalFrame(f))
	if err != nil {
		t.Fatalf("re-parsing frame with reserved characters: %v", err)
	}
	if got, _ := parsed.header("destination"); got != "/queue/a:b\nc" {
		t.Fatalf("destination = %q after round trip", got)
	}
}

func TestParseHeartbeatHeader(t *testing.T) {
	sendMs, expectMs, err := parseHeartbeat("4000,4000")
	if err != nil {
		t.Fatalf("parseHeartbeat failed: %v", err)
	}
	if sendMs != 4000 || expectMs != 4000 {
		t.Fatalf("got %d,%d, want 4000,4000", sendMs, expectMs)
	}

	if _, _, err := parseHeartbeat("bogus"); err == nil {
		t.Fatal("malformed heart-beat header parsed without error")
	}
}

func TestNegotiateInterval(t *testing.T) {
	tests := []struct {
		ours, theirs int
		wantMs       int
	}{
		{4000, 4000, 4000},
		{4000, 10000, 10000},
		{10000, 4000, 10000},
		{4000, 0, 0},
		{0, 4000, 0},
	}
	for _, tt := range tests {
		got := negotiateInterval(tt.ours, tt.theirs)
		if int(got.Milliseconds()) != tt.wantMs {
			t.Errorf("negotiateInterval(%d, %d) = %v, want %dms",
				tt.ours, tt.theirs, got, tt.wantMs)
		}
	}
}
