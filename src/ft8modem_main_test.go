package ft8modem

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDecode(t *testing.T) {
	var cq = DecodedLine{Time: 1700000000, Content: "-12  0.3 1234 ~  CQ K1ABC FN42"}

	assert.Equal(t, "22:13:20 -12  0.3 1234 ~  CQ K1ABC FN42", FormatDecode(cq, ""))
	assert.Regexp(t, `^22:13:20 -12  0\.3 1234 ~  CQ K1ABC FN42  \(23\d\d km\)$`, FormatDecode(cq, "EM16"))

	var reply = DecodedLine{Time: 1700000015, Content: "-3  0.1  900 ~  K1ABC W1AW FN31"}
	assert.Equal(t, "22:13:35 -3  0.1  900 ~  K1ABC W1AW FN31", FormatDecode(reply, "EM16"), "only CQ calls get a distance")
}

func TestListenPort(t *testing.T) {
	var port, err = listenPort(":6666")
	require.NoError(t, err)
	assert.Equal(t, 6666, port)

	port, err = listenPort("127.0.0.1:7000")
	require.NoError(t, err)
	assert.Equal(t, 7000, port)

	_, err = listenPort("nonsense")
	assert.Error(t, err)
}

func TestLogEvent(t *testing.T) {
	var buf bytes.Buffer
	var logger = NewLogger(&buf, "debug")

	logEvent(logger, Event{Kind: EventTxOn, Sec: 0.25})
	logEvent(logger, Event{Kind: EventDecodeError, Capture: "a.wav", Err: errors.New("boom")})
	logEvent(logger, Event{Kind: EventSlotCheck, Target: EvenSlot, SlotNow: 3})

	var out = buf.String()
	assert.Contains(t, out, "Transmit on")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "Slot check")
}
