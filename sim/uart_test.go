package sim

import (
	"bytes"
	"testing"

	"github.com/davecheney/eic"
	"github.com/matryer/is"
)

func TestUARTEcho(t *testing.T) {
	is := is.New(t)
	mc, c := boot(t, 0)

	var out bytes.Buffer
	u := NewUART(mc, UART4RX, UART4TX, &out)
	sent := 0
	c.Route(eic.IRQ(UART4RX), eic.SupportedPriority, eic.HandlerFunc(func(eic.Vector) {
		if b, ok := u.Read(); ok {
			is.NoErr(u.Write(b))
		}
	}))
	c.Route(eic.IRQ(UART4TX), eic.SupportedPriority, eic.HandlerFunc(func(eic.Vector) { sent++ }))

	for _, b := range []byte("hi\r\n") {
		u.Receive(b)
		mc.Step() // RX
		mc.Step() // TX
	}
	is.Equal(out.String(), "hi\n")
	is.Equal(sent, 4)
	is.Equal(u.Overruns(), 0)
	is.Equal(c.Spurious(), uint64(0))
}

func TestUARTOverrun(t *testing.T) {
	is := is.New(t)
	mc, _ := boot(t, 0)
	u := NewUART(mc, UART4RX, UART4TX, &bytes.Buffer{})

	u.Receive('a')
	u.Receive('b')
	is.Equal(u.Overruns(), 1)
	b, ok := u.Read()
	is.True(ok)
	is.Equal(b, byte('b'))
	_, ok = u.Read()
	is.True(!ok)
}
