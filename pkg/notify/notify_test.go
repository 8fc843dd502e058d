package notify

import (
	"net"
	"testing"
	"time"

	"github.com/cyclopcam/logs"
	"github.com/hypebeast/go-osc/osc"
	"github.com/stretchr/testify/require"
)

func listen(t *testing.T) *net.UDPConn {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func receive(t *testing.T, conn *net.UDPConn) *osc.Message {
	buf := make([]byte, 1024)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := conn.ReadFromUDP(buf)
	require.NoError(t, err)

	packet, err := osc.ParsePacket(string(buf[:n]))
	require.NoError(t, err)
	msg, ok := packet.(*osc.Message)
	require.True(t, ok)
	return msg
}

func TestNotifySendsTrigger(t *testing.T) {
	conn := listen(t)
	port := conn.LocalAddr().(*net.UDPAddr).Port

	n := NewNotifier(logs.NewTestingLog(t), "127.0.0.1", port, "")
	require.NoError(t, n.Notify("Note_20"))

	msg := receive(t, conn)
	require.Equal(t, "/trigger", msg.Address)
	require.Equal(t, []interface{}{"Note_20"}, msg.Arguments)
}

func TestNotifyCustomAddress(t *testing.T) {
	conn := listen(t)
	port := conn.LocalAddr().(*net.UDPAddr).Port

	n := NewNotifier(logs.NewTestingLog(t), "127.0.0.1", port, "/money/lock")
	require.NoError(t, n.Notify("Coin"))

	msg := receive(t, conn)
	require.Equal(t, "/money/lock", msg.Address)
	require.Equal(t, []interface{}{"Coin"}, msg.Arguments)
}
