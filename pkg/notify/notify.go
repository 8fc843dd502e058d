package notify

import (
	"fmt"

	"github.com/chenBenjamin97/money-lockon/pkg/utils"
	"github.com/cyclopcam/logs"
	"github.com/hypebeast/go-osc/osc"
)

//Notifier tells the downstream renderer which class the live loop locked on.
//Messages go over UDP: there is no acknowledgement and nothing is retried.
type Notifier struct {
	log     logs.Log
	client  *osc.Client
	address string
}

//NewNotifier returns a notifier sending to host:port. An empty address falls back to "/trigger".
func NewNotifier(log logs.Log, host string, port int, address string) *Notifier {
	if address == "" {
		address = utils.TriggerAddress
	}
	return &Notifier{
		log:     log,
		client:  osc.NewClient(host, port),
		address: address,
	}
}

//Notify sends one message carrying label as its only argument
func (n *Notifier) Notify(label string) error {
	msg := osc.NewMessage(n.address)
	msg.Append(label)
	if err := n.client.Send(msg); err != nil {
		return fmt.Errorf("Notify: Could not send '%s %s' to %s:%d, got '%w'", n.address, label, n.client.IP(), n.client.Port(), err)
	}
	n.log.Debugf("Notify: sent '%s %s' to %s:%d", n.address, label, n.client.IP(), n.client.Port())
	return nil
}
