// Package mqtt defines the broker contract used to announce dispatches.
package mqtt

// Publisher sends payloads to a broker topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// DefaultPrefix roots every topic published by the bridge.
const DefaultPrefix = "gridpulse"

// Topics builds the topic names under a prefix.
type Topics struct{ Prefix string }

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultPrefix
	}
	return t.Prefix
}

// Dispatch is the topic carrying an accepted dispatch command.
func (t Topics) Dispatch(id string) string { return t.prefix() + "/dispatch/" + id }

// Cluster is the topic announcing a cluster activation.
func (t Topics) Cluster(id string) string { return t.prefix() + "/cluster/" + id + "/activate" }

// Revenue is the topic carrying accrual updates of a dispatch.
func (t Topics) Revenue(id string) string { return t.prefix() + "/dispatch/" + id + "/revenue" }

// Price is the topic carrying market price updates.
func (t Topics) Price() string { return t.prefix() + "/price" }

// Status is the retained connection status topic used for the last will.
func (t Topics) Status() string { return t.prefix() + "/status" }
