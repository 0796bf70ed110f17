package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(messagesTotal, repliesTotal) }

var messagesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bot_messages_total",
		Help: "Inbound messages by kind and classified intent.",
	},
	[]string{"kind", "intent"},
)

var repliesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bot_replies_total",
		Help: "Outbound replies by reply kind.",
	},
	[]string{"kind"},
)

func IncMessage(kind, intent string) {
	messagesTotal.WithLabelValues(norm(kind), norm(intent)).Inc()
}

func IncReply(kind string) {
	repliesTotal.WithLabelValues(norm(kind)).Inc()
}
