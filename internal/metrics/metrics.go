package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConfirmationsTotal counts successful slot confirmations by family and source.
	ConfirmationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "presence_confirmations_total",
		Help: "Number of confirmed slot assignments",
	}, []string{"list_type", "source"})

	// CancellationsTotal counts successful cancellations by family.
	CancellationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "presence_cancellations_total",
		Help: "Number of cancelled slot assignments",
	}, []string{"list_type"})

	// ListsSealedTotal counts lists that filled and advanced to a successor.
	ListsSealedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "presence_lists_sealed_total",
		Help: "Number of daily lists sealed at capacity",
	}, []string{"list_type"})

	// ListsReopenedTotal counts full lists reopened by a cancellation.
	ListsReopenedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "presence_lists_reopened_total",
		Help: "Number of full daily lists reopened by a cancellation",
	}, []string{"list_type"})

	// WhatsAppMessagesTotal counts gateway messages by direction and outcome.
	WhatsAppMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whatsapp_messages_total",
		Help: "Number of WhatsApp messages handled by the gateway",
	}, []string{"direction", "status"})
)
