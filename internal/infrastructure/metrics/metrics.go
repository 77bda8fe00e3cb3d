package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UnreadBadge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gogotalk_unread_badge_total",
		Help: "Current sum of the unread ledger.",
	})

	UnreadIncrements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gogotalk_unread_increments_total",
		Help: "Foreign messages detected by the chat list reconciler.",
	})

	ChatSnapshots = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gogotalk_chat_list_snapshots_total",
		Help: "Chat list snapshots applied.",
	})

	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gogotalk_messages_sent_total",
		Help: "Outgoing messages by kind and result.",
	}, []string{"kind", "result"})

	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gogotalk_image_uploads_total",
		Help: "Image uploads by result.",
	}, []string{"result"})

	LocalStorageErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gogotalk_local_storage_errors_total",
		Help: "Failed reads or writes of the device-local store.",
	})
)
