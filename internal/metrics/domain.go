package metrics

import (
	"fmt"

	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/cart"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	CheckoutPlaced  = "placed"
	CheckoutBlocked = "blocked"
	CheckoutEmpty   = "empty"
)

var (
	cartEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_events_total",
			Help: "Cart events published, by topic.",
		},
		[]string{"topic"},
	)

	checkoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_attempts_total",
			Help: "Checkout attempts, by outcome.",
		},
		[]string{"outcome"},
	)
)

func RecordCheckout(outcome string) {
	checkoutsTotal.WithLabelValues(outcome).Inc()
}

type subscriber interface {
	Subscribe(topic string, fn interface{}) error
}

// SubscribeCartEvents counts every cart event published on bus.
func SubscribeCartEvents(bus subscriber) error {
	for _, topic := range cart.Topics {
		if err := bus.Subscribe(topic, countCartEvent); err != nil {
			return fmt.Errorf("subscribe to %s: %w", topic, err)
		}
	}

	return nil
}

func countCartEvent(ev cart.Event) {
	cartEventsTotal.WithLabelValues(ev.Topic).Inc()
}
