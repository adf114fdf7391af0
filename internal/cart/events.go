package cart

// Publisher receives cart events. EventBus.Bus satisfies it.
type Publisher interface {
	Publish(topic string, args ...interface{})
}

const (
	EventCartOpened                = "cart.opened"
	EventCartClosed                = "cart.closed"
	EventItemAdded                 = "cart.item_added"
	EventItemRemoved               = "cart.item_removed"
	EventQuantityUpdated           = "cart.quantity_updated"
	EventPrescriptionUploaded      = "cart.prescription_uploaded"
	EventPrescriptionStatusChanged = "cart.prescription_status_changed"
)

// Topics lists every topic a Store publishes on.
var Topics = []string{
	EventCartOpened,
	EventCartClosed,
	EventItemAdded,
	EventItemRemoved,
	EventQuantityUpdated,
	EventPrescriptionUploaded,
	EventPrescriptionStatusChanged,
}

// Event is the single argument published with every topic.
type Event struct {
	Topic  string
	ItemID string
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, ...interface{}) {}
