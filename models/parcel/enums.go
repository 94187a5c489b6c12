package parcel

type DeliveryStatus string

const (
	DeliveryStatusPending                DeliveryStatus = "pending"
	DeliveryStatusRiderAssigned          DeliveryStatus = "rider_assigned"
	DeliveryStatusInTransit              DeliveryStatus = "in_transit"
	DeliveryStatusDelivered              DeliveryStatus = "delivered"
	DeliveryStatusServiceCenterDelivered DeliveryStatus = "service_center_delivered"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

type CashoutStatus string

const (
	CashoutStatusPending   CashoutStatus = "pending"
	CashoutStatusCashedOut CashoutStatus = "cashed_out"
)

func (ds DeliveryStatus) String() string {
	return string(ds)
}

func (ds DeliveryStatus) IsValid() bool {
	switch ds {
	case DeliveryStatusPending, DeliveryStatusRiderAssigned, DeliveryStatusInTransit,
		DeliveryStatusDelivered, DeliveryStatusServiceCenterDelivered:
		return true
	default:
		return false
	}
}

// IsCompleted returns true if the parcel reached a terminal state.
func (ds DeliveryStatus) IsCompleted() bool {
	return ds == DeliveryStatusDelivered || ds == DeliveryStatusServiceCenterDelivered
}

// CanTransitionTo enforces the forward-only delivery lifecycle:
// pending -> rider_assigned -> in_transit -> delivered | service_center_delivered.
func (ds DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	switch ds {
	case DeliveryStatusPending:
		return next == DeliveryStatusRiderAssigned
	case DeliveryStatusRiderAssigned:
		return next == DeliveryStatusInTransit
	case DeliveryStatusInTransit:
		return next == DeliveryStatusDelivered || next == DeliveryStatusServiceCenterDelivered
	default:
		return false
	}
}
