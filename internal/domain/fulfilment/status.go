package fulfilment

// Status is the internal fulfilment-stage of an order.
type Status string

const (
	// StatusOpen indicates a newly imported order awaiting processing
	StatusOpen Status = "open"
	// StatusInTransitToFulfilment indicates goods announced to the warehouse
	StatusInTransitToFulfilment Status = "in-transit-to-fulfilment"
	// StatusArrivedAtFulfilment indicates goods arrived at the warehouse
	StatusArrivedAtFulfilment Status = "arrived-at-fulfilment"
	// StatusShipped indicates the order left the warehouse
	StatusShipped Status = "shipped"
	// StatusDelivered indicates the carrier confirmed delivery
	StatusDelivered Status = "delivered"
	// StatusCancelled indicates the order was cancelled
	StatusCancelled Status = "cancelled"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is a known fulfilment stage
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInTransitToFulfilment, StatusArrivedAtFulfilment,
		StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// StatusFromFulfilment translates a marketplace fulfilment-status value to
// the internal Status. The function is total: unknown or empty input maps
// to StatusOpen so reconciliation never fails on a vocabulary change.
func StatusFromFulfilment(marketplaceStatus string) Status {
	switch marketplaceStatus {
	case "OPEN", "NEW":
		return StatusOpen
	case "ANNOUNCED":
		return StatusInTransitToFulfilment
	case "ARRIVED_AT_WH":
		return StatusArrivedAtFulfilment
	case "SHIPPED":
		return StatusShipped
	case "DELIVERED":
		return StatusDelivered
	case "CANCELLED":
		return StatusCancelled
	default:
		return StatusOpen
	}
}

// MarketplaceLabelFromFulfilment translates a marketplace fulfilment-status
// value to the marketplace-native label stored on the order's second status
// axis. Total like StatusFromFulfilment; unknown input maps to "openstaand".
func MarketplaceLabelFromFulfilment(marketplaceStatus string) string {
	switch marketplaceStatus {
	case "OPEN", "NEW":
		return "openstaand"
	case "ANNOUNCED":
		return "onderweg"
	case "ARRIVED_AT_WH":
		return "aangekomen"
	case "SHIPPED":
		return "verzonden"
	case "DELIVERED":
		return "afgeleverd"
	case "CANCELLED":
		return "geannuleerd"
	default:
		return "openstaand"
	}
}
