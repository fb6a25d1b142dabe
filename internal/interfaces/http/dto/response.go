package dto

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// SyncOrdersResponse is the body of a completed synchronous order sync
type SyncOrdersResponse struct {
	Success  bool `json:"success"`
	Imported int  `json:"imported"`
	Updated  int  `json:"updated"`
	Total    int  `json:"total"`
}

// SyncFailureResponse is the body returned when an order sync fails
type SyncFailureResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// ShipmentRequest is the body for pushing a shipment to the marketplace
type ShipmentRequest struct {
	OrderID         string `json:"orderId" binding:"required"`
	TransporterCode string `json:"transporterCode" binding:"required"`
	TrackAndTrace   string `json:"trackAndTrace"`
}

// ReturnHandlingRequest is the body for settling a marketplace return
type ReturnHandlingRequest struct {
	HandlingResult   string `json:"handlingResult" binding:"required"`
	QuantityReturned int    `json:"quantityReturned" binding:"required,min=1"`
}

// HealthResponse is the liveness probe body
type HealthResponse struct {
	Status string `json:"status"`
}
