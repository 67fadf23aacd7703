package errx

// HTTPErrorResponse is the JSON body written for every failed request.
// Message is always the registered, caller-safe text. Error and Code
// carry the diagnostic cause when one was recorded.
type HTTPErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// ToHTTPResponse converts an Error to an HTTPErrorResponse
func (e *Error) ToHTTPResponse() HTTPErrorResponse {
	return HTTPErrorResponse{
		Message: e.Message,
		Error:   e.DetailString(DetailCause),
		Code:    e.DetailString(DetailCauseCode),
	}
}
