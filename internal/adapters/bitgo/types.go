package bitgo

import "fmt"

// Address is a wallet receive address
type Address struct {
	ID      string `json:"id"`
	Address string `json:"address"`
	Chain   int    `json:"chain"`
	Coin    string `json:"coin"`
	Wallet  string `json:"wallet"`
	Label   string `json:"label,omitempty"`
}

// ErrorResponse is a BitGo API error payload
type ErrorResponse struct {
	Message    string `json:"error"`
	Name       string `json:"name"`
	RequestID  string `json:"requestId"`
	StatusCode int    `json:"-"`
}

// Error implements the error interface
func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("bitgo API error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether the transfer or wallet does not exist
func (e *ErrorResponse) IsNotFound() bool {
	return e.StatusCode == 404
}
