package domain

// Account is the flattened view of a bank account consumed by the dashboard.
type Account struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Balance     string `json:"balance"`
	Currency    string `json:"currency"`
	IBAN        string `json:"iban"`
	DisplayName string `json:"displayName"`
	Color       string `json:"color"`
}
