package domain

// APIResponse is the outer wrapper bunq puts around every payload.
type APIResponse[T any] struct {
	Response   []T         `json:"Response"`
	Pagination *Pagination `json:"Pagination,omitempty"`
}

// Pagination carries the paging links returned with list endpoints. It is decoded but never followed.
type Pagination struct {
	FutureURL string `json:"future_url,omitempty"`
	NewerURL  string `json:"newer_url,omitempty"`
	OlderURL  string `json:"older_url,omitempty"`
}

// Balance is a monetary amount as returned by bunq: a decimal string and an ISO currency code.
type Balance struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// Alias identifies an account by IBAN, email or phone number.
type Alias struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Name  string `json:"name"`
}

// AliasTypeIBAN marks the alias carrying the account IBAN.
const AliasTypeIBAN = "IBAN"

// MonetaryAccountBank is the raw bank account object.
type MonetaryAccountBank struct {
	ID             int64    `json:"id"`
	Created        string   `json:"created,omitempty"`
	Updated        string   `json:"updated,omitempty"`
	Alias          []Alias  `json:"alias,omitempty"`
	Balance        *Balance `json:"balance,omitempty"`
	Country        string   `json:"country,omitempty"`
	Currency       string   `json:"currency,omitempty"`
	DisplayName    string   `json:"display_name,omitempty"`
	DailyLimit     *Balance `json:"daily_limit,omitempty"`
	Description    string   `json:"description,omitempty"`
	PublicUUID     string   `json:"public_uuid,omitempty"`
	Status         string   `json:"status,omitempty"`
	SubStatus      string   `json:"sub_status,omitempty"`
	Timezone       string   `json:"timezone,omitempty"`
	UserID         int64    `json:"user_id,omitempty"`
	OverdraftLimit *Balance `json:"overdraft_limit,omitempty"`
}

// MonetaryAccountEnvelope wraps a bank account inside a list response.
type MonetaryAccountEnvelope struct {
	MonetaryAccountBank *MonetaryAccountBank `json:"MonetaryAccountBank,omitempty"`
}

// CounterpartyAlias names the other side of a payment.
type CounterpartyAlias struct {
	DisplayName string `json:"display_name"`
	IBAN        string `json:"iban,omitempty"`
}

// Payment is the raw payment object.
type Payment struct {
	ID                int64             `json:"id"`
	Amount            Balance           `json:"amount"`
	CounterpartyAlias CounterpartyAlias `json:"counterparty_alias"`
	Description       string            `json:"description"`
	Created           string            `json:"created"`
}

// PaymentEnvelope wraps a payment inside a list response.
type PaymentEnvelope struct {
	Payment *Payment `json:"Payment,omitempty"`
}

// UserPerson is the profile of a natural person owning the API key.
type UserPerson struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
}

// UserCompany is the profile of a business account holder.
type UserCompany struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// UserApiKey is the user behind an API key granted by another bunq user.
type UserApiKey struct {
	ID int64 `json:"id"`
}

// UserEnvelope wraps a user inside the GET /user response. Exactly one field is set.
type UserEnvelope struct {
	UserPerson  *UserPerson  `json:"UserPerson,omitempty"`
	UserCompany *UserCompany `json:"UserCompany,omitempty"`
	UserApiKey  *UserApiKey  `json:"UserApiKey,omitempty"`
}

// Token is the credential object returned by installation and session-server.
type Token struct {
	ID      int64  `json:"id"`
	Created string `json:"created,omitempty"`
	Token   string `json:"token"`
}

// TokenEnvelope is one element of a handshake response; only one of the fields is set per element.
type TokenEnvelope struct {
	Token       *Token       `json:"Token,omitempty"`
	UserPerson  *UserPerson  `json:"UserPerson,omitempty"`
	UserCompany *UserCompany `json:"UserCompany,omitempty"`
	UserApiKey  *UserApiKey  `json:"UserApiKey,omitempty"`
}

// User returns the user variant carried by a session-server element.
func (e TokenEnvelope) User() UserEnvelope {
	return UserEnvelope{UserPerson: e.UserPerson, UserCompany: e.UserCompany, UserApiKey: e.UserApiKey}
}
