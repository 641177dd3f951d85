package webhook

import (
	"encoding/json"
	"fmt"
	"strings"
)

const EventPurchaseApproved = "purchase_approved"

const (
	defaultCustomerName = "aluno(a)"
	defaultProductName  = "Seu Acesso"
)

type Customer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Product struct {
	Name string `json:"name"`
}

type Offer struct {
	Name string `json:"name"`
}

// OrderID is a purchase identifier. Cakto sends it as either a JSON string
// or a bare number; both decode into the string form.
type OrderID string

func (id *OrderID) UnmarshalJSON(data []byte) error {
	value := strings.TrimSpace(string(data))
	switch {
	case value == "" || value == "null":
		*id = ""
		return nil
	case strings.HasPrefix(value, `"`):
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("webhook: decode order id: %w", err)
		}
		*id = OrderID(text)
		return nil
	default:
		var number json.Number
		if err := json.Unmarshal(data, &number); err != nil {
			return fmt.Errorf("webhook: order id must be a string or number: %w", err)
		}
		*id = OrderID(number.String())
		return nil
	}
}

type PurchaseData struct {
	ID          OrderID  `json:"id"`
	CheckoutURL string   `json:"checkoutUrl"`
	Customer    Customer `json:"customer"`
	Product     Product  `json:"product"`
	Offer       Offer    `json:"offer"`
}

// Payload is the untrusted request body Cakto posts to the endpoint.
type Payload struct {
	Secret string       `json:"secret"`
	Event  string       `json:"event"`
	Data   PurchaseData `json:"data"`
}

// Purchase holds the fields extracted from a payload, with defaults applied.
// Email is the only field callers must check before proceeding.
type Purchase struct {
	Email       string
	Name        string
	ProductName string
	OrderID     string
	CheckoutURL string
}

func ExtractPurchase(data PurchaseData) Purchase {
	name := strings.TrimSpace(data.Customer.Name)
	if name == "" {
		name = defaultCustomerName
	}
	productName := strings.TrimSpace(data.Product.Name)
	if productName == "" {
		productName = strings.TrimSpace(data.Offer.Name)
	}
	if productName == "" {
		productName = defaultProductName
	}
	return Purchase{
		Email:       strings.TrimSpace(data.Customer.Email),
		Name:        name,
		ProductName: productName,
		OrderID:     strings.TrimSpace(string(data.ID)),
		CheckoutURL: strings.TrimSpace(data.CheckoutURL),
	}
}
