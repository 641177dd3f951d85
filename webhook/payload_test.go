package webhook

import (
	"encoding/json"
	"testing"
)

func TestPayload_DecodesNumericOrderID(t *testing.T) {
	var payload Payload
	body := `{"event":"purchase_approved","data":{"id":184230,"customer":{"email":"a@b.com"}}}`
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("decode payload with numeric id: %v", err)
	}
	if payload.Data.ID != "184230" {
		t.Fatalf("expected numeric id carried as string, got %q", payload.Data.ID)
	}
}

func TestPayload_DecodesStringOrderID(t *testing.T) {
	var payload Payload
	if err := json.Unmarshal([]byte(`{"data":{"id":"O1"}}`), &payload); err != nil {
		t.Fatalf("decode payload with string id: %v", err)
	}
	if payload.Data.ID != "O1" {
		t.Fatalf("expected string id preserved, got %q", payload.Data.ID)
	}
}

func TestPayload_RejectsStructuredOrderID(t *testing.T) {
	var payload Payload
	if err := json.Unmarshal([]byte(`{"data":{"id":{"value":1}}}`), &payload); err == nil {
		t.Fatalf("expected structured id to fail decoding")
	}
}

func TestPayload_TreatsNullOrderIDAsEmpty(t *testing.T) {
	var payload Payload
	if err := json.Unmarshal([]byte(`{"data":{"id":null}}`), &payload); err != nil {
		t.Fatalf("decode payload with null id: %v", err)
	}
	if payload.Data.ID != "" {
		t.Fatalf("expected empty id for null, got %q", payload.Data.ID)
	}
}

func TestExtractPurchase_AppliesDefaults(t *testing.T) {
	purchase := ExtractPurchase(PurchaseData{
		Customer: Customer{Email: "a@b.com"},
	})
	if purchase.Name != "aluno(a)" {
		t.Fatalf("expected default customer name, got %q", purchase.Name)
	}
	if purchase.ProductName != "Seu Acesso" {
		t.Fatalf("expected default product name, got %q", purchase.ProductName)
	}
	if purchase.OrderID != "" || purchase.CheckoutURL != "" {
		t.Fatalf("expected optional fields empty, got %+v", purchase)
	}
}

func TestExtractPurchase_FallsBackToOfferName(t *testing.T) {
	purchase := ExtractPurchase(PurchaseData{
		Customer: Customer{Email: "a@b.com", Name: "Ana"},
		Offer:    Offer{Name: "Oferta Y"},
	})
	if purchase.ProductName != "Oferta Y" {
		t.Fatalf("expected offer name fallback, got %q", purchase.ProductName)
	}
}

func TestExtractPurchase_PrefersProductName(t *testing.T) {
	purchase := ExtractPurchase(PurchaseData{
		ID:          "O1",
		CheckoutURL: "http://x",
		Customer:    Customer{Email: " a@b.com ", Name: "Ana"},
		Product:     Product{Name: "Curso X"},
		Offer:       Offer{Name: "Oferta Y"},
	})
	if purchase.ProductName != "Curso X" {
		t.Fatalf("expected product name to win over offer, got %q", purchase.ProductName)
	}
	if purchase.Email != "a@b.com" {
		t.Fatalf("expected trimmed email, got %q", purchase.Email)
	}
	if purchase.OrderID != "O1" || purchase.CheckoutURL != "http://x" {
		t.Fatalf("expected order fields carried through, got %+v", purchase)
	}
}

func TestSecretVerifier_RequiresExactMatch(t *testing.T) {
	verifier := SecretVerifier{Secret: "S"}
	if err := verifier.Verify(nil, "S"); err != nil {
		t.Fatalf("expected matching secret to verify: %v", err)
	}
	if err := verifier.Verify(nil, "s"); err == nil {
		t.Fatalf("expected case-different secret to fail")
	}
	if err := verifier.Verify(nil, ""); err == nil {
		t.Fatalf("expected empty secret to fail")
	}
}

func TestSecretVerifier_TrimsOnlyConfiguredSide(t *testing.T) {
	verifier := SecretVerifier{Secret: " S \n"}
	if err := verifier.Verify(nil, "S"); err != nil {
		t.Fatalf("expected padded configuration to still verify: %v", err)
	}
	if err := verifier.Verify(nil, " S "); err == nil {
		t.Fatalf("expected padded received value to fail")
	}
}

func TestSecretVerifier_RejectsWhenUnconfigured(t *testing.T) {
	verifier := SecretVerifier{}
	if err := verifier.Verify(nil, ""); err == nil {
		t.Fatalf("expected unconfigured verifier to reject everything")
	}
}
