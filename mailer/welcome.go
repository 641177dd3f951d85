package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

const missingFieldPlaceholder = "-"

var welcomeTemplate = template.Must(template.New("welcome").Parse(`
<div style="font-family: sans-serif; font-size: 15px; color: #111;">
  <h2>Bem-vindo(a) ao {{.ProductName}} 🎯​</h2>
  <p>Oi {{.Name}}, tudo bem?</p>
  <p>Sua compra foi confirmada com sucesso ✅</p>
  <p>Agora você já tem acesso ao painel.</p>
  <p><b>Área de acesso:</b><br/>
    <a href="{{.LoginURL}}" target="_blank">
      {{.LoginURL}}
    </a>
  </p>
  <p>Faça login usando este e-mail: <b>{{.Email}}</b></p>
  <p>Se for seu primeiro acesso, clique em "Esqueci minha senha"
  para definir sua senha nova.</p>

  <hr/>
  <p>Pedido: {{.OrderID}}<br/>
  Checkout: {{.CheckoutURL}}</p>

  <p>Qualquer dúvida, responde este e-mail </p>
</div>
`))

type WelcomeData struct {
	Name        string
	ProductName string
	Email       string
	OrderID     string
	CheckoutURL string
}

// WelcomeComposer renders the fixed access-instruction email for a purchase.
type WelcomeComposer struct {
	FromAddress string
	FromName    string
	LoginURL    string
}

func (c WelcomeComposer) Compose(data WelcomeData) (Message, error) {
	if strings.TrimSpace(c.FromAddress) == "" {
		return Message{}, fmt.Errorf("mailer: sender address is required")
	}
	if strings.TrimSpace(data.Email) == "" {
		return Message{}, fmt.Errorf("mailer: recipient email is required")
	}
	if strings.TrimSpace(data.OrderID) == "" {
		data.OrderID = missingFieldPlaceholder
	}
	if strings.TrimSpace(data.CheckoutURL) == "" {
		data.CheckoutURL = missingFieldPlaceholder
	}

	var body bytes.Buffer
	err := welcomeTemplate.Execute(&body, struct {
		WelcomeData
		LoginURL string
	}{WelcomeData: data, LoginURL: c.LoginURL})
	if err != nil {
		return Message{}, fmt.Errorf("mailer: render welcome email: %w", err)
	}

	return Message{
		From:     strings.TrimSpace(c.FromAddress),
		FromName: strings.TrimSpace(c.FromName),
		To:       strings.TrimSpace(data.Email),
		Subject:  fmt.Sprintf("Seu acesso ao %s está liberado ✨", data.ProductName),
		HTML:     body.String(),
	}, nil
}
