package mailer

import (
	"fmt"
	"strings"
)

// The storefront emails are plain text, Spanish, and deliberately short.

// VerificationEmail returns the subject and body for a registration code.
func VerificationEmail(name, code string) (string, string) {
	subject := "Tu código de verificación - Talabartería Rodríguez"
	body := fmt.Sprintf(
		"Hola %s,\n\nTu código de verificación es: %s\n\nEl código expira en 24 horas. Si no solicitaste esta cuenta, ignora este correo.\n\nTalabartería Rodríguez",
		name, code,
	)
	return subject, body
}

// PasswordResetEmail returns the subject and body for a reset link.
func PasswordResetEmail(name, resetURL string) (string, string) {
	subject := "Restablece tu contraseña - Talabartería Rodríguez"
	body := fmt.Sprintf(
		"Hola %s,\n\nRecibimos una solicitud para restablecer tu contraseña. Entra al siguiente enlace para elegir una nueva:\n\n%s\n\nEl enlace expira en 24 horas. Si no solicitaste el cambio, ignora este correo.\n\nTalabartería Rodríguez",
		name, resetURL,
	)
	return subject, body
}

// OrderConfirmationLine is one product row in the confirmation email.
type OrderConfirmationLine struct {
	Name     string
	Quantity int
	Subtotal string
}

// OrderConfirmationEmail returns the subject and body for a placed order.
func OrderConfirmationEmail(name string, orderID int64, lines []OrderConfirmationLine, total string) (string, string) {
	subject := fmt.Sprintf("Confirmación de pedido #%d - Talabartería Rodríguez", orderID)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hola %s,\n\nGracias por tu compra. Tu pedido #%d quedó registrado:\n\n", name, orderID)
	for _, line := range lines {
		fmt.Fprintf(&sb, "  %d x %s = $%s\n", line.Quantity, line.Name, line.Subtotal)
	}
	fmt.Fprintf(&sb, "\nTotal: $%s\n\nTe avisaremos cuando tu pedido sea enviado.\n\nTalabartería Rodríguez", total)
	return subject, sb.String()
}
