package utils

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/wneessen/go-mail"

	"velora_back_end/internal/models"
)

func smtpClient() (*mail.Client, error) {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port == 0 {
		port = 587
	}
	return mail.NewClient(os.Getenv("SMTP_HOST"),
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
}

func senderAddress() string {
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@velora.shop"
	}
	return from
}

func sendHTML(to, subject, htmlBody string, attachmentName string, attachment []byte) error {
	msg := mail.NewMsg()

	if err := msg.From(senderAddress()); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if attachment != nil {
		msg.AttachReader(attachmentName, bytes.NewReader(attachment))
	}

	client, err := smtpClient()
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// SendWelcomeEmail envoie l'e-mail de bienvenue après inscription.
// Appelé en goroutine : un échec est seulement loggé, jamais remonté.
func SendWelcomeEmail(to, name string) {
	html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Bienvenue chez Velora !</h2>
		<p>Bonjour %s,</p>
		<p>Votre compte a bien été créé. Bon shopping !</p>
		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Velora</strong>
		</p>
	</div>
</body>
</html>`, name)

	if err := sendHTML(to, "Bienvenue chez Velora", html, "", nil); err != nil {
		log.Println("⚠️ Échec envoi e-mail de bienvenue:", err)
	}
}

// SendOrderConfirmationEmail envoie la confirmation de commande avec la
// facture PDF en pièce jointe et un QR de suivi. Appelé en goroutine.
func SendOrderConfirmationEmail(to string, order models.Order) {
	qrBase64, err := GenerateTrackingQR(order.OrderNumber)
	if err != nil {
		log.Println("⚠️ Échec génération QR de suivi:", err)
		qrBase64 = ""
	}

	html := GenerateOrderConfirmationHTML(order, qrBase64)

	pdf, err := GenerateInvoicePDF(order)
	if err != nil {
		// L'e-mail part quand même, sans la facture
		log.Println("⚠️ Échec génération facture PDF:", err)
		pdf = nil
	}

	name := fmt.Sprintf("facture_%s.pdf", order.OrderNumber)
	if err := sendHTML(to, "Confirmation de votre commande "+order.OrderNumber, html, name, pdf); err != nil {
		log.Println("⚠️ Échec envoi e-mail de confirmation:", err)
	}
}

// SendPasswordResetEmail envoie le lien de réinitialisation de mot de passe
func SendPasswordResetEmail(to, resetToken string) {
	frontURL := os.Getenv("FRONTEND_URL")
	if frontURL == "" {
		frontURL = "http://localhost:3000"
	}
	link := fmt.Sprintf("%s/reset-password?token=%s", frontURL, resetToken)

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Réinitialisation de votre mot de passe</h2>
		<p>Cliquez sur le lien ci-dessous pour choisir un nouveau mot de passe (valable 1 heure) :</p>
		<p><a href="%s" style="color: #4f46e5;">Réinitialiser mon mot de passe</a></p>
		<p>Si vous n'êtes pas à l'origine de cette demande, ignorez cet e-mail.</p>
	</div>
</body>
</html>`, link)

	if err := sendHTML(to, "Réinitialisation de votre mot de passe", html, "", nil); err != nil {
		log.Println("⚠️ Échec envoi e-mail de réinitialisation:", err)
	}
}

// SendWishlistEmail partage une liste d'envies par e-mail
func SendWishlistEmail(to, fromName string, products []models.Product) error {
	itemsHTML := ""
	for _, p := range products {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%.2f€</td>
			</tr>`, p.Name, p.Price)
	}

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">%s partage sa liste d'envies avec vous</h2>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<tbody>
				%s
			</tbody>
		</table>
	</div>
</body>
</html>`, fromName, itemsHTML)

	return sendHTML(to, fromName+" partage sa liste d'envies Velora", html, "", nil)
}

// GenerateOrderConfirmationHTML génère le HTML de confirmation de commande
func GenerateOrderConfirmationHTML(order models.Order, qrBase64 string) string {
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding: 10px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%.2f€</td>
				<td style="padding: 10px; border: 1px solid #ddd;">%.2f€</td>
			</tr>`, item.Name, item.Quantity, item.Price, item.Price*float64(item.Quantity))
	}

	qrHTML := ""
	if qrBase64 != "" {
		qrHTML = fmt.Sprintf(`
			<p style="text-align: center;">
				<img src="%s" alt="QR de suivi" width="160" height="160"><br>
				<span style="color: #555;">Scannez pour suivre votre commande</span>
			</p>`, qrBase64)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Confirmation de votre commande %s</h2>
		<p>Bonjour,</p>
		<p>Votre commande a été enregistrée avec succès.</p>

		<h3>Détails de la commande</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Produit</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantité</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Prix unitaire</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right;">Sous-total:</td>
					<td style="padding: 10px;">%.2f€</td>
				</tr>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right;">TVA:</td>
					<td style="padding: 10px;">%.2f€</td>
				</tr>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right;">Livraison:</td>
					<td style="padding: 10px;">%.2f€</td>
				</tr>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">%.2f€</td>
				</tr>
			</tfoot>
		</table>

		%s

		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Velora</strong>
		</p>
	</div>
</body>
</html>`, order.OrderNumber, itemsHTML, order.Subtotal, order.Tax, order.ShippingCost, order.Total, qrHTML)
}
