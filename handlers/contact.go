// fotohub/handlers/contact.go
package handlers

import (
	"fmt"
	"net/http"
	"net/mail"
	"strings"
)

// HandleContact accepts a contact form submission. Two mails go out: the
// message itself to the site address, and an acknowledgement to the
// sender. Delivery is fire-and-forget; failures are logged, not surfaced.
func HandleContact(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleContact")

	name := strings.TrimSpace(r.FormValue("name"))
	from := strings.TrimSpace(r.FormValue("email"))
	message := strings.TrimSpace(r.FormValue("message"))
	if name == "" || from == "" || message == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Name, email and message are required."}, app)
		return
	}
	if _, err := mail.ParseAddress(from); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid email address."}, app)
		return
	}

	go func() {
		body := fmt.Sprintf("From: %s <%s>\n\n%s\n", name, from, message)
		if err := app.Mailer().Send("Contact form message", body, app.FromAddress(), []string{app.FromAddress()}); err != nil {
			app.Logger().Error("Failed to deliver contact message", "error", err)
		}
		ack := fmt.Sprintf("Hi %s,\n\nThanks for getting in touch. We received your message and will reply soon.\n", name)
		if err := app.Mailer().Send("We received your message", ack, app.FromAddress(), []string{from}); err != nil {
			app.Logger().Error("Failed to send contact acknowledgement", "error", err)
		}
	}()

	logger.Info("Contact message received", "name", name)
	respondJSON(w, http.StatusOK, map[string]string{"status": "Message sent."}, app)
}
