package mailer

import "fmt"

// Email is a fully-prepared message ready for delivery.
type Email struct {
	Subject string
	HTML    string
	Text    string
	From    string
	ReplyTo string
	To      []string
}

// Recipient formats a name and address into RFC 5322 form.
// Returns "Name <email>" when a name is given, otherwise just the address.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
