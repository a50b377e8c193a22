// Package mailer delivers transactional email rendered from markdown
// templates with YAML frontmatter.
//
// Templates are embedded in the package and converted to HTML with
// goldmark; the processed markdown doubles as the plain-text part. The
// Sender interface abstracts the delivery provider: the resend
// subpackage ships a Resend-backed implementation, and LogSender writes
// messages to a structured logger for local development.
//
// Typical wiring:
//
//	sender := mailer.NewLogSender(log)
//	m := mailer.New(sender, mailer.Config{FromEmail: "no-reply@example.com"})
//	err := m.SendCode(ctx, "user@example.com", "482913", 5*time.Minute)
package mailer
