package models

// MailMessage is a composed notification ready for an outbound channel.
type MailMessage struct {
	Subject string
	Text    string
	HTML    string
}
