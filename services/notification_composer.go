package services

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"proofok-api/models"
)

type emailMetaItem struct {
	Label string
	Value string
}

// NotificationComposer renders decision events into email messages.
// It performs no I/O; the same inputs always give the same message.
type NotificationComposer struct {
	// ProductName appears in the page title and footer of the HTML body.
	ProductName string
}

// NewNotificationComposer returns a composer with the default branding.
func NewNotificationComposer() *NotificationComposer {
	return &NotificationComposer{ProductName: "ProofOK"}
}

// Compose builds subject, plain-text and HTML forms for ev on rec.
// reviewLink may be empty, in which case the document reference is shown.
func (c *NotificationComposer) Compose(rec *models.Record, ev models.DecisionEvent, reviewLink string) models.MailMessage {
	link := strings.TrimSpace(reviewLink)
	if link == "" {
		link = rec.DocumentRef()
	}
	when := ev.Timestamp.UTC().Format(time.RFC3339)
	decision := string(ev.Decision)

	subject := fmt.Sprintf("[Proof] %s -- %s", rec.OriginalName, strings.ToUpper(decision))

	text := fmt.Sprintf("Proof decision received.\n\n"+
		"File: %s\nLink: %s\nDecision: %s\nName: %s\nEmail: %s\nComment:\n%s\n\n"+
		"Time (UTC): %s\nIP: %s\n",
		rec.OriginalName, link, decision, ev.ReviewerName, ev.ReviewerEmail, ev.Comment,
		when, ev.OriginAddress)

	meta := []emailMetaItem{
		{Label: "File", Value: rec.OriginalName},
		{Label: "Decision", Value: strings.ToUpper(decision)},
		{Label: "Name", Value: ev.ReviewerName},
		{Label: "Email", Value: ev.ReviewerEmail},
		{Label: "Time (UTC)", Value: when},
		{Label: "IP", Value: ev.OriginAddress},
	}

	paragraphs := []string{"A reviewer recorded a decision on this proof."}
	if strings.TrimSpace(ev.Comment) != "" {
		paragraphs = append(paragraphs, "Comment:\n"+ev.Comment)
	}

	html := c.buildEmailTemplate(subject, paragraphs, meta, "Open proof", link)
	return models.MailMessage{Subject: subject, Text: text, HTML: html}
}

// escapeMultiline HTML-escapes s and turns every line break into <br />.
func escapeMultiline(s string) string {
	escaped := template.HTMLEscapeString(strings.TrimSpace(s))
	escaped = strings.ReplaceAll(strings.ReplaceAll(escaped, "\r\n", "\n"), "\r", "\n")
	return strings.ReplaceAll(escaped, "\n", "<br />")
}

func (c *NotificationComposer) buildEmailTemplate(subject string, paragraphs []string, meta []emailMetaItem, buttonText, buttonURL string) string {
	var contentBuilder strings.Builder
	for _, paragraph := range paragraphs {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		contentBuilder.WriteString(`<p style="margin:0 0 18px 0;line-height:1.7;word-break:break-word;">`)
		contentBuilder.WriteString(escapeMultiline(paragraph))
		contentBuilder.WriteString(`</p>`)
	}

	rows := make([]emailMetaItem, 0, len(meta))
	for _, item := range meta {
		label := strings.TrimSpace(item.Label)
		value := strings.TrimSpace(item.Value)
		if label == "" || value == "" {
			continue
		}
		rows = append(rows, emailMetaItem{Label: label, Value: value})
	}

	metaSection := ""
	if len(rows) > 0 {
		var metaBuilder strings.Builder
		metaBuilder.WriteString(`<div style="margin:0 0 24px 0;">
<table role="presentation" cellpadding="0" cellspacing="0" width="100%" style="border:1px solid #e5e7eb;border-radius:12px;background-color:#f9fafb;">
<tbody>`)
		for i, row := range rows {
			border := "border-bottom:1px solid #e5e7eb;"
			if i == len(rows)-1 {
				border = ""
			}
			metaBuilder.WriteString(fmt.Sprintf(`<tr>
<td style="padding:12px 16px;font-size:13px;color:#6b7280;width:38%%;%s">%s</td>
<td style="padding:12px 16px;font-size:15px;color:#111827;font-weight:600;%sword-break:break-word;">%s</td>
</tr>
`, border, template.HTMLEscapeString(row.Label), border, template.HTMLEscapeString(row.Value)))
		}
		metaBuilder.WriteString(`</tbody>
</table>
</div>`)
		metaSection = metaBuilder.String()
	}

	buttonSection := ""
	if strings.TrimSpace(buttonText) != "" && strings.TrimSpace(buttonURL) != "" {
		buttonSection = fmt.Sprintf(`<div style="text-align:center;margin:12px 0 24px 0;">
<a href="%s" style="display:inline-block;padding:12px 28px;background-color:#2563eb;color:#ffffff;text-decoration:none;border-radius:999px;font-weight:600;">%s</a>
<p style="margin:12px 0 0 0;font-size:13px;color:#6b7280;word-break:break-all;">%s</p>
</div>`, template.HTMLEscapeString(buttonURL), template.HTMLEscapeString(buttonText), template.HTMLEscapeString(buttonURL))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body style="margin:0;padding:0;background-color:#f9fafb;font-family:'Segoe UI',Tahoma,Arial,sans-serif;">
<div style="max-width:640px;margin:0 auto;padding:24px 20px;">
<div style="background-color:#ffffff;border:1px solid #e5e7eb;border-radius:12px;padding:24px 24px 28px 24px;">
<h1 style="margin:0;font-size:22px;font-weight:700;color:#111827;line-height:1.35;word-break:break-word;">%s</h1>
<div style="margin-top:20px;color:#1f2937;font-size:16px;line-height:1.75;word-break:break-word;">
%s
</div>
%s
%s
<div style="color:#6b7280;font-size:13px;line-height:1.7;">Sent by %s.</div>
</div>
</div>
</body>
</html>`, template.HTMLEscapeString(subject), template.HTMLEscapeString(subject), contentBuilder.String(), metaSection, buttonSection, template.HTMLEscapeString(c.ProductName))
}
