package services

import (
	"context"
	"fmt"
	"net/mail"
	"net/smtp"
	"regexp"
	"strconv"
	"strings"

	"labquote/config"
	"labquote/models"
	"labquote/pricing"

	"golang.org/x/net/html"
	"gorm.io/gorm"
)

// Message is a rendered plain-text email.
type Message struct {
	From    string
	To      []string
	CC      []string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SMTPSender sends through an SMTP relay with PLAIN auth when a username is set.
type SMTPSender struct {
	cfg config.SMTP
}

func NewSMTPSender(cfg config.SMTP) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	rcpt := append(append([]string{}, m.To...), m.CC...)
	addr := s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)
	return smtp.SendMail(addr, auth, m.From, rcpt, buildMessage(m))
}

func buildMessage(m Message) []byte {
	headers := []string{
		"From: " + m.From,
		"To: " + strings.Join(m.To, ", "),
	}
	if len(m.CC) > 0 {
		headers = append(headers, "Cc: "+strings.Join(m.CC, ", "))
	}
	headers = append(headers,
		"Subject: "+m.Subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		m.Body,
	)
	return []byte(strings.Join(headers, "\r\n") + "\r\n")
}

// convertHTMLToText flattens an HTML body into plain text.
func convertHTMLToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6", "table", "tr":
				text.WriteString("\n")
			case "li":
				text.WriteString("\n- ")
			case "td", "th":
				text.WriteString(" | ")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			extract(child)
		}
	}
	extract(doc)

	result := text.String()
	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(result)
}

// DefaultQuotationTemplate is used when a quotation is mailed.
var DefaultQuotationTemplate = models.EmailTemplate{
	Name:         "Quotation",
	TemplateType: "quotation",
	Subject:      "[{{company_name}}] Quotation {{quotation_number}}",
	Body: `<p>Dear {{requester_name}},</p>
<p>Thank you for your interest in our services. Please find the summary of quotation
<b>{{quotation_number}}</b> for {{customer_name}} below.</p>
<table>
<tr><th>Title</th><td>{{quotation_title}}</td></tr>
<tr><th>Grand total (VAT incl.)</th><td>{{grand_total}}</td></tr>
<tr><th>Valid until</th><td>{{valid_until}}</td></tr>
</table>
<p>The full document can be verified at {{view_url}}</p>
<p>{{message}}</p>
<p>Best regards,<br>{{sender_name}} ({{sender_email}})<br>{{company_name}}</p>`,
}

var templateVar = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// EmailService renders templated emails and hands them to a Sender.
type EmailService struct {
	db      *gorm.DB
	sender  Sender
	from    string
	company config.Company
}

func NewEmailService(db *gorm.DB, sender Sender, cfg config.SMTP, company config.Company) *EmailService {
	from := cfg.From
	if cfg.FromName != "" && from != "" {
		from = (&mail.Address{Name: cfg.FromName, Address: cfg.From}).String()
	}
	return &EmailService{db: db, sender: sender, from: from, company: company}
}

// Enabled reports whether a sender is configured.
func (es *EmailService) Enabled() bool {
	return es.sender != nil && es.from != ""
}

func variables(data models.EmailData) map[string]string {
	return map[string]string{
		"email":            data.Email,
		"requester_name":   data.RequesterName,
		"customer_name":    data.CustomerName,
		"quotation_number": data.QuotationNumber,
		"quotation_title":  data.QuotationTitle,
		"grand_total":      data.GrandTotal,
		"valid_until":      data.ValidUntil,
		"sender_name":      data.SenderName,
		"sender_email":     data.SenderEmail,
		"company_name":     data.CompanyName,
		"view_url":         data.ViewURL,
		"message":          data.Message,
	}
}

func processTemplate(templateStr string, data models.EmailData) string {
	vars := variables(data)
	return templateVar.ReplaceAllStringFunc(templateStr, func(m string) string {
		key := strings.TrimSpace(m[2 : len(m)-2])
		if v, ok := vars[key]; ok {
			return v
		}
		return m
	})
}

// ValidateTemplate rejects unbalanced braces and unknown variables.
func (es *EmailService) ValidateTemplate(templateStr string) error {
	if strings.Count(templateStr, "{{") != strings.Count(templateStr, "}}") {
		return validation("unmatched braces in template")
	}
	known := variables(models.EmailData{})
	for _, match := range templateVar.FindAllStringSubmatch(templateStr, -1) {
		name := strings.TrimSpace(match[1])
		if _, ok := known[name]; !ok {
			return validation("unknown variable %q", name)
		}
	}
	return nil
}

// GetAvailableVariables lists the placeholders templates may use.
func (es *EmailService) GetAvailableVariables() []models.EmailTemplateVariable {
	return []models.EmailTemplateVariable{
		{Key: "email", Description: "Recipient email"},
		{Key: "requester_name", Description: "Requester name"},
		{Key: "customer_name", Description: "Customer company name"},
		{Key: "quotation_number", Description: "Quotation number"},
		{Key: "quotation_title", Description: "Quotation title"},
		{Key: "grand_total", Description: "Grand total including VAT"},
		{Key: "valid_until", Description: "Last day the quotation is valid"},
		{Key: "sender_name", Description: "Sales representative name"},
		{Key: "sender_email", Description: "Sales representative email"},
		{Key: "company_name", Description: "Our company name"},
		{Key: "view_url", Description: "Verification link"},
		{Key: "message", Description: "Free text added by the sender"},
	}
}

// PreviewEmailAsText renders a template as the recipient would read it.
func (es *EmailService) PreviewEmailAsText(tmpl models.EmailTemplate, data models.EmailData) (subject, body string, err error) {
	if err := es.ValidateTemplate(tmpl.Subject + tmpl.Body); err != nil {
		return "", "", err
	}
	return processTemplate(tmpl.Subject, data), convertHTMLToText(processTemplate(tmpl.Body, data)), nil
}

// QuotationEmailData fills template variables from a quotation.
func (es *EmailService) QuotationEmailData(q *models.Quotation, from *models.User, to, note string) models.EmailData {
	data := models.EmailData{
		Email:           to,
		QuotationNumber: q.QuotationNumber,
		QuotationTitle:  q.Title,
		GrandTotal:      pricing.FormatKRW(q.GrandTotal),
		ValidUntil:      q.ValidUntil.Format("2006-01-02"),
		CompanyName:     es.company.Name,
		ViewURL:         es.company.QuotationURL(q.QuotationNumber),
		Message:         note,
	}
	if q.Customer != nil {
		data.CustomerName = q.Customer.CompanyName
	}
	if q.Requester != nil {
		data.RequesterName = q.Requester.Name
	} else {
		data.RequesterName = data.CustomerName
	}
	if from != nil {
		data.SenderName = from.Name
		data.SenderEmail = from.Email
	}
	return data
}

// SendQuotation mails a quotation summary to the requester or to req.To.
// Drafts are not sent.
func (es *EmailService) SendQuotation(ctx context.Context, actor Actor, q *models.Quotation, req models.SendQuotationEmailRequest) error {
	if !es.Enabled() {
		return fmt.Errorf("%w: email is not configured", ErrValidation)
	}
	if q.Status == models.QuotationStatusDraft {
		return fmt.Errorf("%w: submit %s before sending it", ErrInvalidTransition, q.QuotationNumber)
	}
	to := strings.TrimSpace(req.To)
	if to == "" && q.Requester != nil {
		to = q.Requester.Email
	}
	if to == "" {
		return validation("no recipient: the quotation has no requester email")
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return validation("invalid recipient %q", to)
	}
	for _, cc := range req.CC {
		if _, err := mail.ParseAddress(cc); err != nil {
			return validation("invalid cc %q", cc)
		}
	}

	var user models.User
	if err := es.db.WithContext(ctx).First(&user, actor.UserID).Error; err != nil {
		return translate(err, "user")
	}
	data := es.QuotationEmailData(q, &user, to, req.Message)
	subject, body, err := es.PreviewEmailAsText(DefaultQuotationTemplate, data)
	if err != nil {
		return err
	}
	msg := Message{
		From:    es.from,
		To:      []string{to},
		CC:      req.CC,
		Subject: subject,
		Body:    body,
	}
	if err := es.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s: %w", q.QuotationNumber, err)
	}
	return record(es.db.WithContext(ctx), actor, EntityQuotation, q.ID, "email", "%s sent to %s", q.QuotationNumber, to)
}
