package models

// EmailTemplate is a subject/body pair with {{variable}} placeholders.
type EmailTemplate struct {
	Name         string   `json:"name" example:"Quotation"`
	Subject      string   `json:"subject" example:"[{{company_name}}] Quotation {{quotation_number}}"`
	Body         string   `json:"body" example:"<p>Dear {{requester_name}},</p>"`
	TemplateType string   `json:"template_type" example:"quotation"`
	CC           []string `json:"cc,omitempty"`
	BCC          []string `json:"bcc,omitempty"`
}

// EmailTemplateVariable represents a single variable in the template
type EmailTemplateVariable struct {
	Key         string `json:"key" example:"quotation_number"`
	Description string `json:"description" example:"Quotation number"`
}

// EmailData represents the data structure for email sending with template variables
type EmailData struct {
	Email           string `json:"email"`
	RequesterName   string `json:"requester_name"`
	CustomerName    string `json:"customer_name"`
	QuotationNumber string `json:"quotation_number"`
	QuotationTitle  string `json:"quotation_title"`
	GrandTotal      string `json:"grand_total"`
	ValidUntil      string `json:"valid_until"`
	SenderName      string `json:"sender_name"`
	SenderEmail     string `json:"sender_email"`
	CompanyName     string `json:"company_name"`
	ViewURL         string `json:"view_url"`
	Message         string `json:"message"`
}

// SendQuotationEmailRequest overrides the recipient and adds a note.
type SendQuotationEmailRequest struct {
	To      string   `json:"to" example:"jiho.lee@hanbit.example"`
	CC      []string `json:"cc"`
	Message string   `json:"message" example:"Please find the updated quotation."`
}
