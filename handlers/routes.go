package handlers

import (
	"net/http"

	"labquote/config"
	"labquote/documents"
	"labquote/middleware"
	"labquote/models"
	"labquote/services"

	"github.com/gin-gonic/gin"
)

// Deps is everything the HTTP layer calls into.
type Deps struct {
	Auth          *services.AuthService
	Users         *services.UserService
	Customers     *services.CustomerService
	Leads         *services.LeadService
	Consultations *services.ConsultationService
	Catalog       *services.CatalogService
	Quotations    *services.QuotationService
	Contracts     *services.ContractService
	Announcements *services.AnnouncementService
	Dashboard     *services.DashboardService
	Activity      *services.ActivityService
	Email         *services.EmailService
	Renderer      *documents.Renderer
	AuthConfig    config.Auth
}

// RegisterRoutes mounts the public routes and the authenticated /api group.
func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/quotations/verify/:number", VerifyQuotation(d.Quotations))

	api := r.Group("/api")
	api.POST("/login", LoginHandler(d.Auth, d.AuthConfig))
	api.POST("/refresh-token", RefreshTokenHandler(d.Auth, d.AuthConfig))
	api.POST("/validate-session", ValidateSession(d.Auth))

	authed := api.Group("", middleware.Auth(d.Auth))
	authed.POST("/logout", LogoutHandler(d.Auth, d.AuthConfig))
	authed.GET("/me", MeHandler(d.Auth))

	rw := authed.Group("", middleware.ReadOnlyViewers())
	admin := authed.Group("", middleware.RequireRole(models.RoleAdmin))

	// Users
	admin.GET("/users", ListUsers(d.Users))
	admin.POST("/users", CreateUser(d.Users))
	admin.GET("/users/:id", GetUser(d.Users))
	admin.PUT("/users/:id", UpdateUser(d.Users))
	admin.PUT("/users/:id/suspend", SuspendUser(d.Users))

	// Customers
	rw.GET("/customers", ListCustomers(d.Customers))
	rw.POST("/customers", CreateCustomer(d.Customers))
	rw.GET("/customers/:id", GetCustomer(d.Customers))
	rw.PUT("/customers/:id", UpdateCustomer(d.Customers))
	rw.DELETE("/customers/:id", DeleteCustomer(d.Customers))
	rw.GET("/customers/:id/requesters", ListRequesters(d.Customers))
	rw.POST("/customers/:id/requesters", CreateRequester(d.Customers))
	rw.PUT("/customers/:id/requesters/:requester_id", UpdateRequester(d.Customers))
	rw.DELETE("/customers/:id/requesters/:requester_id", DeleteRequester(d.Customers))

	// Leads
	rw.GET("/leads", ListLeads(d.Leads))
	rw.POST("/leads", CreateLead(d.Leads))
	rw.GET("/leads/:id", GetLead(d.Leads))
	rw.PUT("/leads/:id", UpdateLead(d.Leads))
	rw.PUT("/leads/:id/stage", ChangeLeadStage(d.Leads))
	rw.POST("/leads/:id/convert", ConvertLead(d.Leads))
	rw.DELETE("/leads/:id", DeleteLead(d.Leads))

	// Consultations
	rw.GET("/consultations", ListConsultations(d.Consultations))
	rw.POST("/consultations", CreateConsultation(d.Consultations))
	rw.GET("/consultations/:id", GetConsultation(d.Consultations))
	rw.PUT("/consultations/:id", UpdateConsultation(d.Consultations))
	rw.POST("/consultations/:id/follow-up-done", CompleteFollowUp(d.Consultations))
	rw.DELETE("/consultations/:id", DeleteConsultation(d.Consultations))

	// Catalog
	rw.GET("/catalog/toxicity", ListToxicityTests(d.Catalog))
	rw.GET("/catalog/toxicity/:code", GetToxicityTest(d.Catalog))
	rw.GET("/catalog/efficacy", ListEfficacyModels(d.Catalog))
	rw.GET("/catalog/efficacy/:code", GetEfficacyModel(d.Catalog))
	rw.GET("/catalog/clinical-pathology", ListClinicalPathologyTests(d.Catalog))
	rw.GET("/catalog/clinical-pathology/:code", GetClinicalPathologyTest(d.Catalog))
	admin.PUT("/catalog/toxicity", SaveToxicityTest(d.Catalog))
	admin.PUT("/catalog/efficacy", SaveEfficacyModel(d.Catalog))
	admin.PUT("/catalog/clinical-pathology", SaveClinicalPathologyTest(d.Catalog))
	admin.DELETE("/catalog/items/:code", DeleteCatalogItem(d.Catalog))

	// Quotations
	rw.GET("/quotations", ListQuotations(d.Quotations))
	rw.POST("/quotations", CreateQuotation(d.Quotations))
	rw.POST("/quotations/calculate", CalculateQuotation(d.Quotations))
	rw.GET("/quotations/export/xlsx", ExportQuotationsXLSX(d.Quotations, d.Renderer))
	rw.GET("/quotations/:id", GetQuotation(d.Quotations))
	rw.PUT("/quotations/:id", UpdateQuotation(d.Quotations))
	rw.DELETE("/quotations/:id", DeleteQuotation(d.Quotations))
	rw.POST("/quotations/:id/submit", SubmitQuotation(d.Quotations))
	rw.POST("/quotations/:id/revise", ReviseQuotation(d.Quotations))
	rw.POST("/quotations/:id/win", WinQuotation(d.Quotations))
	rw.POST("/quotations/:id/lose", LoseQuotation(d.Quotations))
	rw.POST("/quotations/:id/duplicate", DuplicateQuotation(d.Quotations))
	rw.POST("/quotations/:id/email", SendQuotationEmail(d.Quotations, d.Email))
	rw.GET("/quotations/:id/qr", QuotationQRCode(d.Quotations, d.Renderer))
	rw.GET("/quotations/:id/export/pdf", ExportQuotationPDF(d.Quotations, d.Renderer))
	rw.GET("/quotations/:id/export/docx", ExportQuotationDOCX(d.Quotations, d.Renderer))

	// Contracts
	rw.GET("/contracts", ListContracts(d.Contracts))
	rw.POST("/contracts", CreateContract(d.Contracts))
	rw.GET("/contracts/:id", GetContract(d.Contracts))
	rw.PUT("/contracts/:id", UpdateContract(d.Contracts))
	rw.POST("/contracts/:id/complete", CompleteContract(d.Contracts))
	rw.POST("/contracts/:id/terminate", TerminateContract(d.Contracts))
	rw.GET("/contracts/:id/export/docx", ExportContractDOCX(d.Contracts, d.Renderer))

	// Announcements
	rw.GET("/announcements", ListAnnouncements(d.Announcements))
	rw.GET("/announcements/:id", GetAnnouncement(d.Announcements))
	admin.POST("/announcements", CreateAnnouncement(d.Announcements))
	admin.PUT("/announcements/:id", UpdateAnnouncement(d.Announcements))
	admin.DELETE("/announcements/:id", DeleteAnnouncement(d.Announcements))

	// Email templates
	rw.GET("/email-templates/variables", GetEmailTemplateVariables(d.Email))
	rw.GET("/email-templates/quotation", GetDefaultEmailTemplate())
	rw.POST("/email-templates/preview", PreviewEmailTemplate(d.Quotations, d.Email))

	// Dashboard and audit
	rw.GET("/dashboard", GetDashboard(d.Dashboard))
	rw.GET("/dashboard/urgent", GetUrgentItems(d.Dashboard))
	admin.GET("/activity-logs", GetActivityLogs(d.Activity))
}
