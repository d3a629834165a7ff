package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"bitbucket.org/nordsaldo/bokforing_backend/bankgiro"
	"bitbucket.org/nordsaldo/bokforing_backend/config"
	"bitbucket.org/nordsaldo/bokforing_backend/middlewares"
	"bitbucket.org/nordsaldo/bokforing_backend/models"
	"bitbucket.org/nordsaldo/bokforing_backend/models/reports"
	"bitbucket.org/nordsaldo/bokforing_backend/skatteverket"
	"bitbucket.org/nordsaldo/bokforing_backend/utils"
	"bitbucket.org/nordsaldo/bokforing_backend/workflow"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const defaultPort = "8080"

func respondData(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

// bindJSON binds the request body, converting validator errors into
// per-field messages.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "validation failed",
				"fields":  utils.ProcessValidationErrors(err),
			})
		} else {
			respondError(c, http.StatusBadRequest, err)
		}
		return false
	}
	return true
}

func paramId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, errors.New("invalid id"))
		return 0, false
	}
	return id, true
}

func queryLimit(c *gin.Context) *int {
	limit := config.SearchLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	return &limit
}

func queryCursor(c *gin.Context) *string {
	after := c.Query("after")
	if after == "" {
		return nil
	}
	return &after
}

func queryDate(c *gin.Context, name string) (time.Time, error) {
	v := c.Query(name)
	if v == "" {
		return time.Time{}, errors.New(name + " is required")
	}
	return time.Parse("2006-01-02", v)
}

// writeActionError maps model-layer failures onto HTTP statuses; everything
// the user can correct stays a 400. Rejections are logged with the request's
// correlation id and acting user so they can be traced across services.
func writeActionError(c *gin.Context, err error) {
	if errors.Is(err, utils.ErrorRecordNotFound) {
		respondError(c, http.StatusNotFound, err)
		return
	}
	ctx := c.Request.Context()
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	email, _ := utils.GetEmailFromContext(ctx)
	config.LogError(config.GetLogger(), "server.go", c.FullPath(), correlationId, email, err)
	respondError(c, http.StatusBadRequest, err)
}

func sendFile(c *gin.Context, name string, contentType string, content []byte) {
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Data(http.StatusOK, contentType, content)
}

func registerHandler(c *gin.Context) {
	var input models.NewUser
	if !bindJSON(c, &input) {
		return
	}
	user, err := models.Register(c.Request.Context(), &input)
	if err != nil {
		writeActionError(c, err)
		return
	}
	if _, err := models.SeedAccountsForUser(c.Request.Context(), user.ID); err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, user)
}

func loginHandler(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}
	payload, err := models.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, http.StatusUnauthorized, err)
		return
	}
	respondData(c, payload)
}

func getProfileHandler(c *gin.Context) {
	user, err := models.GetUserProfile(c.Request.Context())
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, user)
}

func updateProfileHandler(c *gin.Context) {
	var input models.UpdateUserProfileInput
	if !bindJSON(c, &input) {
		return
	}
	user, err := models.UpdateUserProfile(c.Request.Context(), &input)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, user)
}

func createCustomerHandler(c *gin.Context) {
	var input models.NewCustomer
	if !bindJSON(c, &input) {
		return
	}
	customer, err := models.CreateCustomer(c.Request.Context(), &input)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, customer)
}

func updateCustomerHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	var input models.NewCustomer
	if !bindJSON(c, &input) {
		return
	}
	customer, err := models.UpdateCustomer(c.Request.Context(), id, &input)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, customer)
}

func deleteCustomerHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	customer, err := models.DeleteCustomer(c.Request.Context(), id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, customer)
}

func getCustomerHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	customer, err := models.GetCustomer(c.Request.Context(), id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, customer)
}

func paginateCustomersHandler(c *gin.Context) {
	name := c.Query("name")
	connection, err := models.PaginateCustomers(c.Request.Context(), queryLimit(c), queryCursor(c), &name)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, connection)
}

func createSupplierHandler(c *gin.Context) {
	var input models.NewSupplier
	if !bindJSON(c, &input) {
		return
	}
	supplier, err := models.CreateSupplier(c.Request.Context(), &input)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, supplier)
}

func updateSupplierHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	var input models.NewSupplier
	if !bindJSON(c, &input) {
		return
	}
	supplier, err := models.UpdateSupplier(c.Request.Context(), id, &input)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, supplier)
}

func deleteSupplierHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	supplier, err := models.DeleteSupplier(c.Request.Context(), id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, supplier)
}

func getSupplierHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	supplier, err := models.GetSupplier(c.Request.Context(), id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, supplier)
}

func paginateSuppliersHandler(c *gin.Context) {
	name := c.Query("name")
	connection, err := models.PaginateSuppliers(c.Request.Context(), queryLimit(c), queryCursor(c), &name)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, connection)
}

func createEmployeeHandler(c *gin.Context) {
	var input models.NewEmployee
	if !bindJSON(c, &input) {
		return
	}
	employee, err := models.CreateEmployee(c.Request.Context(), &input)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, employee)
}

func updateEmployeeHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	var input models.NewEmployee
	if !bindJSON(c, &input) {
		return
	}
	employee, err := models.UpdateEmployee(c.Request.Context(), id, &input)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, employee)
}

func deleteEmployeeHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	employee, err := models.DeleteEmployee(c.Request.Context(), id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, employee)
}

func getEmployeeHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	employee, err := models.GetEmployee(c.Request.Context(), id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, employee)
}

func paginateEmployeesHandler(c *gin.Context) {
	name := c.Query("name")
	connection, err := models.PaginateEmployees(c.Request.Context(), queryLimit(c), queryCursor(c), &name)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, connection)
}

func employeeVacationRecordsHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	records, err := models.FetchVacationRecords(c.Request.Context(), id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, records)
}

func employeeVacationBalanceHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	balance, err := models.GetVacationBalance(c.Request.Context(), id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, balance)
}

func createVacationRecordHandler(c *gin.Context) {
	var input models.NewVacationRecord
	if !bindJSON(c, &input) {
		return
	}
	record, err := models.CreateVacationRecord(c.Request.Context(), &input)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, record)
}

func deleteVacationRecordHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	record, err := models.DeleteVacationRecord(c.Request.Context(), id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, record)
}

func vacationRolloverHandler(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 {
		respondError(c, http.StatusBadRequest, errors.New("invalid year"))
		return
	}
	rolled, err := models.RolloverVacationYear(c.Request.Context(), year)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, gin.H{"employees_rolled": rolled})
}

func createInvoiceHandler(c *gin.Context) {
	var input models.NewInvoice
	if !bindJSON(c, &input) {
		return
	}
	invoice, err := models.CreateInvoice(c.Request.Context(), &input)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, invoice)
}

func updateInvoiceHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	var input models.NewInvoice
	if !bindJSON(c, &input) {
		return
	}
	invoice, err := models.UpdateInvoice(c.Request.Context(), id, &input)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, invoice)
}

func deleteInvoiceHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	invoice, err := models.DeleteInvoice(c.Request.Context(), id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, invoice)
}

func getInvoiceHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	invoice, err := models.GetInvoice(c.Request.Context(), id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, invoice)
}

func paginateInvoicesHandler(c *gin.Context) {
	var customerId *int
	if v := c.Query("customer_id"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			customerId = &n
		}
	}
	paymentStatus := models.InvoicePaymentStatus(c.Query("payment_status"))
	bookedStatus := models.InvoiceBookedStatus(c.Query("booked_status"))
	connection, err := models.PaginateInvoices(c.Request.Context(), queryLimit(c), queryCursor(c), customerId, &paymentStatus, &bookedStatus)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, connection)
}

func bookInvoiceHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	invoice, err := workflow.BookInvoice(c.Request.Context(), id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, invoice)
}

func registerInvoicePaymentHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	var input workflow.NewInvoicePayment
	if !bindJSON(c, &input) {
		return
	}
	invoice, err := workflow.RegisterInvoicePayment(c.Request.Context(), id, &input)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, invoice)
}

func husFileHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	paymentDate, err := queryDate(c, "payment_date")
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	invoice, err := models.GetInvoice(c.Request.Context(), id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	// the stored designation can be overridden per request
	if pd := c.Query("property_designation"); pd != "" {
		invoice.PropertyDesignation = pd
	}
	file, err := skatteverket.GenerateHusFile(invoice, invoice.Customer, paymentDate)
	if err != nil {
		writeActionError(c, err)
		return
	}
	sendFile(c, file.Name, "application/xml", file.Content)
}

func createLedgerTransactionHandler(c *gin.Context) {
	var input models.NewLedgerTransaction
	if !bindJSON(c, &input) {
		return
	}
	transaction, err := models.CreateLedgerTransaction(c.Request.Context(), &input)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, transaction)
}

func deleteLedgerTransactionHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	transaction, err := models.DeleteLedgerTransaction(c.Request.Context(), id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, transaction)
}

func getLedgerTransactionHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	transaction, err := models.GetLedgerTransaction(c.Request.Context(), id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, transaction)
}

func paginateLedgerTransactionsHandler(c *gin.Context) {
	var fromDate, toDate *time.Time
	if from, err := queryDate(c, "from"); err == nil {
		if to, err := queryDate(c, "to"); err == nil {
			fromDate, toDate = &from, &to
		}
	}
	connection, err := models.PaginateLedgerTransactions(c.Request.Context(), queryLimit(c), queryCursor(c), fromDate, toDate)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, connection)
}

func fetchAccountsHandler(c *gin.Context) {
	accounts, err := models.FetchAccounts(c.Request.Context())
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, accounts)
}

func seedAccountsHandler(c *gin.Context) {
	userId, ok := utils.GetUserIdFromContext(c.Request.Context())
	if !ok {
		respondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}
	created, err := models.SeedAccountsForUser(c.Request.Context(), userId)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, gin.H{"accounts_created": created})
}

func createPayrollRunHandler(c *gin.Context) {
	var input models.NewPayrollRun
	if !bindJSON(c, &input) {
		return
	}
	run, err := models.CreatePayrollRun(c.Request.Context(), &input)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, run)
}

func deletePayrollRunHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	run, err := models.DeletePayrollRun(c.Request.Context(), id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, run)
}

func getPayrollRunHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	run, err := models.GetPayrollRun(c.Request.Context(), id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, run)
}

func paginatePayrollRunsHandler(c *gin.Context) {
	var year *int
	if v := c.Query("year"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			year = &n
		}
	}
	connection, err := models.PaginatePayrollRuns(c.Request.Context(), queryLimit(c), queryCursor(c), year)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, connection)
}

func bookPayrollRunHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	run, err := workflow.BookPayrollRun(c.Request.Context(), id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, run)
}

func remitPayrollTaxesHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	var input struct {
		PaymentDate time.Time `json:"payment_date" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}
	transaction, err := workflow.RemitPayrollTaxes(c.Request.Context(), id, input.PaymentDate)
	if err != nil {
		writeActionError(c, err)
		return
	}
	respondData(c, transaction)
}

func agiFileHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	run, err := models.GetPayrollRun(c.Request.Context(), id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	user, err := models.GetUserProfile(c.Request.Context())
	if err != nil {
		writeActionError(c, err)
		return
	}
	file, err := skatteverket.GenerateAgiFile(run, user, time.Now())
	if err != nil {
		writeActionError(c, err)
		return
	}
	sendFile(c, file.Name, "application/xml", file.Content)
}

// salaryBankgiroHandler renders the net-pay payment file for a payroll run.
func salaryBankgiroHandler(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	run, err := models.GetPayrollRun(c.Request.Context(), id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	user, err := models.GetUserProfile(c.Request.Context())
	if err != nil {
		writeActionError(c, err)
		return
	}

	payments := make([]bankgiro.Payment, 0, len(run.Payslips))
	for _, payslip := range run.Payslips {
		if payslip.Employee == nil {
			respondError(c, http.StatusBadRequest, errors.New("payslip employee is not loaded"))
			return
		}
		payments = append(payments, bankgiro.Payment{
			ClearingNumber: payslip.Employee.ClearingNumber,
			BankAccount:    payslip.Employee.BankAccount,
			Reference:      "Lön " + payslip.Employee.Name,
			Amount:         payslip.NetPay,
			PaymentDate:    run.PaymentDate,
		})
	}
	file, err := bankgiro.GeneratePaymentFile(user.Bankgiro, payments, time.Now())
	if err != nil {
		writeActionError(c, err)
		return
	}
	sendFile(c, file.Name, "text/plain", file.Content)
}

func supplierBankgiroHandler(c *gin.Context) {
	var input struct {
		Payments []bankgiro.Payment `json:"payments" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}
	user, err := models.GetUserProfile(c.Request.Context())
	if err != nil {
		writeActionError(c, err)
		return
	}
	file, err := bankgiro.GeneratePaymentFile(user.Bankgiro, input.Payments, time.Now())
	if err != nil {
		writeActionError(c, err)
		return
	}
	sendFile(c, file.Name, "text/plain", file.Content)
}

func huvudbokHandler(c *gin.Context) {
	// without an explicit period the report covers the current month
	now := time.Now()
	fromDate, toDate := utils.GetMonthRange(now.Year(), now.Month())
	if c.Query("from") != "" || c.Query("to") != "" {
		var err error
		if fromDate, err = queryDate(c, "from"); err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		if toDate, err = queryDate(c, "to"); err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
	}
	rows, err := reports.GetHuvudbokReport(c.Request.Context(), fromDate, toDate)
	if err != nil {
		writeActionError(c, err)
		return
	}
	if strings.HasSuffix(c.Request.URL.Path, ".xlsx") {
		content, err := reports.ExportHuvudbokExcel(rows, fromDate, toDate)
		if err != nil {
			writeActionError(c, err)
			return
		}
		sendFile(c, "huvudbok.xlsx",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
		return
	}
	respondData(c, rows)
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	config.ConnectDatabaseWithRetry()
	config.ConnectRedis()
	models.MigrateTable()

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	r := gin.New()

	// correlation ids: generate once per request and attach to context
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.POST("/api/auth/register", registerHandler)
	r.POST("/api/auth/login", loginHandler)

	api := r.Group("/api", middlewares.AuthMiddleware())
	{
		api.GET("/profile", getProfileHandler)
		api.PUT("/profile", updateProfileHandler)

		api.POST("/customers", createCustomerHandler)
		api.GET("/customers", paginateCustomersHandler)
		api.GET("/customers/:id", getCustomerHandler)
		api.PUT("/customers/:id", updateCustomerHandler)
		api.DELETE("/customers/:id", deleteCustomerHandler)

		api.POST("/suppliers", createSupplierHandler)
		api.GET("/suppliers", paginateSuppliersHandler)
		api.GET("/suppliers/:id", getSupplierHandler)
		api.PUT("/suppliers/:id", updateSupplierHandler)
		api.DELETE("/suppliers/:id", deleteSupplierHandler)

		api.POST("/employees", createEmployeeHandler)
		api.GET("/employees", paginateEmployeesHandler)
		api.GET("/employees/:id", getEmployeeHandler)
		api.PUT("/employees/:id", updateEmployeeHandler)
		api.DELETE("/employees/:id", deleteEmployeeHandler)
		api.GET("/employees/:id/vacation", employeeVacationRecordsHandler)
		api.GET("/employees/:id/vacation/balance", employeeVacationBalanceHandler)

		api.POST("/vacation-records", createVacationRecordHandler)
		api.DELETE("/vacation-records/:id", deleteVacationRecordHandler)
		api.POST("/vacation/rollover", vacationRolloverHandler)

		api.POST("/invoices", createInvoiceHandler)
		api.GET("/invoices", paginateInvoicesHandler)
		api.GET("/invoices/:id", getInvoiceHandler)
		api.PUT("/invoices/:id", updateInvoiceHandler)
		api.DELETE("/invoices/:id", deleteInvoiceHandler)
		api.POST("/invoices/:id/book", bookInvoiceHandler)
		api.POST("/invoices/:id/payments", registerInvoicePaymentHandler)
		api.GET("/invoices/:id/husfil", husFileHandler)

		api.POST("/verifications", createLedgerTransactionHandler)
		api.GET("/verifications", paginateLedgerTransactionsHandler)
		api.GET("/verifications/:id", getLedgerTransactionHandler)
		api.DELETE("/verifications/:id", deleteLedgerTransactionHandler)

		api.GET("/accounts", fetchAccountsHandler)
		api.POST("/accounts/seed", seedAccountsHandler)

		api.POST("/payroll-runs", createPayrollRunHandler)
		api.GET("/payroll-runs", paginatePayrollRunsHandler)
		api.GET("/payroll-runs/:id", getPayrollRunHandler)
		api.DELETE("/payroll-runs/:id", deletePayrollRunHandler)
		api.POST("/payroll-runs/:id/book", bookPayrollRunHandler)
		api.POST("/payroll-runs/:id/remit-taxes", remitPayrollTaxesHandler)
		api.GET("/payroll-runs/:id/agi", agiFileHandler)
		api.GET("/payroll-runs/:id/bankgiro", salaryBankgiroHandler)

		api.POST("/bankgiro/payments", supplierBankgiroHandler)

		api.GET("/reports/huvudbok", huvudbokHandler)
		api.GET("/reports/huvudbok.xlsx", huvudbokHandler)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(err)
		}
	case <-sigCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			config.LogError(logger, "server.go", "main", "Shutdown", nil, err)
		}
	}
}
