package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/mpelletier/facturio/internal/handlers"
	authmw "github.com/mpelletier/facturio/internal/middleware/auth"
)

type Deps struct {
	Guard            *authmw.Guard
	AuthHandler      *handlers.AuthHandler
	CompanyHandler   *handlers.CompanyHandler
	CustomerHandler  *handlers.CustomerHandler
	ProductHandler   *handlers.ProductHandler
	InvoiceHandler   *handlers.InvoiceHandler
	SearchHandler    *handlers.SearchHandler
	DashboardHandler *handlers.DashboardHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.LogOut)

	// Everything below requires a valid session before any handler runs.
	protected := v1.Group("", d.Guard.RequireLogin)

	protected.GET("/dashboard", d.DashboardHandler.GetDashboard)
	protected.GET("/search", d.SearchHandler.Search)

	protected.GET("/company", d.CompanyHandler.GetCompany)
	protected.POST("/company", d.CompanyHandler.UpdateCompany)

	protected.GET("/customers", d.CustomerHandler.GetCustomers)
	protected.POST("/customers", d.CustomerHandler.CreateCustomer)
	protected.PUT("/customers/:id", d.CustomerHandler.UpdateCustomer)
	protected.DELETE("/customers/:id", d.CustomerHandler.DeleteCustomer)

	protected.GET("/products", d.ProductHandler.GetProducts)
	protected.GET("/products/:id", d.ProductHandler.GetProduct)
	protected.POST("/products", d.ProductHandler.CreateProduct)
	protected.PUT("/products/:id", d.ProductHandler.UpdateProduct)
	protected.DELETE("/products/:id", d.ProductHandler.DeleteProduct)

	protected.GET("/invoices", d.InvoiceHandler.GetInvoices)
	protected.GET("/invoices/:id", d.InvoiceHandler.GetInvoice)
	protected.GET("/invoices/:id/pdf", d.InvoiceHandler.GetInvoicePDF)
	protected.POST("/invoices", d.InvoiceHandler.CreateInvoice)
	protected.PUT("/invoices/:id", d.InvoiceHandler.UpdateInvoice)
	protected.DELETE("/invoices/:id", d.InvoiceHandler.DeleteInvoice)
}
