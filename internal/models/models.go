package models

import (
	"time"
)

// Company holds the single issuer profile printed on every invoice.
// Exactly one row exists; it is seeded at first boot.
type Company struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"                                            json:"id"`
	Name        string `gorm:"default:'Mon Entreprise'"                                            json:"name"`
	Address     string `gorm:"default:'1 Rue de la République, 69001 Lyon'"                        json:"address"`
	Siret       string `gorm:"default:'000 000 000 00000'"                                         json:"siret"`
	VATNumber   string `gorm:"default:'FR 00 000000000'"                                           json:"vat_number"`
	IBAN        string `gorm:"default:'FR76 0000 0000 0000 0000 0000 000'"                         json:"iban"`
	BIC         string `gorm:"default:'BANKFRPP'"                                                  json:"bic"`
	LogoURL     string `gorm:"default:'https://img.icons8.com/ios/100/000000/company.png'"         json:"logo_url"`
	LegalTerms  string `gorm:"default:'Indemnité forfaitaire pour frais de recouvrement : 40€.'"   json:"legal_terms"`
	ThemeColor  string `gorm:"default:'#2c3e50'"                                                   json:"theme_color"`
	PaymentTerm int    `gorm:"default:30"                                                          json:"payment_term"`
}

type Customer struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string    `gorm:"index;not null"           json:"name"`
	Email    string    `json:"email"`
	Address  string    `json:"address"`
	Siret    string    `json:"siret"`
	Invoices []Invoice `gorm:"foreignKey:CustomerID"    json:"-"`
}

type Product struct {
	ID      uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string  `gorm:"index;not null"           json:"name"`
	Price   float64 `gorm:"not null"                 json:"price"`
	VATRate float64 `gorm:"default:20"               json:"vat_rate"`
}

// Invoice owns its lines: deleting the invoice deletes them. Totals are
// never stored; they are recomputed from the lines on every read.
type Invoice struct {
	ID         uint          `gorm:"primaryKey;autoIncrement"                         json:"id"`
	Date       time.Time     `gorm:"autoCreateTime"                                   json:"date"`
	DueDate    time.Time     `json:"due_date"`
	CustomerID uint          `gorm:"index;not null"                                   json:"customer_id"`
	Customer   Customer      `gorm:"foreignKey:CustomerID"                            json:"-"`
	Lines      []InvoiceLine `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"lines"`
}

// InvoiceLine snapshots the product price at invoice creation time, so later
// catalog price changes do not rewrite existing invoices.
type InvoiceLine struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceID uint    `gorm:"index;not null"           json:"invoice_id"`
	ProductID uint    `gorm:"not null"                 json:"product_id"`
	Quantity  int     `gorm:"default:1"                json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Discount  float64 `gorm:"default:0"                json:"discount"`
	VATRate   float64 `gorm:"default:20"               json:"vat_rate"`
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
}
