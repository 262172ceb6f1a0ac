package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mpelletier/facturio/internal/billing"
	"github.com/mpelletier/facturio/internal/events"
	"github.com/mpelletier/facturio/internal/models"
	"github.com/mpelletier/facturio/internal/service/search"
	"github.com/mpelletier/facturio/internal/session"
)

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	DB       *gorm.DB
	Sessions *session.Manager
	Ledger   *billing.Ledger

	Auth      *AuthHandler
	Company   *CompanyHandler
	Customers *CustomerHandler
	Products  *ProductHandler
	Invoices  *InvoiceHandler
	Search    *SearchHandler
	Dashboard *DashboardHandler
}

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
		return nil
	}

	if err := db.AutoMigrate(
		&models.Company{},
		&models.Customer{},
		&models.Product{},
		&models.Invoice{},
		&models.InvoiceLine{},
		&models.User{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newTestEnv(t *testing.T) *testEnv {
	db := InitTestDB(t)

	sessions := session.NewManager(session.Config{
		Secret: []byte("test-secret"),
		Salt:   "test-salt",
	})
	ledger := billing.NewLedger()
	producer := &events.Producer{}
	indexer := &search.Indexer{}

	require.NoError(t, db.Create(&models.Company{}).Error)

	return &testEnv{
		T:        t,
		E:        echo.New(),
		DB:       db,
		Sessions: sessions,
		Ledger:   ledger,

		Auth:      &AuthHandler{DB: db, Sessions: sessions},
		Company:   &CompanyHandler{DB: db},
		Customers: &CustomerHandler{DB: db, Producer: producer, Indexer: indexer},
		Products:  &ProductHandler{DB: db, Producer: producer, Indexer: indexer},
		Invoices:  &InvoiceHandler{DB: db, Ledger: ledger, Producer: producer},
		Search:    &SearchHandler{DB: db},
		Dashboard: &DashboardHandler{DB: db, Ledger: ledger},
	}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) createUser(username, password string) models.User {
	user := models.User{
		Username:     username,
		PasswordHash: env.Sessions.HashPassword(password),
	}
	require.NoError(env.T, env.DB.Create(&user).Error)
	return user
}
