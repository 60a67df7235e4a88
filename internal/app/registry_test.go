package app

import (
	"testing"

	"campus-marketplace/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		Storage:  config.StorageConfig{CartStore: config.CartStorePostgres},
		Auth:     config.AuthConfig{JWTSecret: "secret"},
		Checkout: config.CheckoutConfig{SuccessURL: "https://app.test/success", CancelURL: "https://app.test/cancel"},
	}
}

func TestNewImageService_Unconfigured(t *testing.T) {
	svc := newImageService(config.CloudinaryConfig{}, zap.NewNop())

	url, err := svc.ImageURL("https://cdn.test/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/a.png", url)
}

func TestNewCartRepository_MongoWithoutConnection(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.CartStore = config.CartStoreMongo

	_, err := newCartRepository(cfg, Infra{}, zap.NewNop())
	assert.Error(t, err)
}

func TestRegisterModules_Routes(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	require.NoError(t, registerModules(r, testConfig(), Infra{DB: db}, zap.NewNop()))

	routes := map[string]bool{}
	for _, ri := range r.Routes() {
		routes[ri.Method+" "+ri.Path] = true
	}

	for _, want := range []string{
		"GET /api/v1/products/:id",
		"GET /api/v1/cart",
		"GET /api/v1/cart/count",
		"POST /api/v1/cart/add",
		"DELETE /api/v1/cart/:itemId",
		"DELETE /api/v1/cart",
		"POST /api/v1/cart/create-checkout-session",
		"POST /api/v1/payments/notification",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}
