package checkout

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	"github.com/talabarteria/rodriguez-backend/pkg/enums"
	"github.com/talabarteria/rodriguez-backend/pkg/pagination"
)

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE productos (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  nombre TEXT NOT NULL,
  descripcion TEXT NOT NULL DEFAULT '',
  descripcion_detallada TEXT,
  precio NUMERIC NOT NULL,
  precio_descuento NUMERIC,
  porcentaje_descuento INTEGER,
  stock INTEGER NOT NULL DEFAULT 0,
  categoria_id INTEGER NOT NULL,
  sku TEXT,
  peso NUMERIC,
  dimensiones TEXT,
  material TEXT,
  etiquetas TEXT,
  destacado INTEGER NOT NULL DEFAULT 0,
  nuevo INTEGER NOT NULL DEFAULT 0,
  activo INTEGER NOT NULL DEFAULT 1,
  vistas INTEGER NOT NULL DEFAULT 0,
  ventas INTEGER NOT NULL DEFAULT 0,
  fecha_creacion DATETIME
);`, `
CREATE TABLE pedidos (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  usuario_id INTEGER,
  estado TEXT NOT NULL DEFAULT 'pendiente',
  subtotal NUMERIC NOT NULL,
  descuento NUMERIC NOT NULL DEFAULT 0,
  costo_envio NUMERIC NOT NULL,
  impuestos NUMERIC NOT NULL,
  total NUMERIC NOT NULL,
  metodo_envio TEXT NOT NULL DEFAULT 'estandar',
  codigo_cupon TEXT,
  direccion_entrega TEXT NOT NULL,
  fecha_creacion DATETIME
);`, `
CREATE TABLE items_pedido (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  pedido_id INTEGER NOT NULL,
  producto_id INTEGER NOT NULL,
  nombre_producto TEXT NOT NULL,
  cantidad INTEGER NOT NULL,
  precio_unitario NUMERIC NOT NULL,
  subtotal NUMERIC NOT NULL
);`, `
CREATE TABLE direcciones (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  usuario_id INTEGER,
  calle TEXT NOT NULL,
  numero TEXT NOT NULL,
  colonia TEXT NOT NULL,
  ciudad TEXT NOT NULL,
  estado TEXT NOT NULL,
  codigo_postal TEXT NOT NULL,
  referencias TEXT,
  predeterminada INTEGER NOT NULL DEFAULT 1,
  fecha_creacion DATETIME
);`}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func userRef(id int64) *int64 { return &id }

func TestCreateOrderPersistsItems(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	order := &models.Order{
		UserID:          userRef(7),
		Status:          enums.OrderStatusPending,
		Subtotal:        decimal.NewFromInt(1200),
		ShippingCost:    decimal.NewFromInt(150),
		Tax:             decimal.NewFromInt(192),
		Total:           decimal.NewFromInt(1542),
		ShippingMethod:  enums.ShippingMethodStandard,
		ShippingAddress: "Calle Hidalgo 12, Centro, León, Guanajuato, 37000",
		Items: []models.OrderItem{
			{ProductID: 1, ProductName: "Cinturón vaquero", Quantity: 2, UnitPrice: decimal.NewFromInt(350), Subtotal: decimal.NewFromInt(700)},
			{ProductID: 2, ProductName: "Cartera bifold", Quantity: 1, UnitPrice: decimal.NewFromInt(500), Subtotal: decimal.NewFromInt(500)},
		},
	}

	created, err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	var orderCount, itemCount int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, conn.Model(&models.OrderItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(1), orderCount)
	assert.Equal(t, int64(2), itemCount)

	loaded, err := repo.FindOrderByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Len(t, loaded.Items, 2)
	assert.Equal(t, enums.OrderStatusPending, loaded.Status)
	for _, item := range loaded.Items {
		assert.Equal(t, created.ID, item.OrderID)
	}
}

func TestCreateOrderGuestKeepsNullUser(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	order := &models.Order{
		Status:          enums.OrderStatusPending,
		Subtotal:        decimal.NewFromInt(500),
		ShippingCost:    decimal.NewFromInt(80),
		Tax:             decimal.NewFromInt(80),
		Total:           decimal.NewFromInt(660),
		ShippingMethod:  enums.ShippingMethodStandard,
		ShippingAddress: "Calle Morelos 8, Centro, León, Guanajuato, 37000",
		Items: []models.OrderItem{
			{ProductID: 1, ProductName: "Funda para navaja", Quantity: 1, UnitPrice: decimal.NewFromInt(500), Subtotal: decimal.NewFromInt(500)},
		},
	}

	created, err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)

	loaded, err := repo.FindOrderByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Nil(t, loaded.UserID)

	var nullUsers int64
	require.NoError(t, conn.Model(&models.Order{}).Where("usuario_id IS NULL").Count(&nullUsers).Error)
	assert.Equal(t, int64(1), nullUsers)
}

func TestCreateAddressWithoutUser(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	created, err := repo.CreateAddress(ctx, &models.Address{
		Street:       "Calle Madero",
		Number:       "21",
		Neighborhood: "Centro",
		City:         "León",
		State:        "Guanajuato",
		PostalCode:   "37000",
		IsDefault:    false,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.Nil(t, created.UserID)

	// Throwaway rows never become anyone's default address.
	stored, err := repo.DefaultAddress(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestFindOrderByIDMissing(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	repo := NewRepository(conn)

	order, err := repo.FindOrderByID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestListAllFiltersByStatus(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	seed := []models.Order{
		{UserID: userRef(1), Status: enums.OrderStatusPending, Subtotal: decimal.NewFromInt(100), ShippingCost: decimal.NewFromInt(80), Tax: decimal.NewFromInt(16), Total: decimal.NewFromInt(196), ShippingAddress: "a"},
		{UserID: userRef(1), Status: enums.OrderStatusPaid, Subtotal: decimal.NewFromInt(100), ShippingCost: decimal.NewFromInt(80), Tax: decimal.NewFromInt(16), Total: decimal.NewFromInt(196), ShippingAddress: "b"},
		{UserID: userRef(2), Status: enums.OrderStatusPending, Subtotal: decimal.NewFromInt(100), ShippingCost: decimal.NewFromInt(80), Tax: decimal.NewFromInt(16), Total: decimal.NewFromInt(196), ShippingAddress: "c"},
	}
	for i := range seed {
		_, err := repo.CreateOrder(ctx, &seed[i])
		require.NoError(t, err)
	}

	status := enums.OrderStatusPending
	rows, total, err := repo.ListAll(ctx, &status, pagination.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, rows, 2)

	rows, total, err = repo.ListAll(ctx, nil, pagination.Params{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, rows, 2)
}

func TestUpdateStatus(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	order := &models.Order{UserID: userRef(1), Status: enums.OrderStatusPending, Subtotal: decimal.NewFromInt(100), ShippingCost: decimal.NewFromInt(80), Tax: decimal.NewFromInt(16), Total: decimal.NewFromInt(196), ShippingAddress: "x"}
	_, err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPaid))

	loaded, err := repo.FindOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, loaded.Status)
}

func TestDecrementStockCountsSales(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	require.NoError(t, conn.Create(&models.Product{
		Name:        "Bolso de piel",
		Description: "hecho a mano",
		Price:       decimal.NewFromInt(900),
		Stock:       5,
		CategoryID:  1,
	}).Error)

	require.NoError(t, repo.DecrementStock(ctx, 1, 3))

	var product models.Product
	require.NoError(t, conn.First(&product, "id = ?", 1).Error)
	assert.Equal(t, 2, product.Stock)
	assert.Equal(t, int64(3), product.Sales)
}

func TestSaveAddressUpsertsDefault(t *testing.T) {
	conn := setupCheckoutTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	first, err := repo.SaveAddress(ctx, &models.Address{
		UserID:       userRef(3),
		Street:       "Av. Juárez",
		Number:       "45",
		Neighborhood: "Centro",
		City:         "León",
		State:        "Guanajuato",
		PostalCode:   "37000",
	})
	require.NoError(t, err)
	assert.True(t, first.IsDefault)

	second, err := repo.SaveAddress(ctx, &models.Address{
		UserID:       userRef(3),
		Street:       "Blvd. López Mateos",
		Number:       "1200",
		Neighborhood: "Obregón",
		City:         "León",
		State:        "Guanajuato",
		PostalCode:   "37260",
		IsDefault:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, conn.Model(&models.Address{}).Where("usuario_id = ?", 3).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := repo.DefaultAddress(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Blvd. López Mateos", stored.Street)
}
