package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/talabarteria/rodriguez-backend/pkg/db/models"
	"github.com/talabarteria/rodriguez-backend/pkg/enums"
	"github.com/talabarteria/rodriguez-backend/pkg/pagination"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
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
CREATE TABLE usuarios (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  nombre TEXT NOT NULL,
  apellidos TEXT NOT NULL,
  email TEXT NOT NULL,
  password TEXT NOT NULL,
  telefono TEXT,
  activo INTEGER NOT NULL DEFAULT 1,
  fecha_registro DATETIME
);`, `
CREATE TABLE pedidos (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  usuario_id INTEGER,
  estado TEXT NOT NULL DEFAULT 'pendiente',
  subtotal NUMERIC NOT NULL DEFAULT 0,
  descuento NUMERIC NOT NULL DEFAULT 0,
  costo_envio NUMERIC NOT NULL DEFAULT 0,
  impuestos NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL DEFAULT 0,
  metodo_envio TEXT NOT NULL DEFAULT 'estandar',
  codigo_cupon TEXT,
  direccion_entrega TEXT NOT NULL DEFAULT '',
  fecha_creacion DATETIME
);`, `
CREATE TABLE imagenes_producto (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  producto_id INTEGER NOT NULL,
  nombre_archivo TEXT NOT NULL,
  principal INTEGER NOT NULL DEFAULT 0,
  fecha_creacion DATETIME
);`, `
CREATE TABLE categorias (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  nombre TEXT NOT NULL,
  descripcion TEXT,
  categoria_padre_id INTEGER,
  activo INTEGER NOT NULL DEFAULT 1,
  fecha_creacion DATETIME
);`, `
CREATE TABLE resenas (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  producto_id INTEGER NOT NULL,
  nombre_cliente TEXT NOT NULL,
  calificacion INTEGER NOT NULL,
  comentario TEXT NOT NULL,
  aprobada INTEGER NOT NULL DEFAULT 0,
  fecha_creacion DATETIME
);`}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func seedCatalogProduct(t *testing.T, conn *gorm.DB, product models.Product) models.Product {
	t.Helper()
	require.NoError(t, conn.Create(&product).Error)
	return product
}

func TestListActiveFiltersAndPaginates(t *testing.T) {
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	seedCatalogProduct(t, conn, models.Product{Name: "Cinturón", Price: decimal.NewFromInt(350), CategoryID: 1, IsActive: true, CreatedAt: base})
	seedCatalogProduct(t, conn, models.Product{Name: "Cartera", Price: decimal.NewFromInt(500), CategoryID: 1, IsActive: true, CreatedAt: base.Add(time.Hour)})
	seedCatalogProduct(t, conn, models.Product{Name: "Bolso", Price: decimal.NewFromInt(900), CategoryID: 2, IsActive: true, CreatedAt: base.Add(2 * time.Hour)})
	seedCatalogProduct(t, conn, models.Product{Name: "Oculto", Price: decimal.NewFromInt(100), CategoryID: 1, IsActive: false, CreatedAt: base.Add(3 * time.Hour)})

	rows, total, err := repo.ListActive(ctx, ListFilter{}, pagination.Params{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, rows, 2)
	assert.Equal(t, "Bolso", rows[0].Name)

	categoryID := int64(1)
	rows, total, err = repo.ListActive(ctx, ListFilter{CategoryID: &categoryID}, pagination.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, row := range rows {
		assert.Equal(t, categoryID, row.CategoryID)
	}
}

func TestListActiveSortsByEffectivePrice(t *testing.T) {
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	discount := decimal.NewFromInt(200)
	seedCatalogProduct(t, conn, models.Product{Name: "Caro", Price: decimal.NewFromInt(900), CategoryID: 1, IsActive: true})
	seedCatalogProduct(t, conn, models.Product{Name: "Rebajado", Price: decimal.NewFromInt(800), DiscountPrice: &discount, CategoryID: 1, IsActive: true})
	seedCatalogProduct(t, conn, models.Product{Name: "Medio", Price: decimal.NewFromInt(400), CategoryID: 1, IsActive: true})

	rows, _, err := repo.ListActive(ctx, ListFilter{Sort: "precio_asc"}, pagination.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	// The discounted price, not the list price, decides the ordering.
	assert.Equal(t, "Rebajado", rows[0].Name)
	assert.Equal(t, "Medio", rows[1].Name)
	assert.Equal(t, "Caro", rows[2].Name)
}

func TestSearchMatchesNameDescriptionAndTags(t *testing.T) {
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	tags := "vaquero,rodeo"
	seedCatalogProduct(t, conn, models.Product{Name: "Cinturón piteado", Description: "bordado a mano", Price: decimal.NewFromInt(800), CategoryID: 1, IsActive: true})
	seedCatalogProduct(t, conn, models.Product{Name: "Cartera", Description: "piel de res", Price: decimal.NewFromInt(500), CategoryID: 1, Tags: &tags, IsActive: true})
	seedCatalogProduct(t, conn, models.Product{Name: "Cinturón inactivo", Description: "", Price: decimal.NewFromInt(300), CategoryID: 1, IsActive: false})

	page := pagination.Params{Page: 1, PerPage: 10}

	rows, total, err := repo.Search(ctx, SearchFilter{Term: "CINTURÓN"}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Cinturón piteado", rows[0].Name)

	rows, _, err = repo.Search(ctx, SearchFilter{Term: "rodeo"}, page)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Cartera", rows[0].Name)

	rows, _, err = repo.Search(ctx, SearchFilter{Term: "piel"}, page)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSearchCombinesFilters(t *testing.T) {
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	piel := "piel de res"
	gamuza := "gamuza"
	discount := decimal.NewFromInt(450)
	seedCatalogProduct(t, conn, models.Product{Name: "Cinturón liso", Price: decimal.NewFromInt(600), DiscountPrice: &discount, CategoryID: 1, Material: &piel, IsNew: true, IsActive: true})
	seedCatalogProduct(t, conn, models.Product{Name: "Cinturón piteado", Price: decimal.NewFromInt(900), CategoryID: 1, Material: &piel, IsActive: true})
	seedCatalogProduct(t, conn, models.Product{Name: "Cinturón gamuza", Price: decimal.NewFromInt(480), CategoryID: 1, Material: &gamuza, IsNew: true, IsActive: true})
	seedCatalogProduct(t, conn, models.Product{Name: "Bolso", Price: decimal.NewFromInt(400), CategoryID: 2, Material: &piel, IsActive: true})

	categoryID := int64(1)
	maxPrice := decimal.NewFromInt(500)
	rows, total, err := repo.Search(ctx, SearchFilter{
		Term:       "cinturón",
		CategoryID: &categoryID,
		MaxPrice:   &maxPrice,
		Discounted: true,
		New:        true,
		Material:   &piel,
	}, pagination.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	// The 450 discounted price, not the 600 list price, passes the ceiling.
	assert.Equal(t, "Cinturón liso", rows[0].Name)
}

func TestSearchOrdersFeaturedThenBestSellers(t *testing.T) {
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	seedCatalogProduct(t, conn, models.Product{Name: "Poco vendido", Price: decimal.NewFromInt(300), CategoryID: 1, Sales: 2, IsActive: true})
	seedCatalogProduct(t, conn, models.Product{Name: "Éxito", Price: decimal.NewFromInt(300), CategoryID: 1, Sales: 40, IsActive: true})
	seedCatalogProduct(t, conn, models.Product{Name: "Destacado", Price: decimal.NewFromInt(300), CategoryID: 1, Sales: 5, IsFeatured: true, IsActive: true})

	rows, total, err := repo.Search(ctx, SearchFilter{}, pagination.Params{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, rows, 2)
	assert.Equal(t, "Destacado", rows[0].Name)
	assert.Equal(t, "Éxito", rows[1].Name)

	rows, _, err = repo.Search(ctx, SearchFilter{}, pagination.Params{Page: 2, PerPage: 2})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Poco vendido", rows[0].Name)
}

func TestFindActiveByIDOrdersImages(t *testing.T) {
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	product := seedCatalogProduct(t, conn, models.Product{Name: "Bolso", Price: decimal.NewFromInt(900), CategoryID: 1, IsActive: true})
	require.NoError(t, conn.Create(&models.ProductImage{ProductID: product.ID, FileName: "lateral.jpg"}).Error)
	require.NoError(t, conn.Create(&models.ProductImage{ProductID: product.ID, FileName: "frente.jpg", IsPrimary: true}).Error)

	loaded, err := repo.FindActiveByID(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Images, 2)
	assert.Equal(t, "frente.jpg", loaded.Images[0].FileName)

	inactive := seedCatalogProduct(t, conn, models.Product{Name: "Oculto", Price: decimal.NewFromInt(100), CategoryID: 1, IsActive: false})
	loaded, err = repo.FindActiveByID(ctx, inactive.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestIncrementViews(t *testing.T) {
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	product := seedCatalogProduct(t, conn, models.Product{Name: "Bolso", Price: decimal.NewFromInt(900), CategoryID: 1, IsActive: true})
	require.NoError(t, repo.IncrementViews(ctx, product.ID))
	require.NoError(t, repo.IncrementViews(ctx, product.ID))

	var stored models.Product
	require.NoError(t, conn.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, int64(2), stored.Views)
}

func TestApprovedReviewsHidesPending(t *testing.T) {
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	product := seedCatalogProduct(t, conn, models.Product{Name: "Bolso", Price: decimal.NewFromInt(900), CategoryID: 1, IsActive: true})
	require.NoError(t, conn.Create(&models.Review{ProductID: product.ID, CustomerName: "Ana", Rating: 5, Comment: "Excelente", Approved: true}).Error)
	require.NoError(t, conn.Create(&models.Review{ProductID: product.ID, CustomerName: "Luis", Rating: 1, Comment: "Pendiente", Approved: false}).Error)

	rows, err := repo.ApprovedReviews(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ana", rows[0].CustomerName)
}

func TestRelatedSharesCategoryOrTags(t *testing.T) {
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	tags := "vaquero"
	otherTags := "vaquero,rodeo"
	product := seedCatalogProduct(t, conn, models.Product{Name: "Cinturón", Price: decimal.NewFromInt(350), CategoryID: 1, Tags: &tags, IsActive: true})
	seedCatalogProduct(t, conn, models.Product{Name: "Hebilla", Price: decimal.NewFromInt(200), CategoryID: 1, IsActive: true})
	seedCatalogProduct(t, conn, models.Product{Name: "Sombrero", Price: decimal.NewFromInt(600), CategoryID: 2, Tags: &otherTags, IsActive: true})
	seedCatalogProduct(t, conn, models.Product{Name: "Taza", Price: decimal.NewFromInt(100), CategoryID: 3, IsActive: true})

	rows, err := repo.Related(ctx, &product, 4)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.NotEqual(t, product.ID, row.ID)
		assert.NotEqual(t, "Taza", row.Name)
	}
}

func TestCategoryTreeLoadsActiveChildren(t *testing.T) {
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	require.NoError(t, conn.Create(&models.Category{Name: "Piel", IsActive: true}).Error)
	parentID := int64(1)
	require.NoError(t, conn.Create(&models.Category{Name: "Cinturones", ParentID: &parentID, IsActive: true}).Error)
	require.NoError(t, conn.Create(&models.Category{Name: "Descontinuada", ParentID: &parentID, IsActive: false}).Error)
	require.NoError(t, conn.Create(&models.Category{Name: "Oculta", IsActive: false}).Error)

	roots, err := repo.CategoryTree(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "Piel", roots[0].Name)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "Cinturones", roots[0].Children[0].Name)
}

func TestNewArrivalsListsNewestActiveFirst(t *testing.T) {
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	now := time.Now()
	seedCatalogProduct(t, conn, models.Product{Name: "Viejo", Price: decimal.NewFromInt(300), CategoryID: 1, IsNew: true, IsActive: true, CreatedAt: now.Add(-48 * time.Hour)})
	seedCatalogProduct(t, conn, models.Product{Name: "Reciente", Price: decimal.NewFromInt(300), CategoryID: 1, IsNew: true, IsActive: true, CreatedAt: now})
	seedCatalogProduct(t, conn, models.Product{Name: "Clásico", Price: decimal.NewFromInt(300), CategoryID: 1, IsNew: false, IsActive: true})
	seedCatalogProduct(t, conn, models.Product{Name: "Retirado", Price: decimal.NewFromInt(300), CategoryID: 1, IsNew: true, IsActive: false})

	rows, err := repo.NewArrivals(ctx, 8)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Reciente", rows[0].Name)
	assert.Equal(t, "Viejo", rows[1].Name)
}

func TestRecentApprovedReviewsSkipsPending(t *testing.T) {
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, conn.Create(&models.Review{ProductID: 1, CustomerName: "Ana", Rating: 5, Comment: "Excelente", Approved: true, CreatedAt: now.Add(-time.Hour)}).Error)
	require.NoError(t, conn.Create(&models.Review{ProductID: 2, CustomerName: "Luis", Rating: 4, Comment: "Muy bueno", Approved: true, CreatedAt: now}).Error)
	require.NoError(t, conn.Create(&models.Review{ProductID: 1, CustomerName: "Eva", Rating: 1, Comment: "Pendiente", Approved: false, CreatedAt: now}).Error)

	rows, err := repo.RecentApprovedReviews(ctx, 6)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Luis", rows[0].CustomerName)
	assert.Equal(t, "Ana", rows[1].CustomerName)
}

func TestHomeCountsFor(t *testing.T) {
	conn := setupCatalogTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	seedCatalogProduct(t, conn, models.Product{Name: "Cinturón", Price: decimal.NewFromInt(300), CategoryID: 1, IsActive: true})
	seedCatalogProduct(t, conn, models.Product{Name: "Retirado", Price: decimal.NewFromInt(300), CategoryID: 1, IsActive: false})

	require.NoError(t, conn.Create(&models.User{Name: "Ana", LastName: "García", Email: "ana@example.com", PasswordHash: "x", IsActive: true}).Error)
	require.NoError(t, conn.Create(&models.User{Name: "Luis", LastName: "Rodríguez", Email: "luis@example.com", PasswordHash: "x", IsActive: false}).Error)

	userID := int64(1)
	require.NoError(t, conn.Create(&models.Order{UserID: &userID, Status: enums.OrderStatusDelivered, Subtotal: decimal.NewFromInt(300), ShippingCost: decimal.NewFromInt(99), Tax: decimal.NewFromInt(48), Total: decimal.NewFromInt(447), ShippingMethod: enums.ShippingMethodStandard, ShippingAddress: "Calle 1"}).Error)
	require.NoError(t, conn.Create(&models.Order{UserID: &userID, Status: enums.OrderStatusPending, Subtotal: decimal.NewFromInt(300), ShippingCost: decimal.NewFromInt(99), Tax: decimal.NewFromInt(48), Total: decimal.NewFromInt(447), ShippingMethod: enums.ShippingMethodStandard, ShippingAddress: "Calle 1"}).Error)

	counts, err := repo.HomeCountsFor(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.ActiveProducts)
	assert.Equal(t, int64(1), counts.Customers)
	assert.Equal(t, int64(1), counts.DeliveredOrders)
}
