package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/niksmo/storefront/internal/adapter/kafka"
	"github.com/niksmo/storefront/internal/adapter/seed"
	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/adapter/token"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/shopspring/decimal"
)

// Document collections, shared by the memory and postgres stores.
const (
	collProducts   = "products"
	collUsers      = "users"
	collCartItems  = "cart_items"
	collOrders     = "orders"
	collOrderItems = "order_items"
	collWishlist   = "wishlist"
	collReviews    = "reviews"
)

type repositories struct {
	products   port.Repository[domain.Product]
	users      port.Repository[domain.User]
	cartItems  port.Repository[domain.CartLineItem]
	orders     port.Repository[domain.Order]
	orderItems port.Repository[domain.OrderItem]
	wishlist   port.Repository[domain.WishlistEntry]
	reviews    port.Repository[domain.Review]
}

type serdes struct {
	productEvents schema.Serde
	orderEvents   schema.Serde
}

type closer interface {
	Close()
}

type producers struct {
	productEvents port.ProductEventsProducer
	orderEvents   port.OrderEventsProducer
	closers       []closer
}

type coreService struct {
	auth     *service.Auth
	catalog  service.Catalog
	cart     service.Cart
	orders   service.Orders
	wishlist service.Wishlist
	reviews  service.Reviews
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	sqlDB      *storage.SQLDB
	repos      repositories
	serdes     serdes
	producers  producers
	service    coreService
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initStorage()
	app.initSerdes()
	app.initOutboundAdapters()
	app.initCoreService()
	app.bootstrap()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	if app.cfg.Storage.Driver != config.StoragePostgres {
		app.repos = repositories{
			products:   storage.NewMemory[domain.Product](collProducts),
			users:      storage.NewMemory[domain.User](collUsers),
			cartItems:  storage.NewMemory[domain.CartLineItem](collCartItems),
			orders:     storage.NewMemory[domain.Order](collOrders),
			orderItems: storage.NewMemory[domain.OrderItem](collOrderItems),
			wishlist:   storage.NewMemory[domain.WishlistEntry](collWishlist),
			reviews:    storage.NewMemory[domain.Review](collReviews),
		}
		slog.Info("using in-memory storage")
		return
	}

	db, err := storage.NewSQLDB(app.ctx, app.cfg.Storage.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}
	app.sqlDB = &db
	app.repos = repositories{
		products:   storage.NewDocuments[domain.Product](db, collProducts),
		users:      storage.NewDocuments[domain.User](db, collUsers),
		cartItems:  storage.NewDocuments[domain.CartLineItem](db, collCartItems),
		orders:     storage.NewDocuments[domain.Order](db, collOrders),
		orderItems: storage.NewDocuments[domain.OrderItem](db, collOrderItems),
		wishlist:   storage.NewDocuments[domain.WishlistEntry](db, collWishlist),
		reviews:    storage.NewDocuments[domain.Review](db, collReviews),
	}
}

func (app *App) initSerdes() {
	const op = "App.initSerdes"

	if !app.cfg.Broker.Enabled() {
		return
	}

	schemaCreater, err := schema.NewSchemaCreater(app.cfg.Broker.SchemaRegistryURLs)
	if err != nil {
		app.fallDown(op, err)
	}

	topics := app.cfg.Broker.Topics
	productSerde, err := schema.NewSerdeProductEventV1(
		app.ctx,
		schema.SubjectOpt(topics.Products+"-value"),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	orderSerde, err := schema.NewSerdeOrderEventV1(
		app.ctx,
		schema.SubjectOpt(topics.Orders+"-value"),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.serdes.productEvents = productSerde
	app.serdes.orderEvents = orderSerde
}

func (app *App) initOutboundAdapters() {
	const op = "App.initOutboundAdapters"

	if !app.cfg.Broker.Enabled() {
		slog.Warn("no seed brokers configured, events are discarded")
		app.producers.productEvents = kafka.Discard{}
		app.producers.orderEvents = kafka.Discard{}
		return
	}

	brokers := app.brokers(op)
	topics := app.cfg.Broker.Topics

	productEvents, err := kafka.NewProductEventsProducer(
		kafka.ProducerClientOpt(app.ctx, brokers, topics.Products),
		kafka.ProducerEncoderOpt(app.serdes.productEvents),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	orderEvents, err := kafka.NewOrderEventsProducer(
		kafka.ProducerClientOpt(app.ctx, brokers, topics.Orders),
		kafka.ProducerEncoderOpt(app.serdes.orderEvents),
	)
	if err != nil {
		productEvents.Close()
		app.fallDown(op, err)
	}

	app.producers.productEvents = productEvents
	app.producers.orderEvents = orderEvents
	app.producers.closers = []closer{productEvents, orderEvents}
}

func (app *App) brokers(op string) kafka.Brokers {
	t := app.cfg.Broker.TLS
	tlsConfig, err := kafka.LoadTLSConfig(t.CA, t.Cert, t.Key)
	if err != nil {
		app.fallDown(op, err)
	}
	return kafka.Brokers{Seeds: app.cfg.Broker.SeedBrokers, TLS: tlsConfig}
}

func (app *App) initCoreService() {
	const op = "App.initCoreService"

	tokens, err := token.NewJWT(app.cfg.Auth.JWTSecret, app.cfg.Auth.TokenTTL)
	if err != nil {
		app.fallDown(op, err)
	}

	r := app.repos
	locks := service.NewLocks()
	cart := service.NewCart(r.cartItems, r.products, locks)

	app.service = coreService{
		auth:    service.NewAuth(r.users, tokens, app.cfg.Auth.BcryptCost),
		catalog: service.NewCatalog(r.products, locks, app.producers.productEvents),
		cart:    cart,
		orders: service.NewOrders(
			cart, r.orders, r.orderItems, app.producers.orderEvents, app.pricing(),
		),
		wishlist: service.NewWishlist(r.wishlist, r.products, locks),
		reviews:  service.NewReviews(r.reviews, r.products, locks, app.producers.productEvents),
	}
}

func (app *App) pricing() service.Pricing {
	c := app.cfg.Checkout
	return service.Pricing{
		FreeShippingThreshold: decimal.NewFromFloat(c.FreeShippingThreshold),
		ShippingFee:           decimal.NewFromFloat(c.ShippingFee),
		TaxRate:               decimal.NewFromFloat(c.TaxRate),
	}
}

// bootstrap loads the seed catalog and makes sure the configured admin
// account exists.
func (app *App) bootstrap() {
	const op = "App.bootstrap"
	log := slog.With("op", op)

	if path := app.cfg.SeedFile; path != "" {
		ps, err := seed.LoadFile(path)
		if err != nil {
			app.fallDown(op, err)
		}
		n, err := app.service.catalog.Seed(app.ctx, ps)
		if err != nil {
			app.fallDown(op, err)
		}
		log.Info("catalog seeded", "file", path, "added", n, "total", len(ps))
	}

	if email := app.cfg.Admin.Email; email != "" {
		err := app.service.auth.EnsureAdmin(app.ctx, email, app.cfg.Admin.Password)
		if err != nil {
			app.fallDown(op, err)
		}
	}
}

func (app *App) initInboundAdapters() {
	s := app.service
	handler := httphandler.NewRouter(httphandler.Services{
		Accounts: s.auth,
		Catalog:  s.catalog,
		Reviews:  s.reviews,
		Cart:     s.cart,
		Orders:   s.orders,
		Wishlist: s.wishlist,
	})
	app.httpServer = httphandler.NewHTTPServer(app.cfg.HTTPServerAddr, handler)
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	for _, c := range app.producers.closers {
		c.Close()
	}
	if app.sqlDB != nil {
		app.sqlDB.Close()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
