// Package storefront is a headless client for a storefront REST API. It
// composes the catalog, auth, and order clients with the dual-mode cart:
// a durable local slot while the visitor is anonymous, the authoritative
// server-side cart once signed in, and a one-time migration of the local
// lines into the remote cart at login.
package storefront

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"shopfront.io/storefront/api"
	"shopfront.io/storefront/cart"
	"shopfront.io/storefront/config"
	"shopfront.io/storefront/driver"
	"shopfront.io/storefront/localstore"
	"shopfront.io/storefront/models"
	"shopfront.io/storefront/models/enum"
	"shopfront.io/storefront/session"
)

// ErrNotAuthenticated is returned by operations that need a signed-in
// session.
var ErrNotAuthenticated = errors.New("storefront: not authenticated")

type Service interface {
	// Session lifecycle.
	Restore(ctx context.Context) error
	Login(ctx context.Context, email, password string) (models.User, error)
	Logout(ctx context.Context) error
	Signup(ctx context.Context, params api.SignupParams) error
	CurrentUser() (models.User, bool)
	SessionState() enum.SessionState

	// Cart operations, dispatched against the current session state.
	Cart() models.Cart
	AddToCart(ctx context.Context, product models.Product, quantity uint64) error
	UpdateCartItem(ctx context.Context, productID, quantity uint64) error
	RemoveFromCart(ctx context.Context, productID uint64) error
	ClearCart(ctx context.Context) error
	SubscribeCart(fn cart.Subscriber) (cancel func())

	// Catalog browsing.
	ListProducts(ctx context.Context, params api.ListProductsParams) (api.ProductPage, error)
	GetProduct(ctx context.Context, id uint64) (models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)

	// Checkout and order history.
	Checkout(ctx context.Context, addr models.ShippingAddress) error
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id uint64) (models.Order, error)

	Close() error
}

type service struct {
	client  *api.Client
	engine  *cart.Engine
	session *session.Manager

	db     *sql.DB
	logger *zap.Logger
}

var _ Service = (*service)(nil)

// New wires the full client from configuration: the profile database, the
// cookie-jar HTTP client, the API client, the cart engine, and the session
// manager, with the engine registered as the session transition handler.
func New(cfg config.Config, logger *zap.Logger) (Service, error) {
	db, err := driver.ConnectSQLite(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open profile database: %w", err)
	}

	httpClient, err := driver.NewHTTPClient(cfg.HTTPTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	client := api.New(api.Config{
		BaseURL:    cfg.APIURL,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	local := localstore.NewStore(db, logger)
	engine := cart.NewEngine(local, client, logger)

	manager := session.NewManager(client, logger)
	manager.OnTransition(engine.HandleSessionChange)

	return &service{
		client:  client,
		engine:  engine,
		session: manager,
		db:      db,
		logger:  logger,
	}, nil
}

// Restore rebuilds the session from any stored credential and starts the
// cart engine from the restored state. Run once at startup.
func (s *service) Restore(ctx context.Context) error {
	if err := s.session.Restore(ctx); err != nil {
		// The cart still has to work offline-ish: fall back to the
		// anonymous local cart and let the caller decide what to show.
		s.engine.Start(ctx, enum.SessionStateAnonymous)
		return err
	}

	s.engine.Start(ctx, s.session.State())
	return nil
}

func (s *service) Login(ctx context.Context, email, password string) (models.User, error) {
	return s.session.Login(ctx, email, password)
}

func (s *service) Logout(ctx context.Context) error {
	return s.session.Logout(ctx)
}

func (s *service) Signup(ctx context.Context, params api.SignupParams) error {
	return s.session.Signup(ctx, params)
}

func (s *service) CurrentUser() (models.User, bool) {
	return s.session.User()
}

func (s *service) SessionState() enum.SessionState {
	return s.session.State()
}

func (s *service) Cart() models.Cart {
	return s.engine.Items()
}

func (s *service) AddToCart(ctx context.Context, product models.Product, quantity uint64) error {
	return s.engine.AddItem(ctx, product, quantity)
}

func (s *service) UpdateCartItem(ctx context.Context, productID, quantity uint64) error {
	return s.engine.UpdateItem(ctx, productID, quantity)
}

func (s *service) RemoveFromCart(ctx context.Context, productID uint64) error {
	return s.engine.RemoveItem(ctx, productID)
}

func (s *service) ClearCart(ctx context.Context) error {
	return s.engine.Clear(ctx)
}

func (s *service) SubscribeCart(fn cart.Subscriber) (cancel func()) {
	return s.engine.Subscribe(fn)
}

func (s *service) ListProducts(ctx context.Context, params api.ListProductsParams) (api.ProductPage, error) {
	return s.client.ListProducts(ctx, params)
}

func (s *service) GetProduct(ctx context.Context, id uint64) (models.Product, error) {
	return s.client.GetProduct(ctx, id)
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.client.ListCategories(ctx)
}

// Checkout places an order from the authenticated remote cart and clears
// the engine's view of it.
func (s *service) Checkout(ctx context.Context, addr models.ShippingAddress) error {
	if s.session.State() != enum.SessionStateAuthenticated {
		return ErrNotAuthenticated
	}

	if err := s.client.CreateOrder(ctx, addr); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	return s.engine.Clear(ctx)
}

func (s *service) ListOrders(ctx context.Context) ([]models.Order, error) {
	if s.session.State() != enum.SessionStateAuthenticated {
		return nil, ErrNotAuthenticated
	}
	return s.client.ListOrders(ctx)
}

func (s *service) GetOrder(ctx context.Context, id uint64) (models.Order, error) {
	if s.session.State() != enum.SessionStateAuthenticated {
		return models.Order{}, ErrNotAuthenticated
	}
	return s.client.GetOrder(ctx, id)
}

func (s *service) Close() error {
	return s.db.Close()
}
