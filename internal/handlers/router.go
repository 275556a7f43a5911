package handlers

import (
	"context"
	"net/http"

	"github.com/nkiryanov/behubadmin/internal/handlers/middleware"
	"github.com/nkiryanov/behubadmin/internal/logger"
	"github.com/nkiryanov/behubadmin/internal/models"
	"github.com/nkiryanov/behubadmin/internal/service/category"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	appName string,
	authService authService,
	categoryService categoryService,
	metrics http.Handler,
	logger logger.Logger,
) http.Handler {
	withSession := func(h http.Handler) http.Handler {
		return chain(h,
			middleware.RequireSession(authService),
			middleware.CookieSync(authService),
		)
	}

	dashboard := http.NewServeMux()

	dashboard.Handle("GET /dashboard", handleDashboard(appName))
	dashboard.Handle("GET /dashboard/profile", handleProfile())

	dashboard.Handle("GET /dashboard/api/service-categories", handleListCategories(categoryService, logger))
	dashboard.Handle("POST /dashboard/api/service-categories", handleCreateCategory(categoryService, logger))
	dashboard.Handle("POST /dashboard/api/service-categories/bulk-delete", handleBulkDeleteCategories(categoryService, logger))
	dashboard.Handle("GET /dashboard/api/service-categories/{id}", handleGetCategory(categoryService, logger))
	dashboard.Handle("PUT /dashboard/api/service-categories/{id}", handleUpdateCategory(categoryService, logger))
	dashboard.Handle("DELETE /dashboard/api/service-categories/{id}", handleDeleteCategory(categoryService, logger))

	root := http.NewServeMux()

	root.Handle("GET /login", handleLoginPage(appName))
	root.Handle("POST /login", handleLogin(authService, logger))
	root.Handle("POST /logout", handleLogout(authService, logger))
	root.Handle("GET /api/session", handleSession(authService, logger))
	root.Handle("GET /healthz", handleHealth(authService, logger))
	if metrics != nil {
		root.Handle("GET /metrics", metrics)
	}

	root.Handle("/dashboard", withSession(dashboard))
	root.Handle("/dashboard/", withSession(dashboard))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
		middleware.RouteGate,
	)

	return handler
}

type authService interface {
	// Login admin with email and password
	// Has to return apperrors.ErrInvalidCredentials if API rejected them
	Login(ctx context.Context, email string, password string, rememberMe bool) (models.User, error)

	// Wipe stored credentials
	Logout(ctx context.Context) error

	// Session derived from stored credentials
	Session(ctx context.Context) (models.Session, error)

	// Stored token pair, to mirror it to cookies
	// Has to return apperrors.ErrEntryNotFound if there is no access token
	Tokens(ctx context.Context) (models.TokenPair, error)
}

type categoryService interface {
	List(ctx context.Context, params models.ListParams) (models.CategoryPage, error)
	Get(ctx context.Context, id string) (models.ServiceCategory, error)
	Create(ctx context.Context, in category.Input) (models.ServiceCategory, error)
	Update(ctx context.Context, id string, in category.Input) (models.ServiceCategory, error)
	Delete(ctx context.Context, id string) error
	// Returns number of distinct ids deleted
	DeleteMany(ctx context.Context, ids []string) (int, error)
}
