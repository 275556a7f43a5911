package testutil

import (
	"cmp"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nkiryanov/behubadmin/internal/models"
)

const (
	BehubEmail    = "admin@behub.test"
	BehubPassword = "admin-pwd"

	behubSecret = "fake-behub-secret"
	behubScheme = "Bearer password_auth"
)

// In-memory BeHub API good enough to drive the admin through login, refresh and category CRUD
// Access tokens are HS256 JWTs with 15 minutes expiry, refresh tokens are opaque
type FakeBehub struct {
	Server *httptest.Server
	User   models.User

	mu         sync.Mutex
	access     string
	refresh    string
	issued     int
	categories []models.ServiceCategory
	nextID     int

	LoginCalls   int
	RefreshCalls int
}

// Start fake BeHub API, it's stopped when test ends
func NewFakeBehub(t *testing.T) *FakeBehub {
	t.Helper()

	f := &FakeBehub{
		User: models.User{
			ID:         "u-1",
			Email:      BehubEmail,
			FullName:   "Behub Admin",
			Role:       "admin",
			IsActive:   true,
			IsVerified: true,
			CreatedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			UpdatedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", f.login)
	mux.HandleFunc("POST /api/v1/auth/refresh", f.refreshTokens)
	mux.Handle("GET /api/v1/admin/service-categories", f.authorized(f.listCategories))
	mux.Handle("POST /api/v1/admin/service-categories", f.authorized(f.createCategory))
	mux.Handle("GET /api/v1/admin/service-categories/{id}", f.authorized(f.getCategory))
	mux.Handle("PUT /api/v1/admin/service-categories/{id}", f.authorized(f.updateCategory))
	mux.Handle("DELETE /api/v1/admin/service-categories/{id}", f.authorized(f.deleteCategory))

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)

	return f
}

// API base url to configure client with
func (f *FakeBehub) URL() string {
	return f.Server.URL + "/api/v1"
}

// Issue token pair as if the admin logged in
func (f *FakeBehub) Tokens() models.TokenPair {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issue()
}

// Stop accepting current access token: next authorized call gets 401
func (f *FakeBehub) ExpireAccess() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = "expired"
}

// Stop accepting current refresh token
func (f *FakeBehub) RevokeRefresh() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh = "revoked"
}

func (f *FakeBehub) Calls() (login int, refresh int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.LoginCalls, f.RefreshCalls
}

func (f *FakeBehub) AddCategory(c models.ServiceCategory) models.ServiceCategory {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	c.ID = fmt.Sprintf("cat-%d", f.nextID)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.nextID) * time.Hour)
	}
	f.categories = append(f.categories, c)

	return c
}

func (f *FakeBehub) Categories() []models.ServiceCategory {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.categories)
}

// Must be called with mu held
func (f *FakeBehub) issue() models.TokenPair {
	f.issued++
	claims := jwt.RegisteredClaims{
		Subject:   f.User.ID,
		ID:        strconv.Itoa(f.issued),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(behubSecret))
	if err != nil {
		panic(err)
	}

	f.access = access
	f.refresh = fmt.Sprintf("refresh-%d", f.issued)

	return models.TokenPair{Access: f.access, Refresh: f.refresh}
}

func (f *FakeBehub) authorized(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		ok := r.Header.Get("Authorization") == behubScheme && r.Header.Get("x-user-token") == f.access && f.access != ""
		f.mu.Unlock()

		if !ok {
			writeFail(w, http.StatusUnauthorized, "Invalid or expired token", nil)
			return
		}
		next(w, r)
	})
}

func (f *FakeBehub) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid body", nil)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoginCalls++

	if body.Email != BehubEmail || body.Password != BehubPassword {
		writeFail(w, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}

	pair := f.issue()
	writeOK(w, http.StatusOK, map[string]any{
		"user":                 f.User,
		"token":                "legacy-" + pair.Refresh,
		"passwordToken":        pair.Access,
		"refreshToken":         pair.Refresh,
		"needsProviderDetails": false,
		"isEmailVerified":      true,
	})
}

func (f *FakeBehub) refreshTokens(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid body", nil)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.RefreshCalls++

	if body.RefreshToken == "" || body.RefreshToken != f.refresh {
		writeFail(w, http.StatusUnauthorized, "Invalid refresh token", nil)
		return
	}

	pair := f.issue()
	writeOK(w, http.StatusOK, map[string]string{
		"passwordToken": pair.Access,
		"refreshToken":  pair.Refresh,
	})
}

func (f *FakeBehub) listCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := atoiDefault(q.Get("page"), 1)
	limit := atoiDefault(q.Get("limit"), models.DefaultPageSize)
	search := strings.ToLower(q.Get("search"))

	f.mu.Lock()
	found := make([]models.ServiceCategory, 0, len(f.categories))
	for _, c := range f.categories {
		if search == "" || strings.Contains(strings.ToLower(c.Name), search) {
			found = append(found, c)
		}
	}
	f.mu.Unlock()

	slices.SortStableFunc(found, func(a, b models.ServiceCategory) int {
		var res int
		switch q.Get("sortBy") {
		case models.SortBySortOrder:
			res = cmp.Compare(a.SortOrder, b.SortOrder)
		case models.SortByCreatedAt:
			res = a.CreatedAt.Compare(b.CreatedAt)
		default:
			res = cmp.Compare(a.Name, b.Name)
		}
		if q.Get("sortOrder") == models.SortDesc {
			res = -res
		}
		return res
	})

	total := len(found)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	writeOK(w, http.StatusOK, models.CategoryPage{
		Categories: found[start:end],
		Pagination: models.Pagination{
			CurrentPage:  page,
			TotalPages:   (total + limit - 1) / limit,
			TotalItems:   total,
			ItemsPerPage: limit,
		},
	})
}

func (f *FakeBehub) getCategory(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexOf(r.PathValue("id"))
	if i < 0 {
		writeFail(w, http.StatusNotFound, "Service category not found", nil)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"category": f.categories[i]})
}

func (f *FakeBehub) createCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid body", nil)
		return
	}

	f.mu.Lock()
	for _, c := range f.categories {
		if strings.EqualFold(c.Name, req.Name) {
			f.mu.Unlock()
			writeFail(w, http.StatusBadRequest, "Validation failed", map[string][]string{
				"name": {"Category with this name already exists"},
			})
			return
		}
	}
	f.mu.Unlock()

	created := f.AddCategory(fromRequest(models.ServiceCategory{}, req))
	writeOK(w, http.StatusCreated, map[string]any{"category": created})
}

func (f *FakeBehub) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid body", nil)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexOf(r.PathValue("id"))
	if i < 0 {
		writeFail(w, http.StatusNotFound, "Service category not found", nil)
		return
	}
	f.categories[i] = fromRequest(f.categories[i], req)
	writeOK(w, http.StatusOK, map[string]any{"category": f.categories[i]})
}

func (f *FakeBehub) deleteCategory(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexOf(r.PathValue("id"))
	if i < 0 {
		writeFail(w, http.StatusNotFound, "Service category not found", nil)
		return
	}
	f.categories = slices.Delete(f.categories, i, i+1)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Service category deleted successfully"})
}

// Must be called with mu held
func (f *FakeBehub) indexOf(id string) int {
	return slices.IndexFunc(f.categories, func(c models.ServiceCategory) bool { return c.ID == id })
}

func fromRequest(c models.ServiceCategory, req models.CategoryRequest) models.ServiceCategory {
	duration := req.AverageDuration

	c.Name = req.Name
	c.Description = req.Description
	c.Icon = req.Icon
	c.Color = req.Color
	c.SortOrder = req.SortOrder
	c.IsActive = req.IsActive
	c.AveragePriceRange = req.AveragePriceRange
	c.AverageDuration = &duration
	c.RequiresLicense = req.RequiresLicense
	c.RequiresSpecialEquipment = req.RequiresSpecialEquipment
	c.MetaTitle = req.MetaTitle
	c.MetaDescription = req.MetaDescription
	c.Slug = strings.ReplaceAll(strings.ToLower(req.Name), " ", "-")

	return c
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func writeOK(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"success": true, "data": data})
}

func writeFail(w http.ResponseWriter, status int, message string, fields map[string][]string) {
	body := map[string]any{"success": false, "message": message}
	if fields != nil {
		body["errors"] = fields
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
