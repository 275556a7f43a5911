// Package category manages BeHub service categories through the admin API.
package category

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nkiryanov/behubadmin/internal/apiclient"
	"github.com/nkiryanov/behubadmin/internal/apperrors"
	"github.com/nkiryanov/behubadmin/internal/logger"
	"github.com/nkiryanov/behubadmin/internal/models"
)

const (
	categoriesPath = "/admin/service-categories"

	maxPageSize = 100

	// Parallel deletes in DeleteMany
	defaultDeleteConcurrency = 4
)

var sortColumns = []string{
	models.SortByName,
	models.SortByIsActive,
	models.SortBySortOrder,
	models.SortByTotalProviders,
	models.SortByTotalBookings,
	models.SortByAverageRating,
	models.SortByCreatedAt,
}

type API interface {
	Do(ctx context.Context, req apiclient.Request, out any) error
}

// Every BeHub answer is wrapped like that
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type categoryData struct {
	Category models.ServiceCategory `json:"category"`
}

type Config struct {
	// If not set than default is used
	DeleteConcurrency int

	Logger logger.Logger
}

type CategoryService struct {
	api               API
	deleteConcurrency int
	logger            logger.Logger
}

func NewService(cfg Config, api API) (*CategoryService, error) {
	if api == nil {
		return nil, errors.New("api must not be nil")
	}

	if cfg.DeleteConcurrency <= 0 {
		cfg.DeleteConcurrency = defaultDeleteConcurrency
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}

	return &CategoryService{
		api:               api,
		deleteConcurrency: cfg.DeleteConcurrency,
		logger:            cfg.Logger,
	}, nil
}

// List one page of categories. Pagination, sorting and search are done by the API
func (s *CategoryService) List(ctx context.Context, params models.ListParams) (models.CategoryPage, error) {
	query, err := listQuery(params)
	if err != nil {
		return models.CategoryPage{}, err
	}

	var resp envelope[models.CategoryPage]
	err = s.api.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: categoriesPath, Query: query}, &resp)
	if err != nil {
		return models.CategoryPage{}, err
	}

	if resp.Data.Categories == nil {
		resp.Data.Categories = []models.ServiceCategory{}
	}
	return resp.Data, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (models.ServiceCategory, error) {
	path, err := categoryPath(id)
	if err != nil {
		return models.ServiceCategory{}, err
	}

	var resp envelope[categoryData]
	if err := s.api.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: path}, &resp); err != nil {
		return models.ServiceCategory{}, notFound(err, id)
	}

	return resp.Data.Category, nil
}

func (s *CategoryService) Create(ctx context.Context, in Input) (models.ServiceCategory, error) {
	body, err := in.Request()
	if err != nil {
		return models.ServiceCategory{}, err
	}

	var resp envelope[categoryData]
	err = s.api.Do(ctx, apiclient.Request{Method: http.MethodPost, Path: categoriesPath, Body: body}, &resp)
	if err != nil {
		return models.ServiceCategory{}, err
	}

	s.logger.Info("Service category created", "category_id", resp.Data.Category.ID, "name", body.Name)
	return resp.Data.Category, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, in Input) (models.ServiceCategory, error) {
	path, err := categoryPath(id)
	if err != nil {
		return models.ServiceCategory{}, err
	}

	body, err := in.Request()
	if err != nil {
		return models.ServiceCategory{}, err
	}

	var resp envelope[categoryData]
	if err := s.api.Do(ctx, apiclient.Request{Method: http.MethodPut, Path: path, Body: body}, &resp); err != nil {
		return models.ServiceCategory{}, notFound(err, id)
	}

	s.logger.Info("Service category updated", "category_id", id)
	return resp.Data.Category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	path, err := categoryPath(id)
	if err != nil {
		return err
	}

	if err := s.api.Do(ctx, apiclient.Request{Method: http.MethodDelete, Path: path}, nil); err != nil {
		return notFound(err, id)
	}

	s.logger.Info("Service category deleted", "category_id", id)
	return nil
}

// Delete categories in parallel and report how many distinct ids were deleted.
// Stops on first failure and returns it; categories deleted before stay deleted
func (s *CategoryService) DeleteMany(ctx context.Context, ids []string) (int, error) {
	ids = slices.Compact(slices.Sorted(slices.Values(ids)))
	if len(ids) == 0 {
		return 0, nil
	}

	// Nothing is deleted when any id is malformed
	for _, id := range ids {
		if _, err := categoryPath(id); err != nil {
			return 0, err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.deleteConcurrency)

	for _, id := range ids {
		g.Go(func() error {
			if err := s.Delete(ctx, id); err != nil {
				return fmt.Errorf("can't delete category %s. Err: %w", id, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func listQuery(p models.ListParams) (url.Values, error) {
	verr := &apperrors.ValidationError{StatusCode: http.StatusBadRequest, Message: "Invalid list parameters"}

	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = models.DefaultPageSize
	}
	p.Limit = min(p.Limit, maxPageSize)

	if p.SortBy != "" && !slices.Contains(sortColumns, p.SortBy) {
		verr.Add("sortBy", "Unsupported sort column")
	}
	switch p.SortOrder {
	case "", models.SortAsc, models.SortDesc:
	default:
		verr.Add("sortOrder", "Must be asc or desc")
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))
	if p.SortBy != "" {
		q.Set("sortBy", p.SortBy)
		q.Set("sortOrder", cmp.Or(p.SortOrder, models.SortAsc))
	}
	if search := strings.TrimSpace(p.Search); search != "" {
		q.Set("search", search)
	}

	return q, nil
}

func categoryPath(id string) (string, error) {
	// Dot segments would be resolved by the path join and hit a parent resource
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\?#`) {
		return "", fmt.Errorf("%w: invalid id %q", apperrors.ErrCategoryNotFound, id)
	}
	return categoriesPath + "/" + url.PathEscape(id), nil
}

func notFound(err error, id string) error {
	if apperrors.StatusCode(err) == http.StatusNotFound {
		return fmt.Errorf("%w: %s", apperrors.ErrCategoryNotFound, id)
	}
	return err
}
