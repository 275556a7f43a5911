package handlers

import (
	"net/http"
	"strconv"

	"github.com/nkiryanov/behubadmin/internal/apperrors"
	"github.com/nkiryanov/behubadmin/internal/handlers/render"
	"github.com/nkiryanov/behubadmin/internal/logger"
	"github.com/nkiryanov/behubadmin/internal/models"
	"github.com/nkiryanov/behubadmin/internal/service/category"
)

type categoryResponse struct {
	Message  string                 `json:"message,omitempty"`
	Category models.ServiceCategory `json:"category"`
}

func handleListCategories(categoryService categoryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params, err := listParams(r)
		if err != nil {
			serviceError(w, err, l)
			return
		}

		page, err := categoryService.List(r.Context(), params)
		if err != nil {
			serviceError(w, err, l)
			return
		}

		render.JSON(w, page)
	})
}

func handleGetCategory(categoryService categoryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := categoryService.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			serviceError(w, err, l)
			return
		}

		render.JSON(w, categoryResponse{Category: c})
	})
}

func handleCreateCategory(categoryService categoryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Validated by the service: it knows the form rules
		in, err := render.Bind[category.Input](w, r)
		if err != nil {
			return
		}

		c, err := categoryService.Create(r.Context(), in)
		if err != nil {
			serviceError(w, err, l)
			return
		}

		render.JSONWithStatus(w, categoryResponse{Message: "Service category created successfully", Category: c}, http.StatusCreated)
	})
}

func handleUpdateCategory(categoryService categoryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		in, err := render.Bind[category.Input](w, r)
		if err != nil {
			return
		}

		c, err := categoryService.Update(r.Context(), r.PathValue("id"), in)
		if err != nil {
			serviceError(w, err, l)
			return
		}

		render.JSON(w, categoryResponse{Message: "Service category updated successfully", Category: c})
	})
}

func handleDeleteCategory(categoryService categoryService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := categoryService.Delete(r.Context(), r.PathValue("id")); err != nil {
			serviceError(w, err, l)
			return
		}

		render.JSON(w, messageResponse{Message: "Service category deleted successfully"})
	})
}

func handleBulkDeleteCategories(categoryService categoryService, l logger.Logger) http.Handler {
	type request struct {
		IDs []string `json:"ids" validate:"required,min=1,dive,required"`
	}
	type response struct {
		Message string `json:"message"`
		Deleted int    `json:"deleted"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		deleted, err := categoryService.DeleteMany(r.Context(), data.IDs)
		if err != nil {
			serviceError(w, err, l)
			return
		}

		render.JSON(w, response{Message: "Service categories deleted successfully", Deleted: deleted})
	})
}

// Read pagination, sorting and search from query string. Missing numbers get defaults in the service
func listParams(r *http.Request) (models.ListParams, error) {
	q := r.URL.Query()
	verr := &apperrors.ValidationError{StatusCode: http.StatusBadRequest, Message: "Invalid list parameters"}

	atoi := func(name string) int {
		raw := q.Get(name)
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			verr.Add(name, "Must be a positive integer")
		}
		return n
	}

	params := models.ListParams{
		Page:      atoi("page"),
		Limit:     atoi("limit"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		Search:    q.Get("search"),
	}
	if len(verr.Fields) > 0 {
		return params, verr
	}

	return params, nil
}
