package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tourbook/internal/domain"
	"tourbook/internal/domain/models"
	"tourbook/internal/repositories"
)

const (
	earthRadiusMiles = 3963.2
	earthRadiusKm    = 6378.1
)

type Tours struct {
	CRUD CRUD[models.Tour]
	Repo *repositories.TourRepository
}

func NewTours(repo *repositories.TourRepository, reviews *repositories.ReviewRepository) Tours {
	return Tours{
		CRUD: CRUD[models.Tour]{
			Store:      repo.Repository,
			Resource:   "tour",
			Filterable: repositories.TourFilterFields,
			IDParam:    "tourId",
			ExpandOne:  expandTourReviews(reviews),
		},
		Repo: repo,
	}
}

// expandTourReviews attaches the tour's reviews (with their authors) on
// single-tour reads. List reads stay lean.
func expandTourReviews(reviews *repositories.ReviewRepository) func(c *gin.Context, tour *models.Tour) error {
	return func(c *gin.Context, tour *models.Tour) error {
		list, err := reviews.FindByTour(c.Request.Context(), tour.ID)
		if err != nil {
			return err
		}
		if err := reviews.AttachAuthors(c.Request.Context(), list); err != nil {
			return err
		}
		tour.Reviews = list
		return nil
	}
}

// AliasTopCheap presets the query for the five cheapest tours.
func (h Tours) AliasTopCheap(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set("limit", "5")
	q.Set("sort", "price,ratingsAverage")
	q.Set("fields", "name,ratingsAverage,price,difficulty,duration,summary")
	c.Request.URL.RawQuery = q.Encode()
}

// AliasTopRated presets the query for the five best-rated tours.
func (h Tours) AliasTopRated(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set("limit", "5")
	q.Set("sort", "-ratingsAverage")
	q.Set("fields", "name,ratingsAverage,price,difficulty,duration,summary")
	c.Request.URL.RawQuery = q.Encode()
}

// GET /api/v1/tours/stats
func (h Tours) Stats(c *gin.Context) {
	stats, err := h.Repo.Stats(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, gin.H{"stats": stats})
}

// GET /api/v1/tours/monthly-plan/:year
func (h Tours) MonthlyPlan(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		Error(c, domain.ValidationError{Field: "year", Msg: "must be a number"})
		return
	}

	plan, err := h.Repo.MonthlyPlan(c.Request.Context(), year)
	if err != nil {
		Error(c, err)
		return
	}
	SuccessList(c, http.StatusOK, len(plan), gin.H{"plan": plan})
}

// GET /api/v1/tours/tours-within/:distance/center/:latlng/unit/:unit
func (h Tours) Within(c *gin.Context) {
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil {
		Error(c, domain.ValidationError{Field: "distance", Msg: "must be a number"})
		return
	}
	lat, lng, err := parseLatLng(c.Param("latlng"))
	if err != nil {
		Error(c, err)
		return
	}

	// radius in radians: distance divided by the earth's radius
	radius := distance / earthRadiusKm
	if c.Param("unit") == "mi" {
		radius = distance / earthRadiusMiles
	}

	tours, err := h.Repo.Within(c.Request.Context(), lat, lng, radius)
	if err != nil {
		Error(c, err)
		return
	}
	SuccessList(c, http.StatusOK, len(tours), gin.H{"data": tours})
}

// GET /api/v1/tours/distances/:latlng/unit/:unit
func (h Tours) Distances(c *gin.Context) {
	lat, lng, err := parseLatLng(c.Param("latlng"))
	if err != nil {
		Error(c, err)
		return
	}

	// geoNear reports metres; convert to km or miles
	multiplier := 0.001
	if c.Param("unit") == "mi" {
		multiplier = 0.000621371
	}

	distances, err := h.Repo.Distances(c.Request.Context(), lat, lng, multiplier)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, http.StatusOK, gin.H{"data": distances})
}

func parseLatLng(raw string) (lat, lng float64, err error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, domain.ValidationError{Field: "latlng", Msg: "provide latitude and longitude in the format lat,lng"}
	}
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if latErr != nil || lngErr != nil {
		return 0, 0, domain.ValidationError{Field: "latlng", Msg: "provide latitude and longitude in the format lat,lng"}
	}
	return lat, lng, nil
}
