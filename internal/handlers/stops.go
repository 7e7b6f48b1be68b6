package handlers

import (
	"errors"
	"fmt"
	"log"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/busstopapi/internal/models"
	"github.com/yourorg/busstopapi/internal/stops"
	"github.com/yourorg/busstopapi/internal/validation"
)

// StopsHandler maps HTTP requests onto the stops query engine.
type StopsHandler struct {
	svc      *stops.Service
	validate *validator.Validate
}

// NewStopsHandler creates the handler with its own validator instance.
// Violations are reported under the query-param name, not the Go field
// name, so 422 detail matches what the client actually sent.
func NewStopsHandler(svc *stops.Service) *StopsHandler {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &StopsHandler{
		svc:      svc,
		validate: validate,
	}
}

type listStopsParams struct {
	Limit  int    `query:"limit" validate:"gte=1,lte=1000"`
	Offset int    `query:"offset" validate:"gte=0"`
	Name   string `query:"name"`
}

type nearbyByNameParams struct {
	StopName string  `query:"stop_name" validate:"required"`
	RadiusM  float64 `query:"radius_m" validate:"gte=0"`
	Limit    int     `query:"limit" validate:"gte=1,lte=200"`
}

type nearbyByCoordsParams struct {
	Lat     *float64 `query:"lat" validate:"required"`
	Lon     *float64 `query:"lon" validate:"required"`
	RadiusM float64  `query:"radius_m" validate:"gte=0"`
	Limit   int      `query:"limit" validate:"gte=1,lte=200"`
}

// ListStops handles GET /stops: paginated listing with an optional
// case-insensitive partial name filter.
func (h *StopsHandler) ListStops(c *fiber.Ctx) error {
	params := listStopsParams{Limit: stops.DefaultListLimit, Offset: 0}
	if err := c.QueryParser(&params); err != nil {
		return malformedParams(c)
	}
	if err := h.validate.Struct(params); err != nil {
		return invalidParams(c, err)
	}

	resp, err := h.svc.List(params.Limit, params.Offset, params.Name)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// GetStopByCode handles GET /stops/code/:stop_code: full details of a
// single stop, including its projected coordinates.
func (h *StopsHandler) GetStopByCode(c *fiber.Ctx) error {
	code, err := strconv.Atoi(c.Params("stop_code"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Detail: "stop_code must be an integer",
		})
	}

	resp, err := h.svc.GetByCode(code)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// NearbyByName handles GET /stops/nearby/by-name: resolves the reference
// stop from a partial name, then returns stops within radius_m of it.
func (h *StopsHandler) NearbyByName(c *fiber.Ctx) error {
	params := nearbyByNameParams{RadiusM: stops.DefaultNearbyRadiusM, Limit: stops.DefaultNearbyLimit}
	if err := c.QueryParser(&params); err != nil {
		return malformedParams(c)
	}
	if err := h.validate.Struct(params); err != nil {
		return invalidParams(c, err)
	}

	resp, err := h.svc.NearbyByName(params.StopName, params.RadiusM, params.Limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// NearbyByCoords handles GET /stops/nearby/by-coords: stops within
// radius_m of the given point. An empty result set is a valid 200.
func (h *StopsHandler) NearbyByCoords(c *fiber.Ctx) error {
	params := nearbyByCoordsParams{RadiusM: stops.DefaultNearbyRadiusM, Limit: stops.DefaultNearbyLimit}
	if err := c.QueryParser(&params); err != nil {
		return malformedParams(c)
	}
	if err := h.validate.Struct(params); err != nil {
		return invalidParams(c, err)
	}
	if err := validation.ValidateCoordinatePair(*params.Lat, *params.Lon); err != nil {
		return coordinateError(c, err)
	}

	resp, err := h.svc.NearbyByCoords(*params.Lat, *params.Lon, params.RadiusM, params.Limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(resp)
}

// malformedParams covers values the query parser cannot even bind, e.g.
// limit=abc.
func malformedParams(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Detail: "malformed query parameters",
	})
}

// invalidParams converts validator violations into field-level 422 detail.
func invalidParams(c *fiber.Ctx, err error) error {
	fields := make([]models.FieldError, 0)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			msg := "failed '" + fe.Tag() + "' constraint"
			if fe.Param() != "" {
				msg = fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param())
			}
			fields = append(fields, models.FieldError{
				Field:   fe.Field(),
				Message: msg,
			})
		}
	} else {
		fields = append(fields, models.FieldError{Field: "query", Message: err.Error()})
	}

	return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ValidationErrorResponse{
		Detail: fields,
	})
}

// coordinateError maps a CoordinateError onto the same 422 shape.
func coordinateError(c *fiber.Ctx, err error) error {
	var cerr *validation.CoordinateError
	if errors.As(err, &cerr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ValidationErrorResponse{
			Detail: []models.FieldError{{Field: cerr.Field, Message: cerr.Message}},
		})
	}
	return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ValidationErrorResponse{
		Detail: []models.FieldError{{Field: "query", Message: err.Error()}},
	})
}

// serviceError maps engine failures 1:1 to HTTP: NotFound becomes a 404
// with its detail; anything else is a 500 with no internals leaked.
func serviceError(c *fiber.Ctx, err error) error {
	var nf *stops.NotFoundError
	if errors.As(err, &nf) {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Detail: nf.Detail})
	}

	log.Printf("stops query failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Detail: "Internal Server Error",
	})
}
