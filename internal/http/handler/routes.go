package handler

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"savesignal/internal/model"
	"savesignal/internal/service"
)

// createRecordRequest is the body of POST /records.
type createRecordRequest struct {
	Name string `json:"name" example:"Test"`
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// gatherer may be nil, in which case /metrics is not exposed.
func RegisterRoutes(app *fiber.App, db *sql.DB, recSvc service.RecordService, gatherer prometheus.Gatherer) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	if gatherer != nil {
		app.Get("/metrics", Metrics(gatherer))
	}

	app.Get("/records", ListRecords(recSvc))
	app.Post("/records", CreateRecord(recSvc))
	app.Get("/records/:id", GetRecord(recSvc))
	app.Delete("/records/:id", DeleteRecord(recSvc))
}

// HealthCheck checks DB connectivity only.
//
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if db == nil || db.PingContext(ctx) != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200.
//
// @Summary Liveness probe
// @Tags health
// @Success 200
// @Router /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Metrics serves the Prometheus exposition format for gatherer.
func Metrics(gatherer prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

// ListRecords lists records with limit & offset.
//
// @Summary List records
// @Tags records
// @Produce json
// @Param limit query int false "page size" default(10)
// @Param offset query int false "rows to skip" default(0)
// @Success 200 {object} service.RecordListResult
// @Failure 400 {object} errorPayload
// @Router /records [get]
func ListRecords(recSvc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := recSvc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// CreateRecord stores a record. The response is sent only after every
// post_save receiver returned.
//
// @Summary Create a record
// @Tags records
// @Accept json
// @Produce json
// @Param record body createRecordRequest true "record to create"
// @Success 201 {object} model.Record
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /records [post]
func CreateRecord(recSvc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createRecordRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		rec, err := recSvc.Create(c.UserContext(), req.Name)
		switch {
		case err == nil:
			return c.Status(fiber.StatusCreated).JSON(rec)
		case errors.Is(err, model.ErrNameRequired):
			return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "name is required")
		case errors.Is(err, model.ErrNameTooLong):
			return writeError(c, fiber.StatusBadRequest, "NAME_TOO_LONG", "name exceeds 100 characters")
		case errors.Is(err, service.ErrSignal):
			return writeError(c, fiber.StatusInternalServerError, "SIGNAL_FAILED", "signal receiver failed")
		default:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
	}
}

// GetRecord returns a record by ID.
//
// @Summary Get a record
// @Tags records
// @Produce json
// @Param id path string true "record ID (UUID)"
// @Success 200 {object} model.Record
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /records/{id} [get]
func GetRecord(recSvc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Outlives the request on the service span.
		id := utils.CopyString(c.Params("id"))
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rec, err := recSvc.Get(c.UserContext(), id)
		if err != nil {
			if isNotFound(err) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "record not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(rec)
	}
}

// DeleteRecord removes a record by ID.
//
// @Summary Delete a record
// @Tags records
// @Param id path string true "record ID (UUID)"
// @Success 204
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /records/{id} [delete]
func DeleteRecord(recSvc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Outlives the request on the service span.
		id := utils.CopyString(c.Params("id"))
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := recSvc.Delete(c.UserContext(), id); err != nil {
			if isNotFound(err) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "record not found")
			}
			if errors.Is(err, service.ErrSignal) {
				return writeError(c, fiber.StatusInternalServerError, "SIGNAL_FAILED", "signal receiver failed")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, service.ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}
