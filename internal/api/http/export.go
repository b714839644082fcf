package httpapi

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jmle94/openaq-dashboard/internal/airquality"
	"github.com/jmle94/openaq-dashboard/internal/openaq"
)

var exportColumns = []string{"locationId", "parameter", "value", "unit", "datetime"}

func registerExportRoutes(v1 fiber.Router, service *airquality.Service) {
	v1.Get("/export/measurements.csv", func(c *fiber.Ctx) error {
		var q measurementsQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		recs, err := service.Measurements(c.Context(), q.toQuery())
		if err != nil {
			return upstreamError(err)
		}

		body, err := measurementsCSV(recs)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to build export")
		}

		filename := fmt.Sprintf("openaq_measurements_%s.csv", time.Now().UTC().Format("20060102_150405"))
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
		return c.Send(body)
	})
}

func measurementsCSV(records []openaq.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportColumns); err != nil {
		return nil, err
	}

	for _, r := range records {
		row := make([]string, len(exportColumns))

		if id, ok := airquality.RecordID(r, "locationId"); ok {
			row[0] = strconv.FormatInt(id, 10)
		}
		if param, ok := airquality.RecordParameter(r); ok {
			row[1] = param
		}
		if v, ok := airquality.RecordFloat(r, "value"); ok {
			row[2] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if unit, ok := airquality.RecordString(r, "unit"); ok {
			row[3] = unit
		}
		if ts, ok := airquality.RecordDatetime(r); ok {
			row[4] = ts
		}

		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
