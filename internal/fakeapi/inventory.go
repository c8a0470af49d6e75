package fakeapi

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/util"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (s *Server) listDiamonds(c echo.Context) error {
	search := strings.ToLower(c.QueryParam("search"))
	shapes := c.QueryParams()["shape"]
	minCarat := util.ParseFloatPtr(c.QueryParam("minCarat"))
	maxCarat := util.ParseFloatPtr(c.QueryParam("maxCarat"))
	minPrice := util.ParseFloatPtr(c.QueryParam("minPrice"))
	maxPrice := util.ParseFloatPtr(c.QueryParam("maxPrice"))

	s.mu.Lock()
	var out []models.Diamond
	for _, d := range s.diamonds {
		if d.Availability == models.AvailabilitySold {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(d.StockID+" "+d.Shape+" "+d.CertificateNumber), search) {
			continue
		}
		if len(shapes) > 0 && !containsFold(shapes, d.Shape) {
			continue
		}
		if (minCarat != nil && d.Carat < *minCarat) || (maxCarat != nil && d.Carat > *maxCarat) {
			continue
		}
		if (minPrice != nil && d.Price < *minPrice) || (maxPrice != nil && d.Price > *maxPrice) {
			continue
		}
		out = append(out, d)
	}
	s.mu.Unlock()

	page, limit, from, to := pageWindow(c, len(out))
	return c.JSON(http.StatusOK, echo.Map{
		"data":  nonNil(out[from:to]),
		"page":  page,
		"pages": util.TotalPages(len(out), limit),
		"count": len(out),
	})
}

func (s *Server) listOwnInventory(c echo.Context) error {
	me := current(c)
	s.mu.Lock()
	var out []models.Diamond
	for _, d := range s.diamonds {
		if me.Role == models.RoleAdmin || d.SupplierID == me.ID {
			out = append(out, d)
		}
	}
	s.mu.Unlock()

	page, limit, from, to := pageWindow(c, len(out))
	return c.JSON(http.StatusOK, echo.Map{
		"items": nonNil(out[from:to]),
		"page":  page,
		"pages": util.TotalPages(len(out), limit),
		"total": len(out),
	})
}

func (s *Server) getDiamond(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.diamondIndex(c.Param("stockId"))
	if i < 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Diamond not found"})
	}
	return c.JSON(http.StatusOK, s.diamonds[i])
}

func (s *Server) addDiamond(c echo.Context) error {
	var payload map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	d, err := diamondFromPayload(payload)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.diamondIndex(d.StockID) >= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Diamond with this stock ID already exists"})
	}
	d.ID = uuid.NewString()
	d.SupplierID = current(c).ID
	if d.Availability == "" {
		d.Availability = models.AvailabilityAvailable
	}
	s.diamonds = append(s.diamonds, d)
	return c.JSON(http.StatusCreated, d)
}

func (s *Server) updateDiamond(c echo.Context) error {
	var patch map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.diamondIndex(c.Param("stockId"))
	if i < 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Diamond not found"})
	}
	me := current(c)
	if me.Role != models.RoleAdmin && s.diamonds[i].SupplierID != me.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Not your inventory"})
	}

	merged := map[string]any{}
	raw, _ := json.Marshal(s.diamonds[i])
	_ = json.Unmarshal(raw, &merged)
	for k, v := range patch {
		merged[k] = v
	}
	merged["stockId"] = s.diamonds[i].StockID
	d, err := diamondFromPayload(merged)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	d.ID, d.SupplierID = s.diamonds[i].ID, s.diamonds[i].SupplierID
	s.diamonds[i] = d
	return c.JSON(http.StatusOK, d)
}

func (s *Server) deleteDiamond(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.diamondIndex(c.Param("stockId"))
	if i < 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Diamond not found"})
	}
	me := current(c)
	if me.Role != models.RoleAdmin && s.diamonds[i].SupplierID != me.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Not your inventory"})
	}
	s.diamonds = append(s.diamonds[:i], s.diamonds[i+1:]...)
	return c.JSON(http.StatusOK, echo.Map{"message": "Diamond removed"})
}

func (s *Server) uploadCSV(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "No file uploaded"})
	}
	var mapping map[string]string
	if err := json.Unmarshal([]byte(c.FormValue("mapping")), &mapping); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid mapping"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "no headers found"})
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
		}
		rows = append(rows, rec)
	}

	return c.JSON(http.StatusOK, s.importRows(current(c).ID, header, rows, mapping))
}

func (s *Server) uploadFeed(c echo.Context) error {
	var req struct {
		Source  json.RawMessage   `json:"source"`
		Mapping map[string]string `json:"mapping"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	s.mu.Lock()
	headers, rows := s.feedHeaders, s.feedRows
	s.mu.Unlock()
	if len(headers) == 0 {
		return c.JSON(http.StatusBadGateway, echo.Map{"message": "Could not read source"})
	}
	return c.JSON(http.StatusOK, s.importRows(current(c).ID, headers, rows, req.Mapping))
}

func (s *Server) previewFeed(c echo.Context) error {
	s.mu.Lock()
	headers := append([]string(nil), s.feedHeaders...)
	s.mu.Unlock()
	if len(headers) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "no headers found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"headers": headers})
}

func (s *Server) importRows(supplierID string, header []string, rows [][]string, mapping map[string]string) models.ImportSummary {
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}

	summary := models.ImportSummary{Total: len(rows), Errors: []models.ImportError{}}
	for n, rec := range rows {
		raw := map[string]any{}
		for i, h := range header {
			if i < len(rec) {
				raw[strings.TrimSpace(h)] = rec[i]
			}
		}

		form := map[string]any{}
		for field, h := range mapping {
			if i, ok := col[h]; ok && i < len(rec) {
				form[field] = rec[i]
			}
		}
		d, err := diamondFromPayload(util.CoerceNumeric(form))
		if err == nil {
			s.mu.Lock()
			if s.diamondIndex(d.StockID) >= 0 {
				err = fmt.Errorf("duplicate stock id %s", d.StockID)
			} else {
				d.ID = uuid.NewString()
				d.SupplierID = supplierID
				if d.Availability == "" {
					d.Availability = models.AvailabilityAvailable
				}
				s.diamonds = append(s.diamonds, d)
			}
			s.mu.Unlock()
		}
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, models.ImportError{Row: n + 1, Message: err.Error(), Data: raw})
			continue
		}
		summary.Succeeded++
	}
	return summary
}

func diamondFromPayload(payload map[string]any) (models.Diamond, error) {
	id, _ := payload["stockId"].(string)
	if strings.TrimSpace(id) == "" {
		return models.Diamond{}, errors.New("stockId is required")
	}
	carat, ok := payload["carat"].(float64)
	if !ok || carat <= 0 {
		return models.Diamond{}, errors.New("carat must be a positive number")
	}
	if p, ok := payload["price"]; ok {
		if _, isNum := p.(float64); !isNum {
			return models.Diamond{}, fmt.Errorf("price must be a number, got %s", strconv.Quote(fmt.Sprint(p)))
		}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return models.Diamond{}, err
	}
	var d models.Diamond
	if err := json.Unmarshal(raw, &d); err != nil {
		return models.Diamond{}, fmt.Errorf("invalid diamond: %w", err)
	}
	return d, nil
}

func (s *Server) diamondIndex(stockID string) int {
	for i, d := range s.diamonds {
		if d.StockID == stockID {
			return i
		}
	}
	return -1
}

func (s *Server) diamondByID(id string) (models.Diamond, bool) {
	for _, d := range s.diamonds {
		if d.ID == id || d.StockID == id {
			return d, true
		}
	}
	return models.Diamond{}, false
}

func containsFold(list []string, v string) bool {
	for _, it := range list {
		if strings.EqualFold(it, v) {
			return true
		}
	}
	return false
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
