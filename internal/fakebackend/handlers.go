package fakebackend

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rentora/access-layer/internal/core/domain"
)

type Order struct {
	ID       string `json:"id"`
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type orderList struct {
	Items []Order `json:"items"`
}

func (s *Server) listOrders(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Order, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, s.orders[id])
	}
	return c.JSON(http.StatusOK, orderList{Items: items})
}

func (s *Server) createOrder(c echo.Context) error {
	var o Order
	if err := c.Bind(&o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if o.Product == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "product is required")
	}
	o.ID = uuid.NewString()

	s.mu.Lock()
	s.orders[o.ID] = o
	s.order = append(s.order, o.ID)
	s.mu.Unlock()

	return c.JSON(http.StatusCreated, o)
}

func (s *Server) replaceOrder(c echo.Context) error {
	id := c.Param("id")
	var o Order
	if err := c.Bind(&o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}
	o.ID = id
	s.orders[id] = o
	return c.JSON(http.StatusOK, o)
}

func (s *Server) deleteOrder(c echo.Context) error {
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}
	delete(s.orders, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) reports(c echo.Context) error {
	s.mu.Lock()
	count := len(s.orders)
	s.mu.Unlock()

	return c.JSON(http.StatusOK, map[string]any{
		"reports": []map[string]any{
			{"name": "open-orders", "value": count},
		},
	})
}

func (s *Server) exportProduct(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, s.export)
}

type uploadResult struct {
	Fields map[string]string `json:"fields"`
	Files  int               `json:"files"`
	Bytes  int64             `json:"bytes"`
}

func (s *Server) upload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart form expected")
	}

	res := uploadResult{Fields: make(map[string]string, len(form.Value))}
	for k, v := range form.Value {
		if len(v) > 0 {
			res.Fields[k] = v[0]
		}
	}
	for _, headers := range form.File {
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				return err
			}
			n, err := io.Copy(io.Discard, f)
			f.Close()
			if err != nil {
				return err
			}
			res.Files++
			res.Bytes += n
		}
	}
	return c.JSON(http.StatusCreated, res)
}

func (s *Server) metadata(c echo.Context) error {
	kind, slug := c.QueryParam("type"), c.QueryParam("slug")
	if kind == "" || slug == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "type and slug are required")
	}

	title := strings.ReplaceAll(slug, "-", " ")
	return c.JSON(http.StatusOK, domain.Metadata{
		Title:       fmt.Sprintf("%s | %s", title, kind),
		Description: fmt.Sprintf("Rent %s on the marketplace.", title),
		Keywords:    []string{kind, slug},
		OGTitle:     title,
	})
}
