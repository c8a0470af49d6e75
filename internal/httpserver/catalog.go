package httpserver

import (
	"fmt"
	"strconv"

	"github.com/Skotchmaster/diamond_shop/internal/middleware"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"github.com/labstack/echo/v4"
)

func listDiamonds(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	f, err := diamondFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	err = ws.Catalog.Browse(c.Request().Context(), f)
	return collection(c, ws.Catalog.Diamonds, err)
}

func getDiamond(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	_, err := ws.Catalog.Diamond(c.Request().Context(), c.Param("stockId"))
	return entity(c, ws.Catalog.Detail, err)
}

func diamondFilter(c echo.Context) (transport.DiamondFilter, error) {
	var f transport.DiamondFilter
	err := echo.QueryParamsBinder(c).
		Int("page", &f.Page).
		Int("limit", &f.Limit).
		String("search", &f.Search).
		Strings("shape", &f.Shapes).
		Strings("color", &f.Colors).
		Strings("clarity", &f.Clarity).
		Strings("cut", &f.Cut).
		BindError()
	if err != nil {
		return f, err
	}
	for name, dst := range map[string]**float64{
		"minPrice": &f.MinPrice,
		"maxPrice": &f.MaxPrice,
		"minCarat": &f.MinCarat,
		"maxCarat": &f.MaxCarat,
	} {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return f, fmt.Errorf("invalid %s: %q", name, raw)
		}
		*dst = &v
	}
	return f, nil
}

func pageParam(c echo.Context) int {
	p, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || p < 1 {
		return 1
	}
	return p
}
