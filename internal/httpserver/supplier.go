package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/Skotchmaster/diamond_shop/internal/middleware"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"github.com/Skotchmaster/diamond_shop/internal/upload"
	"github.com/labstack/echo/v4"
)

const maxCSVUpload = 32 << 20

func listInventory(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	f, err := diamondFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	err = ws.Inventory.Fetch(c.Request().Context(), f)
	return collection(c, ws.Inventory.Items, err)
}

func getInventoryItem(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	_, err := ws.Inventory.Get(c.Request().Context(), c.Param("stockId"))
	return entity(c, ws.Inventory.Detail, err)
}

// addInventory takes the raw manual-entry form; numeric strings are coerced
// by the inventory service.
func addInventory(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	form, err := decodeForm(c)
	if err != nil {
		return badRequest(c, "invalid body")
	}
	_, err = ws.Inventory.AddManual(c.Request().Context(), form)
	return mutated(c, ws.Inventory.Items, err, http.StatusCreated)
}

func updateInventory(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	form, err := decodeForm(c)
	if err != nil {
		return badRequest(c, "invalid body")
	}
	_, err = ws.Inventory.Update(c.Request().Context(), c.Param("stockId"), form)
	return mutated(c, ws.Inventory.Items, err, http.StatusOK)
}

func deleteInventory(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	err := ws.Inventory.Delete(c.Request().Context(), c.Param("stockId"))
	return mutated(c, ws.Inventory.Items, err, http.StatusOK)
}

func decodeForm(c echo.Context) (map[string]any, error) {
	var form map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&form); err != nil {
		return nil, err
	}
	return form, nil
}

func sellerOrders(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	err := ws.Orders.FetchSeller(c.Request().Context(), pageParam(c))
	return collection(c, ws.Orders.Seller, err)
}

func dashboard(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	_, err := ws.Dashboard.Fetch(c.Request().Context())
	return entity(c, ws.Dashboard.Stats, err)
}

func uploadView(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	return c.JSON(http.StatusOK, ws.Upload.Builder.View())
}

func discardUpload(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	ws.Upload.Builder.Discard()
	return c.JSON(http.StatusOK, ws.Upload.Builder.View())
}

type previewRequest struct {
	Kind upload.Kind                  `json:"kind"`
	HTTP *transport.HTTPSourceRequest `json:"http,omitempty"`
	FTP  *transport.FTPSourceRequest  `json:"ftp,omitempty"`
}

// previewUpload accepts a multipart CSV file under "file" or a JSON
// description of a remote HTTP/FTP source.
func previewUpload(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	src, err := previewSource(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	_, err = ws.Upload.Preview(c.Request().Context(), src)
	return c.JSON(statusFor(err), ws.Upload.Builder.View())
}

func previewSource(c echo.Context) (upload.Source, error) {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, errBadUpload("a csv file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxCSVUpload+1))
		if err != nil {
			return nil, err
		}
		if len(data) > maxCSVUpload {
			return nil, errBadUpload("csv file is too large")
		}
		return &upload.CSVSource{Filename: fh.Filename, Data: data}, nil
	}

	var req previewRequest
	if err := c.Bind(&req); err != nil {
		return nil, errBadUpload("invalid body")
	}
	switch {
	case req.Kind == upload.KindHTTP && req.HTTP != nil:
		return &upload.HTTPSource{HTTPSourceRequest: *req.HTTP}, nil
	case req.Kind == upload.KindFTP && req.FTP != nil:
		return &upload.FTPSource{FTPSourceRequest: *req.FTP}, nil
	}
	return nil, errBadUpload("kind must be http or ftp with a matching source")
}

type errBadUpload string

func (e errBadUpload) Error() string { return string(e) }

func autoMapUpload(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	ws.Upload.Builder.AutoMap()
	return c.JSON(http.StatusOK, ws.Upload.Builder.View())
}

// setUploadMapping applies field -> header pairs; an empty header unmaps the field.
func setUploadMapping(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	var m upload.Mapping
	if err := c.Bind(&m); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := ws.Upload.Builder.Apply(m); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status": "failed",
			"error":  err.Error(),
			"upload": ws.Upload.Builder.View(),
		})
	}
	return c.JSON(http.StatusOK, ws.Upload.Builder.View())
}

func submitUpload(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	_, err := ws.Upload.Submit(c.Request().Context())
	return c.JSON(statusFor(err), ws.Upload.Builder.View())
}
