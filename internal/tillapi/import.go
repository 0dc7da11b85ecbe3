package tillapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
)

type importResponse struct {
	Imported int `json:"imported"`
}

// ImportCatalog uploads a catalog export to the server and returns how many
// products it upserted.
func (c *Client) ImportCatalog(ctx context.Context, format, filename string, r io.Reader) (int, error) {
	var body bytes.Buffer

	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("format", format); err != nil {
		return 0, fmt.Errorf("writing form: %w", err)
	}

	fw, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return 0, fmt.Errorf("writing form: %w", err)
	}

	if _, err := io.Copy(fw, r); err != nil {
		return 0, fmt.Errorf("reading catalog: %w", err)
	}

	if err := mw.Close(); err != nil {
		return 0, fmt.Errorf("writing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/products/import", &body)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp importResponse
	if err := c.send(req, &resp); err != nil {
		return 0, err
	}

	return resp.Imported, nil
}
