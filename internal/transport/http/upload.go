package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	apierrors "stockpulse/internal/errors"
	"stockpulse/internal/middleware"
	"stockpulse/internal/services"
)

// Multipart form fields
const (
	fieldFile     = "file"
	fieldProducts = "products"
	fieldSizes    = "sizes"
)

// defaultMaxMemory is how much of a multipart body is kept in memory
// before parts spill to temporary files
const defaultMaxMemory = 32 << 20

// paramKeys are the ingest parameters read from the query string or form
var paramKeys = []string{"action", "mode", "convention", "suppress_empty", "sheet", "sku", "store"}

// uploadMeta is validated before any part is read
type uploadMeta struct {
	FileName string `form:"file" validate:"required,filename"`
}

// upload is a parsed multipart inventory request. Close releases the
// opened parts and any temporary files.
type upload struct {
	services.Upload
	params services.IngestParams
	size   int64
	closer []io.Closer
	form   *multipart.Form
}

func (u *upload) Close() {
	for _, c := range u.closer {
		_ = c.Close()
	}
	if u.form != nil {
		_ = u.form.RemoveAll()
	}
}

// readBytes drains a part fully; used when the payload outlives the request
func (u *upload) readBytes(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	return io.ReadAll(r)
}

// parseUpload reads the multipart form: the inventory under "file", optional
// dictionaries under "products" and "sizes", parameters from the query
// string with form values as fallback.
func parseUpload(r *http.Request, maxMemory int64, v *middleware.Validator) (*upload, error) {
	if maxMemory <= 0 {
		maxMemory = defaultMaxMemory
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxBytes *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytes):
			return nil, err
		case errors.Is(err, http.ErrNotMultipart):
			return nil, apierrors.ErrUnsupportedFormat
		default:
			return nil, apierrors.InvalidRequestWithError(err)
		}
	}

	u := &upload{form: r.MultipartForm}

	values := make(map[string]string, len(paramKeys))
	query := r.URL.Query()
	for _, key := range paramKeys {
		if val := query.Get(key); val != "" {
			values[key] = val
		} else if val := r.FormValue(key); val != "" {
			values[key] = val
		}
	}
	params, err := services.ParseIngestParams(values)
	if err != nil {
		u.Close()
		return nil, err
	}
	if err := v.ValidateStruct(params); err != nil {
		u.Close()
		return nil, err
	}
	u.params = params

	file, header, err := r.FormFile(fieldFile)
	if err != nil {
		u.Close()
		if errors.Is(err, http.ErrMissingFile) {
			return nil, apierrors.ErrValidation(fieldFile, "an inventory file is required")
		}
		return nil, apierrors.InvalidRequestWithError(err)
	}
	u.closer = append(u.closer, file)
	if err := v.ValidateStruct(uploadMeta{FileName: header.Filename}); err != nil {
		u.Close()
		return nil, err
	}
	if header.Size == 0 {
		u.Close()
		return nil, apierrors.ErrEmptyUpload
	}
	u.Name = header.Filename
	u.Data = file
	u.size = header.Size

	for field, dst := range map[string]*io.Reader{fieldProducts: &u.Products, fieldSizes: &u.Sizes} {
		part, _, err := r.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			u.Close()
			return nil, apierrors.InvalidRequestWithError(fmt.Errorf("%s: %w", field, err))
		}
		u.closer = append(u.closer, part)
		*dst = part
	}

	return u, nil
}
