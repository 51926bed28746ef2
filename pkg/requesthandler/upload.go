package requesthandler

import (
	"context"
	"net/http"
	"strings"

	"github.com/samvad-hq/samvad-request-kit/pkg/httpclient"
)

const (
	fieldSingleFile = "file"
	fieldFiles      = "files[]"
	defaultFileName = "file"
)

// File is a file supplied by the caller for upload.
type File struct {
	Name    string
	Content []byte
}

// UploadFiles sends a multipart POST to endpoint on the configured base URL. With singleFile only
// the first file is attached, under "file"; otherwise every file is attached under "files[]".
func (h *Handler) UploadFiles(ctx context.Context, endpoint string, fields map[string]string, files []File, singleFile bool) (any, error) {
	uri, err := resolveURL(h.baseURL, endpoint, nil)
	if err != nil {
		return nil, err
	}

	req := h.newRequest(http.MethodPost, uri, nil)
	req.Multipart = true
	req.FormFields = fields
	req.Files = fileParts(files, singleFile)

	return h.execute(ctx, req, translateJSON)
}

func fileParts(files []File, singleFile bool) []httpclient.FilePart {
	if len(files) == 0 {
		return nil
	}
	if singleFile {
		return []httpclient.FilePart{filePart(fieldSingleFile, files[0])}
	}
	parts := make([]httpclient.FilePart, 0, len(files))
	for _, f := range files {
		parts = append(parts, filePart(fieldFiles, f))
	}
	return parts
}

func filePart(field string, f File) httpclient.FilePart {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		name = defaultFileName
	}
	content := f.Content
	if content == nil {
		content = []byte{}
	}
	return httpclient.FilePart{Field: field, FileName: name, Content: content}
}
