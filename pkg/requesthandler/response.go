package requesthandler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/samvad-hq/samvad-request-kit/pkg/apierror"
	"github.com/samvad-hq/samvad-request-kit/pkg/httpclient"
)

// translateJSON decodes the body and maps the status code to a result or a failure.
// Only 200 and 201 succeed, and only with an object or array payload.
func translateJSON(resp httpclient.Response) (any, error) {
	status := resp.StatusCode()
	decoded, decodeErr := decodeJSON(resp.Body())

	switch status {
	case http.StatusOK, http.StatusCreated:
		if decodeErr != nil {
			return nil, apierror.Wrap("Invalid JSON response", status, decodeErr)
		}
		switch decoded.(type) {
		case map[string]any, []any:
			return decoded, nil
		}
		return nil, apierror.New("Unexpected response format", status)
	default:
		// A non-JSON error body carries no message; the status still picks the kind.
		return nil, apierror.FromStatus(status, messageOf(decoded))
	}
}

func translateDownload(resp httpclient.Response) (any, error) {
	if resp.StatusCode() != http.StatusOK {
		return nil, apierror.BadRequest(fmt.Sprintf("Failed to download file: status code %d", resp.StatusCode()))
	}
	body := resp.Body()
	if body == nil {
		body = []byte{}
	}
	return body, nil
}

func decodeJSON(body []byte) (any, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// messageOf returns body["message"] when body is an object carrying one.
func messageOf(decoded any) string {
	m, ok := decoded.(map[string]any)
	if !ok {
		return ""
	}
	switch msg := m["message"].(type) {
	case nil:
		return ""
	case string:
		return msg
	default:
		return fmt.Sprint(msg)
	}
}
