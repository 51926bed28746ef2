package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/samvad-hq/samvad-request-kit/pkg/requesthandler"
)

// Operation names accepted by Runtime.Do.
const (
	OpGet      = "GET"
	OpPost     = "POST"
	OpPut      = "PUT"
	OpDelete   = "DELETE"
	OpDownload = "DOWNLOAD"
	OpUpload   = "UPLOAD"
)

// Invocation describes one handler operation.
type Invocation struct {
	Operation string
	Endpoint  string
	Query     map[string]string
	Body      any
	// BaseURL overrides the configured base URL; only POST and DOWNLOAD accept it.
	BaseURL    string
	Fields     map[string]string
	Files      []requesthandler.File
	SingleFile bool
}

// Result carries the decoded payload, or the raw bytes for downloads.
type Result struct {
	Payload any
	Raw     []byte
}

// Do performs inv through the handler.
func (r *Runtime) Do(ctx context.Context, inv Invocation) (Result, error) {
	if r == nil || r.handler == nil {
		return Result{}, fmt.Errorf("runtime is not initialized")
	}

	op := strings.ToUpper(strings.TrimSpace(inv.Operation))
	var callOpts []requesthandler.CallOption
	if base := strings.TrimSpace(inv.BaseURL); base != "" {
		if op != OpPost && op != OpDownload {
			return Result{}, fmt.Errorf("custom base url is only supported for %s and %s", OpPost, OpDownload)
		}
		callOpts = append(callOpts, requesthandler.WithCustomBaseURL(base))
	}

	h := r.handler
	var (
		payload any
		err     error
	)
	switch op {
	case OpGet:
		payload, err = h.Get(ctx, inv.Endpoint, inv.Query)
	case OpPost:
		payload, err = h.Post(ctx, inv.Endpoint, inv.Body, callOpts...)
	case OpPut:
		payload, err = h.Put(ctx, inv.Endpoint, inv.Body)
	case OpDelete:
		payload, err = h.Delete(ctx, inv.Endpoint, inv.Body)
	case OpUpload:
		payload, err = h.UploadFiles(ctx, inv.Endpoint, inv.Fields, inv.Files, inv.SingleFile)
	case OpDownload:
		raw, dlErr := h.DownloadFile(ctx, inv.Endpoint, inv.Body, callOpts...)
		if dlErr != nil {
			return Result{}, dlErr
		}
		return Result{Raw: raw}, nil
	default:
		return Result{}, fmt.Errorf("unsupported operation %q", inv.Operation)
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Payload: payload}, nil
}
