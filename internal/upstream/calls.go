package upstream

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"call-dashboard/internal/records"
)

// ListCalls fetches the complete current collection of call records.
func (c *Client) ListCalls(ctx context.Context) ([]records.CallRecord, error) {
	var out []records.CallRecord
	if err := c.getJSON(ctx, "/calls/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCall submits a new record. The payload is JSON unless an attachment
// is present, in which case the whole record goes as multipart/form-data,
// matching the API's upload contract.
func (c *Client) CreateCall(ctx context.Context, draft records.CallRecord, att *records.Attachment) (records.CallRecord, error) {
	return c.submitCall(ctx, http.MethodPost, "/calls/", draft, att)
}

// UpdateCall replaces the record with the given id. Same encoding rule as
// CreateCall.
func (c *Client) UpdateCall(ctx context.Context, id string, draft records.CallRecord, att *records.Attachment) (records.CallRecord, error) {
	if id == "" {
		return records.CallRecord{}, &APIError{Kind: KindValidation, Message: "record id required"}
	}
	return c.submitCall(ctx, http.MethodPut, "/calls/"+url.PathEscape(id)+"/", draft, att)
}

// DeleteCall removes the record with the given id on the server.
func (c *Client) DeleteCall(ctx context.Context, id string) error {
	if id == "" {
		return &APIError{Kind: KindValidation, Message: "record id required"}
	}
	return c.do(ctx, http.MethodDelete, "/calls/"+url.PathEscape(id)+"/", nil, "", nil)
}

func (c *Client) submitCall(ctx context.Context, method, path string, draft records.CallRecord, att *records.Attachment) (records.CallRecord, error) {
	var created records.CallRecord
	if att == nil {
		if err := c.sendJSON(ctx, method, path, draft, &created); err != nil {
			return records.CallRecord{}, err
		}
		return created, nil
	}

	body, contentType, err := encodeCallForm(draft, att)
	if err != nil {
		return records.CallRecord{}, err
	}
	if err := c.do(ctx, method, path, body, contentType, &created); err != nil {
		return records.CallRecord{}, err
	}
	return created, nil
}

// encodeCallForm writes the record fields plus the recording file as
// multipart/form-data. Field names match the wire JSON names.
func encodeCallForm(draft records.CallRecord, att *records.Attachment) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := map[string]string{
		"customer_name": draft.CustomerName,
		"caller_name":   draft.CallerName,
		"number":        draft.Number,
		"email":         draft.Email,
		"address":       draft.Address,
		"time":          draft.Time,
		"date":          draft.Date,
		"duration":      draft.Duration,
		"status":        string(draft.Status),
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("upstream: form field %s: %w", name, err)
		}
	}

	part, err := w.CreateFormFile("recording", att.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("upstream: form file: %w", err)
	}
	if _, err := part.Write(att.Data); err != nil {
		return nil, "", fmt.Errorf("upstream: form file write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("upstream: closing form: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}
