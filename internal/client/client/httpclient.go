package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// HTTPClient is the Client implementation over the server's JSON API.
// It is not safe for concurrent use while the token changes.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewHTTPClient returns an HTTPClient for the given base URL, e.g.
// "http://localhost:8080". The timeout applies per request.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken installs the guest session token used on authenticated calls.
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// errorBody is the server's error response shape.
type errorBody struct {
	Error string `json:"error"`
}

// doJSON issues one request with an optional JSON body and returns the
// response status and raw body. Transport failures map to ErrUnavailable.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp.StatusCode, data, nil
}

// statusError maps a non-success status to a sentinel, carrying the
// server's error message when one was sent.
func statusError(status int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	msg := eb.Error
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case status >= 400 && status < 500:
		return fmt.Errorf("%w: %s", ErrBadRequest, msg)
	default:
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, status, msg)
	}
}

func (c *HTTPClient) Register(ctx context.Context, eventID, name string) (*GuestSession, error) {
	status, body, err := c.doJSON(ctx, http.MethodPost, "/api/events/"+eventID+"/register",
		map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, statusError(status, body)
	}

	var session GuestSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	c.token = session.Token
	return &session, nil
}

func (c *HTTPClient) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	status, body, err := c.doJSON(ctx, http.MethodGet, "/api/events/"+eventID, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, statusError(status, body)
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	return &event, nil
}

func (c *HTTPClient) ListPictures(ctx context.Context, eventID string, limit, offset int) ([]Picture, error) {
	path := "/api/events/" + eventID + "/pictures?limit=" + strconv.Itoa(limit) + "&offset=" + strconv.Itoa(offset)
	status, body, err := c.doJSON(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, statusError(status, body)
	}

	var pictures []Picture
	if err := json.Unmarshal(body, &pictures); err != nil {
		return nil, fmt.Errorf("failed to decode pictures: %w", err)
	}
	return pictures, nil
}

// uploadRequest is the request body of the upload endpoint.
type uploadRequest struct {
	Files             []InlineFile      `json:"files,omitempty"`
	FilesInformations []FileInformation `json:"filesInformations"`
}

// decodeBatchResult accepts both the clean 200 and the classified 422
// response, which carry the same three-list body.
func decodeBatchResult(status int, body []byte) (*BatchUploadResult, error) {
	if status != http.StatusOK && status != http.StatusUnprocessableEntity {
		return nil, statusError(status, body)
	}

	var result BatchUploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode upload result: %w", err)
	}
	return &result, nil
}

func (c *HTTPClient) UploadInline(ctx context.Context, eventID string, files []InlineFile, infos []FileInformation) (*BatchUploadResult, error) {
	status, body, err := c.doJSON(ctx, http.MethodPost, "/api/events/"+eventID+"/upload",
		uploadRequest{Files: files, FilesInformations: infos})
	if err != nil {
		return nil, err
	}
	return decodeBatchResult(status, body)
}

func (c *HTTPClient) Inquire(ctx context.Context, eventID string, infos []InquireFileInfo) ([]InquirePayload, error) {
	status, body, err := c.doJSON(ctx, http.MethodPost, "/api/events/"+eventID+"/inquire-upload", infos)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, statusError(status, body)
	}

	var payloads []InquirePayload
	if err := json.Unmarshal(body, &payloads); err != nil {
		return nil, fmt.Errorf("failed to decode inquiry payloads: %w", err)
	}
	return payloads, nil
}

func (c *HTTPClient) PutPresigned(ctx context.Context, url string, headers map[string]string, contentType string, data []byte, onProgress ProgressFunc) error {
	var body io.Reader = bytes.NewReader(data)
	if onProgress != nil {
		body = newProgressReader(body, int64(len(data)), onProgress)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return err
	}
	req.ContentLength = int64(len(data))
	req.Header.Set("Content-Type", contentType)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: presigned upload answered %s", ErrUnavailable, resp.Status)
	}
	return nil
}

func (c *HTTPClient) ConfirmUpload(ctx context.Context, eventID string, infos []FileInformation) (*BatchUploadResult, error) {
	status, body, err := c.doJSON(ctx, http.MethodPost, "/api/events/"+eventID+"/upload",
		uploadRequest{FilesInformations: infos})
	if err != nil {
		return nil, err
	}
	return decodeBatchResult(status, body)
}

func (c *HTTPClient) MagicDelete(ctx context.Context, eventID string, deleteIDs []string) (*MagicDeleteResult, error) {
	status, body, err := c.doJSON(ctx, http.MethodDelete, "/api/events/"+eventID+"/pictures/magic-delete",
		map[string][]string{"magicDeleteIds": deleteIDs})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, statusError(status, body)
	}

	var result MagicDeleteResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode delete result: %w", err)
	}
	return &result, nil
}
