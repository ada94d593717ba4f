// Package api is a client for the receipt processing API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/zombor/receipt-uploader/internal/receipt"
)

// Error is a failure reported by the API, either through a non-2xx status
// or a body with success set to false.
type Error struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// Validation is the outcome of the validate call
type Validation struct {
	IsValid bool
	Reason  string
}

// Processed is the outcome of the process call
type Processed struct {
	ReceiptID receipt.ID
	Receipt   receipt.ReceiptRecord
}

// Client talks to the receipt API
type Client struct {
	baseURL  string
	client   *http.Client
	timeout  time.Duration
	username string
	password string
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout. Zero, the default, disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithBasicAuth sends basic auth credentials on every request
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithHTTPClient sends requests through a copy of hc. hc itself is never
// modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// NewClient creates a new Client for the API rooted at baseURL
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api url must be absolute: %q", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.client
	hc.Timeout = c.timeout
	c.client = &hc
	return c, nil
}

// envelope holds the fields every API response shares
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type uploadResponse struct {
	envelope
	FileID receipt.ID `json:"file_id"`
}

type validateResponse struct {
	envelope
	IsValid bool `json:"is_valid"`
}

type processResponse struct {
	envelope
	ReceiptID   receipt.ID            `json:"receipt_id"`
	ReceiptData receipt.ReceiptRecord `json:"receipt_data"`
}

type listResponse struct {
	envelope
	Receipts []receipt.ReceiptSummary `json:"receipts"`
}

type fileRequest struct {
	FileID receipt.ID `json:"file_id"`
}

// Upload sends the file as multipart form data and returns the file id
func (c *Client) Upload(ctx context.Context, file *receipt.File) (receipt.ID, error) {
	if file == nil {
		return "", errors.New("no file to upload")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(file.Name)))
	header.Set("Content-Type", file.ContentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("creating form part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return "", fmt.Errorf("writing form part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("closing form: %w", err)
	}

	var resp uploadResponse
	if err := c.do(ctx, "upload", http.MethodPost, "/api/upload", writer.FormDataContentType(), &body, &resp, "Failed to upload file"); err != nil {
		return "", err
	}
	return resp.FileID, nil
}

// Validate asks the API whether the uploaded file is a usable PDF.
// An invalid file is not an error.
func (c *Client) Validate(ctx context.Context, fileID receipt.ID) (Validation, error) {
	var resp validateResponse
	if err := c.postJSON(ctx, "validate", "/api/validate", fileRequest{FileID: fileID}, &resp, "Failed to validate PDF"); err != nil {
		return Validation{}, err
	}
	return Validation{IsValid: resp.IsValid, Reason: resp.Error}, nil
}

// Process extracts the receipt from the uploaded file
func (c *Client) Process(ctx context.Context, fileID receipt.ID) (*Processed, error) {
	var resp processResponse
	if err := c.postJSON(ctx, "process", "/api/process", fileRequest{FileID: fileID}, &resp, "Failed to process receipt"); err != nil {
		return nil, err
	}
	return &Processed{ReceiptID: resp.ReceiptID, Receipt: resp.ReceiptData}, nil
}

// ListReceipts returns the summaries of all stored receipts
func (c *Client) ListReceipts(ctx context.Context) ([]receipt.ReceiptSummary, error) {
	var resp listResponse
	if err := c.do(ctx, "list receipts", http.MethodGet, "/api/receipts", "", nil, &resp, "Failed to load receipts"); err != nil {
		return nil, err
	}
	if resp.Receipts == nil {
		resp.Receipts = []receipt.ReceiptSummary{}
	}
	return resp.Receipts, nil
}

// DetailURL returns the page showing a single receipt
func (c *Client) DetailURL(id receipt.ID) string {
	return fmt.Sprintf("%s/receipt/%s", c.baseURL, url.PathEscape(string(id)))
}

func (c *Client) postJSON(ctx context.Context, op, path string, payload any, out response, fallback string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	return c.do(ctx, op, http.MethodPost, path, "application/json", bytes.NewReader(data), out, fallback)
}

// response is implemented by every decoded API payload
type response interface {
	failure() (bool, string)
}

func (e *envelope) failure() (bool, string) {
	return !e.Success, e.Error
}

// do sends the request and decodes the envelope. The decoded server error
// message is preferred over the fallback message.
func (c *Client) do(ctx context.Context, op, method, path, contentType string, body io.Reader, out response, fallback string) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", op, err)
	}

	decodeErr := json.Unmarshal(raw, out)
	failed, message := out.failure()
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	if decodeErr != nil {
		if ok {
			return fmt.Errorf("decoding %s response: %w", op, decodeErr)
		}
		message = ""
	}
	if !ok || failed {
		if message == "" {
			message = fallback
		}
		return &Error{Op: op, StatusCode: resp.StatusCode, Message: message}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
