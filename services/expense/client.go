// Package expense talks to the spreadsheet web app that records expenses.
package expense

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultTimeout bounds every call to the spreadsheet service.
const DefaultTimeout = 10 * time.Second

// dateLayout is the dd.mm.yyyy form the sheet expects.
const dateLayout = "02.01.2006"

// ServiceError is a failure reported by the service itself.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return "expense service returned an error"
	}
	return e.Message
}

// Expense is one row appended to a sheet.
type Expense struct {
	Sheet       string
	Contributor string
	Label       string
	Amount      decimal.Decimal
	Date        time.Time
}

// Client calls the spreadsheet web app.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient returns a client for the web app at baseURL. A zero timeout uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type sheetsResponse struct {
	Sheets []string `json:"sheets"`
}

type addExpenseRequest struct {
	Action     string      `json:"action"`
	SheetName  string      `json:"sheetName"`
	Contractor string      `json:"contractor"`
	Expense    string      `json:"expense"`
	Amount     json.Number `json:"amount"`
	Date       string      `json:"date"`
}

type addExpenseResponse struct {
	Result  string `json:"result"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Sheets lists every visible sheet tab, reserved ones included.
func (c *Client) Sheets(ctx context.Context) ([]string, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("expense: service URL not configured")
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("expense: parse service URL: %w", err)
	}
	q := u.Query()
	q.Set("action", "getSheets")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("expense: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("expense: get sheets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("expense: get sheets: unexpected status %d", resp.StatusCode)
	}
	var out sheetsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("expense: decode sheets: %w", err)
	}
	return out.Sheets, nil
}

// AddExpense appends e to its sheet. A "result":"error" reply is a *ServiceError.
func (c *Client) AddExpense(ctx context.Context, e Expense) error {
	if c.baseURL == "" {
		return fmt.Errorf("expense: service URL not configured")
	}
	date := e.Date
	if date.IsZero() {
		date = time.Now()
	}
	body, err := json.Marshal(addExpenseRequest{
		Action:     "addExpense",
		SheetName:  e.Sheet,
		Contractor: e.Contributor,
		Expense:    e.Label,
		Amount:     json.Number(e.Amount.String()),
		Date:       date.Format(dateLayout),
	})
	if err != nil {
		return fmt.Errorf("expense: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("expense: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("expense: add expense: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("expense: read response: %w", err)
	}
	var out addExpenseResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil && resp.StatusCode == http.StatusOK {
			return fmt.Errorf("expense: decode response: %w", err)
		}
	}
	if resp.StatusCode != http.StatusOK {
		msg := out.Message
		if msg == "" {
			msg = out.Error
		}
		if msg == "" {
			msg = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return &ServiceError{Message: msg}
	}
	if out.Result == "error" {
		return &ServiceError{Message: out.Message}
	}

	c.logger.Info("expense recorded",
		zap.String("sheet", e.Sheet),
		zap.String("amount", e.Amount.String()),
	)
	return nil
}
