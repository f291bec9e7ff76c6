package rit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gitlab.com/dsuarezf/crzybot/models"
)

// RITService talks to the trading simulator's REST API. One instance holds
// the authenticated session shared by every call in a cycle.
type RITService struct {
	client        *http.Client
	baseURL       string
	apiKey        string
	positionLimit float64
}

func init() {
	cwd, _ := os.Getwd()
	_ = godotenv.Load(cwd + "/conf.env")
}

func NewRITService() *RITService {
	host := os.Getenv("ritHost")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("ritPort")
	if port == "" {
		port = "9999"
	}
	positionLimit, err := strconv.ParseFloat(os.Getenv("positionLimit"), 64)
	if err != nil {
		positionLimit = 25000
	}

	return &RITService{
		client:        &http.Client{Timeout: 5 * time.Second},
		baseURL:       fmt.Sprintf("http://%s:%s/v1", host, port),
		apiKey:        os.Getenv("ritAPIKey"),
		positionLimit: positionLimit,
	}
}

func NewRITServiceWithConfig(baseURL string, apiKey string, positionLimit float64) *RITService {
	return &RITService{
		client:        &http.Client{Timeout: 5 * time.Second},
		baseURL:       baseURL,
		apiKey:        apiKey,
		positionLimit: positionLimit,
	}
}

func (ritService *RITService) GetCase(ctx context.Context) (models.Case, error) {
	var currentCase models.Case
	err := ritService.get(ctx, "/case", nil, &currentCase)
	return currentCase, err
}

// GetLimits returns the LIMIT-STOCK entry. When the case doesn't publish it,
// the configured position limit stands in for both caps.
func (ritService *RITService) GetLimits(ctx context.Context) (models.LimitState, error) {
	var limits []models.LimitState
	err := ritService.get(ctx, "/limits", nil, &limits)
	if err != nil {
		return models.LimitState{}, err
	}

	for _, limit := range limits {
		if limit.Name == "LIMIT-STOCK" {
			return limit, nil
		}
	}

	return models.LimitState{
		Name:       "LIMIT-STOCK",
		GrossLimit: ritService.positionLimit,
		NetLimit:   ritService.positionLimit,
	}, nil
}

func (ritService *RITService) GetSecurities(ctx context.Context) ([]models.Security, error) {
	var securities []models.Security
	err := ritService.get(ctx, "/securities", nil, &securities)
	return securities, err
}

func (ritService *RITService) GetSecurity(ctx context.Context, ticker string) (models.Security, error) {
	var securities []models.Security
	query := url.Values{}
	query.Set("ticker", ticker)
	err := ritService.get(ctx, "/securities", query, &securities)
	if err != nil {
		return models.Security{}, err
	}

	for _, security := range securities {
		if security.Ticker == ticker {
			return security, nil
		}
	}

	return models.Security{}, fmt.Errorf("security %s not found", ticker)
}

func (ritService *RITService) GetOrderBook(ctx context.Context, ticker string, depth int) (models.OrderBook, error) {
	var book models.OrderBook
	query := url.Values{}
	query.Set("ticker", ticker)
	query.Set("limit", strconv.Itoa(depth))
	err := ritService.get(ctx, "/securities/book", query, &book)
	return book, err
}

type openOrder struct {
	OrderID        int64           `json:"order_id"`
	Ticker         string          `json:"ticker"`
	Action         models.SideType `json:"action"`
	Price          float64         `json:"price"`
	Quantity       float64         `json:"quantity"`
	QuantityFilled float64         `json:"quantity_filled"`
}

func (ritService *RITService) GetOpenOrders(ctx context.Context, ticker string) (models.OpenOrders, error) {
	var orders []openOrder
	query := url.Values{}
	query.Set("status", "OPEN")
	err := ritService.get(ctx, "/orders", query, &orders)
	if err != nil {
		return models.OpenOrders{}, err
	}

	var open models.OpenOrders
	for _, order := range orders {
		if order.Ticker != ticker {
			continue
		}
		restingOrder := models.RestingOrder{
			OrderID:        order.OrderID,
			Action:         order.Action,
			Price:          order.Price,
			Quantity:       order.Quantity,
			QuantityFilled: order.QuantityFilled,
		}
		if order.Action == models.SideTypeBuy {
			open.Buys = append(open.Buys, restingOrder)
		} else if order.Action == models.SideTypeSell {
			open.Sells = append(open.Sells, restingOrder)
		}
	}

	return open, nil
}

// SubmitOrder posts a new order. The simulator takes order fields as query
// parameters, not a JSON body.
func (ritService *RITService) SubmitOrder(ctx context.Context, request models.OrderRequest) (models.OrderConfirmation, error) {
	query := url.Values{}
	query.Set("ticker", request.Ticker)
	query.Set("type", string(request.Type))
	query.Set("quantity", strconv.FormatFloat(request.Quantity, 'f', -1, 64))
	query.Set("action", string(request.Action))
	if request.Type == models.OrderTypeLimit {
		query.Set("price", strconv.FormatFloat(request.Price, 'f', -1, 64))
	}

	resp, err := ritService.do(ctx, http.MethodPost, "/orders", query)
	if err != nil {
		return models.OrderConfirmation{}, err
	}
	defer resp.Body.Close()

	if err := ritService.checkOrderResponse(resp); err != nil {
		return models.OrderConfirmation{}, err
	}

	var confirmation models.OrderConfirmation
	if err := json.NewDecoder(resp.Body).Decode(&confirmation); err != nil {
		return models.OrderConfirmation{}, fmt.Errorf("decoding order confirmation: %w", err)
	}

	return confirmation, nil
}

func (ritService *RITService) CancelOrder(ctx context.Context, orderID int64) error {
	resp, err := ritService.do(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d", orderID), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return ritService.checkOrderResponse(resp)
}

func (ritService *RITService) CancelAllOrders(ctx context.Context) error {
	query := url.Values{}
	query.Set("all", "1")
	resp, err := ritService.do(ctx, http.MethodPost, "/commands/cancel", query)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return ritService.checkOrderResponse(resp)
}

func (ritService *RITService) get(ctx context.Context, path string, query url.Values, into interface{}) error {
	resp, err := ritService.do(ctx, http.MethodGet, path, query)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return models.ErrAuthFault
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("venue returned %d on %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}

	return nil
}

func (ritService *RITService) do(ctx context.Context, method string, path string, query url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, ritService.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("X-API-Key", ritService.apiKey)

	resp, err := ritService.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("venue request failed: %w", err)
	}

	return resp, nil
}

func (ritService *RITService) checkOrderResponse(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return models.ErrAuthFault
	case resp.StatusCode == http.StatusTooManyRequests:
		rateLimit := &models.RateLimitError{Wait: 1}
		_ = json.NewDecoder(resp.Body).Decode(rateLimit)
		return rateLimit
	default:
		body, _ := io.ReadAll(resp.Body)
		var venueError struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		message := string(body)
		if err := json.Unmarshal(body, &venueError); err == nil && venueError.Message != "" {
			message = venueError.Message
		}
		return &models.OrderRejectedError{StatusCode: resp.StatusCode, Message: message}
	}
}
