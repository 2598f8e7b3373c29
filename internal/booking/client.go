package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"osteria/internal/entities"
)

// AvailabilityClient is the read/submit surface of the reservation backend
// as seen by the booking flow.
type AvailabilityClient interface {
	FullyBookedDates(ctx context.Context, month, year int) ([]int, error)
	OccupiedTimeSlots(ctx context.Context, date string) ([]int, error)
	CreateReservation(ctx context.Context, req entities.ReservationRequest) (*entities.CreateReservationResponse, error)
}

// HTTPClient talks to the reservation API over HTTP.
type HTTPClient struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) FullyBookedDates(ctx context.Context, month, year int) ([]int, error) {
	q := url.Values{}
	q.Set("month", strconv.Itoa(month))
	q.Set("year", strconv.Itoa(year))

	var resp entities.FullyBookedDatesResponse
	if err := c.getJSON(ctx, "/reservations/fully-booked-dates?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.FullyBookedDates, nil
}

func (c *HTTPClient) OccupiedTimeSlots(ctx context.Context, date string) ([]int, error) {
	q := url.Values{}
	q.Set("date", date)

	var resp entities.OccupiedTimeSlotsResponse
	if err := c.getJSON(ctx, "/reservations/occupied-time-slots?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.OccupiedTimeSlots, nil
}

func (c *HTTPClient) CreateReservation(ctx context.Context, req entities.ReservationRequest) (*entities.CreateReservationResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/reservations", strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(httpResp.Body, 1024))
		return nil, fmt.Errorf("create reservation failed with status %d: %s", httpResp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var resp entities.CreateReservationResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("error decoding create reservation response: %w", err)
	}
	return &resp, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s failed with status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response from %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return http.DefaultClient
}
