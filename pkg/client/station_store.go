package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"evolt/internal/models"
)

// StationFilters narrows station listings from the client side.
type StationFilters struct {
	Status        string
	ConnectorType string
	MinPower      *float64
}

// StationStore is the in-memory station cache synchronized over HTTP. It
// mirrors the UI store: a list, the currently viewed station, and
// loading/error flags. Errors are captured here, never thrown past the
// store boundary.
type StationStore struct {
	client *Client

	mu             sync.Mutex
	stations       []models.StationListItem
	currentStation *models.Station
	loading        bool
	err            string
}

func newStationStore(c *Client) *StationStore {
	return &StationStore{client: c}
}

// Stations returns a copy of the cached list.
func (s *StationStore) Stations() []models.StationListItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.StationListItem, len(s.stations))
	copy(out, s.stations)
	return out
}

// CurrentStation returns the currently viewed station, nil when none.
func (s *StationStore) CurrentStation() *models.Station {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentStation
}

// Loading reports whether a request is in flight.
func (s *StationStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last failure message, empty after a successful call.
func (s *StationStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ActiveStations filters the cached list to active ones.
func (s *StationStore) ActiveStations() []models.StationListItem {
	return s.filterByStatus(models.StatusActive)
}

// InactiveStations filters the cached list to inactive ones.
func (s *StationStore) InactiveStations() []models.StationListItem {
	return s.filterByStatus(models.StatusInactive)
}

func (s *StationStore) filterByStatus(status models.StationStatus) []models.StationListItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.StationListItem
	for _, st := range s.stations {
		if st.Status == status {
			out = append(out, st)
		}
	}
	return out
}

// Fetch loads stations matching the filters into the store.
func (s *StationStore) Fetch(ctx context.Context, filters StationFilters) error {
	s.begin()

	params := url.Values{}
	if filters.Status != "" {
		params.Set("status", filters.Status)
	}
	if filters.ConnectorType != "" {
		params.Set("connectorType", filters.ConnectorType)
	}
	if filters.MinPower != nil {
		params.Set("minPower", strconv.FormatFloat(*filters.MinPower, 'f', -1, 64))
	}
	path := "/api/stations"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var items []models.StationListItem
	err := s.client.do(ctx, http.MethodGet, path, nil, &items)
	if err != nil {
		return s.fail("Failed to fetch stations", err)
	}

	s.mu.Lock()
	s.stations = items
	s.mu.Unlock()
	return s.done()
}

// FetchOne loads a single station as the current selection.
func (s *StationStore) FetchOne(ctx context.Context, id int64) error {
	s.begin()

	var station models.Station
	err := s.client.do(ctx, http.MethodGet, fmt.Sprintf("/api/stations/%d", id), nil, &station)
	if err != nil {
		return s.fail("Failed to fetch station", err)
	}

	s.mu.Lock()
	s.currentStation = &station
	s.mu.Unlock()
	return s.done()
}

// Create posts a new station and appends it to the cached list.
func (s *StationStore) Create(ctx context.Context, input models.StationInput) (*models.Station, error) {
	s.begin()

	var created models.Station
	err := s.client.do(ctx, http.MethodPost, "/api/stations", input, &created)
	if err != nil {
		return nil, s.fail("Failed to create station", err)
	}

	s.mu.Lock()
	s.stations = append(s.stations, models.StationListItem{Station: created, CanModify: true})
	s.mu.Unlock()
	return &created, s.done()
}

// Update puts changed fields and refreshes the cached copies.
func (s *StationStore) Update(ctx context.Context, id int64, input models.StationInput) (*models.Station, error) {
	s.begin()

	var updated models.Station
	err := s.client.do(ctx, http.MethodPut, fmt.Sprintf("/api/stations/%d", id), input, &updated)
	if err != nil {
		return nil, s.fail("Failed to update station", err)
	}

	s.mu.Lock()
	for i := range s.stations {
		if s.stations[i].ID == id {
			s.stations[i].Station = updated
			break
		}
	}
	if s.currentStation != nil && s.currentStation.ID == id {
		s.currentStation = &updated
	}
	s.mu.Unlock()
	return &updated, s.done()
}

// Delete removes a station and drops it from the cache.
func (s *StationStore) Delete(ctx context.Context, id int64) error {
	s.begin()

	err := s.client.do(ctx, http.MethodDelete, fmt.Sprintf("/api/stations/%d", id), nil, nil)
	if err != nil {
		return s.fail("Failed to delete station", err)
	}

	s.mu.Lock()
	kept := s.stations[:0]
	for _, st := range s.stations {
		if st.ID != id {
			kept = append(kept, st)
		}
	}
	s.stations = kept
	if s.currentStation != nil && s.currentStation.ID == id {
		s.currentStation = nil
	}
	s.mu.Unlock()
	return s.done()
}

// reset clears all cached station state, used on logout.
func (s *StationStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stations = nil
	s.currentStation = nil
	s.loading = false
	s.err = ""
}

func (s *StationStore) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *StationStore) done() error {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	return nil
}

func (s *StationStore) fail(fallback string, err error) error {
	msg := fallback
	if apiErr, ok := err.(*apiError); ok {
		msg = apiErr.Error()
	}
	s.mu.Lock()
	s.loading = false
	s.err = msg
	s.mu.Unlock()
	return err
}
