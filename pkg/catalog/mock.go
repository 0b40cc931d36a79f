package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/ritzau/media-graph/pkg/model"
)

// MockCatalog is an in-memory Catalog for testing. Unknown ids and users
// return ErrNotFound; MockError, when set, is returned by every call.
type MockCatalog struct {
	Media     map[int64]*model.Media
	Users     map[string]*model.MediaListCollection
	Searches  map[string]*model.SearchPage
	MockError error

	mu    sync.Mutex
	calls map[string]int
}

// NewMockCatalog returns a mock serving media
func NewMockCatalog(media ...*model.Media) *MockCatalog {
	m := &MockCatalog{
		Media:    make(map[int64]*model.Media),
		Users:    make(map[string]*model.MediaListCollection),
		Searches: make(map[string]*model.SearchPage),
	}
	for _, item := range media {
		m.Media[item.ID] = item
	}
	return m
}

func (m *MockCatalog) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[call]++
}

// Calls returns how often an operation ("media", "search", "user") ran
func (m *MockCatalog) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *MockCatalog) FetchMedia(ctx context.Context, id int64) (*model.Media, error) {
	m.record("media")
	if m.MockError != nil {
		return nil, m.MockError
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	item, ok := m.Media[id]
	if !ok {
		return nil, ErrNotFound
	}
	return item, nil
}

func (m *MockCatalog) SearchMedia(ctx context.Context, query string, t model.MediaType) (*model.SearchPage, error) {
	m.record("search")
	if m.MockError != nil {
		return nil, m.MockError
	}
	if _, err := model.ParseMediaType(string(t)); err != nil {
		return nil, ErrInvalidMediaType
	}
	if page, ok := m.Searches[SearchKey(query, t)]; ok {
		return page, nil
	}
	return &model.SearchPage{}, nil
}

func (m *MockCatalog) FetchUserList(ctx context.Context, username string) (*model.MediaListCollection, error) {
	m.record("user")
	if m.MockError != nil {
		return nil, m.MockError
	}
	list, ok := m.Users[strings.ToLower(username)]
	if !ok {
		return nil, ErrNotFound
	}
	return list, nil
}
