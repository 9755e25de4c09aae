package servicetwin

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Category is a stored category.
type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Destination is a stored destination. CategoryID refers to a Category.
type Destination struct {
	ID              string   `json:"_id"`
	Name            string   `json:"name"`
	Location        string   `json:"location"`
	Description     string   `json:"description"`
	BestTimeToVisit string   `json:"bestTimeToVisit"`
	Attractions     []string `json:"attractions"`
	CategoryID      string   `json:"-"`
}

// MemoryStore holds all twin state in memory. It is safe for concurrent use.
type MemoryStore struct {
	categories   map[string]Category
	destinations map[string]Destination
	order        map[string]uint64
	nextOrder    uint64
	lock         sync.RWMutex
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories:   make(map[string]Category),
		destinations: make(map[string]Destination),
		order:        make(map[string]uint64),
	}
}

// newID returns a 24-hex-digit identifier like the ones document databases assign.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}

func (s *MemoryStore) addOrder(id string) {
	s.nextOrder++
	s.order[id] = s.nextOrder
}

func (s *MemoryStore) AddCategory(c Category) Category {
	s.lock.Lock()
	defer s.lock.Unlock()
	c.ID = newID()
	s.categories[c.ID] = c
	s.addOrder(c.ID)
	return c
}

func (s *MemoryStore) GetCategory(id string) (Category, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	c, ok := s.categories[id]
	return c, ok
}

func (s *MemoryStore) UpdateCategory(id string, update func(*Category)) (Category, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return Category{}, false
	}
	update(&c)
	c.ID = id
	s.categories[id] = c
	return c, true
}

func (s *MemoryStore) DeleteCategory(id string) (Category, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	c, ok := s.categories[id]
	if ok {
		delete(s.categories, id)
		delete(s.order, id)
	}
	return c, ok
}

// Categories returns all categories in creation order.
func (s *MemoryStore) Categories() []Category {
	s.lock.RLock()
	defer s.lock.RUnlock()
	ret := make([]Category, 0, len(s.categories))
	for _, c := range s.categories {
		ret = append(ret, c)
	}
	sort.Slice(ret, func(i, j int) bool { return s.order[ret[i].ID] < s.order[ret[j].ID] })
	return ret
}

func (s *MemoryStore) AddDestination(d Destination) Destination {
	s.lock.Lock()
	defer s.lock.Unlock()
	d.ID = newID()
	d.Attractions = append([]string{}, d.Attractions...)
	s.destinations[d.ID] = d
	s.addOrder(d.ID)
	return d
}

func (s *MemoryStore) GetDestination(id string) (Destination, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	d, ok := s.destinations[id]
	return d, ok
}

func (s *MemoryStore) UpdateDestination(id string, update func(*Destination)) (Destination, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	d, ok := s.destinations[id]
	if !ok {
		return Destination{}, false
	}
	update(&d)
	d.ID = id
	s.destinations[id] = d
	return d, true
}

func (s *MemoryStore) DeleteDestination(id string) (Destination, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	d, ok := s.destinations[id]
	if ok {
		delete(s.destinations, id)
		delete(s.order, id)
	}
	return d, ok
}

// Destinations returns all destinations in creation order.
func (s *MemoryStore) Destinations() []Destination {
	s.lock.RLock()
	defer s.lock.RUnlock()
	ret := make([]Destination, 0, len(s.destinations))
	for _, d := range s.destinations {
		ret = append(ret, d)
	}
	sort.Slice(ret, func(i, j int) bool { return s.order[ret[i].ID] < s.order[ret[j].ID] })
	return ret
}

// Seed adds the fixture data that the service is normally deployed with.
func (s *MemoryStore) Seed() {
	beaches := s.AddCategory(Category{Name: "Beaches"})
	mountains := s.AddCategory(Category{Name: "Mountains"})
	cities := s.AddCategory(Category{Name: "Cities"})
	historical := s.AddCategory(Category{Name: "Historical Sites"})

	s.AddDestination(Destination{
		Name:            "New York City",
		Location:        "New York, USA",
		Description:     "The largest city in the USA, known for its skyscrapers, culture, and entertainment.",
		BestTimeToVisit: "Spring (April to June) and Fall (September to November)",
		Attractions:     []string{"Statue of Liberty", "Central Park", "Times Square"},
		CategoryID:      cities.ID,
	})
	s.AddDestination(Destination{
		Name:            "Machu Picchu",
		Location:        "Cusco Region, Peru",
		Description:     "An ancient Incan city set high in the Andes Mountains.",
		BestTimeToVisit: "Dry season (May to September)",
		Attractions:     []string{"Sun Gate", "Temple of the Sun", "Huayna Picchu"},
		CategoryID:      historical.ID,
	})
	s.AddDestination(Destination{
		Name:            "Yellowstone National Park",
		Location:        "Wyoming, Montana, and Idaho, USA",
		Description:     "America's first national park, known for geysers and wildlife.",
		BestTimeToVisit: "Late spring to early fall",
		Attractions:     []string{"Old Faithful", "Grand Prismatic Spring"},
		CategoryID:      mountains.ID,
	})
	s.AddDestination(Destination{
		Name:            "Maldives",
		Location:        "Indian Ocean",
		Description:     "Tropical islands with white sand beaches and coral reefs.",
		BestTimeToVisit: "November to April",
		Attractions:     []string{"Snorkeling", "Overwater bungalows"},
		CategoryID:      beaches.ID,
	})
}
