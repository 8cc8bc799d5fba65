package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/requirement"
)

// Memory is an in-process catalog. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	courses map[string]*Course
}

// NewMemory builds a catalog from courses. Later duplicates replace earlier ones.
func NewMemory(courses ...*Course) *Memory {
	m := &Memory{courses: make(map[string]*Course, len(courses))}
	for _, c := range courses {
		m.Put(c)
	}
	return m
}

// Put adds or replaces a course. Courses without a code are ignored.
func (m *Memory) Put(c *Course) {
	id := c.ID()
	if id == "" {
		return
	}
	m.mu.Lock()
	m.courses[id] = c
	m.mu.Unlock()
}

// Course implements [Catalog].
func (m *Memory) Course(ctx context.Context, code string) (*Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.courses[requirement.NormalizeCode(code)], nil
}

// Courses implements [Catalog].
func (m *Memory) Courses(ctx context.Context, codes []string) (map[string]*Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*Course, len(codes))
	for _, code := range codes {
		id := requirement.NormalizeCode(code)
		if c, ok := m.courses[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

// All returns every course sorted by code.
func (m *Memory) All() []*Course {
	m.mu.RLock()
	out := make([]*Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, c)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Len returns the number of courses.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.courses)
}

// Load decodes a catalog document. Both a bare JSON array of courses and an
// object of the form {"courses": [...]} are accepted.
func Load(r io.Reader) (*Memory, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	var courses []*Course
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &courses)
	} else {
		var doc struct {
			Courses []*Course `json:"courses"`
		}
		err = json.Unmarshal(data, &doc)
		courses = doc.Courses
	}
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return NewMemory(courses...), nil
}

// LoadFile reads a catalog document from path.
func LoadFile(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

var _ Catalog = (*Memory)(nil)
