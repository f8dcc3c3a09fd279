package apps

import (
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/ffaheem88/BrowserOS-sub000/internal/apperrors"
	"github.com/ffaheem88/BrowserOS-sub000/internal/wm"
)

// Descriptor registers one application type (not one instance). It is
// read-only after registration except for explicit unregister. Entry is
// the rendering entry point, opaque to the core.
type Descriptor struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Icon        string  `json:"icon,omitempty"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
	DefaultSize wm.Size `json:"defaultSize"`
	MinSize     wm.Size `json:"minSize,omitempty"`
	MaxSize     wm.Size `json:"maxSize,omitempty"`
	Resizable   bool    `json:"resizable"`
	Maximizable bool    `json:"maximizable"`
	Entry       string  `json:"entry"`
}

// Registry maps application ids to launch descriptors and turns launch
// requests into window creations. Unlike the window registry, its
// operations fail loudly since callers act on the result.
type Registry struct {
	mu      sync.RWMutex
	apps    map[string]Descriptor
	windows *wm.Registry
}

// NewRegistry creates an app registry that launches into windows. A nil
// windows registry yields a catalog-only registry: Launch fails, the
// query operations still work.
func NewRegistry(windows *wm.Registry) *Registry {
	return &Registry{
		apps:    make(map[string]Descriptor),
		windows: windows,
	}
}

// Register validates and stores a descriptor. Re-registering an id
// overwrites the previous descriptor with a warning.
func (r *Registry) Register(d Descriptor) error {
	switch {
	case strings.TrimSpace(d.ID) == "":
		return &apperrors.ValidationError{Field: "id", Reason: "required"}
	case strings.TrimSpace(d.Name) == "":
		return &apperrors.ValidationError{Field: "name", Reason: "required"}
	case strings.TrimSpace(d.Entry) == "":
		return &apperrors.ValidationError{Field: "entry", Reason: "required"}
	}
	if d.DefaultSize.Width <= 0 || d.DefaultSize.Height <= 0 {
		d.DefaultSize = wm.Size{Width: 800, Height: 600}
	}

	r.mu.Lock()
	if _, exists := r.apps[d.ID]; exists {
		log.Printf("apps: overwriting descriptor %q", d.ID)
	}
	r.apps[d.ID] = d
	r.mu.Unlock()
	return nil
}

// Unregister removes a descriptor.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[id]; !ok {
		return &apperrors.NotFoundError{Resource: "app", ID: id}
	}
	delete(r.apps, id)
	return nil
}

// Get returns the descriptor for id.
func (r *Registry) Get(id string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.apps[id]
	if !ok {
		return Descriptor{}, &apperrors.NotFoundError{Resource: "app", ID: id}
	}
	return d, nil
}

// Launch merges opts over the descriptor defaults and delegates to the
// window registry. The requested size is clamped to the descriptor's
// min/max bounds when those are set.
func (r *Registry) Launch(appID string, opts wm.Options) (*wm.Window, error) {
	r.mu.RLock()
	d, ok := r.apps[appID]
	windows := r.windows
	r.mu.RUnlock()
	if !ok {
		return nil, &apperrors.NotFoundError{Resource: "app", ID: appID}
	}
	if windows == nil {
		return nil, &apperrors.ValidationError{Field: "registry", Reason: "no window registry attached"}
	}

	if opts.Title == nil {
		opts.Title = &d.Name
	}
	if opts.Icon == nil && d.Icon != "" {
		opts.Icon = &d.Icon
	}
	size := d.DefaultSize
	if opts.Size != nil {
		size = *opts.Size
	}
	size = clamp(size, d.MinSize, d.MaxSize)
	opts.Size = &size
	if opts.Resizable == nil {
		opts.Resizable = &d.Resizable
	}
	if opts.Maximizable == nil {
		opts.Maximizable = &d.Maximizable
	}

	return windows.Create(appID, opts), nil
}

func clamp(size, min, max wm.Size) wm.Size {
	if min.Width > 0 && size.Width < min.Width {
		size.Width = min.Width
	}
	if min.Height > 0 && size.Height < min.Height {
		size.Height = min.Height
	}
	if max.Width > 0 && size.Width > max.Width {
		size.Width = max.Width
	}
	if max.Height > 0 && size.Height > max.Height {
		size.Height = max.Height
	}
	return size
}

// List returns all descriptors ordered by name.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.apps))
	for _, d := range r.apps {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Search matches query case-insensitively against name, description
// and category.
func (r *Registry) Search(query string) []Descriptor {
	return Filter(r.List(), query, "")
}

// ByCategory returns descriptors in category, or every descriptor when
// category is empty.
func (r *Registry) ByCategory(category string) []Descriptor {
	return Filter(r.List(), "", category)
}

// Filter narrows a descriptor list by substring query and exact
// category, both case-insensitive. The catalog endpoint reuses it
// server-side.
func Filter(list []Descriptor, query, category string) []Descriptor {
	q := strings.ToLower(strings.TrimSpace(query))
	cat := strings.ToLower(strings.TrimSpace(category))
	out := make([]Descriptor, 0, len(list))
	for _, d := range list {
		if cat != "" && strings.ToLower(d.Category) != cat {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(d.Name), q) &&
			!strings.Contains(strings.ToLower(d.Description), q) &&
			!strings.Contains(strings.ToLower(d.Category), q) {
			continue
		}
		out = append(out, d)
	}
	return out
}
