package workspace

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrMaterialNotFound is returned when no material matches a reference.
var ErrMaterialNotFound = errors.New("study material not found")

// ErrAmbiguousMaterial is returned when an id prefix matches several
// materials.
var ErrAmbiguousMaterial = errors.New("id prefix matches more than one material")

// Material is one titled piece of study material.
type Material struct {
	ID        string    `json:"id"`
	Title     string    `json:"title" validate:"required,max=120"`
	Content   string    `json:"content" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
}

// library is the stored material set. Materials are newest first and at
// most one is active; tools work on the active one.
type library struct {
	Materials []Material `json:"materials"`
	ActiveID  string     `json:"activeId,omitempty"`
}

func (l library) clone() library {
	l.Materials = slices.Clone(l.Materials)
	return l
}

func (l library) index(id string) int {
	return slices.IndexFunc(l.Materials, func(m Material) bool { return m.ID == id })
}

func (l library) active() (Material, bool) {
	if i := l.index(l.ActiveID); i >= 0 {
		return l.Materials[i], true
	}
	return Material{}, false
}

// titleFrom derives a title from the first non-blank line of content.
func titleFrom(content string) string {
	for line := range strings.Lines(content) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r := []rune(line); len(r) > 60 {
			return string(r[:59]) + "…"
		}
		return line
	}
	return "Untitled"
}

// loadLibrary reads the material set, migrating a single legacy content
// blob into an active material.
func (w *Workspace) loadLibrary(ctx context.Context) error {
	if err := w.load(ctx, KeyMaterials, &w.library); err != nil {
		return err
	}
	if len(w.library.Materials) > 0 {
		return nil
	}

	var legacy string
	if err := w.load(ctx, KeyContent, &legacy); err != nil {
		return err
	}
	if strings.TrimSpace(legacy) == "" {
		return nil
	}
	m := Material{ID: uuid.NewString(), Title: titleFrom(legacy), Content: legacy, CreatedAt: w.now()}
	next := library{Materials: []Material{m}, ActiveID: m.ID}
	if err := w.save(ctx, KeyMaterials, next); err != nil {
		return err
	}
	w.library = next
	w.log.Info("migrated study material", zap.String("material", m.ID))
	return nil
}

// updateLibrary applies fn to a copy of the material set and commits it
// only once the copy is written.
func (w *Workspace) updateLibrary(ctx context.Context, fn func(l *library) error) error {
	if err := w.lock(); err != nil {
		return err
	}
	defer w.mu.Unlock()
	next := w.library.clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := w.save(ctx, KeyMaterials, next); err != nil {
		return err
	}
	w.library = next
	return nil
}

// Content returns the active study material, or "" when none is active.
func (w *Workspace) Content() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	m, _ := w.library.active()
	return m.Content
}

// SetContent replaces the text of the active material, or adds a new
// active material titled after its first line when none is active.
func (w *Workspace) SetContent(ctx context.Context, content string) error {
	return w.updateLibrary(ctx, func(l *library) error {
		if i := l.index(l.ActiveID); i >= 0 {
			m := l.Materials[i]
			m.Content = content
			if err := validate.Struct(m); err != nil {
				return fmt.Errorf("invalid material: %w", err)
			}
			l.Materials[i] = m
			return nil
		}
		_, err := w.addTo(l, titleFrom(content), content)
		return err
	})
}

func (w *Workspace) addTo(l *library, title, content string) (Material, error) {
	m := Material{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(title),
		Content:   content,
		CreatedAt: w.now(),
	}
	if err := validate.Struct(m); err != nil {
		return Material{}, fmt.Errorf("invalid material: %w", err)
	}
	l.Materials = slices.Insert(l.Materials, 0, m)
	l.ActiveID = m.ID
	return m, nil
}

// AddMaterial stores a new material and makes it active.
func (w *Workspace) AddMaterial(ctx context.Context, title, content string) (Material, error) {
	var added Material
	err := w.updateLibrary(ctx, func(l *library) error {
		m, err := w.addTo(l, title, content)
		added = m
		return err
	})
	if err != nil {
		return Material{}, err
	}
	w.log.Info("material added", zap.String("material", added.ID), zap.Int("content_len", len(content)))
	return added, nil
}

// SelectMaterial makes id the active material.
func (w *Workspace) SelectMaterial(ctx context.Context, id string) error {
	return w.updateLibrary(ctx, func(l *library) error {
		if l.index(id) < 0 {
			return fmt.Errorf("%w: %s", ErrMaterialNotFound, id)
		}
		l.ActiveID = id
		return nil
	})
}

// DeleteMaterial removes id. When it was active the newest remaining
// material becomes active.
func (w *Workspace) DeleteMaterial(ctx context.Context, id string) error {
	return w.updateLibrary(ctx, func(l *library) error {
		i := l.index(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrMaterialNotFound, id)
		}
		l.Materials = slices.Delete(l.Materials, i, i+1)
		if l.ActiveID == id {
			l.ActiveID = ""
			if len(l.Materials) > 0 {
				l.ActiveID = l.Materials[0].ID
			}
		}
		return nil
	})
}

// Materials returns every material, newest first.
func (w *Workspace) Materials() []Material {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.library.Materials)
}

func (w *Workspace) ActiveMaterial() (Material, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.library.active()
}

// FindMaterial resolves ref as a full id or a unique id prefix.
func (w *Workspace) FindMaterial(ref string) (Material, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i := w.library.index(ref); i >= 0 {
		return w.library.Materials[i], nil
	}
	var found []Material
	for _, m := range w.library.Materials {
		if ref != "" && strings.HasPrefix(m.ID, ref) {
			found = append(found, m)
		}
	}
	switch len(found) {
	case 0:
		return Material{}, fmt.Errorf("%w: %s", ErrMaterialNotFound, ref)
	case 1:
		return found[0], nil
	}
	return Material{}, fmt.Errorf("%w: %s", ErrAmbiguousMaterial, ref)
}
