package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/interact"
	"github.com/ayusman/mudra/internal/replicated"
)

// Brush represents a sticky brush row. Deleted brushes keep their row with
// DeletedAt set.
type Brush struct {
	ID        string
	Viz       string
	X         float64
	Y         float64
	Radius    float64
	Kind      string
	CreatedAt time.Time
	DeletedAt *time.Time
}

// BrushRepository provides CRUD operations for brushes.
type BrushRepository struct {
	db *sql.DB
}

// Brushes returns the brush repository for this store.
func (s *Store) Brushes() *BrushRepository {
	return &BrushRepository{db: s.db}
}

// Upsert inserts or updates a brush, reviving it if it was tombstoned.
func (r *BrushRepository) Upsert(b *Brush) error {
	_, err := r.db.Exec(
		`INSERT INTO brushes (id, viz, x, y, radius, kind)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			x = excluded.x, y = excluded.y, radius = excluded.radius,
			kind = excluded.kind, deleted_at = NULL`,
		b.ID, b.Viz, b.X, b.Y, b.Radius, b.Kind,
	)
	return err
}

// MarkDeleted tombstones a brush by id.
func (r *BrushRepository) MarkDeleted(id string) error {
	result, err := r.db.Exec(
		`UPDATE brushes SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now(), id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a brush by its ID, tombstoned or not.
func (r *BrushRepository) GetByID(id string) (*Brush, error) {
	b := &Brush{}
	var deletedAt sql.NullTime

	err := r.db.QueryRow(
		`SELECT id, viz, x, y, radius, kind, created_at, deleted_at
		 FROM brushes WHERE id = ?`,
		id,
	).Scan(&b.ID, &b.Viz, &b.X, &b.Y, &b.Radius, &b.Kind, &b.CreatedAt, &deletedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if deletedAt.Valid {
		b.DeletedAt = &deletedAt.Time
	}
	return b, nil
}

// ListActive retrieves the live brushes of one visualization.
func (r *BrushRepository) ListActive(viz string) ([]*Brush, error) {
	rows, err := r.db.Query(
		`SELECT id, viz, x, y, radius, kind, created_at, deleted_at
		 FROM brushes WHERE viz = ? AND deleted_at IS NULL ORDER BY created_at`,
		viz,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brushes []*Brush
	for rows.Next() {
		b := &Brush{}
		var deletedAt sql.NullTime

		if err := rows.Scan(&b.ID, &b.Viz, &b.X, &b.Y, &b.Radius, &b.Kind, &b.CreatedAt, &deletedAt); err != nil {
			return nil, err
		}
		if deletedAt.Valid {
			b.DeletedAt = &deletedAt.Time
		}
		brushes = append(brushes, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return brushes, nil
}

// BrushPersister mirrors the brushes collection of the shared document into
// the database by observing its op feed. List removals identify elements,
// not values, so the persister remembers which element carried which brush.
type BrushPersister struct {
	repo *BrushRepository

	mu          sync.Mutex
	elemToBrush map[replicated.ElemID]string
}

// NewBrushPersister creates a persister writing through the given store.
func NewBrushPersister(s *Store) *BrushPersister {
	return &BrushPersister{
		repo:        s.Brushes(),
		elemToBrush: make(map[replicated.ElemID]string),
	}
}

// Observer returns the replicated.Observer to register on the document.
func (p *BrushPersister) Observer() replicated.Observer {
	return p.apply
}

func (p *BrushPersister) apply(ops []replicated.Op) {
	for _, op := range ops {
		viz, ok := brushViz(op.Collection)
		if !ok {
			continue
		}

		switch op.Kind {
		case replicated.OpListInsert:
			var b interact.Brush
			if err := json.Unmarshal([]byte(op.Value), &b); err != nil {
				log.Printf("persist brush: bad record in %s: %v", op.Collection, err)
				continue
			}
			p.mu.Lock()
			p.elemToBrush[op.Elem] = b.ID
			p.mu.Unlock()
			if err := p.repo.Upsert(&Brush{
				ID: b.ID, Viz: viz, X: b.X, Y: b.Y, Radius: b.Radius, Kind: b.Kind,
			}); err != nil {
				log.Printf("persist brush %s: %v", b.ID, err)
			}

		case replicated.OpListRemove:
			p.mu.Lock()
			id, known := p.elemToBrush[op.Elem]
			delete(p.elemToBrush, op.Elem)
			p.mu.Unlock()
			if !known {
				continue
			}
			if err := p.repo.MarkDeleted(id); err != nil && !errors.Is(err, ErrNotFound) {
				log.Printf("tombstone brush %s: %v", id, err)
			}
		}
	}
}

// brushViz extracts the visualization key from a "<viz>/brushes" collection
// name.
func brushViz(collection string) (string, bool) {
	viz, rest, ok := strings.Cut(collection, "/")
	if !ok || rest != "brushes" {
		return "", false
	}
	return viz, true
}
