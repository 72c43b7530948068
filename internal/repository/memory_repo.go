package repository

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"questionflow/internal/model"
)

type memoryRepo struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryQuestionnaireRepo creates a process-local repository for
// development and tests. Stored questionnaires are deep copies.
func NewMemoryQuestionnaireRepo() QuestionnaireRepo {
	return &memoryRepo{items: make(map[string][]byte)}
}

func (r *memoryRepo) Create(_ context.Context, q *model.Questionnaire) (string, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now
	q.Version = 1
	normalize(q)

	doc, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[q.ID] = doc
	return q.ID, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*model.Questionnaire, error) {
	r.mu.RLock()
	doc, ok := r.items[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decodeDoc(doc)
}

func (r *memoryRepo) GetByHostID(_ context.Context, hostID string) ([]*model.Questionnaire, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := []*model.Questionnaire{}
	for _, doc := range r.items {
		q, err := decodeDoc(doc)
		if err != nil {
			return nil, err
		}
		if q.HostID == hostID {
			res = append(res, q)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].UpdatedAt.After(res[j].UpdatedAt) })
	return res, nil
}

func (r *memoryRepo) Update(_ context.Context, q *model.Questionnaire) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.items[q.ID]
	if !ok {
		return ErrVersionConflict
	}
	stored, err := decodeDoc(doc)
	if err != nil {
		return err
	}
	if stored.Version != q.Version {
		return ErrVersionConflict
	}

	next := *q
	next.Version = q.Version + 1
	next.UpdatedAt = time.Now().UTC()
	normalize(&next)
	out, err := json.Marshal(&next)
	if err != nil {
		return err
	}
	r.items[q.ID] = out
	q.Version = next.Version
	q.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}
