package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	alertserrors "officehub/internal/alerts/errors"
	"officehub/pkg/model"
)

type memoryAlertRepository struct {
	mu     sync.RWMutex
	alerts map[string]model.Alert
}

func NewMemoryAlertRepository() AlertRepository {
	return &memoryAlertRepository{
		alerts: make(map[string]model.Alert),
	}
}

func clone(a model.Alert) *model.Alert {
	if a.ExpiresAt != nil {
		t := *a.ExpiresAt
		a.ExpiresAt = &t
	}
	return &a
}

func (r *memoryAlertRepository) FindVisible(ctx context.Context, audience string, now time.Time) ([]*model.Alert, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	filterAudience := audience != "" && audience != model.AudienceAll

	alerts := []*model.Alert{}
	for _, a := range r.alerts {
		if a.ExpiresAt != nil && !a.ExpiresAt.After(now) {
			continue
		}
		if filterAudience && a.TargetAudience != audience && a.TargetAudience != model.AudienceAll {
			continue
		}
		alerts = append(alerts, clone(a))
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
	})
	return alerts, nil
}

func (r *memoryAlertRepository) FindByID(ctx context.Context, id string) (*model.Alert, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.alerts[id]
	if !ok {
		return nil, alertserrors.ErrNotFound
	}
	return clone(a), nil
}

func (r *memoryAlertRepository) Create(ctx context.Context, alert *model.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts[alert.ID] = *clone(*alert)
	return nil
}

func (r *memoryAlertRepository) Replace(ctx context.Context, alert *model.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.alerts[alert.ID]; !ok {
		return alertserrors.ErrNotFound
	}
	r.alerts[alert.ID] = *clone(*alert)
	return nil
}

func (r *memoryAlertRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.alerts[id]; !ok {
		return alertserrors.ErrNotFound
	}
	delete(r.alerts, id)
	return nil
}
