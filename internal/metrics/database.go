package metrics

import (
	"context"
	"time"

	"github.com/hubs-api/hubs-api/internal/hubs"
)

const (
	resultOK       = "ok"
	resultNotFound = "not_found"
	resultError    = "error"
)

type instrumentedDatabase struct {
	next    hubs.Database
	metrics *Metrics
}

// InstrumentDatabase 为任意后端记录操作次数与耗时，行为保持不变。
func InstrumentDatabase(db hubs.Database, m *Metrics) hubs.Database {
	if m == nil {
		return db
	}
	return &instrumentedDatabase{next: db, metrics: m}
}

func (d *instrumentedDatabase) observe(op string, start time.Time, found bool, err error) {
	result := resultOK
	switch {
	case err != nil:
		result = resultError
	case !found:
		result = resultNotFound
	}
	d.metrics.StoreOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	d.metrics.StoreOperations.WithLabelValues(op, result).Inc()
}

func (d *instrumentedDatabase) Find(ctx context.Context) ([]hubs.Hub, error) {
	start := time.Now()
	result, err := d.next.Find(ctx)
	d.observe("find", start, true, err)
	return result, err
}

func (d *instrumentedDatabase) FindByID(ctx context.Context, id string) (*hubs.Hub, error) {
	start := time.Now()
	hub, err := d.next.FindByID(ctx, id)
	d.observe("findById", start, hub != nil, err)
	return hub, err
}

func (d *instrumentedDatabase) Add(ctx context.Context, fields hubs.Fields) (*hubs.Hub, error) {
	start := time.Now()
	hub, err := d.next.Add(ctx, fields)
	d.observe("add", start, true, err)
	return hub, err
}

func (d *instrumentedDatabase) Update(ctx context.Context, id string, fields hubs.Fields) (*hubs.Hub, error) {
	start := time.Now()
	hub, err := d.next.Update(ctx, id, fields)
	d.observe("update", start, hub != nil, err)
	return hub, err
}

func (d *instrumentedDatabase) Remove(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	removed, err := d.next.Remove(ctx, id)
	d.observe("remove", start, removed, err)
	return removed, err
}
