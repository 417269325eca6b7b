package core

import (
	"context"
	"errors"
	"fmt"
	"housingapi/internal/infra/persistence/memory"
	"housingapi/pkg/domain"
	"strconv"
	"time"
)

// HouseStore is the record store backing the service.
type HouseStore interface {
	List(match func(domain.House) bool) []domain.House
	Get(id int) (domain.House, bool)
	Append(h domain.House) domain.House
	Replace(id int, h domain.House) (domain.House, error)
	Delete(id int) error
	Len() int
}

var _ HouseStore = (*memory.Store)(nil)

const (
	opListHouses  = "list_houses"
	opGetHouse    = "get_house"
	opCreateHouse = "create_house"
	opUpdateHouse = "update_house"
	opDeleteHouse = "delete_house"
)

var auditActions = map[string]domain.Action{
	opCreateHouse: domain.ActionCreate,
	opUpdateHouse: domain.ActionUpdate,
	opDeleteHouse: domain.ActionDelete,
}

// ErrNotFound is returned when no house carries the requested id.
type ErrNotFound struct {
	Entity domain.EntityType
	ID     int
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// Service exposes the house CRUD operations over a HouseStore and reports
// each call to the configured logger, tracer, metrics and audit sinks.
type Service struct {
	store HouseStore

	clock   Clock
	logger  Logger
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
}

// NewService constructs a service backed by the supplied store.
func NewService(store HouseStore, opts ...Option) *Service {
	o := defaultServiceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{
		store:   store,
		clock:   o.clock,
		logger:  o.logger,
		audit:   o.audit,
		metrics: o.metrics,
		tracer:  o.tracer,
	}
}

// NewInMemoryService seeds a fresh in-memory store with rows.
func NewInMemoryService(rows []domain.House, opts ...Option) *Service {
	return NewService(memory.NewStore(rows), opts...)
}

// Count returns the number of stored houses.
func (s *Service) Count() int {
	return s.store.Len()
}

// ListHouses filters the store with params and returns the requested page.
func (s *Service) ListHouses(ctx context.Context, params domain.ListParams) ([]domain.House, error) {
	var page []domain.House
	err := s.run(ctx, opListHouses, func(context.Context) (string, error) {
		page = params.Paginate(s.store.List(params.Matches))
		return "", nil
	})
	return page, err
}

// GetHouse returns the house with the given id.
func (s *Service) GetHouse(ctx context.Context, id int) (domain.House, error) {
	var house domain.House
	err := s.run(ctx, opGetHouse, func(context.Context) (string, error) {
		h, ok := s.store.Get(id)
		if !ok {
			return strconv.Itoa(id), ErrNotFound{Entity: domain.EntityHouse, ID: id}
		}
		house = h
		return strconv.Itoa(id), nil
	})
	return house, err
}

// CreateHouse stores h under a newly assigned id; any id on h is ignored.
func (s *Service) CreateHouse(ctx context.Context, h domain.House) (domain.House, error) {
	var created domain.House
	err := s.run(ctx, opCreateHouse, func(context.Context) (string, error) {
		created = s.store.Append(h)
		return strconv.Itoa(created.ID), nil
	})
	return created, err
}

// UpdateHouse replaces every field of the house with the given id; the id
// on h is ignored.
func (s *Service) UpdateHouse(ctx context.Context, id int, h domain.House) (domain.House, error) {
	var updated domain.House
	err := s.run(ctx, opUpdateHouse, func(context.Context) (string, error) {
		var err error
		updated, err = s.store.Replace(id, h)
		return strconv.Itoa(id), translateStoreError(err, id)
	})
	return updated, err
}

// DeleteHouse removes the house with the given id.
func (s *Service) DeleteHouse(ctx context.Context, id int) error {
	return s.run(ctx, opDeleteHouse, func(context.Context) (string, error) {
		return strconv.Itoa(id), translateStoreError(s.store.Delete(id), id)
	})
}

func translateStoreError(err error, id int) error {
	if errors.Is(err, memory.ErrNotFound) {
		return ErrNotFound{Entity: domain.EntityHouse, ID: id}
	}
	return err
}

func (s *Service) run(ctx context.Context, op string, fn func(context.Context) (string, error)) error {
	ctx, span := s.tracer.Start(ctx, op)
	start := s.clock.Now()
	entityID, err := fn(ctx)
	duration := s.clock.Now().Sub(start)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, duration)

	if err != nil {
		var nf ErrNotFound
		if errors.As(err, &nf) {
			s.logger.Warn("house not found", "operation", op, "id", entityID)
		} else {
			s.logger.Error("service operation failed", "operation", op, "id", entityID, "error", err)
		}
		s.recordAudit(ctx, op, entityID, duration, err)
		return err
	}
	s.logger.Debug("service operation completed", "operation", op, "id", entityID, "duration", duration)
	s.recordAudit(ctx, op, entityID, duration, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, op, entityID string, duration time.Duration, err error) {
	action, ok := auditActions[op]
	if !ok {
		return
	}
	entry := AuditEntry{
		Operation: op,
		Entity:    domain.EntityHouse,
		Action:    action,
		EntityID:  entityID,
		Status:    AuditStatusSuccess,
		Duration:  duration,
		Timestamp: s.clock.Now(),
	}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
	}
	s.audit.Record(ctx, entry)
}
