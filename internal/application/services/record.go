package services

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"usercrud/internal/application/ports"
	"usercrud/internal/domain/record"
	"usercrud/internal/infrastructure/metrics"
	"usercrud/internal/infrastructure/mq"
	dto "usercrud/internal/interface/api/rest/dto/record"
)

type RecordService struct {
	recordRepository record.Repository
	events           ports.EventPublisher
	mCounter         *prometheus.CounterVec
	logger           *zap.Logger
}

func NewRecordService(
	recordRepository record.Repository,
	events ports.EventPublisher,
	mCounter *prometheus.CounterVec,
	logger *zap.Logger,
) ports.RecordService {
	return &RecordService{
		recordRepository: recordRepository,
		events:           events,
		mCounter:         mCounter,
		logger:           logger,
	}
}

func (rs *RecordService) Create(ctx context.Context, p record.Payload) (*record.Record, error) {
	if err := p.Require(); err != nil {
		return nil, rs.rejected(err)
	}
	if err := rs.checkUniqueness(ctx, p, 0); err != nil {
		return nil, rs.rejected(err)
	}

	var r record.Record
	p.Apply(&r)

	created, err := rs.recordRepository.Create(ctx, r)
	if err != nil {
		return nil, rs.rejected(err)
	}

	rs.emit(ctx, mq.ActionCreated, created)
	rs.mCounter.WithLabelValues(metrics.RecordCreated).Inc()

	return created, nil
}

func (rs *RecordService) ListActive(ctx context.Context, params record.ListParams) (*record.Page, error) {
	params = params.Normalize()
	records, total, err := rs.recordRepository.FetchActive(ctx, params)
	if err != nil {
		return nil, err
	}

	return &record.Page{Count: total, Page: params.Page, PageSize: params.PageSize, Records: records}, nil
}

func (rs *RecordService) ListDeleted(ctx context.Context, params record.ListParams) (*record.Page, error) {
	params = params.Normalize()
	records, total, err := rs.recordRepository.FetchDeleted(ctx, params)
	if err != nil {
		return nil, err
	}

	return &record.Page{Count: total, Page: params.Page, PageSize: params.PageSize, Records: records}, nil
}

func (rs *RecordService) GetActive(ctx context.Context, id record.ID) (*record.Record, error) {
	r, err := rs.recordRepository.FetchActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, record.ErrNotFound
	}

	return r, nil
}

func (rs *RecordService) Update(ctx context.Context, id record.ID, p record.Payload, partial bool) (*record.Record, error) {
	if !partial {
		if err := p.Require(); err != nil {
			return nil, rs.rejected(err)
		}
	}

	current, err := rs.GetActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = rs.checkUniqueness(ctx, p, id); err != nil {
		return nil, rs.rejected(err)
	}

	p.Apply(current)

	updated, err := rs.recordRepository.Update(ctx, *current)
	if err != nil {
		return nil, rs.rejected(err)
	}
	if updated == nil {
		// soft deleted between the read and the write
		return nil, record.ErrNotFound
	}

	rs.emit(ctx, mq.ActionUpdated, updated)
	rs.mCounter.WithLabelValues(metrics.RecordUpdated).Inc()

	return updated, nil
}

func (rs *RecordService) SoftDelete(ctx context.Context, id record.ID) error {
	r, err := rs.recordRepository.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if r == nil {
		return record.ErrNotFound
	}

	rs.emit(ctx, mq.ActionSoftDeleted, r)
	rs.mCounter.WithLabelValues(metrics.RecordSoftDeleted).Inc()

	return nil
}

func (rs *RecordService) Restore(ctx context.Context, id record.ID) (*record.Record, error) {
	r, err := rs.recordRepository.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, record.ErrNotFound
	}
	if !r.IsDeleted {
		return nil, record.ErrNotDeleted
	}

	// the restored row rejoins the active set, so its values must still be free
	if err = rs.checkUniqueness(ctx, record.Payload{Email: &r.Email, PhoneNumber: &r.PhoneNumber}, id); err != nil {
		return nil, rs.rejected(err)
	}

	restored, err := rs.recordRepository.Restore(ctx, id)
	if err != nil {
		return nil, rs.rejected(err)
	}
	if restored == nil {
		// lost a race with another restore or a hard delete
		again, err := rs.recordRepository.FetchByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if again == nil {
			return nil, record.ErrNotFound
		}
		return nil, record.ErrNotDeleted
	}

	rs.emit(ctx, mq.ActionRestored, restored)
	rs.mCounter.WithLabelValues(metrics.RecordRestored).Inc()

	return restored, nil
}

func (rs *RecordService) HardDelete(ctx context.Context, id record.ID) error {
	r, err := rs.recordRepository.Delete(ctx, id)
	if err != nil {
		return err
	}
	if r == nil {
		return record.ErrNotFound
	}

	rs.emit(ctx, mq.ActionHardDeleted, r)
	rs.mCounter.WithLabelValues(metrics.RecordHardDeleted).Inc()

	return nil
}

func (rs *RecordService) checkUniqueness(ctx context.Context, p record.Payload, excludeID record.ID) error {
	if p.Email == nil && p.PhoneNumber == nil {
		return nil
	}

	var email, phone string
	if p.Email != nil {
		email = *p.Email
	}
	if p.PhoneNumber != nil {
		phone = *p.PhoneNumber
	}

	active, err := rs.recordRepository.FetchActiveConflicts(ctx, email, phone, excludeID)
	if err != nil {
		return err
	}

	return record.ValidateUniqueness(p, excludeID, active)
}

func (rs *RecordService) rejected(err error) error {
	var vErr *record.ValidationError
	if errors.As(err, &vErr) {
		rs.mCounter.WithLabelValues(metrics.RecordRejected).Inc()
	}
	return err
}

func (rs *RecordService) emit(ctx context.Context, action string, r *record.Record) {
	if err := rs.events.Publish(ctx, mq.NewEvent(action, dto.ToResponse(*r))); err != nil {
		rs.mCounter.WithLabelValues(metrics.EventDropped).Inc()
		rs.logger.Warn("record event dropped",
			zap.Error(err),
			zap.String("action", action),
			zap.Int64("record_id", int64(r.ID)),
		)
	}
}
