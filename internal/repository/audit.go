package repository

import (
	"context"
	"fmt"

	"github.com/evenio/billetterie-api/internal/domain"
	"github.com/evenio/billetterie-api/internal/repository/dao"
)

type AuditDAO interface {
	Insert(ctx context.Context, entry dao.AuditEntry) (dao.AuditEntry, error)
}

type AuditRepository struct {
	dao AuditDAO
}

func NewAuditRepository(dao AuditDAO) *AuditRepository {
	return &AuditRepository{
		dao: dao,
	}
}

func (r *AuditRepository) Append(ctx context.Context, entry domain.AuditEntry) error {
	_, err := r.dao.Insert(ctx, dao.AuditEntry{
		Action:       string(entry.Action),
		NumeroTicket: entry.NumeroTicket,
		EventID:      entry.EventID,
		ActorID:      entry.ActorID,
		Location:     entry.Location,
		HolderName:   entry.HolderName,
		Prix:         entry.Prix,
		Gratuit:      entry.Gratuit,
	})
	if err != nil {
		return fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return nil
}
