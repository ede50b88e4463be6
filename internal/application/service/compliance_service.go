package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/greenbush/returns-api/internal/domain/entity"
	"github.com/greenbush/returns-api/internal/domain/repository"
	"go.uber.org/zap"
)

// ComplianceService extracts compliance snapshots for return lines.
// The preferred source is the sale item frozen at sale time; the live
// product record is the fallback, and a full placeholder is the last
// resort. Extraction never fails the caller: a line that cannot be
// sourced gets UNKNOWN placeholders and a log entry instead.
type ComplianceService struct {
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

// NewComplianceService creates a new compliance service
func NewComplianceService(productRepo repository.ProductRepository, logger *zap.Logger) *ComplianceService {
	return &ComplianceService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// Extract resolves the snapshot for one return line. sale may be nil
// when the return has no sale reference.
func (s *ComplianceService) Extract(ctx context.Context, sale *entity.Sale, productID uuid.UUID, saleItemID *uuid.UUID) entity.ComplianceSnapshot {
	if sale != nil {
		if item := matchSaleItem(sale, productID, saleItemID); item != nil {
			return normalize(item.Compliance)
		}
		s.logger.Warn("sale referenced but line not found on it, falling back to product catalog",
			zap.String("sale_id", sale.ID.String()),
			zap.String("product_id", productID.String()))
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil || product == nil {
		s.logger.Warn("compliance extraction failed, writing placeholder snapshot",
			zap.String("product_id", productID.String()),
			zap.Error(err))
		return entity.PlaceholderSnapshot()
	}

	return normalize(product.Snapshot())
}

// matchSaleItem finds the sale line for a return line: by sale item ID
// when the caller pinned one, otherwise by product.
func matchSaleItem(sale *entity.Sale, productID uuid.UUID, saleItemID *uuid.UUID) *entity.SaleItem {
	for i := range sale.Items {
		item := &sale.Items[i]
		if saleItemID != nil {
			if item.ID == *saleItemID && item.ProductID == productID {
				return item
			}
			continue
		}
		if item.ProductID == productID {
			return item
		}
	}
	return nil
}

// normalize fills unsourced identity fields with the UNKNOWN marker so
// downstream consumers never see an empty batch or producer.
func normalize(snapshot entity.ComplianceSnapshot) entity.ComplianceSnapshot {
	if snapshot.BatchID == "" {
		snapshot.BatchID = entity.ComplianceUnknown
	}
	if snapshot.Category == "" {
		snapshot.Category = entity.ComplianceUnknown
	}
	if snapshot.Producer == "" {
		snapshot.Producer = entity.ComplianceUnknown
	}
	if snapshot.LabTestStatus == "" {
		snapshot.LabTestStatus = entity.ComplianceUnknown
	}
	return snapshot
}
