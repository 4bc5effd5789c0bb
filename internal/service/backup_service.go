package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/gate"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/repository"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	backupFilePrefix   = "woelfleder_kunden_"
	backupContentType  = "application/json"
	defaultImportLimit = 20 << 20
)

// BackupService writes and restores an owner's customers as a JSON document:
// an array of customers, each carrying its orders and gates.
type BackupService struct {
	db           *gorm.DB
	store        storage.Storage
	customerRepo *repository.CustomerRepository
	orderRepo    *repository.OrderRepository
	logger       *zap.Logger
	maxImport    int64
	now          func() time.Time
}

func NewBackupService(
	db *gorm.DB,
	store storage.Storage,
	customerRepo *repository.CustomerRepository,
	orderRepo *repository.OrderRepository,
	maxImportBytes int64,
	logger *zap.Logger,
) *BackupService {
	if maxImportBytes <= 0 {
		maxImportBytes = defaultImportLimit
	}
	return &BackupService{
		db:           db,
		store:        store,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		logger:       logger,
		maxImport:    maxImportBytes,
		now:          time.Now,
	}
}

// BackupKey is the storage key of an owner's backup for one day.
func BackupKey(ownerID string, day time.Time) string {
	return path.Join(ownerID, backupFilePrefix+day.Format("2006-01-02")+".json")
}

// Document builds the backup document of an owner.
func (s *BackupService) Document(ctx context.Context, ownerID string) ([]domain.Customer, error) {
	customers, err := s.customerRepo.ListByOwner(ctx, ownerID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	orders, err := s.orderRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	byCustomer := make(map[string][]domain.Order)
	for _, o := range orders {
		byCustomer[o.CustomerID] = append(byCustomer[o.CustomerID], o)
	}
	for i := range customers {
		customers[i].Orders = byCustomer[customers[i].ID]
		if customers[i].Gates == nil {
			customers[i].Gates = []domain.Gate{}
		}
	}
	return customers, nil
}

// Export stores today's backup of an owner, replacing an earlier one of the same day.
func (s *BackupService) Export(ctx context.Context, ownerID string) (*domain.BackupDTO, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}
	customers, err := s.Document(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(customers, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	now := s.now().UTC()
	key := BackupKey(ownerID, now)
	size, err := s.store.Put(ctx, key, backupContentType, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to store backup: %w", err)
	}

	gates := 0
	for _, c := range customers {
		gates += len(c.Gates)
	}
	s.logger.Info("backup exported",
		zap.String("owner_id", ownerID),
		zap.String("key", key),
		zap.Int("customers", len(customers)),
		zap.Int("gates", gates),
	)

	return &domain.BackupDTO{
		Key:       key,
		Size:      size,
		Customers: len(customers),
		Gates:     gates,
		CreatedAt: now.Format("2006-01-02T15:04:05Z"),
	}, nil
}

// ExportAll exports every owner that has customers. It keeps going past
// single failures and returns them joined.
func (s *BackupService) ExportAll(ctx context.Context) (int, error) {
	owners, err := s.customerRepo.ListOwners(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list owners: %w", err)
	}

	var errs []error
	exported := 0
	for _, owner := range owners {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := s.Export(ctx, owner); err != nil {
			s.logger.Error("backup export failed", zap.String("owner_id", owner), zap.Error(err))
			errs = append(errs, fmt.Errorf("owner %s: %w", owner, err))
			continue
		}
		exported++
	}
	return exported, errors.Join(errs...)
}

// List returns the stored backups of an owner, newest first.
func (s *BackupService) List(ctx context.Context, ownerID string) ([]domain.BackupDTO, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}
	objects, err := s.store.List(ctx, ownerID+"/")
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	dtos := make([]domain.BackupDTO, 0, len(objects))
	for _, o := range objects {
		if !strings.HasPrefix(path.Base(o.Key), backupFilePrefix) {
			continue
		}
		dtos = append(dtos, domain.BackupDTO{
			Key:       o.Key,
			Size:      o.Size,
			CreatedAt: o.LastModified.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].Key > dtos[j].Key })
	return dtos, nil
}

// ImportFromStorage restores a stored backup of the owner.
func (s *BackupService) ImportFromStorage(ctx context.Context, ownerID, key string) (*domain.ImportResultDTO, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}
	clean, err := storage.CleanKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !strings.HasPrefix(clean, ownerID+"/") {
		return nil, ErrNotFound
	}

	rc, err := s.store.Get(ctx, clean)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	defer rc.Close()
	return s.Import(ctx, ownerID, rc)
}

// Import writes a backup document for the owner. Records with an existing id
// are overwritten; every record is reassigned to the owner. The whole
// document is applied in one transaction.
func (s *BackupService) Import(ctx context.Context, ownerID string, r io.Reader) (*domain.ImportResultDTO, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxImport+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	if int64(len(data)) > s.maxImport {
		return nil, ErrBackupTooLarge
	}

	var customers []domain.Customer
	if err := json.Unmarshal(data, &customers); err != nil {
		return nil, fmt.Errorf("%w: backup is not a customer list: %v", ErrInvalidInput, err)
	}

	result := &domain.ImportResultDTO{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customerRepo := repository.NewCustomerRepository(tx)
		orderRepo := repository.NewOrderRepository(tx)
		gateRepo := repository.NewGateRepository(tx)

		for i := range customers {
			c := customers[i]
			orders, gates := c.Orders, c.Gates
			c.Orders, c.Gates = nil, nil
			c.UserID = ownerID
			if strings.TrimSpace(c.Name) == "" {
				return fmt.Errorf("%w: customer %d has no name", ErrInvalidInput, i)
			}
			if c.CreatedAt.IsZero() {
				c.CreatedAt = s.now().UTC()
			}
			if err := checkOwnership(tx, &domain.Customer{}, c.ID, ownerID); err != nil {
				return err
			}
			if err := customerRepo.Upsert(ctx, &c); err != nil {
				return fmt.Errorf("failed to import customer %s: %w", c.ID, err)
			}
			result.Customers++

			known := make(map[string]bool, len(orders))
			for j := range orders {
				o := orders[j]
				o.Gates = nil
				o.UserID = ownerID
				o.CustomerID = c.ID
				if o.Status == "" || !domain.IsValidOrderStatus(string(o.Status)) {
					o.Status = domain.OrderStatusInquiry
				}
				if o.Type == "" {
					o.Type = "standard"
				}
				if o.OrderNumber == "" {
					day := o.CreatedAt
					if day.IsZero() {
						day = s.now()
					}
					number, err := orderRepo.NextOrderNumber(ctx, c.ID, day)
					if err != nil {
						return err
					}
					o.OrderNumber = number
				}
				if o.CreatedAt.IsZero() {
					o.CreatedAt = s.now().UTC()
				}
				if err := checkOwnership(tx, &domain.Order{}, o.ID, ownerID); err != nil {
					return err
				}
				if err := orderRepo.Upsert(ctx, &o); err != nil {
					return fmt.Errorf("failed to import order %s: %w", o.ID, err)
				}
				known[o.ID] = true
				result.Orders++
			}

			for j := range gates {
				g := &gates[j]
				g.UserID = ownerID
				g.CustomerID = c.ID
				if g.Quantity < 1 {
					g.Quantity = 1
				}
				if g.CreatedAt.IsZero() {
					g.CreatedAt = s.now().UTC()
				}
				if err := checkOwnership(tx, &domain.Gate{}, g.ID, ownerID); err != nil {
					return err
				}
				cfg, err := gate.FromRecord(*g)
				if err != nil {
					return fmt.Errorf("%w: gate %s: %v", ErrInvalidInput, g.ID, err)
				}
				if err := cfg.Dimensions.Validate(); err != nil {
					return fmt.Errorf("%w: gate %s: %w", ErrInvalidInput, g.ID, err)
				}
				if g.OrderID != nil && !known[*g.OrderID] {
					s.logger.Warn("imported gate references unknown order",
						zap.String("gate_id", g.ID),
						zap.String("order_id", *g.OrderID),
					)
					g.OrderID = nil
				}
			}
			if err := gateRepo.SaveAll(ctx, gates); err != nil {
				return fmt.Errorf("failed to import gates of customer %s: %w", c.ID, err)
			}
			result.Gates += len(gates)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil, err
	}

	s.logger.Info("backup imported",
		zap.String("owner_id", ownerID),
		zap.Int("customers", result.Customers),
		zap.Int("orders", result.Orders),
		zap.Int("gates", result.Gates),
	)
	return result, nil
}

// checkOwnership rejects ids that already belong to another owner.
func checkOwnership(tx *gorm.DB, model interface{}, id, ownerID string) error {
	if id == "" {
		return nil
	}
	var count int64
	err := tx.Model(model).Where("id = ? AND user_id <> ?", id, ownerID).Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check record owner: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: record %s belongs to another user", ErrConflict, id)
	}
	return nil
}
