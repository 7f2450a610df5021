package connection

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	models "github.com/fatflowers/pulseboard/internal/models"
	"github.com/fatflowers/pulseboard/pkg/config"
	"github.com/fatflowers/pulseboard/pkg/gormlog"
	"github.com/fatflowers/pulseboard/pkg/logctx"
)

var (
	ErrNoConnection       = errors.New("no stored connection for organization")
	ErrDecryptCredentials = errors.New("failed to decrypt stored credentials")
)

// Opener opens a tenant database from its driver name and DSN.
type Opener func(driver, dsn string) (*gorm.DB, error)

// Tenant is an open handle on one organization's database. Close it when the
// request is done.
type Tenant struct {
	OrgID string
	DB    *gorm.DB
}

func (t *Tenant) Close() error {
	if t == nil || t.DB == nil {
		return nil
	}
	sqlDB, err := t.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type Service struct {
	db     *gorm.DB
	log    *zap.SugaredLogger
	key    []byte
	keyErr error
	open   Opener
}

func NewService(db *gorm.DB, cfg *config.Config, log *zap.SugaredLogger) *Service {
	key, err := cfg.EncryptionKey()
	if err != nil {
		log.Errorw("connection encryption key unusable", "err", err)
	}
	return &Service{db: db, log: log, key: key, keyErr: err, open: postgresOpener(cfg, log)}
}

// WithOpener replaces how tenant databases are opened.
func (s *Service) WithOpener(o Opener) *Service {
	s.open = o
	return s
}

func postgresOpener(cfg *config.Config, log *zap.SugaredLogger) Opener {
	return func(driver, dsn string) (*gorm.DB, error) {
		if driver != "" && driver != "postgres" {
			return nil, fmt.Errorf("unsupported tenant driver %q", driver)
		}
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlog.New(log, cfg.SlowQueryThreshold())})
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil && cfg.Connection.TenantMaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.Connection.TenantMaxOpenConns)
		}
		return db, nil
	}
}

// Store seals dsn and upserts it as orgID's connection.
func (s *Service) Store(ctx context.Context, orgID, driver, host, dsn string) error {
	if len(s.key) == 0 {
		return fmt.Errorf("%w: no encryption key configured", ErrDecryptCredentials)
	}
	ciphertext, nonce, err := Seal(s.key, dsn)
	if err != nil {
		return err
	}
	row := &models.Connection{OrgID: orgID, Driver: driver, Host: host, EncryptedDSN: ciphertext, Nonce: nonce}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "org_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"driver", "host", "encrypted_dsn", "nonce", "updated_at"}),
	}).Create(row).Error
}

// Resolve loads orgID's stored connection, decrypts it and opens the tenant
// database.
func (s *Service) Resolve(ctx context.Context, orgID string) (*Tenant, error) {
	log := logctx.FromCtx(ctx, s.log)

	var row models.Connection
	err := s.db.WithContext(ctx).Where("org_id = ?", orgID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoConnection
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load connection: %w", err)
	}

	if s.keyErr != nil || len(s.key) == 0 {
		log.Warnw("tenant credentials cannot be decrypted: no usable key", "org_id", orgID)
		return nil, fmt.Errorf("%w: no encryption key configured", ErrDecryptCredentials)
	}
	dsn, err := Open(s.key, row.EncryptedDSN, row.Nonce)
	if err != nil {
		log.Warnw("tenant credentials rejected", "org_id", orgID, "err", err)
		return nil, err
	}

	db, err := s.open(row.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open tenant database: %w", err)
	}
	return &Tenant{OrgID: orgID, DB: db.WithContext(ctx)}, nil
}

var Module = fx.Options(
	fx.Provide(NewService),
)
