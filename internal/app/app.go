package app

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/humanbelnik/kinoreco/internal/config"
	http_init "github.com/humanbelnik/kinoreco/internal/delivery/http/init"
	http_recommend "github.com/humanbelnik/kinoreco/internal/delivery/http/recommend"
	infra_s3 "github.com/humanbelnik/kinoreco/internal/infra/s3"
	"github.com/humanbelnik/kinoreco/internal/infra/s3mock"
	infra_tmdb "github.com/humanbelnik/kinoreco/internal/infra/tmdb"
	"github.com/humanbelnik/kinoreco/internal/service/aggregator"
	storage_catalog "github.com/humanbelnik/kinoreco/internal/storage/catalog"
	usecase_recommend "github.com/humanbelnik/kinoreco/internal/usecase/recommend"
)

const refreshTimeout = 10 * time.Minute

// newBlobRepository picks the snapshot store by the configured client type
// only. The in-memory store must be asked for explicitly: a real deployment
// may carry no env credentials at all (instance profile, SSO), and falling
// back to non-durable storage there would lose every snapshot on restart.
func newBlobRepository(cfg config.S3) usecase_recommend.BlobRepository {
	if infra_s3.ClientType(cfg.ClientType) == infra_s3.ClientTypeMemory {
		return s3mock.New()
	}

	s3conn := infra_s3.MustEstablishConn(cfg)
	blobs, err := infra_s3.New(cfg.Bucket, s3conn, cfg.Prefix)
	if err != nil {
		panic(err)
	}
	return blobs
}

func Go(cfg *config.Config) {
	logger := slog.Default()

	blobs := newBlobRepository(cfg.S3)

	provider := infra_tmdb.New(cfg.Metadata)
	agg := aggregator.New(provider,
		aggregator.WithPages(cfg.Metadata.Pages),
		aggregator.WithLogger(logger),
	)
	catalog := storage_catalog.New(cfg.Refresh.Interval)

	uc := usecase_recommend.New(agg, catalog, blobs,
		usecase_recommend.WithLogger(logger),
		usecase_recommend.WithSnapshotKey(cfg.S3.SnapshotKey),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	restoreCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
	if err := uc.Restore(restoreCtx); err != nil {
		logger.Error("cold start restore failed, serving empty catalog until next refresh",
			slog.String("error", err.Error()),
		)
	}
	cancel()

	go refreshLoop(ctx, uc, cfg.Refresh.Interval, logger)

	controllerPool := http_init.NewControllerPool()
	controllerPool.Add(http_recommend.New(uc, http_recommend.WithLogger(logger)))

	controllerPool.Register()
	controllerPool.RunAll(cfg.HTTP.Port)
}

// refreshLoop re-aggregates the catalog on a fixed cadence, independent of
// request traffic. Each cycle runs under a bounded context so a hung
// provider cannot stall the loop.
func refreshLoop(ctx context.Context, uc *usecase_recommend.Usecase, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.Wait()
			return
		case <-ticker.C:
			refreshCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
			if err := uc.Refresh(refreshCtx); err != nil {
				logger.Error("periodic refresh failed",
					slog.String("error", err.Error()),
				)
			}
			cancel()
		}
	}
}
