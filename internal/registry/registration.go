// Package registry advertises running forecast workers in etcd. Each worker
// keeps a JSON record under KeyPrefix bound to a lease, so the record
// disappears when the worker stops sending heartbeats.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/finsightapp/finsight/internal/config"
	"github.com/finsightapp/finsight/internal/logging"
	"github.com/finsightapp/finsight/internal/models"
	"github.com/finsightapp/finsight/internal/utils"
)

// KeyPrefix is the etcd prefix of worker records
const KeyPrefix = "/finsight/forecasters/"

// DefaultLeaseTTL is the lease TTL in seconds used when none is configured
const DefaultLeaseTTL = 10

// StatsFunc reports processed and failed job counts
type StatsFunc func() (processed, failed int64)

// NewClient creates an etcd client from configuration
func NewClient(cfg config.RegistryConfig) (*clientv3.Client, error) {
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
		Username:    cfg.Username,
		Password:    cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}
	return client, nil
}

// WorkerKey returns the etcd key of a worker record
func WorkerKey(id string) string {
	return KeyPrefix + id
}

// WorkerRegistration handles worker registration with etcd
type WorkerRegistration struct {
	client  *clientv3.Client
	ttl     int64
	refresh time.Duration
	stats   StatsFunc
	logger  *logging.Logger

	mu      sync.Mutex
	info    models.WorkerInfo
	leaseID clientv3.LeaseID
}

// NewWorkerRegistration creates a registration for info. ttl <= 0 means
// DefaultLeaseTTL. stats may be nil.
func NewWorkerRegistration(
	client *clientv3.Client,
	info models.WorkerInfo,
	ttl int64,
	stats StatsFunc,
	logger *logging.Logger,
) *WorkerRegistration {
	if ttl <= 0 {
		ttl = DefaultLeaseTTL
	}
	return &WorkerRegistration{
		client:  client,
		ttl:     ttl,
		refresh: time.Duration(ttl) * time.Second * 3,
		stats:   stats,
		info:    info,
		logger:  logger.With("worker_id", info.ID),
	}
}

// Register grants a lease, writes the worker record and keeps the lease
// alive until ctx is cancelled.
func (r *WorkerRegistration) Register(ctx context.Context) error {
	opCtx, cancel := context.WithTimeout(ctx, utils.RegistryOperationTimeout)
	defer cancel()

	lease, err := r.client.Grant(opCtx, r.ttl)
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}

	r.mu.Lock()
	r.leaseID = lease.ID
	if r.info.StartedAt.IsZero() {
		r.info.StartedAt = time.Now().UTC()
	}
	if r.info.Status == "" {
		r.info.Status = models.WorkerStatusActive
	}
	r.mu.Unlock()

	if err := r.put(opCtx); err != nil {
		r.revoke(ctx, lease.ID)
		return fmt.Errorf("failed to register worker: %w", err)
	}

	r.logger.Info("Worker registered",
		"key", WorkerKey(r.info.ID),
		"address", r.info.Address,
		"lease_id", int64(lease.ID),
		"ttl", r.ttl)

	ch, err := r.client.KeepAlive(ctx, lease.ID)
	if err != nil {
		r.revoke(ctx, lease.ID)
		return fmt.Errorf("failed to start keep-alive: %w", err)
	}
	go r.keepAlive(ctx, ch)
	return nil
}

// revoke drops a lease Register could not use. It runs on a fresh deadline
// so a timed-out registration still cleans up.
func (r *WorkerRegistration) revoke(ctx context.Context, id clientv3.LeaseID) {
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), utils.RegistryOperationTimeout)
	defer cancel()
	if _, err := r.client.Revoke(opCtx, id); err != nil {
		r.logger.Warn("Failed to revoke unused lease", "lease_id", int64(id), "error", err)
	}
}

// put writes the current record under the current lease
func (r *WorkerRegistration) put(ctx context.Context) error {
	r.mu.Lock()
	if r.stats != nil {
		r.info.Processed, r.info.Failed = r.stats()
	}
	r.info.UpdatedAt = time.Now().UTC()
	info := r.info
	leaseID := r.leaseID
	r.mu.Unlock()

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal worker info: %w", err)
	}
	_, err = r.client.Put(ctx, WorkerKey(info.ID), string(data), clientv3.WithLease(leaseID))
	return err
}

// keepAlive consumes heartbeats, refreshes the record periodically and
// re-registers when the lease is lost.
func (r *WorkerRegistration) keepAlive(ctx context.Context, ch <-chan *clientv3.LeaseKeepAliveResponse) {
	ticker := time.NewTicker(r.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("Keep-alive stopped")
			return

		case ka, ok := <-ch:
			if !ok {
				if ctx.Err() != nil {
					return
				}
				r.logger.Warn("Keep-alive channel closed, re-registering")
				r.reregister(ctx)
				return
			}
			r.logger.Debug("Heartbeat sent", "ttl", ka.TTL)

		case <-ticker.C:
			opCtx, cancel := context.WithTimeout(ctx, utils.RegistryOperationTimeout)
			if err := r.put(opCtx); err != nil {
				r.logger.Warn("Failed to refresh worker record", "error", err)
			}
			cancel()
		}
	}
}

// reregister retries Register until it succeeds or ctx is cancelled
func (r *WorkerRegistration) reregister(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(utils.RegistryRetryInterval):
		}
		if err := r.Register(ctx); err != nil {
			r.logger.Error("Failed to re-register", "error", err)
			continue
		}
		return
	}
}

// SetStatus updates the advertised status
func (r *WorkerRegistration) SetStatus(ctx context.Context, status string) error {
	r.mu.Lock()
	r.info.Status = status
	r.mu.Unlock()
	return r.put(ctx)
}

// Info returns a copy of the current record
func (r *WorkerRegistration) Info() models.WorkerInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.info
}

// Deregister deletes the record and revokes the lease
func (r *WorkerRegistration) Deregister(ctx context.Context) error {
	r.mu.Lock()
	leaseID := r.leaseID
	id := r.info.ID
	r.mu.Unlock()

	_, err := r.client.Delete(ctx, WorkerKey(id))
	if err != nil {
		r.logger.Error("Failed to delete worker key", "error", err)
	}

	if leaseID != 0 {
		if _, revokeErr := r.client.Revoke(ctx, leaseID); revokeErr != nil {
			r.logger.Error("Failed to revoke lease", "error", revokeErr)
		}
	}

	r.logger.Info("Worker deregistered")
	return err
}

// ListWorkers returns the registered workers ordered by ID
func ListWorkers(ctx context.Context, client *clientv3.Client) ([]models.WorkerInfo, error) {
	resp, err := client.Get(ctx, KeyPrefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}

	workers := make([]models.WorkerInfo, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var info models.WorkerInfo
		if err := json.Unmarshal(kv.Value, &info); err != nil {
			return nil, fmt.Errorf("invalid worker record %s: %w", kv.Key, err)
		}
		workers = append(workers, info)
	}

	sort.Slice(workers, func(i, j int) bool { return workers[i].ID < workers[j].ID })
	return workers, nil
}
