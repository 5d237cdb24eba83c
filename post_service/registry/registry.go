package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	etcd "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
)

const (
	servicePrefix = "/services/post_service/"
	leaseTTL      = 5
)

// Registration keeps this instance listed in etcd while its lease is alive.
type Registration struct {
	client *etcd.Client
	key    string
	lease  etcd.LeaseID
	logger *zap.Logger
}

func InstanceKey(id string) string {
	return fmt.Sprintf("%s%s", servicePrefix, id)
}

// Register puts addr under a fresh instance key bound to a keep-alive lease.
// The lease is kept alive until ctx is done or Close is called.
func Register(ctx context.Context, endpoints []string, addr string, logger *zap.Logger) (*Registration, error) {
	client, err := etcd.New(etcd.Config{Endpoints: endpoints, DialTimeout: 5 * time.Second})
	if err != nil {
		logger.Error("Error in Register instance of PostService", zap.Error(err))
		return nil, err
	}
	lease, err := client.Grant(ctx, leaseTTL)
	if err != nil {
		client.Close()
		logger.Error("Error in Creating Lease to instance of PostService", zap.Error(err))
		return nil, err
	}
	key := InstanceKey(uuid.NewString())
	if _, err := client.Put(ctx, key, addr, etcd.WithLease(lease.ID)); err != nil {
		client.Close()
		return nil, err
	}
	keepAlive, err := client.KeepAlive(ctx, lease.ID)
	if err != nil {
		client.Close()
		return nil, err
	}
	go func() {
		// drain responses so the client does not log a full channel
		for range keepAlive {
		}
		logger.Info("etcd keep-alive stopped", zap.String("key", key))
	}()

	logger.Info("Registered instance", zap.String("key", key), zap.String("addr", addr))
	return &Registration{client: client, key: key, lease: lease.ID, logger: logger}, nil
}

func (r *Registration) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := r.client.Revoke(ctx, r.lease); err != nil {
		r.logger.Warn("Error revoking lease", zap.Error(err))
	}
	if err := r.client.Close(); err != nil {
		r.logger.Warn("Error closing etcd client", zap.Error(err))
	}
}
